package chat

import "errors"

// ErrNoAnswerService is returned when no answer service is configured.
var ErrNoAnswerService = errors.New("answer service not configured")
