package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/logger"
)

type questionRequest struct {
	Question *string `json:"question"`
}

type answerResponse struct {
	Response string `json:"response"`
}

type wakeupResponse struct {
	Response string `json:"response"`
	Ready    bool   `json:"ready"`
}

type healthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Ready: s.ports.Index.Ready()})
}

func (s *Server) handleProcessInput(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuestion(w, r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Question == nil {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.answer(w, r, *req.Question)
}

func (s *Server) handleWakeup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuestion(w, r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Question == nil {
		writeJSON(w, http.StatusOK, wakeupResponse{Response: "awake", Ready: s.ports.Index.Ready()})
		return
	}
	s.answer(w, r, *req.Question)
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, question string) {
	answer, err := s.ports.Answer.Ask(r.Context(), question)
	if err != nil {
		logger.Error("answering question failed id=%s: %v", RequestID(r.Context()), err)
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Response: answer.Text})
}

// decodeQuestion reads a {"question": ...} body. Unknown fields, trailing
// data and bodies over MaxBodyBytes are rejected. An empty body is accepted
// only when allowEmpty is set.
func decodeQuestion(w http.ResponseWriter, r *http.Request, allowEmpty bool) (questionRequest, error) {
	var req questionRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			if allowEmpty {
				return req, nil
			}
			return req, errors.New("request body is empty")
		case errors.As(err, &tooLarge):
			return req, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		default:
			return req, fmt.Errorf("malformed request body: %w", err)
		}
	}
	if dec.More() {
		return req, errors.New("malformed request body: unexpected data after JSON object")
	}
	return req, nil
}

// statusFor maps an error from the core to a response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicSentinels are the errors whose text may reach clients.
var publicSentinels = []error{
	domain.ErrIndexNotReady,
	domain.ErrEmbedding,
	domain.ErrGeneration,
	domain.ErrInvalidInput,
	domain.ErrConfiguration,
	context.DeadlineExceeded,
}

// publicMessage reduces err to its domain sentinel, dropping transport detail.
func publicMessage(err error) string {
	for _, sentinel := range publicSentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
