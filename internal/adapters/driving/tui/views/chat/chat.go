// Package chat provides the conversation view: a scrolling transcript of
// questions and answers above a question input.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/askdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
)

// PollInterval is how often index readiness is checked until it is ready.
const PollInterval = 2 * time.Second

// chrome is the number of rows taken by the title, input and status bar.
const chrome = 7

type turn struct {
	question string
	answer   domain.Answer
	err      error
	pending  bool
}

// View is the chat view.
type View struct {
	ctx     context.Context
	answers driving.AnswerService
	index   driving.IndexService

	styles   *styles.Styles
	keymap   *keymap.KeyMap
	input    *input.QuestionInput
	status   *status.Bar
	viewport viewport.Model

	turns       []turn
	showSources bool
	buildErr    error
	width       int
	height      int
}

// NewView creates a chat view. index may be nil.
func NewView(s *styles.Styles, answers driving.AnswerService, index driving.IndexService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()

	v := &View{
		ctx:      context.Background(),
		answers:  answers,
		index:    index,
		styles:   s,
		keymap:   km,
		input:    input.NewQuestionInput(s),
		status:   status.NewBar(s, km),
		viewport: viewport.New(80, 16),
		width:    80,
		height:   24,
	}
	v.refresh()
	return v
}

// WithContext sets the context passed to the answer service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor and the first readiness check.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.checkIndex())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.QuestionSubmitted:
		v.turns = append(v.turns, turn{question: msg.Question, pending: true})
		v.status.SetState(status.StateThinking)
		v.refresh()
		return v, v.ask(msg.Question)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.IndexBuildFailed:
		v.buildErr = msg.Err
		v.status.SetState(status.StateError)
		v.status.SetMessage(fmt.Sprintf("index build failed: %v", msg.Err))
		return v, nil

	case messages.IndexStatus:
		v.status.SetStats(msg.Stats)
		if !msg.Stats.Ready && v.buildErr == nil {
			return v, tea.Tick(PollInterval, func(time.Time) tea.Msg { return v.checkIndex()() })
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Send):
		if v.Pending() {
			return v, nil
		}
		question, ok := v.input.Take()
		if !ok {
			return v, nil
		}
		return v, func() tea.Msg { return messages.QuestionSubmitted{Question: question} }

	case keymap.Matches(k, v.keymap.ToggleSources):
		v.showSources = !v.showSources
		v.refresh()
		return v, nil

	case keymap.Matches(k, v.keymap.Clear):
		if !v.Pending() {
			v.turns = nil
			v.refresh()
		}
		return v, nil

	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	for i := len(v.turns) - 1; i >= 0; i-- {
		if v.turns[i].pending && v.turns[i].question == msg.Question {
			v.turns[i].pending = false
			v.turns[i].answer = msg.Answer
			v.turns[i].err = msg.Err
			break
		}
	}

	if msg.Err != nil {
		v.status.SetState(status.StateError)
		v.status.SetMessage(msg.Err.Error())
	} else {
		v.status.SetState(status.StateReady)
		v.status.SetMessage("")
	}
	v.refresh()
}

// ask runs the question against the answer service.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answers == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAnswerService}
		}
		answer, err := v.answers.Ask(v.ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// checkIndex reads the index status.
func (v *View) checkIndex() tea.Cmd {
	return func() tea.Msg {
		if v.index == nil {
			return messages.IndexStatus{Stats: domain.IndexStats{Ready: true}}
		}
		return messages.IndexStatus{Stats: v.index.Stats()}
	}
}

// refresh re-renders the transcript and keeps it scrolled to the latest turn.
func (v *View) refresh() {
	v.viewport.SetContent(v.transcript())
	v.viewport.GotoBottom()
}

func (v *View) transcript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the indexed documents.")
	}

	// Leave room for the "askdocs: " label.
	width := v.viewport.Width - 10
	if width < 20 {
		width = 20
	}
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, t := range v.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("You: "))
		b.WriteString(body.Render(t.question))
		b.WriteString("\n")
		b.WriteString(v.styles.Answer.Render("askdocs: "))

		switch {
		case t.pending:
			b.WriteString(v.styles.Muted.Render("..."))
		case t.err != nil:
			b.WriteString(v.styles.Error.Render(t.err.Error()))
		case t.answer.Fallback:
			b.WriteString(v.styles.Warning.Render(body.Render(t.answer.Text)))
		default:
			b.WriteString(body.Render(strings.TrimSpace(t.answer.Text)))
		}

		if v.showSources && !t.pending {
			for j, src := range t.answer.Sources {
				b.WriteString("\n")
				b.WriteString(v.styles.Source.Render(
					fmt.Sprintf("[%d] %s (%.2f)", j+1, src.Chunk.Source, src.Score)))
			}
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	title := v.styles.Title.Render("askdocs")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		v.styles.Transcript.Render(v.viewport.View()),
		v.input.View(),
		v.status.View(),
	)
}

// SetDimensions sizes the transcript, input and status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	v.viewport.Width = width - 4
	v.viewport.Height = height - chrome
	if v.viewport.Height < 3 {
		v.viewport.Height = 3
	}
	v.input.SetWidth(width)
	v.status.SetWidth(width)
	v.refresh()
}

// Pending returns true while a question is awaiting its answer.
func (v *View) Pending() bool {
	return len(v.turns) > 0 && v.turns[len(v.turns)-1].pending
}

// Turns returns the number of questions asked.
func (v *View) Turns() int {
	return len(v.turns)
}

// ShowSources returns whether passages are listed under answers.
func (v *View) ShowSources() bool {
	return v.showSources
}

// BuildErr returns the error of a failed index build, if one was reported.
func (v *View) BuildErr() error {
	return v.buildErr
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.status.State()
}
