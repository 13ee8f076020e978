package preview

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobalert/jobalert/internal/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// errCancelled is returned when the user aborts the loader with ctrl+c.
var errCancelled = errors.New("cancelled")

// EvaluateFunc fetches and scores one source.
type EvaluateFunc func(ctx context.Context) ([]pipeline.Evaluation, error)

type evaluateDoneMsg struct {
	evals []pipeline.Evaluation
	err   error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	sourceName string
	evaluate   EvaluateFunc
	timeout    time.Duration
	frame      int
	result     []pipeline.Evaluation
	err        error
	done       bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doEvaluate(), m.tick())
}

func (m loaderModel) doEvaluate() tea.Cmd {
	evaluate, timeout := m.evaluate, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		evals, err := evaluate(ctx)
		return evaluateDoneMsg{evals: evals, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case evaluateDoneMsg:
		m.result = msg.evals
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		if m.done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	return fmt.Sprintf("%s Scraping and scoring %s...\n", spinner, m.sourceName)
}

// RunLoader shows a spinner while evaluate runs. It renders inline (no alt
// screen). Detail pages are fetched one by one, so a large board can take a
// while; timeout bounds the whole evaluation.
func RunLoader(sourceName string, timeout time.Duration, evaluate EvaluateFunc) ([]pipeline.Evaluation, error) {
	m := loaderModel{
		sourceName: sourceName,
		evaluate:   evaluate,
		timeout:    timeout,
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
