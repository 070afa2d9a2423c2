package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Octrafic/stepexec/internal/core/tester"
)

type stepDoneMsg tester.StepResult

// stepModel shows a spinner until the step reports its result.
type stepModel struct {
	spinner spinner.Model
	label   string
	run     func() tester.StepResult
	cancel  context.CancelFunc
	result  *tester.StepResult
}

func newStepModel(label string, run func() tester.StepResult, cancel context.CancelFunc) stepModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Theme.Warning)

	return stepModel{spinner: s, label: label, run: run, cancel: cancel}
}

func (m stepModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return stepDoneMsg(m.run())
	})
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stepDoneMsg:
		res := tester.StepResult(msg)
		m.result = &res
		return m, tea.Quit
	case tea.KeyMsg:
		// The step still reports back once its context is cancelled.
		if msg.Type == tea.KeyCtrlC && m.cancel != nil {
			m.cancel()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m stepModel) View() string {
	if m.result != nil {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.label)
}

// RunWithSpinner runs step while drawing a spinner on out. Ctrl+C cancels
// the step's context.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, step func(context.Context) tester.StepResult) (tester.StepResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newStepModel(label, func() tester.StepResult { return step(ctx) }, cancel)
	final, err := tea.NewProgram(model, tea.WithOutput(out)).Run()
	if err != nil {
		return tester.StepResult{}, fmt.Errorf("failed to run spinner: %w", err)
	}

	m, ok := final.(stepModel)
	if !ok || m.result == nil {
		return tester.StepResult{}, fmt.Errorf("step did not report a result")
	}
	return *m.result, nil
}
