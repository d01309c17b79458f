package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/WomainOK/slideseq/pkg/pipeline"
	"github.com/WomainOK/slideseq/pkg/slideshow/solver"
)

// Watch dashboard styles.
var (
	watchLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	watchValueStyle = lipgloss.NewStyle().Foreground(colorWhite)
	watchDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// progressMsg carries a solver snapshot into the bubbletea loop.
type progressMsg solver.Progress

// doneMsg carries the pipeline outcome into the bubbletea loop.
type doneMsg struct {
	result *pipeline.Result
	err    error
}

// watchModel is the bubbletea model for the live search dashboard. Pressing
// q cancels the search; the solver is anytime, so cancellation still yields
// the best sequence found so far and the dashboard waits for it.
type watchModel struct {
	catalog  string
	cancel   context.CancelFunc
	progress solver.Progress
	stopping bool
	result   *pipeline.Result
	err      error
}

func newWatchModel(catalog string, cancel context.CancelFunc) watchModel {
	return watchModel{catalog: catalog, cancel: cancel}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// Stop the search but keep the dashboard up until the best
			// sequence so far arrives.
			m.stopping = true
			m.cancel()
		}
	case progressMsg:
		m.progress = solver.Progress(msg)
	case doneMsg:
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Optimizing " + m.catalog))
	b.WriteString("\n")
	if m.stopping {
		b.WriteString(watchDimStyle.Render("stopping, collecting best sequence..."))
	} else {
		b.WriteString(watchDimStyle.Render("q stop and keep best"))
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(watchLabelStyle.Render(label) + " " + watchValueStyle.Render(value) + "\n")
	}
	row("Best score", fmt.Sprintf("%d", m.progress.Best))
	row("Improvements", fmt.Sprintf("%d", m.progress.Improvements))
	row("Nodes", fmt.Sprintf("%d", m.progress.Nodes))
	row("Elapsed", m.progress.Elapsed.Truncate(100*time.Millisecond).String())

	return b.String()
}

// runWatch runs the optimization behind a live dashboard. The returned
// result is the pipeline outcome, including the case where the user stopped
// the search early.
func (c *CLI) runWatch(ctx context.Context, runner *pipeline.Runner, catalogPath string, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newWatchModel(catalogPath, cancel))

	opts.Progress = func(pr solver.Progress) {
		p.Send(progressMsg(pr))
	}

	go func() {
		result, err := runner.OptimizeFile(ctx, catalogPath, opts)
		p.Send(doneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(watchModel)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
