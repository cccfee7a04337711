package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"metascrub/internal/domain/model"
)

type progressMsg model.ProgressEvent

type workDoneMsg struct {
	err error
}

type progressModel struct {
	title    string
	spinner  spinner.Model
	bar      progress.Model
	event    model.ProgressEvent
	failed   int
	width    int
	cancel   context.CancelFunc
	stopping bool
	done     bool
}

func newProgressModel(title string, cancel context.CancelFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 40

	return progressModel{title: title, spinner: s, bar: bar, width: 80, cancel: cancel}
}

func (m progressModel) Init() tea.Cmd { return m.spinner.Tick }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 30
		if m.bar.Width < 20 {
			m.bar.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// the worker notices between files and reports a partial result
			if !m.stopping && m.cancel != nil {
				m.stopping = true
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		m.event = model.ProgressEvent(msg)
		if r := m.event.Result; r != nil && !r.Succeeded && r.Method != "" {
			m.failed++
		}
		return m, nil

	case workDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Render(m.title)
	fmt.Fprintf(&b, "\n  %s %s\n\n", m.spinner.View(), title)

	if total := m.event.Total; total > 0 {
		percent := float64(m.event.Index) / float64(total)
		fmt.Fprintf(&b, "  %s %3.0f%% (%d/%d)", m.bar.ViewAs(percent), percent*100, m.event.Index, total)
		if m.failed > 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("  %d failed", m.failed)))
		}
		b.WriteString("\n")
		if m.event.Path != "" {
			name := truncateLeft(filepath.Base(m.event.Path), m.width-4)
			b.WriteString(lipgloss.NewStyle().Faint(true).Italic(true).Render("  "+name) + "\n")
		}
	} else {
		b.WriteString("  Enumerating files...\n")
	}

	hint := "ctrl+c to stop"
	if m.stopping {
		hint = "stopping after the current file..."
	}
	b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render("  "+hint) + "\n")
	return b.String()
}

func truncateLeft(s string, limit int) string {
	if limit < 4 || len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit+3:]
}

var newProgressProgram = func(m tea.Model) *tea.Program {
	return tea.NewProgram(m, tea.WithOutput(os.Stderr))
}

// runWithProgress runs work while a progress view on stderr follows its
// events. Without a terminal the work runs directly and silently.
func runWithProgress(parent context.Context, title string, work func(context.Context, func(model.ProgressEvent)) error) error {
	if !progressInteractive() {
		return work(parent, nil)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p := newProgressProgram(newProgressModel(title, cancel))
	errc := make(chan error, 1)
	go func() {
		err := work(ctx, func(e model.ProgressEvent) { p.Send(progressMsg(e)) })
		p.Send(workDoneMsg{err: err})
		errc <- err
	}()

	// A failing view must not abort the work; the result is still printed.
	_, _ = p.Run()
	return <-errc
}
