package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/smoglight/pkg/client"
	"github.com/rmax-ai/smoglight/pkg/session"
)

// Config
const (
	pollRate  = time.Second
	stepDt    = 0.2
	barWidth  = 50
	apiEnvVar = "SMOGLIGHT_API_URL"
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	labelStyle  = lipgloss.NewStyle().Width(10).Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			Width(70)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(70)

	redBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("196")).
			Bold(true).
			Padding(0, 1)

	greenBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("34")).
			Bold(true).
			Padding(0, 1)
)

type tickMsg time.Time

type dataMsg struct {
	reading session.Reading
	err     error
}

type model struct {
	api     *client.Client
	spinner spinner.Model
	co2Bar  progress.Model
	coBar   progress.Model
	o2Bar   progress.Model
	reading session.Reading
	err     error
	ready   bool
}

func initialModel(api *client.Client) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	newBar := func(from, to string) progress.Model {
		b := progress.New(progress.WithGradient(from, to), progress.WithoutPercentage())
		b.Width = barWidth
		return b
	}

	return model{
		api:     api,
		spinner: s,
		co2Bar:  newBar("#2E5E2E", "#58C759"),
		coBar:   newBar("#803C2C", "#FF9178"),
		o2Bar:   newBar("#2C4C80", "#78B4FF"),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchState(),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			return m, m.control(func(ctx context.Context) (session.Reading, error) {
				return m.api.TogglePhase(ctx)
			})
		case "+", "=", "up":
			next := m.reading.Vehicles + 1
			return m, m.control(func(ctx context.Context) (session.Reading, error) {
				return m.api.SetVehicles(ctx, next)
			})
		case "-", "down":
			next := m.reading.Vehicles - 1
			if next < 0 {
				return m, nil
			}
			return m, m.control(func(ctx context.Context) (session.Reading, error) {
				return m.api.SetVehicles(ctx, next)
			})
		case "p":
			running := !m.reading.Running
			return m, m.control(func(ctx context.Context) (session.Reading, error) {
				return m.api.SetRunning(ctx, running)
			})
		case "s":
			return m, m.control(func(ctx context.Context) (session.Reading, error) {
				return m.api.Step(ctx, stepDt)
			})
		case "r":
			return m, m.control(func(ctx context.Context) (session.Reading, error) {
				return m.api.Reset(ctx)
			})
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		cmds = append(cmds, m.fetchState(), tick())

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.reading = msg.reading
		}
		if !m.ready {
			m.ready = true
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n%s Connecting to smoglight-d...", m.spinner.View())
	}

	r := m.reading

	var badge string
	if r.Phase.IsRed() {
		badge = redBadge.Render("RED")
	} else {
		badge = greenBadge.Render("GREEN")
	}

	runState := "paused"
	if r.Running {
		runState = "running"
	}

	header := headerStyle.Render(fmt.Sprintf("%s Idle Emissions", m.spinner.View()))
	status := fmt.Sprintf("%s  Vehicles: %d  Tick: %d  [%s]", badge, r.Vehicles, r.Tick, runState)

	bars := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("CO2")+m.co2Bar.ViewAs(scaledBarFraction(r.State.CO2, false))+fmt.Sprintf("  %.1f", r.State.CO2),
		labelStyle.Render("CO")+m.coBar.ViewAs(scaledBarFraction(r.State.CO, false))+fmt.Sprintf("  %.1f", r.State.CO),
		labelStyle.Render("Fresh O2")+m.o2Bar.ViewAs(scaledBarFraction(r.State.O2, true))+fmt.Sprintf("  %.1f", r.State.O2),
	)

	var footer string
	if m.err != nil {
		footer = errorStyle.Render(fmt.Sprintf("Offline: %v", m.err))
	} else {
		footer = okStyle.Render("Online")
	}
	help := subtleStyle.Render("space: toggle light • +/-: vehicles • p: run/pause • s: step 0.2s • r: reset • q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		paneStyle.Render(status),
		paneStyle.Render(bars),
		footer,
		help,
	)
}

// Commands

func (m model) fetchState() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		reading, err := m.api.GetState(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{reading: reading}
	}
}

// control wraps a daemon call into a command whose result refreshes the view.
func (m model) control(call func(ctx context.Context) (session.Reading, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		reading, err := call(ctx)
		if err != nil {
			return dataMsg{err: err}
		}
		return dataMsg{reading: reading}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func main() {
	api := client.NewClient(os.Getenv(apiEnvVar))

	p := tea.NewProgram(initialModel(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
