// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/tdh3flash/pkg/tdh3"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// TUI model
type flashModel struct {
	connInfo  string
	firmware  string
	rawLength int
	paddedLen int
	phase     string
	polls     int
	percent   float64
	bytes     int
	spinner   spinner.Model
	progress  progress.Model
	events    []eventLogEntry
	maxEvents int
	result    *tdh3.Result
	err       error
	done      bool
	width     int
	quitting  bool
}

// Messages
type progressMsg tdh3.Progress
type initOKMsg struct{}
type flashDoneMsg struct {
	result *tdh3.Result
	err    error
}

func newFlashModel(img *tdh3.Image, connInfo string) flashModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return flashModel{
		connInfo:  connInfo,
		firmware:  img.Name(),
		rawLength: img.Len(),
		paddedLen: img.PaddedLen(),
		phase:     tdh3.PhaseWaiting,
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
		maxEvents: 20,
		width:     80,
	}
}

func (m flashModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m flashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Quitting is only offered while waiting or after the upload
			if m.phase == tdh3.PhaseWaiting || m.done {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		switch msg.Phase {
		case tdh3.PhaseWaiting:
			m.polls++
		case tdh3.PhaseArmed:
			m.phase = tdh3.PhaseArmed
			m.addEvent("Radio found, init sequence sent", false)
		case tdh3.PhaseFlashing, tdh3.PhaseComplete:
			m.phase = msg.Phase
			m.percent = msg.Percentage / 100
			m.bytes = msg.BytesFlashed
		}

	case initOKMsg:
		m.addEvent("Init OK", false)

	case flashDoneMsg:
		m.done = true
		m.result = msg.result
		m.err = msg.err
		if msg.err != nil {
			m.addEvent(msg.err.Error(), true)
		} else {
			m.phase = tdh3.PhaseComplete
			m.percent = 1
			m.addEvent("Done", false)
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *flashModel) addEvent(message string, isError bool) {
	m.events = append(m.events, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
}

func (m flashModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("TDH3FLASH"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | %s", m.connInfo, m.firmware)))
	s.WriteString("\n\n")

	info := fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Firmware:"), valueStyle.Render(fmt.Sprintf("%d b", m.rawLength)),
		labelStyle.Render("Padded:"), valueStyle.Render(fmt.Sprintf("%d b (%d blocks)", m.paddedLen, m.paddedLen/tdh3.BlockSize)),
	)
	s.WriteString(boxStyle.Render(info))
	s.WriteString("\n\n")

	switch m.phase {
	case tdh3.PhaseWaiting:
		s.WriteString(m.spinner.View())
		s.WriteString(warningStyle.Render(" Turn off the radio, hold PTT and turn the radio on keeping the PTT button held."))
		s.WriteString("\n")
		s.WriteString(headerStyle.Render(fmt.Sprintf("  polled %d times | press 'q' to quit", m.polls)))
	case tdh3.PhaseArmed:
		s.WriteString(m.spinner.View())
		s.WriteString(valueStyle.Render(" Radio found, waiting for it to settle..."))
	default:
		s.WriteString(m.progress.ViewAs(m.percent))
		s.WriteString("\n")
		s.WriteString(headerStyle.Render(fmt.Sprintf("  %d / %d b", m.bytes, m.paddedLen)))
	}
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Events:"))
	s.WriteString("\n")

	logContent := strings.Builder{}
	if len(m.events) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for _, entry := range m.events {
		timestamp := entry.timestamp.Format("15:04:05.000")
		if entry.isError {
			logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), errorStyle.Render("✗ "+entry.message)))
		} else {
			logContent.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), valueStyle.Render("✓ "+entry.message)))
		}
	}

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	s.WriteString(boxStyle.Width(width).Render(logContent.String()))
	s.WriteString("\n")

	return s.String()
}

// runFlashTUI runs the upload in a goroutine and renders its progress
func runFlashTUI(cmd *cobra.Command, transport tdh3.Transport, img *tdh3.Image, connInfo string, opts []tdh3.Option) error {
	p := tea.NewProgram(newFlashModel(img, connInfo))

	opts = append(opts,
		tdh3.WithProgressInterval(8),
		tdh3.WithProgressCallback(func(pr tdh3.Progress) {
			p.Send(progressMsg(pr))
		}),
	)
	programmer := tdh3.New(transport, opts...)

	go func() {
		if err := programmer.Handshake(cmd.Context()); err != nil {
			p.Send(flashDoneMsg{err: err})
			return
		}
		p.Send(initOKMsg{})

		result, err := programmer.Transfer(img)
		p.Send(flashDoneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	m := final.(flashModel)
	if m.err != nil {
		return m.err
	}
	if !m.done {
		return &exitError{code: 1, err: fmt.Errorf("aborted before the upload started")}
	}

	printResult(m.result)
	return nil
}
