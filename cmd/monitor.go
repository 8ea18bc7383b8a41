// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/dmxgate/pkg/dmxclient"
	"github.com/Thermoquad/dmxgate/pkg/dmxengine"
	"github.com/Thermoquad/dmxgate/pkg/dmxproto"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	monitorPollInterval = 500 * time.Millisecond
	maxMonitorLog       = 100
)

// Focus states
const (
	focusNone = iota
	focusChannelInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

type monitorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// monitorModel is the Bubble Tea model for the live monitor
type monitorModel struct {
	client   *dmxclient.Client
	connInfo string

	// Last polled gateway state
	status     *dmxproto.StatusPayload
	timing     *dmxproto.TimingPayload
	latency    time.Duration
	pollErrors int

	// Channel entry ("channel=value")
	channelInput textinput.Model
	focusedField int

	// UI state
	width    int
	height   int
	log      []monitorLogEntry
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monitorTickMsg time.Time

type monitorPollMsg struct {
	status  dmxproto.StatusPayload
	timing  dmxproto.TimingPayload
	latency time.Duration
	err     error
}

type monitorCmdMsg struct {
	name string
	err  error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialMonitorModel(client *dmxclient.Client, connInfo string) monitorModel {
	ti := textinput.New()
	ti.Placeholder = "1=255"
	ti.CharLimit = 10
	ti.Width = 12

	return monitorModel{
		client:       client,
		connInfo:     connInfo,
		channelInput: ti,
		focusedField: focusNone,
		width:        80,
		height:       24,
		log:          make([]monitorLogEntry, 0),
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(monitorTickCmd(), m.pollCmd())
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(monitorPollInterval, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) pollCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		st, latency, err := client.Status()
		if err != nil {
			return monitorPollMsg{err: err}
		}
		t, _, err := client.Timing()
		if err != nil {
			return monitorPollMsg{err: err}
		}
		return monitorPollMsg{status: st, timing: t, latency: latency}
	}
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		return m, tea.Batch(monitorTickCmd(), m.pollCmd())

	case monitorPollMsg:
		if msg.err != nil {
			m.pollErrors++
			m.addLogEntry(fmt.Sprintf("Poll failed: %v", msg.err), true)
			return m, nil
		}
		st := msg.status
		t := msg.timing
		m.status = &st
		m.timing = &t
		m.latency = msg.latency

	case monitorCmdMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.name, msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("%s acknowledged", msg.name), false)
		}
	}

	if m.focusedField == focusChannelInput {
		var cmd tea.Cmd
		m.channelInput, cmd = m.channelInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *monitorModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.focusedField != focusChannelInput {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab":
		if m.focusedField == focusChannelInput {
			m.focusedField = focusNone
			m.channelInput.Blur()
		} else {
			m.focusedField = focusChannelInput
			m.channelInput.Focus()
		}
		return m, nil

	case "enter":
		if m.focusedField == focusChannelInput {
			return m.submitChannel()
		}

	case "e":
		if m.focusedField != focusChannelInput {
			return m, m.clientCmd("enable", m.client.Enable)
		}

	case "d":
		if m.focusedField != focusChannelInput {
			return m, m.clientCmd("disable", m.client.Disable)
		}

	case "b":
		if m.focusedField != focusChannelInput {
			return m, m.clientCmd("blackout", m.client.Blackout)
		}
	}

	if m.focusedField == focusChannelInput {
		var cmd tea.Cmd
		m.channelInput, cmd = m.channelInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *monitorModel) clientCmd(name string, fn func() (time.Duration, error)) tea.Cmd {
	return func() tea.Msg {
		_, err := fn()
		return monitorCmdMsg{name: name, err: err}
	}
}

func (m *monitorModel) submitChannel() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.channelInput.Value())
	m.channelInput.SetValue("")

	parts := strings.SplitN(input, "=", 2)
	if len(parts) != 2 {
		m.addLogEntry(fmt.Sprintf("Invalid entry %q (want channel=value)", input), true)
		return m, nil
	}

	channel, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || channel < 1 || channel > dmxengine.UniverseSize {
		m.addLogEntry(fmt.Sprintf("Channel must be 1-%d", dmxengine.UniverseSize), true)
		return m, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || value < 0 || value > 255 {
		m.addLogEntry("Value must be 0-255", true)
		return m, nil
	}

	client := m.client
	name := fmt.Sprintf("set %d=%d", channel, value)
	return m, func() tea.Msg {
		_, err := client.SetChannels(channel-1, []byte{byte(value)})
		return monitorCmdMsg{name: name, err: err}
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
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

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("DMXGATE MONITOR"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit e=enable d=disable b=blackout Tab=set", m.connInfo)))
	s.WriteString("\n\n")

	// Status panel
	var status strings.Builder
	status.WriteString(labelStyle.Render("STATUS"))
	status.WriteString(" | ")
	if m.status == nil {
		status.WriteString(warningStyle.Render("Waiting for gateway..."))
	} else {
		enabled := errorStyle.Render("DISABLED")
		if m.status.Enabled {
			enabled = valueStyle.Render("ENABLED")
		}
		status.WriteString(fmt.Sprintf("%s  %s %s  %s %s  %s %s",
			enabled,
			labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.status.FrameCount)),
			labelStyle.Render("FPS:"), valueStyle.Render(fmt.Sprintf("%.2f", m.status.FPS())),
			labelStyle.Render("Latency:"), valueStyle.Render(fmt.Sprintf("%d µs", m.latency.Microseconds()))))
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(status.String()))
	s.WriteString("\n\n")

	// Timing panel
	var timing strings.Builder
	timing.WriteString(labelStyle.Render("TIMING"))
	timing.WriteString(" | ")
	if m.timing == nil {
		timing.WriteString(headerStyle.Render("(no data)"))
	} else {
		timing.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s",
			labelStyle.Render("Refresh:"), valueStyle.Render(fmt.Sprintf("%d Hz", m.timing.RefreshHz)),
			labelStyle.Render("BREAK:"), valueStyle.Render(fmt.Sprintf("%d µs", m.timing.BreakUs)),
			labelStyle.Render("MAB:"), valueStyle.Render(fmt.Sprintf("%d µs", m.timing.MabUs))))
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(timing.String()))
	s.WriteString("\n\n")

	// Channel entry panel
	entryStyle := boxStyle
	if m.focusedField == focusChannelInput {
		entryStyle = focusedBoxStyle
	}
	entry := fmt.Sprintf("%s %s", labelStyle.Render("Set channel:"), m.channelInput.View())
	s.WriteString(entryStyle.Render(entry))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(labelStyle, headerStyle, warningStyle, errorStyle, boxStyle))

	return s.String()
}

func (m monitorModel) renderEventLog(labelStyle, headerStyle, warningStyle, errorStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := 8
	if len(m.log) < logHeight {
		logHeight = len(m.log)
	}

	startIdx := len(m.log) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.log) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.log); i++ {
			entry := m.log[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyle
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.log = append(m.log, monitorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})

	if len(m.log) > maxMonitorLog {
		m.log = m.log[len(m.log)-maxMonitorLog:]
	}
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live gateway monitor with interactive controls",
	Long: `Full-screen monitor that polls the gateway twice a second and shows
transmission status and timing. Single-key shortcuts enable, disable,
and blackout the output; Tab opens a channel=value entry field.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}

	client := dmxclient.New(conn, time.Duration(timeoutMs)*time.Millisecond)
	defer client.Close()

	p := tea.NewProgram(initialMonitorModel(client, connInfo), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
