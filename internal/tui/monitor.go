package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/vaultboard/internal/chains"
	"github.com/kelsos/vaultboard/internal/services"
)

type ScanStatus struct {
	Stage    services.Stage
	Progress float64
	Message  string
	Error    error
}

type ChainScanStatus struct {
	ChainID       int
	Status        ScanStatus
	StartTime     time.Time
	CompletedTime time.Time
}

type Model struct {
	chainIDs      []int
	chainStatuses map[int]*ChainScanStatus
	logs          []string
	spinner       spinner.Model
	progress      progress.Model
	width         int
	height        int
	quit          bool
	errorCount    int
	successCount  int
}

type ChainsLoaded struct {
	ChainIDs []int
}

type ScanUpdate struct {
	ChainID  int
	Stage    services.Stage
	Progress float64
	Message  string
	Error    error
}

type LogMessage struct {
	Message string
}

type ScanFinished struct {
	Err error
}

func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient())

	return Model{
		chainIDs:      []int{},
		chainStatuses: make(map[int]*ChainScanStatus),
		logs:          []string{},
		spinner:       sp,
		progress:      pr,
		width:         80,
		height:        24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKeyMsg(msg) {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case ChainsLoaded:
		m = m.handleChainsLoaded(msg)

	case ScanUpdate:
		m = m.handleScanUpdate(msg)

	case LogMessage:
		m = m.handleLogMessage(msg)

	case ScanFinished:
		m.quit = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.progress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.progress.Width = msg.Width - 40
	return m
}

func (m Model) handleChainsLoaded(msg ChainsLoaded) Model {
	m.chainIDs = msg.ChainIDs
	for _, chainID := range msg.ChainIDs {
		m.chainStatuses[chainID] = &ChainScanStatus{
			ChainID: chainID,
			Status: ScanStatus{
				Stage: services.StageIdle,
			},
		}
	}
	return m
}

func (m Model) handleScanUpdate(msg ScanUpdate) Model {
	if status, exists := m.chainStatuses[msg.ChainID]; exists {
		status.Status.Stage = msg.Stage
		status.Status.Progress = msg.Progress
		status.Status.Message = msg.Message
		status.Status.Error = msg.Error

		if msg.Stage == services.StageVaults && status.StartTime.IsZero() {
			status.StartTime = time.Now()
		}

		if msg.Stage == services.StageComplete {
			status.CompletedTime = time.Now()
			if msg.Error != nil {
				m.errorCount++
			} else {
				m.successCount++
			}
		}
	}
	return m
}

func (m Model) handleLogMessage(msg LogMessage) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), msg.Message))
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
	return m
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Header
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render("📊 Vaultboard Scan Monitor"))
	s.WriteString("\n\n")

	// Summary
	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	summary := fmt.Sprintf("Chains: %d | ✅ Done: %d | ❌ Errors: %d",
		len(m.chainIDs), m.successCount, m.errorCount)
	s.WriteString(summaryStyle.Render(summary))
	s.WriteString("\n\n")

	// Chain scan status
	chainSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var chainStatus strings.Builder
	chainStatus.WriteString("⛓ Chain Scan Status\n")
	chainStatus.WriteString(strings.Repeat("─", 60) + "\n")

	for _, chainID := range m.chainIDs {
		status, exists := m.chainStatuses[chainID]
		if !exists {
			continue
		}

		statusIcon := getStageIcon(status.Status.Stage)
		stageColor := getStageColor(status.Status.Stage)

		chainLine := fmt.Sprintf("%s %-12s %s %-10s",
			statusIcon,
			truncate(chains.Name(chainID), 12),
			m.spinner.View(),
			status.Status.Stage)

		if status.Status.Stage != services.StageIdle && status.Status.Stage != services.StageComplete {
			progressBar := m.progress.ViewAs(status.Status.Progress)
			chainLine += fmt.Sprintf(" %s", progressBar)
		}

		if status.Status.Error != nil {
			errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
			chainLine += " " + errorStyle.Render(fmt.Sprintf("Error: %v", status.Status.Error))
		} else if status.Status.Message != "" {
			messageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
			chainLine += " " + messageStyle.Render(status.Status.Message)
		}

		stageStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(stageColor))
		chainStatus.WriteString(stageStyle.Render(chainLine) + "\n")
	}

	s.WriteString(chainSectionStyle.Render(chainStatus.String()))
	s.WriteString("\n\n")

	// Logs section
	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2).
		Height(8)

	var logSection strings.Builder
	logSection.WriteString("📝 Recent Logs\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	// Footer
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	footer := "Press 'q' to quit | Logs: logs/vaultboard_*.log"
	s.WriteString(footerStyle.Render(footer))

	return s.String()
}

func getStageIcon(stage services.Stage) string {
	switch stage {
	case services.StageIdle:
		return "⏸"
	case services.StageVaults:
		return "📡"
	case services.StageScreen:
		return "🔍"
	case services.StageExposure:
		return "🧩"
	case services.StageComplete:
		return "✅"
	default:
		return "❓"
	}
}

func getStageColor(stage services.Stage) string {
	switch stage {
	case services.StageIdle:
		return "244"
	case services.StageComplete:
		return "82"
	default:
		return "39"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
