package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/vaultboard/internal/rank"
	"github.com/kelsos/vaultboard/internal/services"
)

// ScanMonitor runs the leaderboard pipeline behind a live TUI showing
// per-chain scan progress.
type ScanMonitor struct {
	service *services.LeaderboardService
	program *tea.Program
}

func NewScanMonitor(service *services.LeaderboardService) *ScanMonitor {
	return &ScanMonitor{
		service: service,
	}
}

// Run executes the scan in the background while the TUI blocks the terminal.
// It returns the ranked results once the scan finishes; quitting the TUI
// early cancels the scan.
func (sm *ScanMonitor) Run(ctx context.Context) ([]rank.Candidate, error) {
	model := NewModel()
	sm.program = tea.NewProgram(model, tea.WithAltScreen())
	sm.service.OnProgress = sm.handleProgress

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var results []rank.Candidate
	var scanErr error
	done := make(chan struct{})

	go func() {
		defer close(done)

		chainIDs, err := sm.service.ChainIDs()
		if err != nil {
			scanErr = err
			sm.AddLog(fmt.Sprintf("❌ %v", err))
			sm.program.Send(ScanFinished{Err: err})
			return
		}

		sm.program.Send(ChainsLoaded{ChainIDs: chainIDs})
		sm.AddLog(fmt.Sprintf("Scanning %d chains", len(chainIDs)))

		results, scanErr = sm.service.BuildLeaderboard(ctx)
		if scanErr != nil {
			sm.AddLog(fmt.Sprintf("❌ Fatal error: %v", scanErr))
		} else {
			sm.AddLog(fmt.Sprintf("🎉 Leaderboard ready: %d vaults qualified", len(results)))
		}

		// Let the final state render before tearing the screen down.
		time.Sleep(750 * time.Millisecond)
		sm.program.Send(ScanFinished{Err: scanErr})
	}()

	if _, err := sm.program.Run(); err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}

	select {
	case <-done:
		return results, scanErr
	default:
		cancel()
		return nil, fmt.Errorf("scan aborted")
	}
}

// AddLog appends a line to the TUI log tail
func (sm *ScanMonitor) AddLog(message string) {
	if sm.program != nil {
		sm.program.Send(LogMessage{
			Message: message,
		})
	}
}

// handleProgress translates service progress into TUI updates. Called from
// resolver goroutines; tea.Program.Send is safe for concurrent use.
func (sm *ScanMonitor) handleProgress(p services.Progress) {
	if sm.program == nil {
		return
	}

	update := ScanUpdate{
		ChainID: p.ChainID,
		Stage:   p.Stage,
		Message: p.Message,
		Error:   p.Err,
	}

	switch p.Stage {
	case services.StageVaults:
		update.Progress = 0.1
	case services.StageScreen:
		update.Progress = 0.3
		update.Message = fmt.Sprintf("screening %d vaults", p.Total)
	case services.StageExposure:
		update.Progress = 0.3
		if p.Total > 0 {
			update.Progress = 0.3 + 0.7*float64(p.Done)/float64(p.Total)
			update.Message = fmt.Sprintf("resolving exposures %d/%d", p.Done, p.Total)
		}
	case services.StageComplete:
		update.Progress = 1.0
	}

	sm.program.Send(update)
}
