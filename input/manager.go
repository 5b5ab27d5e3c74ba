package input

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nexusgame/hydra/hydra"
	internallog "github.com/nexusgame/hydra/internal/log"
)

// Manager owns the hydra.Manager and serialises every access to it: each
// scheduler tick and each external call through Do hold the same lock.
type Manager struct {
	mu     sync.Mutex
	mode   Mode
	hydra  *hydra.Manager
	logger *slog.Logger
}

// NewManager wraps h and switches to mode. Switching to ModeHydra enables h.
func NewManager(h *hydra.Manager, mode Mode, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{mode: ModeUndefined, hydra: h, logger: logger}
	m.SetMode(mode)
	return m
}

// Mode returns the active backend.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetMode switches the active backend. Entering ModeHydra enables the hydra
// manager; leaving it disables it so the device layer regains management.
func (m *Manager) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.mode
	m.mode = mode
	if prev == ModeHydra && mode != ModeHydra {
		m.hydra.Disable()
	}
	if mode == ModeHydra {
		m.hydra.Enable()
	}
	m.logger.Info("input mode set", "mode", mode, "previous", prev)
}

// Do runs fn with exclusive access to the hydra manager.
func (m *Manager) Do(fn func(h *hydra.Manager)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.hydra)
}

// Update runs one frame for the active backend. Hydra slots update Left
// then Right.
func (m *Manager) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.mode {
	case ModeHydra:
		// a disabled manager is skipped rather than warning every frame
		if m.hydra.IsEnabled() {
			m.hydra.Tick()
		}
	case ModeGamepad:
		m.updateGamepad()
	case ModeMouseKeyboard:
		m.updateMouseKeyboard()
	}
}

// Gamepad and keyboard input are not handled; the modes exist so a host can
// switch away from the motion controllers.
func (m *Manager) updateGamepad() {
	m.logger.Log(context.Background(), internallog.LevelTrace, "gamepad update ignored")
}

func (m *Manager) updateMouseKeyboard() {
	m.logger.Log(context.Background(), internallog.LevelTrace, "keyboard update ignored")
}

// Run calls Update every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("input loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("input loop stopped")
			return nil
		case <-ticker.C:
			m.Update()
		}
	}
}
