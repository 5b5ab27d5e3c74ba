package input_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusgame/hydra/hydra"
	"github.com/nexusgame/hydra/input"
	"github.com/nexusgame/hydra/source"
)

func TestParseMode(t *testing.T) {
	for _, m := range []input.Mode{input.ModeMouseKeyboard, input.ModeGamepad, input.ModeHydra} {
		got, err := input.ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := input.ParseMode("wheel")
	assert.Error(t, err)
	assert.Equal(t, "undefined", input.ModeUndefined.String())
}

func TestSetModeTogglesHydra(t *testing.T) {
	store := source.NewStore()
	h := hydra.New(store)
	m := input.NewManager(h, input.ModeHydra, nil)

	assert.True(t, h.IsEnabled())
	assert.False(t, store.ControllerManagerEnabled())

	m.SetMode(input.ModeGamepad)
	assert.False(t, h.IsEnabled())
	assert.True(t, store.ControllerManagerEnabled())
	assert.Equal(t, input.ModeGamepad, m.Mode())

	m.SetMode(input.ModeHydra)
	assert.True(t, h.IsEnabled())
}

func TestUpdateOrderLeftThenRight(t *testing.T) {
	store := source.NewStore()
	h := hydra.New(store)
	m := input.NewManager(h, input.ModeHydra, nil)

	var order []hydra.Slot
	for _, s := range hydra.Slots() {
		h.Callbacks(s).OnTriggerPress(func(float64) { order = append(order, s) })
	}

	store.Put(hydra.Left, hydra.Sample{Trigger: 1})
	store.Put(hydra.Right, hydra.Sample{Trigger: 1})
	m.Update() // left calibrates, right presses
	m.Update()

	assert.Equal(t, []hydra.Slot{hydra.Right, hydra.Left, hydra.Right}, order)
}

func TestGamepadModeDoesNotTickHydra(t *testing.T) {
	store := source.NewStore()
	h := hydra.New(store, hydra.WithCanCalibrate(false))
	m := input.NewManager(h, input.ModeGamepad, nil)

	var n int
	h.Callbacks(hydra.Left).OnTriggerRelease(func(float64) { n++ })
	store.Put(hydra.Left, hydra.Sample{})
	m.Update()
	assert.Zero(t, n)

	m.Do(func(h *hydra.Manager) { assert.False(t, h.IsEnabled()) })
}

func TestDisabledHydraModeSkipsTick(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := source.NewStore()
	h := hydra.New(store, hydra.WithLogger(logger), hydra.WithCanCalibrate(false))
	m := input.NewManager(h, input.ModeHydra, logger)

	var n int
	h.Callbacks(hydra.Left).OnTriggerRelease(func(float64) { n++ })
	store.Put(hydra.Left, hydra.Sample{})

	m.Do(func(h *hydra.Manager) { h.Disable() })
	logs.Reset()
	for range 3 {
		m.Update()
	}
	assert.Zero(t, n)
	assert.Empty(t, logs.String())
	assert.Equal(t, input.ModeHydra, m.Mode())

	m.Do(func(h *hydra.Manager) { h.Enable() })
	m.Update()
	assert.Equal(t, 1, n)
}

func TestRun(t *testing.T) {
	store := source.NewStore()
	h := hydra.New(store, hydra.WithCanCalibrate(false))
	m := input.NewManager(h, input.ModeHydra, nil)

	var releases atomic.Int32
	h.Callbacks(hydra.Right).OnTriggerRelease(func(float64) { releases.Add(1) })
	store.Put(hydra.Right, hydra.Sample{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()

	assert.Eventually(t, func() bool { return releases.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
