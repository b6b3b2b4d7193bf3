package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/isim/internal/logger"
	"github.com/1broseidon/isim/internal/platform"
	"github.com/1broseidon/isim/internal/platform/fake"
)

const testWindow platform.WindowID = 12345

func testOptions() Options {
	return Options{
		ClickDelay:   0,
		WaitTimeout:  100 * time.Millisecond,
		PollInterval: time.Millisecond,
	}
}

func newTestEngine(t *testing.T) (*Engine, *fake.Backend) {
	t.Helper()
	b := fake.New(":0")
	b.AddWindow(testWindow, fake.Window{Origin: platform.Point{X: 100, Y: 50}, Name: "editor", PID: 4242})
	return New(b, testOptions()), b
}

func waitOK(t *testing.T, c *Completion, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, c)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	status, err := c.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
}

func TestKeyPress_EqualsKeyDownThenKeyUp(t *testing.T) {
	ctx := logger.NopContext()
	for _, seq := range []string{"a", "ctrl+alt+t", "shift+Return", "super+F5"} {
		t.Run(seq, func(t *testing.T) {
			e, b := newTestEngine(t)

			require.NoError(t, e.KeyDown(ctx, seq, platform.CurrentWindow(), 0))
			require.NoError(t, e.KeyUp(ctx, seq, platform.CurrentWindow(), 0))
			split := b.Events()

			b.ResetEvents()
			require.NoError(t, e.KeyPress(ctx, seq, platform.CurrentWindow(), 0))
			assert.Equal(t, split, b.Events())
		})
	}
}

func TestKeyDownAndKeyUp_FollowSequenceOrder(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	require.NoError(t, e.KeyDown(ctx, "ctrl+alt+t", platform.CurrentWindow(), 0))
	require.NoError(t, e.KeyUp(ctx, "ctrl+alt+t", platform.CurrentWindow(), 0))

	events := b.EventsOf(fake.KeyEvent)
	require.Len(t, events, 6)
	codes := func(evs []fake.Event) []platform.Keycode {
		out := make([]platform.Keycode, len(evs))
		for i, ev := range evs {
			out[i] = ev.Code
		}
		return out
	}
	down, up := events[:3], events[3:]
	for _, ev := range down {
		assert.True(t, ev.Press)
	}
	for _, ev := range up {
		assert.False(t, ev.Press)
	}
	assert.Equal(t, codes(down), codes(up))
}

func TestKeySequence_ExplicitWindowScenario(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	win := platform.WindowByID(testWindow)

	steps := []func() error{
		func() error { return e.KeyDown(ctx, "shift", win, 0) },
		func() error { return e.KeyDown(ctx, "a", win, 0) },
		func() error { return e.KeyUp(ctx, "a", win, 0) },
		func() error { return e.KeyUp(ctx, "shift", win, 0) },
	}
	for _, step := range steps {
		assert.Equal(t, StatusOK, StatusOf(step()))
	}

	events := b.EventsOf(fake.KeyEvent)
	require.Len(t, events, 4)
	for _, ev := range events {
		assert.Equal(t, testWindow, ev.Window)
	}
	assert.True(t, events[0].Press)
	assert.True(t, events[1].Press)
	assert.False(t, events[2].Press)
	assert.False(t, events[3].Press)
}

func TestKeyPress_ExplicitWindowCarriesModifierState(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	require.NoError(t, e.KeyPress(ctx, "shift+a", platform.WindowByID(testWindow), 0))

	events := b.EventsOf(fake.KeyEvent)
	require.Len(t, events, 4)
	assert.Zero(t, events[0].State, "shift press")
	assert.Equal(t, fake.ShiftMask, events[1].State, "a press")
	assert.Equal(t, fake.ShiftMask, events[2].State, "shift release")
	assert.Zero(t, events[3].State, "a release")
}

func TestKeyDown_ParseErrorsSendNothing(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	for _, seq := range []string{"", "ctrl++a", "ctrl+Bogus"} {
		err := e.KeyDown(ctx, seq, platform.CurrentWindow(), 0)
		assert.ErrorIs(t, err, ErrParse, seq)
		assert.Equal(t, StatusParse, StatusOf(err))
	}
	assert.Empty(t, b.Events())
}

func TestKeyDown_UnknownWindowIsTargetNotFound(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	err := e.KeyDown(ctx, "a", platform.WindowByID(999), 0)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Empty(t, b.Events())
}

func TestKeyDown_TransportLossIsNotRolledBack(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.FailAfter(2)

	err := e.KeyDown(ctx, "ctrl+alt+t", platform.CurrentWindow(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDispatch)
	assert.True(t, Indeterminate(err))

	events := b.Events()
	require.Len(t, events, 2)
	assert.True(t, events[0].Press)
	assert.True(t, events[1].Press)
}

func TestKeyPress_DelayBetweenEvents(t *testing.T) {
	ctx := logger.NopContext()
	e, _ := newTestEngine(t)

	start := time.Now()
	require.NoError(t, e.KeyPress(ctx, "ctrl+a", platform.CurrentWindow(), 5*time.Millisecond))
	// four events, three gaps
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestConcurrentKeySequencesDoNotInterleave(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	var wg sync.WaitGroup
	for _, seq := range []string{"shift+a", "ctrl+b"} {
		wg.Add(1)
		go func(seq string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, e.KeyDown(ctx, seq, platform.CurrentWindow(), 0))
				assert.NoError(t, e.KeyUp(ctx, seq, platform.CurrentWindow(), 0))
			}
		}(seq)
	}
	wg.Wait()

	events := b.Events()
	require.Len(t, events, 2*50*4)
	// every sequence is written as a contiguous pair of events
	for i := 0; i < len(events); i += 2 {
		assert.Equal(t, events[i].Press, events[i+1].Press, "event %d", i)
	}
	held := map[platform.Keycode]bool{}
	for _, ev := range events {
		if ev.Press {
			assert.False(t, held[ev.Code], "key %d pressed twice", ev.Code)
		} else {
			assert.True(t, held[ev.Code], "key %d released before press", ev.Code)
		}
		held[ev.Code] = ev.Press
	}
}

func TestMouseButtons(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	require.NoError(t, e.MouseDown(ctx, 1, platform.CurrentWindow()))
	require.NoError(t, e.MouseUp(ctx, 1, platform.CurrentWindow()))
	require.NoError(t, e.Click(ctx, 3, platform.WindowByID(testWindow)))

	events := b.EventsOf(fake.ButtonEvent)
	require.Len(t, events, 4)
	assert.Equal(t, platform.Button(1), events[0].Button)
	assert.True(t, events[0].Press)
	assert.False(t, events[1].Press)
	assert.Equal(t, testWindow, events[2].Window)
	assert.True(t, events[2].Press)
	assert.False(t, events[3].Press)
	assert.Empty(t, b.EventsOf(fake.WarpEvent), "buttons never move the pointer")
}

func TestMouseButtons_InvalidButton(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	for _, button := range []int{0, -1, 8, 255} {
		err := e.MouseDown(ctx, button, platform.CurrentWindow())
		assert.ErrorIs(t, err, ErrInvalidButton)
		assert.Equal(t, StatusInvalidButton, StatusOf(err))
	}
	assert.Empty(t, b.Events())
}

func TestMoveMouseRelative_RoundTrip(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.SetPointer(platform.Point{X: 500, Y: 400})

	c, err := e.MoveMouseRelative(ctx, 37, -12)
	waitOK(t, c, err)
	p, _, err := e.PointerLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 537, Y: 388}, p)

	c, err = e.MoveMouseRelative(ctx, -37, 12)
	waitOK(t, c, err)
	p, _, err = e.PointerLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 500, Y: 400}, p)
}

func TestMoveMouseRelative_ClampsAtScreenEdge(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.SetPointer(platform.Point{X: 10, Y: 10})

	c, err := e.MoveMouseRelative(ctx, -50, 0)
	waitOK(t, c, err)
	p, _, err := e.PointerLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 0, Y: 10}, p)
}

func TestMoveMouseRelativeToWindow(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	c, err := e.MoveMouseRelativeToWindow(ctx, 5, 7, platform.WindowByID(testWindow))
	waitOK(t, c, err)
	p, _, _ := e.PointerLocation(ctx)
	assert.Equal(t, platform.Point{X: 105, Y: 57}, p)

	_, err = e.MoveMouseRelativeToWindow(ctx, 5, 7, platform.WindowByID(1234))
	assert.ErrorIs(t, err, ErrTargetNotFound)

	// current window is the focused one
	b.SetFocus(testWindow)
	c, err = e.MoveMouseRelativeToWindow(ctx, 1, 1, platform.CurrentWindow())
	waitOK(t, c, err)
	p, _, _ = e.PointerLocation(ctx)
	assert.Equal(t, platform.Point{X: 101, Y: 51}, p)

	// nothing focused: relative to root
	b.SetFocus(0)
	c, err = e.MoveMouseRelativeToWindow(ctx, 3, 4, platform.CurrentWindow())
	waitOK(t, c, err)
	p, _, _ = e.PointerLocation(ctx)
	assert.Equal(t, platform.Point{X: 3, Y: 4}, p)
}

func TestMoveMouse_Screens(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.AddScreen(platform.Screen{ID: 1, Root: 2, Width: 1280, Height: 1024})

	c, err := e.MoveMouse(ctx, 640, 480, platform.CurrentScreen())
	waitOK(t, c, err)
	p, screen, _ := e.PointerLocation(ctx)
	assert.Equal(t, platform.Point{X: 640, Y: 480}, p)
	assert.Equal(t, 0, screen)

	c, err = e.MoveMouse(ctx, 10, 20, platform.ScreenByID(1))
	waitOK(t, c, err)
	p, screen, _ = e.PointerLocation(ctx)
	assert.Equal(t, platform.Point{X: 10, Y: 20}, p)
	assert.Equal(t, 1, screen)

	_, err = e.MoveMouse(ctx, 1, 1, platform.ScreenByID(7))
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestMoveMouse_NoMotionResolvesWithoutWaiting(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	e.SetOptions(Options{WaitTimeout: time.Hour, PollInterval: time.Millisecond})
	b.SetPointer(platform.Point{X: 3, Y: 3})

	c, err := e.MoveMouse(ctx, 3, 3, platform.CurrentScreen())
	waitOK(t, c, err)
	c, err = e.MoveMouseRelative(ctx, 0, 0)
	waitOK(t, c, err)
}

func TestFocus_ThenFocusedWindow(t *testing.T) {
	ctx := logger.NopContext()
	e, _ := newTestEngine(t)

	c, err := e.Focus(ctx, platform.WindowByID(testWindow))
	waitOK(t, c, err)

	w, ok, err := e.FocusedWindow(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testWindow, w)
}

func TestActivate_WaitsForLaggingWindowManager(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.LagActive(3)

	c, err := e.Activate(ctx, platform.WindowByID(testWindow))
	waitOK(t, c, err)

	w, ok, err := e.ActiveWindow(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testWindow, w)
}

func TestActivate_SwitchesDesktop(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.AddWindow(777, fake.Window{Desktop: 2})

	c, err := e.Activate(ctx, platform.WindowByID(777))
	waitOK(t, c, err)

	events := b.Events()
	require.Len(t, events, 2)
	assert.Equal(t, fake.DesktopEvent, events[0].Kind)
	assert.Equal(t, fake.ActivateEvent, events[1].Kind)
	d, ok, err := e.CurrentDesktop(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, d)
}

func TestWindowCommands_CurrentWindowFailsWithStatus(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	cmds := map[string]func(context.Context, platform.WindowRef) (*Completion, error){
		"focus":    e.Focus,
		"activate": e.Activate,
		"raise":    e.Raise,
		"close":    e.Close,
		"kill":     e.Kill,
	}
	for name, cmd := range cmds {
		c, err := cmd(ctx, platform.CurrentWindow())
		require.NoError(t, err, name)
		status, err := c.Wait(ctx)
		assert.Equal(t, StatusFailure, status, name)
		assert.ErrorIs(t, err, ErrNoTarget, name)
	}
	assert.Empty(t, b.Events())
}

func TestClose_NonExistentWindow(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	c, err := e.Close(ctx, platform.WindowByID(4040))
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, StatusTargetNotFound, StatusOf(err))
	assert.Empty(t, b.Events())
}

func TestClose_DoesNotEscalateToKill(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.AddWindow(55, fake.Window{IgnoreClose: true})

	c, err := e.Close(ctx, platform.WindowByID(55))
	waitOK(t, c, err)

	assert.True(t, b.HasWindow(55))
	assert.Empty(t, b.EventsOf(fake.KillEvent))
}

func TestShutdown_ClosesConnectionNotWindows(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	c, err := e.Close(ctx, platform.WindowByID(testWindow))
	waitOK(t, c, err)
	assert.True(t, e.IsAlive())
	assert.False(t, b.HasWindow(testWindow))

	e.Shutdown()
	assert.False(t, e.IsAlive())
	assert.Equal(t, StatusDispatch, StatusOf(e.KeyPress(ctx, "a", platform.CurrentWindow(), 0)))
}

func TestRaiseAndKill(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)

	c, err := e.Raise(ctx, platform.WindowByID(testWindow))
	waitOK(t, c, err)
	c, err = e.Kill(ctx, platform.WindowByID(testWindow))
	waitOK(t, c, err)

	assert.Len(t, b.EventsOf(fake.RaiseEvent), 1)
	assert.Len(t, b.EventsOf(fake.KillEvent), 1)
	assert.False(t, b.HasWindow(testWindow))
}

func TestReparent(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.AddWindow(2000, fake.Window{})

	require.NoError(t, e.Reparent(ctx, platform.WindowByID(testWindow), platform.WindowByID(2000)))
	st, _ := b.WindowState(testWindow)
	assert.Equal(t, platform.WindowID(2000), st.Parent)

	err := e.Reparent(ctx, platform.CurrentWindow(), platform.WindowByID(2000))
	assert.ErrorIs(t, err, ErrNoTarget)
	err = e.Reparent(ctx, platform.WindowByID(testWindow), platform.WindowByID(3))
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Len(t, b.EventsOf(fake.ReparentEvent), 1)
}

func TestPID(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.AddWindow(88, fake.Window{})

	pid, ok, err := e.PID(ctx, platform.WindowByID(testWindow))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4242, pid)

	_, ok, err = e.PID(ctx, platform.WindowByID(88))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = e.PID(ctx, platform.WindowByID(1))
	assert.NoError(t, err, "root window exists but has no pid")
}

func TestDirectory_EmptyResultsAreNotErrors(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.SetPointer(platform.Point{X: 1500, Y: 900})

	_, ok, err := e.FocusedWindow(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	b.SetFocus(1) // PointerRoot / root
	_, ok, err = e.FocusedWindow(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.ActiveWindow(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = e.WindowAtPointer(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectory_Queries(t *testing.T) {
	ctx := logger.NopContext()
	e, b := newTestEngine(t)
	b.SetPointer(platform.Point{X: 150, Y: 60})
	b.SetActive(testWindow)

	w, ok, err := e.WindowAtPointer(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testWindow, w)

	w, ok, err = e.ActiveWindow(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testWindow, w)

	name, ok, err := e.WindowName(ctx, e.Resolve(testWindow))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "editor", name)

	assert.Equal(t, 0, e.CurrentScreen().ID)
	require.Len(t, e.Screens(), 1)

	monitors, err := e.Monitors(ctx)
	require.NoError(t, err)
	require.Len(t, monitors, 1)
	assert.Equal(t, "eDP-1", monitors[0].Name)
}

func TestAbsentWindowNeverTargetNotFound(t *testing.T) {
	ctx := logger.NopContext()
	e, _ := newTestEngine(t)
	cur := platform.CurrentWindow()

	checks := []error{
		e.KeyPress(ctx, "a", cur, 0),
		e.MouseDown(ctx, 1, cur),
		e.MouseUp(ctx, 1, cur),
		e.Click(ctx, 1, cur),
		e.Reparent(ctx, cur, cur),
	}
	_, err := e.MoveMouseRelativeToWindow(ctx, 1, 1, cur)
	checks = append(checks, err)
	_, _, err = e.PID(ctx, cur)
	checks = append(checks, err)
	for _, c := range []func(context.Context, platform.WindowRef) (*Completion, error){e.Focus, e.Activate, e.Raise, e.Close, e.Kill} {
		comp, err := c(ctx, cur)
		checks = append(checks, err, comp.Err())
	}

	for i, err := range checks {
		assert.False(t, errors.Is(err, ErrTargetNotFound), "check %d: %v", i, err)
	}
}

func TestOperationsAreLogged(t *testing.T) {
	ctx, logs := logger.TestContext()
	e, _ := newTestEngine(t)

	require.NoError(t, e.KeyPress(ctx, "a", platform.CurrentWindow(), 0))
	_ = e.MouseDown(ctx, 99, platform.CurrentWindow())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "key press", entries[0].ContextMap()["op"])
	assert.Equal(t, ":0", entries[0].ContextMap()["display"])
	assert.Equal(t, "invalid_button", entries[1].ContextMap()["status"])
}
