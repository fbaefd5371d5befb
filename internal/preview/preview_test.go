package preview

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
)

func newTestPanel(t *testing.T) (*Panel, tcell.SimulationScreen, layout.ButtonLayout) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	l := layout.Build(layout.DefaultButtons(), layout.Document{})
	p, err := NewPanel(screen, l, Config{Preset: "showroom_default", AttractTimeout: time.Minute})
	require.NoError(t, err)
	t.Cleanup(p.Stop)
	return p, screen, l
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestLayoutRows(t *testing.T) {
	l := layout.Build(layout.DefaultButtons(), layout.Document{})
	rows := layoutRows(l)

	labels := make([]string, 0, len(rows))
	seen := 0
	for _, r := range rows {
		labels = append(labels, r.label)
		seen += len(r.buttons)
	}
	assert.Equal(t, layout.GroupOrder, labels)
	assert.Equal(t, len(l.Buttons), seen)

	custom := layout.Build([]string{"P1_A", "COIN"}, layout.Document{})
	rows = layoutRows(custom)
	require.Len(t, rows, 2)
	assert.Equal(t, otherRow, rows[1].label)
	assert.Equal(t, []int{1}, rows[1].buttons)
}

func TestKeysBecomePresses(t *testing.T) {
	p, _, _ := newTestPanel(t)

	assert.True(t, p.handleEvent(key('a')))
	assert.True(t, p.handleEvent(key('a')))
	assert.True(t, p.handleEvent(key('2')))
	assert.True(t, p.handleEvent(key('z')))

	ev := p.Poll()
	assert.Equal(t, []string{"P1_A", "P2_START"}, ev.Pressed)
	assert.Equal(t, []string{"P1_A", "P2_START"}, ev.Held)
	assert.Empty(t, ev.Released)
	assert.True(t, ev.InMenu)
	assert.False(t, ev.InGame)

	ev = p.Poll()
	assert.Empty(t, ev.Pressed)
	assert.Equal(t, []string{"P1_A", "P2_START"}, ev.Released)

	ev = p.Poll()
	assert.Empty(t, ev.Released)
}

func TestToggles(t *testing.T) {
	p, _, _ := newTestPanel(t)

	p.handleEvent(key('5'))
	p.handleEvent(key('g'))
	ev := p.Poll()
	assert.True(t, ev.HasCredits)
	assert.True(t, ev.InGame)
	assert.False(t, ev.InMenu)
	assert.Empty(t, ev.Pressed)

	p.handleEvent(key('g'))
	assert.True(t, p.Poll().InMenu)
}

func TestQuitKeys(t *testing.T) {
	p, _, _ := newTestPanel(t)
	assert.False(t, p.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, p.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
}

func TestStartQuitsOnEscape(t *testing.T) {
	p, screen, _ := newTestPanel(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Start(context.Background())
	}()

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("panel did not quit")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return")
	}
}

func TestSetFrameDrawsButtons(t *testing.T) {
	p, screen, l := newTestPanel(t)
	assert.Equal(t, len(l.Buttons), p.LightCount())

	frame := make([]fx.RGB, len(l.Buttons))
	frame[0] = fx.RGB{R: 255, G: 255, B: 255}
	p.SetFrame(context.Background(), frame)

	// P1_A is the first cell of the first row.
	mainc, _, style, _ := screen.GetContent(labelWidth+1, 0)
	assert.Equal(t, 'P', mainc)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), bg)
	assert.Equal(t, tcell.ColorBlack, fg)

	mainc, _, style, _ = screen.GetContent(labelWidth+cellWidth+1, 0)
	assert.Equal(t, 'P', mainc)
	fg, bg, _ = style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), bg)
	assert.Equal(t, tcell.ColorWhite, fg)

	mainc, _, _, _ = screen.GetContent(0, 0)
	assert.Equal(t, 'P', mainc)
}
