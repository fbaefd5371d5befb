// Package preview draws the panel in a terminal and turns keystrokes into
// button presses, so presets can be tried without cabinet hardware.
package preview

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/scheerer/arcade-button-fx/arcade"
	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
	"github.com/scheerer/arcade-button-fx/internal/logging"
)

var logger = logging.New("preview")

const (
	cellWidth  = 11
	labelWidth = 12
	otherRow   = "Other"
)

// DefaultKeyMap binds the home-row keys to both players' controls.
var DefaultKeyMap = map[rune]string{
	'a': "P1_A", 's': "P1_B", 'd': "P1_C",
	'q': "P1_X", 'w': "P1_Y", 'e': "P1_Z",
	'1': "P1_START",
	'j': "P2_A", 'k': "P2_B", 'l': "P2_C",
	'u': "P2_X", 'i': "P2_Y", 'o': "P2_Z",
	'2': "P2_START",
	'm': "MENU",
	'r': "REWIND",
	't': "TRACKBALL",
}

type Config struct {
	Preset         string
	AttractTimeout time.Duration
	KeyMap         map[rune]string
}

type row struct {
	label   string
	buttons []int
}

// Panel is both a light service and an input source. Terminals report key
// presses only, so a pressed button is held for the poll that reports it and
// released on the next one.
type Panel struct {
	screen  tcell.Screen
	config  Config
	buttons []string
	rows    []row

	mu         sync.Mutex
	frame      []fx.RGB
	pending    []string
	held       []string
	inGame     bool
	hasCredits bool
	lastPress  time.Time

	quitOnce sync.Once
	quit     chan struct{}
	stopOnce sync.Once
}

func NewPanel(screen tcell.Screen, l layout.ButtonLayout, config Config) (*Panel, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	if config.KeyMap == nil {
		config.KeyMap = DefaultKeyMap
	}

	return &Panel{
		screen:    screen,
		config:    config,
		buttons:   slices.Clone(l.Buttons),
		rows:      layoutRows(l),
		frame:     make([]fx.RGB, len(l.Buttons)),
		lastPress: time.Now(),
		quit:      make(chan struct{}),
	}, nil
}

// layoutRows puts each layout group on its own row in display order, with
// ungrouped buttons last.
func layoutRows(l layout.ButtonLayout) []row {
	index := make(map[string]int, len(l.Buttons))
	for i, b := range l.Buttons {
		index[b] = i
	}

	var rows []row
	placed := make(map[int]bool, len(l.Buttons))
	for _, group := range layout.GroupOrder {
		var members []int
		for _, name := range l.Groups[group] {
			if i, ok := index[name]; ok && !placed[i] {
				members = append(members, i)
				placed[i] = true
			}
		}
		if len(members) > 0 {
			rows = append(rows, row{label: group, buttons: members})
		}
	}

	var rest []int
	for i := range l.Buttons {
		if !placed[i] {
			rest = append(rest, i)
		}
	}
	if len(rest) > 0 {
		rows = append(rows, row{label: otherRow, buttons: rest})
	}
	return rows
}

// Done is closed once the user asks to quit.
func (p *Panel) Done() <-chan struct{} {
	return p.quit
}

func (p *Panel) Start(ctx context.Context) {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	p.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.quit:
			return
		case ev := <-events:
			if !p.handleEvent(ev) {
				logger.Info("Quit requested from terminal")
				p.requestQuit()
			}
		}
	}
}

func (p *Panel) requestQuit() {
	p.quitOnce.Do(func() { close(p.quit) })
}

func (p *Panel) Stop() {
	p.requestQuit()
	p.stopOnce.Do(p.screen.Fini)
}

func (p *Panel) LightCount() int {
	return len(p.buttons)
}

func (p *Panel) SetFrame(_ context.Context, frame []fx.RGB) {
	p.mu.Lock()
	copy(p.frame, frame)
	p.mu.Unlock()
	p.draw()
}

// Poll reports keys pressed since the previous poll.
func (p *Panel) Poll() arcade.Events {
	p.mu.Lock()
	defer p.mu.Unlock()

	ev := arcade.Events{
		Pressed:    p.pending,
		Held:       p.pending,
		Released:   p.held,
		InGame:     p.inGame,
		InMenu:     !p.inGame,
		HasCredits: p.hasCredits,
	}
	p.held = p.pending
	p.pending = nil
	return ev
}

// handleEvent returns false when the panel should quit.
func (p *Panel) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			p.handleRune(ev.Rune())
		}
	case *tcell.EventResize:
		p.screen.Sync()
		p.draw()
	}
	return true
}

func (p *Panel) handleRune(r rune) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch r {
	case '5':
		p.hasCredits = !p.hasCredits
		logger.With(zap.Bool("hasCredits", p.hasCredits)).Debug("Toggled credits")
		return
	case 'g':
		p.inGame = !p.inGame
		logger.With(zap.Bool("inGame", p.inGame)).Debug("Toggled game state")
		return
	}

	button, ok := p.config.KeyMap[r]
	if !ok || !slices.Contains(p.buttons, button) {
		return
	}
	if !slices.Contains(p.pending, button) {
		p.pending = append(p.pending, button)
	}
	p.lastPress = time.Now()
}

func (p *Panel) draw() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.screen.Clear()
	y := 0
	for _, r := range p.rows {
		drawText(p.screen, 0, y, r.label, tcell.StyleDefault)
		for col, idx := range r.buttons {
			c := p.frame[idx]
			style := tcell.StyleDefault.
				Background(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))).
				Foreground(labelColor(c))
			drawText(p.screen, labelWidth+col*cellWidth, y, fmt.Sprintf(" %-*s", cellWidth-1, p.buttons[idx]), style)
		}
		y += 2
	}
	drawText(p.screen, 0, y, p.status(), tcell.StyleDefault.Foreground(tcell.ColorSilver))
	p.screen.Show()
}

func (p *Panel) status() string {
	mode := "menu"
	if p.inGame {
		mode = "in game"
	}
	credits := "no credits"
	if p.hasCredits {
		credits = "credits"
	}
	attract := ""
	if p.config.AttractTimeout > 0 && time.Since(p.lastPress) >= p.config.AttractTimeout {
		attract = " | attract"
	}
	return fmt.Sprintf("preset %s | %s | %s%s | 5 credits, g game, esc quit", p.config.Preset, mode, credits, attract)
}

// labelColor keeps labels readable on both dark and bright buttons.
func labelColor(c fx.RGB) tcell.Color {
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if luma > 140 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
