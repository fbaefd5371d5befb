package fx

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

const DefaultSeed uint64 = 1337

// Config carries the resolved layout handed to effects.
type Config struct {
	Groups    map[string][]string
	Adjacency map[string][]string
}

// Context is shared by every effect of an engine. Effects must not modify it.
type Context struct {
	Buttons []string
	Index   map[string]int
	Seed    uint64
	Rand    *rand.Rand
	// Clock returns monotonic milliseconds.
	Clock  func() float64
	Config Config
}

type ContextOption func(*Context)

func WithSeed(seed uint64) ContextOption {
	return func(c *Context) {
		c.Seed = seed
	}
}

func WithClock(clock func() float64) ContextOption {
	return func(c *Context) {
		c.Clock = clock
	}
}

func WithConfig(cfg Config) ContextOption {
	return func(c *Context) {
		c.Config = cfg
	}
}

// NewContext builds the context for an ordered list of unique buttons.
func NewContext(buttons []string, opts ...ContextOption) (*Context, error) {
	index := make(map[string]int, len(buttons))
	for i, b := range buttons {
		if _, dup := index[b]; dup {
			return nil, fmt.Errorf("duplicate button %q", b)
		}
		index[b] = i
	}

	start := time.Now()
	c := &Context{
		Buttons: slices.Clone(buttons),
		Index:   index,
		Seed:    DefaultSeed,
		Clock: func() float64 {
			return float64(time.Since(start).Microseconds()) / 1000
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Rand = rand.New(rand.NewPCG(c.Seed, c.Seed))
	return c, nil
}

func (c *Context) ButtonCount() int {
	return len(c.Buttons)
}

// Group returns the indexes of the buttons of a layout group, skipping
// identifiers that are not on the panel.
func (c *Context) Group(name string) []int {
	var out []int
	for _, b := range c.Config.Groups[name] {
		if i, ok := c.Index[b]; ok {
			out = append(out, i)
		}
	}
	return out
}
