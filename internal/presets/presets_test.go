package presets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/arcade-button-fx/internal/fx"
	"github.com/scheerer/arcade-button-fx/internal/layout"
)

func newEngine(t *testing.T, id string) (*fx.Engine, *fx.Context) {
	t.Helper()
	l := layout.Build(layout.DefaultButtons(), layout.Document{})
	ctx, err := fx.NewContext(l.Buttons, fx.WithConfig(fx.Config{Groups: l.Groups, Adjacency: l.Adjacency}))
	require.NoError(t, err)
	list, err := Build(id)
	require.NoError(t, err)
	return fx.NewEngine(ctx, fx.NewMixer(ctx.ButtonCount()), list...), ctx
}

func TestCatalog(t *testing.T) {
	ids := make([]string, 0)
	for _, p := range All() {
		ids = append(ids, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Description)
	}
	assert.Equal(t, []string{
		"showroom_default", "classic_static", "neon_minimal", "party_mode", "tease", "tease_independent",
	}, ids)
	assert.Len(t, Map(), len(ids))

	_, ok := Lookup(DefaultID)
	assert.True(t, ok)
	_, ok = Lookup("disco")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	list := All()
	list[0].ID = "changed"
	assert.Equal(t, DefaultID, All()[0].ID)
}

func TestBuildUnknown(t *testing.T) {
	list, err := Build("disco")
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Nil(t, list)
}

func TestBuildReturnsFreshEffects(t *testing.T) {
	for _, p := range All() {
		t.Run(p.ID, func(t *testing.T) {
			a, err := Build(p.ID)
			require.NoError(t, err)
			b, err := Build(p.ID)
			require.NoError(t, err)
			require.NotEmpty(t, a)
			require.Len(t, b, len(a))
			for i := range a {
				assert.NotSame(t, a[i], b[i])
			}
		})
	}
}

func TestPresetEffectCounts(t *testing.T) {
	counts := map[string]int{
		"showroom_default":  6,
		"classic_static":    1,
		"neon_minimal":      2,
		"party_mode":        4,
		"tease":             1,
		"tease_independent": 1,
	}
	for id, n := range counts {
		list, err := Build(id)
		require.NoError(t, err)
		assert.Len(t, list, n, id)
	}
}

func TestClassicStaticIsSteady(t *testing.T) {
	e, ctx := newEngine(t, "classic_static")
	for _, now := range []float64{0, 1234, 9999, 40000} {
		frame := e.Tick(fx.IdleInput(), now, false)
		for i, c := range frame {
			assert.Equal(t, fx.RGB{R: 33, G: 33, B: 33}, c, "%s at %v", ctx.Buttons[i], now)
		}
	}
}

func TestShowroomBlinksStart(t *testing.T) {
	e, ctx := newEngine(t, "showroom_default")
	start := ctx.Index["P1_START"]

	frame := e.Tick(fx.IdleInput(), 0, false)
	assert.Equal(t, uint8(255), frame[start].R)

	frame = e.Tick(fx.IdleInput(), 600, false)
	assert.Less(t, frame[start].R, uint8(255))

	credited := fx.IdleInput()
	credited.HasCredits = true
	frame = e.Tick(credited, 1200, false)
	assert.Less(t, frame[start].R, uint8(255))
}

func TestPresetsAreDeterministic(t *testing.T) {
	for _, p := range All() {
		t.Run(p.ID, func(t *testing.T) {
			a, _ := newEngine(t, p.ID)
			b, _ := newEngine(t, p.ID)
			buttons := layout.DefaultButtons()
			for step := 0; step < 200; step++ {
				now := float64(step * 16)
				in := fx.IdleInput()
				in.IdleMs = float64(step%60) * 1000
				if step%7 == 0 {
					in.Pressed = fx.NewButtonSet(buttons[step%len(buttons)])
					in.IdleMs = 0
				}
				attract := in.IdleMs >= 30000
				require.Equal(t, a.Tick(in, now, attract), b.Tick(in, now, attract), "step %d", step)
			}
		})
	}
}
