// Package layout resolves the logical button groups of a control panel and
// the undirected adjacency graph used for spatial propagation.
package layout

import (
	"slices"

	"github.com/scheerer/arcade-button-fx/internal/logging"
)

var logger = logging.New("layout")

const (
	P1Action   = "P1_Action"
	P1Shoulder = "P1_Shoulder"
	P1System   = "P1_System"
	P2Action   = "P2_Action"
	P2Shoulder = "P2_Shoulder"
	P2System   = "P2_System"
)

// GroupOrder is the fixed sequence of logical groups, player 1 first.
var GroupOrder = []string{P1Action, P1Shoulder, P1System, P2Action, P2Shoulder, P2System}

// PlayerGroups lists the groups owned by each player.
var PlayerGroups = map[int][]string{
	1: {P1Action, P1Shoulder, P1System},
	2: {P2Action, P2Shoulder, P2System},
}

type groupSpec struct {
	name     string
	defaults []string
	limit    int // 0 means uncapped
}

var groupSpecs = []groupSpec{
	{P1Action, []string{"P1_A", "P1_B", "P1_X", "P1_Y", "P1_C", "P1_Z"}, 4},
	{P1Shoulder, []string{"P1_L1", "P1_R1", "P1_L2", "P1_R2", "P1_C", "P1_Z"}, 4},
	{P1System, []string{"P1_START", "MENU", "REWIND"}, 0},
	{P2Action, []string{"P2_A", "P2_B", "P2_X", "P2_Y", "P2_C", "P2_Z"}, 4},
	{P2Shoulder, []string{"P2_L1", "P2_R1", "P2_L2", "P2_R2", "P2_C", "P2_Z"}, 4},
	{P2System, []string{"P2_START", "MENU", "REWIND", "TRACKBALL"}, 0},
}

// ButtonLayout is the resolved layout of a panel. Adjacency is symmetric and
// has an entry (possibly empty) for every button.
type ButtonLayout struct {
	Buttons   []string
	Groups    map[string][]string
	Adjacency map[string][]string
}

// DefaultButtons is the reference 17-button panel.
func DefaultButtons() []string {
	return []string{
		"P1_A", "P1_B", "P1_X", "P1_Y", "P1_C", "P1_Z",
		"REWIND", "P1_START", "MENU",
		"P2_A", "P2_B", "P2_X", "P2_Y", "P2_C", "P2_Z",
		"P2_START", "TRACKBALL",
	}
}

// BuildFromFile reads the layout document at path and builds the layout.
// A missing or broken document yields the built-in defaults.
func BuildFromFile(buttons []string, path string) ButtonLayout {
	return Build(buttons, LoadDocument(path))
}

// Build resolves groups and adjacency for buttons, preferring entries of doc.
func Build(buttons []string, doc Document) ButtonLayout {
	present := make(map[string]bool, len(buttons))
	for _, b := range buttons {
		present[b] = true
	}

	groups := make(map[string][]string, len(groupSpecs))
	for _, spec := range groupSpecs {
		groups[spec.name] = resolveGroup(doc.Groups[spec.name], present, spec.defaults, spec.limit)
	}

	adjacency := defaultAdjacency(groups)
	applyAdjacencyOverrides(adjacency, doc.Adjacency, present)
	for _, b := range buttons {
		if _, ok := adjacency[b]; !ok {
			adjacency[b] = map[string]bool{}
		}
	}

	l := ButtonLayout{
		Buttons:   slices.Clone(buttons),
		Groups:    groups,
		Adjacency: sortedAdjacency(adjacency),
	}
	logger.Debugw("Built button layout", "buttons", len(buttons), "groups", groups)
	return l
}

// PlayerOf returns 1 or 2 for buttons in that player's groups, 0 otherwise.
// Buttons shared by both players resolve to player 1.
func PlayerOf(groups map[string][]string, button string) int {
	for _, player := range []int{1, 2} {
		for _, g := range PlayerGroups[player] {
			if slices.Contains(groups[g], button) {
				return player
			}
		}
	}
	return 0
}

func resolveGroup(configured []string, present map[string]bool, defaults []string, limit int) []string {
	chosen := pickPresent(configured, present)
	if len(chosen) == 0 {
		chosen = pickPresent(defaults, present)
	}
	if limit > 0 && len(chosen) > limit {
		chosen = chosen[:limit]
	}
	return chosen
}

func pickPresent(names []string, present map[string]bool) []string {
	chosen := []string{}
	for _, n := range names {
		if present[n] && !slices.Contains(chosen, n) {
			chosen = append(chosen, n)
		}
	}
	return chosen
}

type graph map[string]map[string]bool

func (g graph) link(a, b string) {
	if a == b {
		return
	}
	if g[a] == nil {
		g[a] = map[string]bool{}
	}
	if g[b] == nil {
		g[b] = map[string]bool{}
	}
	g[a][b] = true
	g[b][a] = true
}

func defaultAdjacency(groups map[string][]string) graph {
	g := graph{}
	for _, names := range groups {
		for _, n := range names {
			if g[n] == nil {
				g[n] = map[string]bool{}
			}
		}
	}

	linkAction(g, groups[P1Action])
	linkAction(g, groups[P2Action])
	for _, name := range []string{P1Shoulder, P2Shoulder, P1System, P2System} {
		linkChain(g, groups[name])
	}

	linkFirst(g, groups[P1System], groups[P1Action])
	linkFirst(g, groups[P1System], groups[P1Shoulder])
	linkFirst(g, groups[P2System], groups[P2Action])
	linkFirst(g, groups[P2System], groups[P2Shoulder])
	linkFirst(g, groups[P1System], groups[P2System])
	return g
}

// linkAction wires the first four buttons as a fully connected diamond and
// chains the rest.
func linkAction(g graph, names []string) {
	if len(names) < 4 {
		linkChain(g, names)
		return
	}
	a, b, x, y := names[0], names[1], names[2], names[3]
	for _, pair := range [][2]string{{a, b}, {a, x}, {b, y}, {x, y}, {a, y}, {b, x}} {
		g.link(pair[0], pair[1])
	}
	for i := 4; i < len(names); i++ {
		g.link(names[i-1], names[i])
	}
}

func linkChain(g graph, names []string) {
	for i := 0; i+1 < len(names); i++ {
		g.link(names[i], names[i+1])
	}
}

// linkFirst only connects the heads of both groups.
func linkFirst(g graph, left, right []string) {
	if len(left) > 0 && len(right) > 0 {
		g.link(left[0], right[0])
	}
}

// applyAdjacencyOverrides unions configured neighbours into the defaults.
// link keeps the graph symmetric.
func applyAdjacencyOverrides(g graph, overrides map[string][]string, present map[string]bool) {
	for src, dsts := range overrides {
		if !present[src] {
			continue
		}
		if g[src] == nil {
			g[src] = map[string]bool{}
		}
		for _, dst := range dsts {
			if present[dst] {
				g.link(src, dst)
			}
		}
	}
}

func sortedAdjacency(g graph) map[string][]string {
	out := make(map[string][]string, len(g))
	for src, dsts := range g {
		list := make([]string, 0, len(dsts))
		for dst := range dsts {
			list = append(list, dst)
		}
		slices.Sort(list)
		out[src] = list
	}
	return out
}
