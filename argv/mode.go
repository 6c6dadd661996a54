package argv

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
)

// Mode is a resolved parsing context. Modes are created by [New] and are
// immutable afterward.
type Mode struct {
	id       string
	title    string
	parents  []string
	abstract bool
	extends  map[string]struct{}
}

// ID returns the mode's unique identifier.
func (m *Mode) ID() string { return m.id }

// Title returns the display name of the mode.
func (m *Mode) Title() string { return m.title }

// Parents returns the ids of the modes m directly extends.
func (m *Mode) Parents() []string { return slices.Clone(m.parents) }

// Abstract reports whether m is excluded from activation lists.
func (m *Mode) Abstract() bool { return m.abstract }

// Extends reports whether id is in m's extension closure. Every mode
// extends itself.
func (m *Mode) Extends(id string) bool {
	_, ok := m.extends[id]

	return ok
}

// ExtendedModes returns the sorted ids of m's extension closure, including
// m itself.
func (m *Mode) ExtendedModes() []string {
	ids := make([]string, 0, len(m.extends))
	for id := range m.extends {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// IsAncestorOf reports whether other strictly extends m.
func (m *Mode) IsAncestorOf(other *Mode) bool {
	return other != nil && other != m && other.Extends(m.id)
}

// IsDescendantOf reports whether m strictly extends other.
func (m *Mode) IsDescendantOf(other *Mode) bool {
	return other != nil && other != m && m.Extends(other.id)
}

// String returns the mode's title.
func (m *Mode) String() string { return m.title }

// modeGraph is the registry of modes and their extension relationships.
type modeGraph struct {
	modes  []*Mode
	byID   map[string]*Mode
	report *reporter
}

func newModeGraph(r *reporter) *modeGraph {
	return &modeGraph{
		byID:   make(map[string]*Mode),
		report: r,
	}
}

// register adds d to the graph. A duplicate id is a soft condition; the first
// registration wins.
func (g *modeGraph) register(d ModeDecl) error {
	if _, ok := g.byID[d.ID]; ok {
		return g.report.soft(ModeDuplicated,
			"mode "+d.ID+" declared more than once",
			slog.String("mode", d.ID),
		)
	}

	title := d.Title
	if title == "" {
		title = d.ID
	}

	g.add(&Mode{
		id:       d.ID,
		title:    title,
		parents:  slices.Clone(d.Parents),
		abstract: d.Abstract,
	})

	return nil
}

func (g *modeGraph) add(m *Mode) {
	g.modes = append(g.modes, m)
	g.byID[m.id] = m
}

// mode returns the mode registered with id, or nil.
func (g *modeGraph) mode(id string) *Mode { return g.byID[id] }

// require returns the mode registered with id. A missing id is a soft
// condition; when tolerated a placeholder mode extending nothing is
// synthesized.
func (g *modeGraph) require(id, referrer string) (*Mode, error) {
	if m, ok := g.byID[id]; ok {
		return m, nil
	}

	err := g.report.soft(ModeUndefined,
		"mode "+id+" referenced by "+referrer+" is not declared",
		slog.String("mode", id),
		slog.String("referrer", referrer),
	)
	if err != nil {
		return nil, err
	}

	m := &Mode{id: id, title: id}
	g.add(m)

	return m, nil
}

// resolve computes the extension closure of every mode. Parents must already
// be registered (see [modeGraph.requireParents]).
func (g *modeGraph) resolve() error {
	const (
		unvisited = iota
		visiting
		done
	)

	color := make(map[*Mode]int, len(g.modes))

	var path []*Mode

	var visit func(m *Mode) error
	visit = func(m *Mode) error {
		switch color[m] {
		case done:
			return nil
		case visiting:
			return cycleError(ErrModeCycle, path, m, (*Mode).ID)
		}

		color[m] = visiting
		path = append(path, m)

		m.extends = map[string]struct{}{m.id: {}}

		for _, pid := range m.parents {
			p := g.byID[pid]
			if err := visit(p); err != nil {
				return err
			}

			for id := range p.extends {
				m.extends[id] = struct{}{}
			}
		}

		path = path[:len(path)-1]
		color[m] = done

		return nil
	}

	for _, m := range g.modes {
		if err := visit(m); err != nil {
			return err
		}
	}

	return nil
}

// requireParents ensures every parent id names a registered mode.
func (g *modeGraph) requireParents() error {
	// Placeholders appended by require have no parents, so ranging over the
	// growing slice by index terminates.
	for i := 0; i < len(g.modes); i++ {
		m := g.modes[i]
		for _, pid := range m.parents {
			if _, err := g.require(pid, "mode "+m.id); err != nil {
				return err
			}
		}
	}

	return nil
}

// cycleError reports the chain from the first occurrence of repeat in path
// back to repeat itself, e.g. "a -> b -> c -> a".
func cycleError[T comparable](
	kind *Error,
	path []T,
	repeat T,
	name func(T) string,
) *Error {
	start := slices.Index(path, repeat)
	if start < 0 {
		start = 0
	}

	chain := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		chain = append(chain, name(n))
	}

	chain = append(chain, name(repeat))
	text := strings.Join(chain, " -> ")

	return kind.Wrap(errors.New(text)).With(slog.String("cycle", text))
}
