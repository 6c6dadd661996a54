package argv

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Sentinel slots of the placement arena. Real declarations occupy the slots
// following them.
const (
	firstHead = iota // FIRST anchor
	firstTail        // inner end of the FIRST chain
	lastHead         // inner end of the LAST chain
	lastTail         // LAST anchor
	sentinels
)

// placement is an index-linked list over a fixed arena of slots.
type placement struct {
	prev []int
	next []int
}

func newPlacement(n int) *placement {
	p := &placement{
		prev: make([]int, n+sentinels),
		next: make([]int, n+sentinels),
	}

	p.link(firstHead, firstTail)
	p.link(lastHead, lastTail)
	p.prev[firstHead], p.next[firstTail] = -1, -1
	p.prev[lastHead], p.next[lastTail] = -1, -1

	return p
}

func (p *placement) link(a, b int) {
	p.next[a] = b
	p.prev[b] = a
}

func (p *placement) insertAfter(ref, slot int) {
	p.link(slot, p.next[ref])
	p.link(ref, slot)
}

func (p *placement) insertBefore(ref, slot int) {
	p.link(p.prev[ref], slot)
	p.link(slot, ref)
}

// walk appends the declarations between from and to, exclusive.
func (p *placement) walk(out []int, from, to int) []int {
	for s := p.next[from]; s != to; s = p.next[s] {
		out = append(out, s-sentinels)
	}

	return out
}

// tie groups the arguments that share an anchor and a direction. Their
// relative order is decided by id, never by declaration order.
type tie struct {
	anchor string
	after  bool
}

// orderArguments resolves the placement directives of args into a total
// order and returns it as a permutation of indices into args. The result
// depends only on the set of declarations, not on their order in args.
//
// Arguments anchored to FIRST or LAST are placed first: FIRST with After hugs
// the FIRST anchor, FIRST without After goes to the inner end of the FIRST
// chain; LAST without After hugs the LAST anchor, LAST with After goes to the
// inner end of the LAST chain. Arguments anchored to another argument are
// then spliced next to their referent, resolving referents depth-first.
// Arguments of one tie group are spliced together and end up sorted by id.
func orderArguments(args []*Argument) ([]int, error) {
	index := make(map[string]int, len(args))

	for i, a := range args {
		id := a.Key()
		if id == ArgFirst || id == ArgLast {
			return nil, ErrReservedID.Wrap(fmt.Errorf("%q", id)).
				With(slog.String("argument", id))
		}

		if _, ok := index[id]; ok {
			return nil, ErrDuplicateArgument.Wrap(fmt.Errorf("%q", id)).
				With(slog.String("argument", id))
		}

		index[id] = i
	}

	byID := func(i, j int) int { return strings.Compare(args[i].Key(), args[j].Key()) }

	visit := make([]int, len(args))
	for i := range visit {
		visit[i] = i
	}

	slices.SortFunc(visit, byID)

	groups := make(map[tie][]int)

	for _, i := range visit {
		k := tie{args[i].anchor(), args[i].After}
		groups[k] = append(groups[k], i)
	}

	p := newPlacement(len(args))

	const (
		pending = iota
		resolving
		placed
	)

	state := make([]int, len(args))

	// place splices the whole group k next to slot ref. Hugging insertions
	// run in reverse so that the group reads in id order.
	place := func(k tie, ref int) {
		g := groups[k]

		if k.after {
			for _, i := range slices.Backward(g) {
				p.insertAfter(ref, i+sentinels)
				state[i] = placed
			}

			return
		}

		for _, i := range g {
			p.insertBefore(ref, i+sentinels)
			state[i] = placed
		}
	}

	place(tie{ArgFirst, true}, firstHead)
	place(tie{ArgFirst, false}, firstTail)
	place(tie{ArgLast, true}, lastHead)
	place(tie{ArgLast, false}, lastTail)

	var path []int

	var resolve func(i int) error
	resolve = func(i int) error {
		switch state[i] {
		case placed:
			return nil
		case resolving:
			return cycleError(ErrArgumentCycle, path, i,
				func(j int) string { return args[j].Key() })
		}

		state[i] = resolving
		path = append(path, i)

		a := args[i]

		ref, ok := index[a.anchor()]
		if !ok {
			return ErrUnresolvedArgument.
				Wrap(errors.New(a.Key()+" refers to undeclared "+a.anchor())).
				With(
					slog.String("argument", a.Key()),
					slog.String("close_to", a.anchor()),
				)
		}

		if err := resolve(ref); err != nil {
			return err
		}

		place(tie{a.anchor(), a.After}, ref+sentinels)

		path = path[:len(path)-1]

		return nil
	}

	for _, i := range visit {
		if err := resolve(i); err != nil {
			return nil, err
		}
	}

	order := make([]int, 0, len(args))
	order = p.walk(order, firstHead, firstTail)
	order = p.walk(order, lastHead, lastTail)

	return order, nil
}
