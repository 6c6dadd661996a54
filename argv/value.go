package argv

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// container accumulates the values assigned to one declaration during a
// single parse. Exactly one of the payload fields is used, selected by shape.
type container struct {
	subject string
	typ     Type
	style   ContainerStyle

	set    bool
	scalar any
	list   []any
	dict   map[string]any
}

func newContainer(subject string, typ Type, style ContainerStyle) *container {
	c := &container{subject: subject, typ: typ, style: style}
	if typ.Shape == ShapeMap {
		c.dict = make(map[string]any)
	}

	return c
}

// assign is the per-parse context a container needs to convert raw text and
// interpret soft conditions.
type assign struct {
	convert Converter
	report  *reporter
	token   string
}

// setValue accumulates one raw value.
func (c *container) setValue(raw string, a assign) error {
	switch c.typ.Shape {
	case ShapeCollection:
		for _, item := range c.split(raw) {
			v, err := c.convert(item, a)
			if err != nil {
				return err
			}

			c.list = append(c.list, v)
		}

		c.set = true

		return nil

	case ShapeMap:
		for _, entry := range c.split(raw) {
			if err := c.put(entry, a); err != nil {
				return err
			}
		}

		c.set = true

		return nil

	default:
		v, err := c.convert(raw, a)
		if err != nil {
			return err
		}

		return c.setScalar(v, a)
	}
}

// setBool accumulates a boolean assigned without conversion, as for triggers.
func (c *container) setBool(v bool, a assign) error {
	if c.typ.Shape != ShapeScalar {
		return c.setValue(fmt.Sprint(v), a)
	}

	return c.setScalar(v, a)
}

func (c *container) setScalar(v any, a assign) error {
	if !c.set {
		c.scalar = v
		c.set = true

		return nil
	}

	// A flag given twice is tolerated; any other reassignment is fatal.
	if isTrue(c.scalar) && isTrue(v) {
		return a.report.soft(OptionDuplicated,
			c.subject+" given more than once",
			slog.String("option", c.subject),
			slog.String("token", a.token),
		)
	}

	return ErrDuplicateOption.Wrap(errors.New(c.subject)).With(
		slog.String("option", c.subject),
		slog.String("token", a.token),
	)
}

func (c *container) put(entry string, a assign) error {
	key, raw, ok := strings.Cut(entry, "=")
	if !ok {
		return ErrMalformedMapEntry.
			Wrap(fmt.Errorf("%s: %q has no '='", c.subject, entry)).
			With(
				slog.String("option", c.subject),
				slog.String("entry", entry),
			)
	}

	v, err := c.convert(raw, a)
	if err != nil {
		return err
	}

	if _, dup := c.dict[key]; dup {
		err := a.report.soft(MapDuplicateKey,
			c.subject+" key "+key+" given more than once",
			slog.String("option", c.subject),
			slog.String("key", key),
		)
		if err != nil {
			return err
		}
	}

	c.dict[key] = v

	return nil
}

func (c *container) split(raw string) []string {
	if c.style == StyleCommaSeparated {
		return strings.Split(raw, ",")
	}

	return []string{raw}
}

func (c *container) convert(raw string, a assign) (any, error) {
	v, err := a.convert.Convert(Type{Shape: ShapeScalar, Elem: c.typ.Elem}, raw)
	if err != nil {
		return nil, ErrConvert.Wrap(fmt.Errorf("%s: %w", c.subject, err)).With(
			slog.String("subject", c.subject),
			slog.String("type", c.typ.String()),
			slog.String("value", raw),
		)
	}

	return v, nil
}

// value returns the accumulated result: the scalar itself, a []any for
// collections, or a map[string]any for maps.
func (c *container) value() any {
	switch c.typ.Shape {
	case ShapeCollection:
		return slices.Clone(c.list)
	case ShapeMap:
		return maps.Clone(c.dict)
	default:
		return c.scalar
	}
}

func isTrue(v any) bool {
	b, ok := v.(bool)

	return ok && b
}
