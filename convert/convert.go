// Package convert implements [argv.Converter] on the cty type system, so
// that declarations may be typed with HCL type expressions such as
// "number" or "list(bool)".
package convert

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyconvert "github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/ardnew/modecli/argv"
)

// ErrType indicates a type expression that cannot describe a declaration.
var ErrType = errors.New("unsupported type")

// Converter converts raw text with cty's string conversions.
//
// The zero value is ready to use.
type Converter struct{}

// Convert implements [argv.Converter]. The result is a string, a bool, or a
// number as int64 when integral and float64 otherwise.
func (Converter) Convert(t argv.Type, raw string) (any, error) {
	ty, err := ElemType(t.Elem)
	if err != nil {
		return nil, err
	}

	v, err := ctyconvert.Convert(cty.StringVal(raw), ty)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", raw, err)
	}

	return Native(v)
}

// ElemType returns the cty primitive type named by elem. An empty name is
// string.
func ElemType(elem string) (cty.Type, error) {
	switch elem {
	case "", argv.TypeString:
		return cty.String, nil
	case argv.TypeBool:
		return cty.Bool, nil
	case "number":
		return cty.Number, nil
	default:
		return cty.NilType, fmt.Errorf("%w: %s", ErrType, elem)
	}
}

// Native returns the Go value of a known primitive value.
func Native(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty == cty.Number:
		var i int64
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}

		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}

		return f, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrType, ty.FriendlyName())
	}
}

// ParseType parses an HCL type expression into an [argv.Type]. Primitive
// types are scalars, list and set types are collections, and map types are
// maps. Element types must be primitive.
func ParseType(src string) (argv.Type, error) {
	if src == "" {
		return argv.Scalar(argv.TypeString), nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "type", hcl.InitialPos)
	if diags.HasErrors() {
		return argv.Type{}, fmt.Errorf("%w: %s", ErrType, diags.Error())
	}

	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return argv.Type{}, fmt.Errorf("%w: %s", ErrType, diags.Error())
	}

	return FromCty(ty)
}

// FromCty maps a cty type onto an [argv.Type].
func FromCty(ty cty.Type) (argv.Type, error) {
	shape := argv.ShapeScalar
	elem := ty

	switch {
	case ty.IsListType(), ty.IsSetType():
		shape, elem = argv.ShapeCollection, ty.ElementType()
	case ty.IsMapType():
		shape, elem = argv.ShapeMap, ty.ElementType()
	}

	if !elem.IsPrimitiveType() {
		return argv.Type{}, fmt.Errorf("%w: %s", ErrType, ty.FriendlyName())
	}

	return argv.Type{Shape: shape, Elem: elem.FriendlyName()}, nil
}
