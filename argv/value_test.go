package argv

import (
	"errors"
	"maps"
	"slices"
	"testing"
)

func testAssign(p Policy) assign {
	return assign{
		convert: TextConverter,
		report:  &reporter{policy: p},
		token:   "--x",
	}
}

func TestContainer_Scalar(t *testing.T) {
	a := testAssign(DefaultPolicy())

	c := newContainer("--name", Scalar(TypeString), StyleMultipleOccurrence)
	if err := c.setValue("alice", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.value(); got != "alice" {
		t.Errorf("value = %v, want alice", got)
	}

	err := c.setValue("bob", a)
	if !errors.Is(err, ErrDuplicateOption) {
		t.Fatalf("expected ErrDuplicateOption, got %v", err)
	}
}

func TestContainer_DuplicateTrue(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		first  bool
		second bool
		want   error
		diags  int
	}{
		{"warn", DefaultPolicy(), true, true, nil, 1},
		{"accept", LenientPolicy(), true, true, nil, 0},
		{"fail", StrictPolicy(), true, true, ErrDuplicateOption, 0},
		{"true then false", LenientPolicy(), true, false, ErrDuplicateOption, 0},
		{"false then false", LenientPolicy(), false, false, ErrDuplicateOption, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAssign(tt.policy)
			c := newContainer("--flag", Scalar(TypeBool), StyleMultipleOccurrence)

			if err := c.setBool(tt.first, a); err != nil {
				t.Fatalf("first assignment: %v", err)
			}

			err := c.setBool(tt.second, a)
			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if n := len(a.report.diags); n != tt.diags {
				t.Errorf("diagnostics = %d, want %d", n, tt.diags)
			}
		})
	}
}

func TestContainer_Collection(t *testing.T) {
	a := testAssign(DefaultPolicy())

	t.Run("multiple", func(t *testing.T) {
		c := newContainer("--tag", Collection(""), StyleMultipleOccurrence)
		for _, v := range []string{"a,b", "c"} {
			if err := c.setValue(v, a); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		got, _ := c.value().([]any)
		if !slices.Equal(got, []any{"a,b", "c"}) {
			t.Errorf("value = %v", got)
		}
	})

	t.Run("comma", func(t *testing.T) {
		c := newContainer("--tag", Collection(""), StyleCommaSeparated)
		for _, v := range []string{"a,b", "c"} {
			if err := c.setValue(v, a); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		got, _ := c.value().([]any)
		if !slices.Equal(got, []any{"a", "b", "c"}) {
			t.Errorf("value = %v", got)
		}
	})

	t.Run("value is a copy", func(t *testing.T) {
		c := newContainer("--tag", Collection(""), StyleMultipleOccurrence)
		_ = c.setValue("a", a)

		got, _ := c.value().([]any)
		got[0] = "mutated"

		if again, _ := c.value().([]any); again[0] != "a" {
			t.Errorf("container shares its slice")
		}
	})
}

func TestContainer_Map(t *testing.T) {
	t.Run("entries", func(t *testing.T) {
		a := testAssign(DefaultPolicy())
		c := newContainer("--set", Map(""), StyleCommaSeparated)

		if err := c.setValue("k1=v1,k2=a=b", a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, _ := c.value().(map[string]any)
		want := map[string]any{"k1": "v1", "k2": "a=b"}

		if !maps.Equal(got, want) {
			t.Errorf("value = %v, want %v", got, want)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		a := testAssign(DefaultPolicy())
		c := newContainer("--set", Map(""), StyleMultipleOccurrence)

		err := c.setValue("novalue", a)
		if !errors.Is(err, ErrMalformedMapEntry) {
			t.Fatalf("expected ErrMalformedMapEntry, got %v", err)
		}
	})

	t.Run("duplicate key overwrites", func(t *testing.T) {
		a := testAssign(DefaultPolicy())
		c := newContainer("--set", Map(""), StyleMultipleOccurrence)

		for _, v := range []string{"k=1", "k=2"} {
			if err := c.setValue(v, a); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		got, _ := c.value().(map[string]any)
		if got["k"] != "2" {
			t.Errorf("k = %v, want 2", got["k"])
		}

		if len(a.report.diags) != 1 ||
			a.report.diags[0].Condition != MapDuplicateKey {
			t.Errorf("diagnostics = %v", a.report.diags)
		}
	})

	t.Run("duplicate key fails", func(t *testing.T) {
		a := testAssign(StrictPolicy())
		c := newContainer("--set", Map(""), StyleMultipleOccurrence)

		if err := c.setValue("k=1", a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := c.setValue("k=2", a)
		if !errors.Is(err, ErrDuplicateMapKey) {
			t.Fatalf("expected ErrDuplicateMapKey, got %v", err)
		}
	})
}

func TestContainer_Convert(t *testing.T) {
	a := testAssign(DefaultPolicy())

	c := newContainer("--flag", Scalar(TypeBool), StyleMultipleOccurrence)
	if err := c.setValue("false", a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.value(); got != false {
		t.Errorf("value = %v, want false", got)
	}

	c = newContainer("--flag", Scalar(TypeBool), StyleMultipleOccurrence)

	err := c.setValue("maybe", a)
	if !errors.Is(err, ErrConvert) {
		t.Fatalf("expected ErrConvert, got %v", err)
	}

	var e *Error
	if errors.As(err, &e) {
		if v, _ := e.Attr("value"); v != "maybe" {
			t.Errorf("value attr = %q", v)
		}
	}

	c = newContainer("--n", Scalar("number"), StyleMultipleOccurrence)
	if err := c.setValue("1", a); !errors.Is(err, ErrConvert) {
		t.Errorf("expected ErrConvert for unsupported type, got %v", err)
	}
}
