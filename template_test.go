package scribe

import (
	"errors"
	"reflect"
	"testing"
)

func mustCompile(t *testing.T, spec any) *Mapping {
	t.Helper()
	m, err := CompileMapping(spec)
	if err != nil {
		t.Fatalf("CompileMapping failed: %v", err)
	}
	return m
}

func TestMapping_AccessorPreservesType(t *testing.T) {
	rec := Record{"k": "x", "a": map[string]any{"b": []any{1, 2, 3}}}
	m := mustCompile(t, map[string]any{"%{k}": "[a][b]"})

	got := m.Build(rec)
	want := map[string]any{"x": []any{1, 2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMapping_TemplateCoercesToString(t *testing.T) {
	rec := Record{"k": "x", "a": map[string]any{"b": []any{1, 2, 3}}}
	m := mustCompile(t, map[string]any{"k": "%{[a][b]}"})

	got := m.Build(rec)
	want := map[string]any{"k": "1,2,3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMapping_AccessorClassification(t *testing.T) {
	tests := []struct {
		value      string
		isAccessor bool
	}{
		{"[a]", true},
		{"[a][b]", true},
		{"[a-b][c.d]", true},
		{"[a]b", false},      // trailing text
		{"b[a]", false},      // leading text
		{"[]", false},        // empty segment
		{"[a][]", false},     // empty segment
		{"a.b", false},       // dotted form is a template
		{"%{[a][b]}", false}, // placeholder form is a template
		{"plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := accessorPattern.MatchString(tt.value); got != tt.isAccessor {
				t.Errorf("accessor(%q) = %v, want %v", tt.value, got, tt.isAccessor)
			}
		})
	}
}

func TestMapping_LiteralsPassThrough(t *testing.T) {
	rec := Record{}
	m := mustCompile(t, map[string]any{
		"flag":   true,
		"count":  3,
		"nested": map[string]any{"keep": "literal text"},
		"items":  []any{1, "two", false},
	})

	got, ok := m.Build(rec).(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", m.Build(rec))
	}
	if got["flag"] != true {
		t.Errorf("expected literal bool, got %v", got["flag"])
	}
	if got["count"] != 3 {
		t.Errorf("expected literal int, got %v", got["count"])
	}
	nested, ok := got["nested"].(map[string]any)
	if !ok || nested["keep"] != "literal text" {
		t.Errorf("expected nested literal map, got %v", got["nested"])
	}
	items, ok := got["items"].([]any)
	if !ok || !reflect.DeepEqual(items, []any{1, "two", false}) {
		t.Errorf("expected literal list, got %v", got["items"])
	}
}

func TestMapping_NestedListResolvesElementwise(t *testing.T) {
	rec := Record{"a": "A", "b": map[string]any{"c": 9}}
	m := mustCompile(t, []any{"%{a}", "[b][c]", "literal"})

	got := m.Build(rec)
	want := []any{"A", 9, "literal"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMapping_MissingFields(t *testing.T) {
	rec := Record{}
	m := mustCompile(t, map[string]any{
		"absent":       "[no][such]",
		"interpolated": "x-%{missing}-y",
	})

	got := m.Build(rec).(map[string]any)
	if got["absent"] != nil {
		t.Errorf("expected nil for missing accessor, got %v", got["absent"])
	}
	if got["interpolated"] != "x--y" {
		t.Errorf("expected empty substitution, got %v", got["interpolated"])
	}
}

func TestMapping_KeyCollisionLastWriteWins(t *testing.T) {
	// Both keys interpolate to "dup"; source keys compile in sorted order,
	// so the later sorted key ("dup") overwrites the earlier ("d%{u}p").
	rec := Record{"u": "u"}
	m := mustCompile(t, map[string]any{
		"d%{u}p": "first",
		"dup":    "second",
	})

	got := m.Build(rec).(map[string]any)
	if len(got) != 1 {
		t.Fatalf("expected single key after collision, got %v", got)
	}
	if got["dup"] != "second" {
		t.Errorf("expected last write to win, got %v", got["dup"])
	}
}

func TestMapping_InterpolatedKeys(t *testing.T) {
	rec := Record{"host": "web-1", "level": "warn"}
	m := mustCompile(t, map[string]any{"%{host}.%{level}": "[level]"})

	got := m.Build(rec).(map[string]any)
	if got["web-1.warn"] != "warn" {
		t.Errorf("unexpected output: %v", got)
	}
}

func TestCompileMapping_NonStringKeys(t *testing.T) {
	_, err := CompileMapping(map[any]any{1: "v"})
	if err == nil {
		t.Fatal("expected error for non-string keys")
	}
	if !errors.Is(err, ErrInvalidMapping) {
		t.Errorf("expected ErrInvalidMapping, got %v", err)
	}
}

func TestMapping_BuildIsPure(t *testing.T) {
	rec := Record{"k": "x"}
	m := mustCompile(t, map[string]any{"%{k}": "[k]"})

	first := m.Build(rec)
	second := m.Build(rec)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical builds, got %v then %v", first, second)
	}
	if len(rec) != 1 {
		t.Errorf("expected record untouched, got %v", rec)
	}
}
