package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormValues_MarshalKeepsOrder(t *testing.T) {
	values := NewFormValues()
	values.Set("zeta", Single("last-alpha"))
	values.Set("alpha", Multi("b", "a"))
	values.Set("empty", Multi())
	values.Set("zeta", Single("replaced"))

	raw, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta":"replaced","alpha":["b","a"],"empty":[]}`
	if string(raw) != want {
		t.Fatalf("json mismatch\nwant: %s\n got: %s", want, raw)
	}
}

func TestValue_Variants(t *testing.T) {
	single := Single("x")
	if single.IsMulti() || single.String() != "x" {
		t.Fatalf("unexpected single value %#v", single)
	}
	if diff := cmp.Diff([]string{"x"}, single.Strings()); diff != "" {
		t.Fatalf("single strings mismatch (-want +got):\n%s", diff)
	}

	src := []string{"a", "b"}
	multi := Multi(src...)
	src[0] = "mutated"
	if diff := cmp.Diff([]string{"a", "b"}, multi.Strings()); diff != "" {
		t.Fatalf("multi strings mismatch (-want +got):\n%s", diff)
	}
	if !Multi().Empty() || !Single("  ").Empty() || Single("0").Empty() {
		t.Fatalf("unexpected Empty results")
	}
}

func TestFormValues_Map(t *testing.T) {
	values := NewFormValues()
	values.Set("name", Single("web-01"))
	values.Set("specs", Multi("2cpu-4gb"))

	want := map[string]any{"name": "web-01", "specs": []string{"2cpu-4gb"}}
	if diff := cmp.Diff(want, values.Map()); diff != "" {
		t.Fatalf("map mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "specs"}, values.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
