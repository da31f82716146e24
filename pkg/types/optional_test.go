package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestOptionalUnmarshalPointer(t *testing.T) {
	type payload struct {
		ID Optional[*uuid.UUID] `json:"id"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"id": "00000000-0000-0000-0000-000000000001"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.ID.Present || got.ID.Value == nil {
		t.Fatalf("expected present uuid, got %+v", got.ID)
	}
	if got.ID.Value.String() != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("unexpected uuid %s", got.ID.Value)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"id": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.ID.Present || got.ID.Value != nil {
		t.Fatalf("expected null to be present but nil, got %+v", got.ID)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.ID.Present {
		t.Fatalf("expected absent field, got %+v", got.ID)
	}
}

func TestOptionalUnmarshalSlice(t *testing.T) {
	type line struct {
		Qty int `json:"qty"`
	}
	type payload struct {
		Lines Optional[[]line] `json:"lines"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"lines": []}`), &got); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !got.Lines.Present || len(got.Lines.Value) != 0 {
		t.Fatalf("expected present empty slice, got %+v", got.Lines)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"lines": [{"qty": 2}]}`), &got); err != nil {
		t.Fatalf("unmarshal lines: %v", err)
	}
	if len(got.Lines.Value) != 1 || got.Lines.Value[0].Qty != 2 {
		t.Fatalf("unexpected lines %+v", got.Lines.Value)
	}

	if err := json.Unmarshal([]byte(`{"lines": "nope"}`), &got); err == nil {
		t.Fatal("expected type error")
	}
}

func TestOptionalHelpers(t *testing.T) {
	if got := None[string]().OrElse("fallback"); got != "fallback" {
		t.Fatalf("unexpected OrElse for absent: %q", got)
	}
	if got := Some("set").OrElse("fallback"); got != "set" {
		t.Fatalf("unexpected OrElse for present: %q", got)
	}

	encoded, err := json.Marshal(struct {
		A Optional[int] `json:"a"`
		B Optional[int] `json:"b"`
	}{A: Some(3)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"a":3,"b":null}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}
