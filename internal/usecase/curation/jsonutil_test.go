package curation

import "testing"

type probe struct {
	Name string `json:"name"`
}

func TestDecodeJSONPlain(t *testing.T) {
	var p probe
	if err := decodeJSON(`{"name":"a"}`, &p); err != nil || p.Name != "a" {
		t.Fatalf("plain JSON failed: %v", err)
	}
}

func TestDecodeJSONCodeFence(t *testing.T) {
	var p probe
	raw := "Here you go:\n```json\n{\"name\":\"fenced\"}\n```\nHope that helps."
	if err := decodeJSON(raw, &p); err != nil || p.Name != "fenced" {
		t.Fatalf("fenced JSON failed: %v", err)
	}
}

func TestDecodeJSONSurroundingProse(t *testing.T) {
	var p probe
	raw := `The result is {"name":"inline"} as requested.`
	if err := decodeJSON(raw, &p); err != nil || p.Name != "inline" {
		t.Fatalf("inline JSON failed: %v", err)
	}
}

func TestDecodeJSONTrailingComma(t *testing.T) {
	var p probe
	raw := `{"name":"trailing",}`
	if err := decodeJSON(raw, &p); err != nil || p.Name != "trailing" {
		t.Fatalf("trailing comma JSON failed: %v", err)
	}
}

func TestDecodeJSONGarbage(t *testing.T) {
	var p probe
	if err := decodeJSON("no json here at all", &p); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}
