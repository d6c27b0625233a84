package jsonutil

import (
	"errors"
	"testing"
)

func TestDecodeWithFallbackDirectJSON(t *testing.T) {
	var out struct {
		Lines []string `json:"lines"`
	}
	err := DecodeWithFallback(`{"lines":["Fixed bug","Reviewed PR"]}`, &out)
	if err != nil {
		t.Fatalf("DecodeWithFallback() error = %v", err)
	}
	if len(out.Lines) != 2 || out.Lines[0] != "Fixed bug" || out.Lines[1] != "Reviewed PR" {
		t.Fatalf("unexpected lines: %#v", out.Lines)
	}
}

func TestDecodeWithFallbackCodeFenceJSON(t *testing.T) {
	var out struct {
		Status string `json:"status"`
	}
	err := DecodeWithFallback("```json\n{\"status\":\"ok\"}\n```", &out)
	if err != nil {
		t.Fatalf("DecodeWithFallback() error = %v", err)
	}
	if out.Status != "ok" {
		t.Fatalf("status = %q, want ok", out.Status)
	}
}

func TestDecodeWithFallbackBareFence(t *testing.T) {
	var out struct {
		Lines []string `json:"lines"`
	}
	err := DecodeWithFallback("```\n{\"lines\":[\"Shipped release\"]}\n```", &out)
	if err != nil {
		t.Fatalf("DecodeWithFallback() error = %v", err)
	}
	if len(out.Lines) != 1 || out.Lines[0] != "Shipped release" {
		t.Fatalf("unexpected lines: %#v", out.Lines)
	}
}

func TestDecodeWithFallbackEmptyInput(t *testing.T) {
	var out map[string]any
	err := DecodeWithFallback(" \n\t ", &out)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestDecodeWithFallbackRejectsInvalidInput(t *testing.T) {
	var out map[string]any
	err := DecodeWithFallback("not a json payload", &out)
	if err == nil {
		t.Fatalf("expected error for invalid input")
	}
}
