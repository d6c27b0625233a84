package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestLocalCleanup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", "Fixed the login bug", []string{"Fixed the login bug"}},
		{"bullet markers stripped", "- Fixed bug\n* Reviewed PR\n• Shipped docs", []string{"Fixed bug", "Reviewed PR", "Shipped docs"}},
		{"semicolon split", "fixed auth; reviewed PR", []string{"fixed auth", "reviewed PR"}},
		{"short comma list split", "standup, code review, deploy", []string{"standup", "code review", "deploy"}},
		{"long clauses keep commas", "Paired with Sam on the flaky integration suite, which still fails on CI", []string{"Paired with Sam on the flaky integration suite, which still fails on CI"}},
		{"whitespace collapsed", "  wrote   the\tmigration  ", []string{"wrote the migration"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LocalCleanup{}.Refine(context.Background(), tc.raw)
			if err != nil {
				t.Fatalf("Refine(%q) error = %v", tc.raw, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Refine(%q) = %#v, want %#v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestLocalCleanupRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (LocalCleanup{}).Refine(context.Background(), "  \n "); err == nil {
		t.Fatalf("Refine() error = nil, want failure for blank input")
	}
}

func TestLLMRefinerParsesStrictJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Errorf("empty request body")
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"lines\":[\"Fixed auth bug\",\"Reviewed billing PR\"]}"}}]}`))
	}))
	defer srv.Close()

	r, err := NewLLMRefiner(LLMRefinerOptions{
		HTTPClient: srv.Client(),
		Endpoint:   srv.URL,
		APIKey:     "key",
		Model:      "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("NewLLMRefiner() error = %v", err)
	}
	got, err := r.Refine(context.Background(), "fixed the auth bug and reviewed the billing PR")
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	want := []string{"Fixed auth bug", "Reviewed billing PR"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Refine() = %#v, want %#v", got, want)
	}
}

func TestLLMRefinerToleratesCodeFence(t *testing.T) {
	t.Parallel()

	fenced := "```json\n{\"lines\":[\"Shipped release\"]}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": fenced}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer srv.Close()

	r, err := NewLLMRefiner(LLMRefinerOptions{HTTPClient: srv.Client(), Endpoint: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewLLMRefiner() error = %v", err)
	}
	got, err := r.Refine(context.Background(), "shipped the release")
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if len(got) != 1 || got[0] != "Shipped release" {
		t.Fatalf("Refine() = %#v", got)
	}
}

type failingRefiner struct{}

func (failingRefiner) Refine(context.Context, string) ([]string, error) {
	return nil, fmt.Errorf("refine llm http 500")
}

func TestChainFallsBackToLocalCleanup(t *testing.T) {
	t.Parallel()

	chain := Chain{
		Primary:  failingRefiner{},
		Fallback: LocalCleanup{},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	got, err := chain.Refine(context.Background(), "- fixed auth; reviewed PR")
	if err != nil {
		t.Fatalf("Refine() error = %v, want fallback to succeed", err)
	}
	want := []string{"fixed auth", "reviewed PR"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Refine() = %#v, want %#v", got, want)
	}
}

func TestChainUsesPrimaryWhenHealthy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"lines\":[\"Refined line\"]}"}}]}`))
	}))
	defer srv.Close()

	primary, err := NewLLMRefiner(LLMRefinerOptions{HTTPClient: srv.Client(), Endpoint: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewLLMRefiner() error = %v", err)
	}
	chain := Chain{Primary: primary, Fallback: LocalCleanup{}}
	got, err := chain.Refine(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if len(got) != 1 || got[0] != "Refined line" {
		t.Fatalf("Refine() = %#v, want primary output", got)
	}
}
