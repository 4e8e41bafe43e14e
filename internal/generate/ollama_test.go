package generate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaAggregatesStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		chunks := []string{
			`{"response":"hold ","done":false}`,
			`{"response":"the ","done":false}`,
			`{"response":"line","done":true}`,
		}
		for _, c := range chunks {
			w.Write([]byte(c + "\n"))
		}
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model")
	resp, err := o.Generate(context.Background(), Request{Voice: "ISKRA", Prompt: "hi"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "hold the line" {
		t.Errorf("aggregated text: %q", resp.Text)
	}
	if resp.Voice != "ISKRA" {
		t.Errorf("voice: %q", resp.Voice)
	}
}

func TestOllamaCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"first","done":false}` + "\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		cancel()
		<-r.Context().Done()
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model")
	if _, err := o.Generate(ctx, Request{Prompt: "hi"}); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "test-model")
	if _, err := o.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Error("expected status error")
	}
}

func TestBuildPromptFraming(t *testing.T) {
	p := buildPrompt(Request{Voice: "KAIN", Phase: "DARKNESS", Playbook: "SHADOW", Prompt: "hello"})
	if !strings.HasPrefix(p, "[voice:KAIN][phase:DARKNESS][playbook:SHADOW]\n") {
		t.Errorf("framing: %q", p)
	}
	if !strings.HasSuffix(p, "hello") {
		t.Errorf("prompt body missing: %q", p)
	}

	bare := buildPrompt(Request{Prompt: "hello"})
	if bare != "hello" {
		t.Errorf("bare prompt: %q", bare)
	}
}

func TestMockRecordsCalls(t *testing.T) {
	m := &Mock{}
	resp, err := m.Generate(context.Background(), Request{Voice: "SAM", Prompt: "check this"})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if resp.Text != "[SAM] check this" {
		t.Errorf("default text: %q", resp.Text)
	}
	if len(m.Calls) != 1 || m.Calls[0].Voice != "SAM" {
		t.Errorf("calls: %+v", m.Calls)
	}
}
