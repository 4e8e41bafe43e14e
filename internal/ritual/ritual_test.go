package ritual

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iskra-project/spark-engine/internal/generate"
	"github.com/iskra-project/spark-engine/internal/metrics"
	"github.com/iskra-project/spark-engine/internal/phase"
)

func TestCheckTriggersDecisionList(t *testing.T) {
	tests := []struct {
		name string
		vec  metrics.Vector
		want Ritual
	}{
		{"phoenix drift and trust", metrics.Vector{Drift: 0.7, Trust: 0.4, Clarity: 0.5}, Phoenix},
		{"phoenix chaos alone", metrics.Vector{Chaos: 0.85, Trust: 0.8, Clarity: 0.8}, Phoenix},
		{"shatter high drift", metrics.Vector{Drift: 0.85, Trust: 0.8, Clarity: 0.8}, Shatter},
		{"council three conditions", metrics.Vector{Pain: 0.7, Chaos: 0.55, Drift: 0.45, Trust: 0.8}, Council},
		{"council trust condition", metrics.Vector{Pain: 0.7, Chaos: 0.55, Trust: 0.5, Clarity: 0.5}, Council},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.vec.Normalize()
			got := CheckTriggers(tt.vec)
			if !got.ShouldTrigger || got.Ritual != tt.want {
				t.Errorf("got trigger=%v ritual=%s (%s), want %s",
					got.ShouldTrigger, got.Ritual, got.Reason, tt.want)
			}
			if got.Reason == "" {
				t.Error("trigger reason must not be empty")
			}
		})
	}
}

func TestCheckTriggersPhoenixOutranksShatter(t *testing.T) {
	// drift 0.9 satisfies SHATTER, but trust 0.3 makes the PHOENIX rule
	// match first.
	v := metrics.Vector{Drift: 0.9, Trust: 0.3, Chaos: 0.5}
	v.Normalize()
	got := CheckTriggers(v)
	if got.Ritual != Phoenix {
		t.Errorf("got %s, want PHOENIX", got.Ritual)
	}
}

func TestCheckTriggersCalmVector(t *testing.T) {
	got := CheckTriggers(metrics.Defaults())
	if got.ShouldTrigger {
		t.Errorf("calm vector triggered %s (%s)", got.Ritual, got.Reason)
	}
}

func TestExecutePhoenixResetsEverything(t *testing.T) {
	wrecked := metrics.Vector{Pain: 0.9, Drift: 0.9, Chaos: 0.9, Trust: 0.1}
	wrecked.Normalize()
	got := ExecutePhoenix(wrecked)
	if got != metrics.Defaults() {
		t.Errorf("phoenix did not reset to baseline: %+v", got)
	}
}

func TestExecuteShatterTransform(t *testing.T) {
	v := metrics.Vector{Drift: 0.9, Clarity: 0.8, Chaos: 0.4, Pain: 0.5, Trust: 0.6, Rhythm: 42}
	v.Normalize()
	got := ExecuteShatter(v)

	if got.Drift != 0 {
		t.Errorf("drift: got %.2f, want 0", got.Drift)
	}
	if math.Abs(got.Clarity-0.5) > 1e-9 {
		t.Errorf("clarity: got %.2f, want 0.50", got.Clarity)
	}
	if math.Abs(got.Chaos-0.6) > 1e-9 {
		t.Errorf("chaos: got %.2f, want 0.60", got.Chaos)
	}
	if math.Abs(got.Pain-0.6) > 1e-9 {
		t.Errorf("pain: got %.2f, want 0.60", got.Pain)
	}
	// Untouched fields survive.
	if got.Trust != 0.6 || got.Rhythm != 42 {
		t.Errorf("untouched fields mutated: trust=%.2f rhythm=%.1f", got.Trust, got.Rhythm)
	}
}

func TestExecuteShatterBounds(t *testing.T) {
	v := metrics.Vector{Drift: 0.9, Clarity: 0.2, Chaos: 0.65, Pain: 0.75}
	v.Normalize()
	got := ExecuteShatter(v)

	if got.Clarity != 0.3 {
		t.Errorf("clarity floor: got %.2f, want 0.30", got.Clarity)
	}
	if got.Chaos != 0.7 {
		t.Errorf("chaos ceiling: got %.2f, want 0.70", got.Chaos)
	}
	if got.Pain != 0.8 {
		t.Errorf("pain ceiling: got %.2f, want 0.80", got.Pain)
	}
}

func TestPhaseAfter(t *testing.T) {
	tests := []struct {
		ritual Ritual
		want   phase.Phase
	}{
		{Phoenix, phase.Transition},
		{Shatter, phase.Dissolution},
		{Council, phase.Clarity},
	}
	for _, tt := range tests {
		if got := PhaseAfter(tt.ritual); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.ritual, got, tt.want)
		}
	}
}

func TestCouncilRunnerSequentialVoices(t *testing.T) {
	mock := &generate.Mock{}
	runner := NewCouncilRunner(mock)

	d, err := runner.Run(context.Background(), "stay or go?", []string{"ISKRA", "SAM", "KAIN"})
	if err != nil {
		t.Fatalf("council: %v", err)
	}
	if len(d.Statements) != 3 {
		t.Fatalf("statements: got %d, want 3", len(d.Statements))
	}
	for i, want := range []string{"ISKRA", "SAM", "KAIN"} {
		if d.Statements[i].Voice != want {
			t.Errorf("statement %d: got %s, want %s", i, d.Statements[i].Voice, want)
		}
	}
	if d.Synthesis == "" {
		t.Error("synthesis missing")
	}

	// Later voices see the transcript so far.
	if len(mock.Calls) != 4 {
		t.Fatalf("calls: got %d, want 4", len(mock.Calls))
	}
	if !strings.Contains(mock.Calls[1].Prompt, "ISKRA") {
		t.Error("second voice did not receive the first statement")
	}
	if mock.Calls[3].Voice != "ISKRA" {
		t.Errorf("synthesis voice: got %s", mock.Calls[3].Voice)
	}
}

func TestCouncilRunnerSkipsUnknownVoice(t *testing.T) {
	mock := &generate.Mock{}
	runner := NewCouncilRunner(mock)

	d, err := runner.Run(context.Background(), "q", []string{"NOBODY", "SAM"})
	if err != nil {
		t.Fatalf("council: %v", err)
	}
	if len(d.Statements) != 1 || d.Statements[0].Voice != "SAM" {
		t.Errorf("statements: %+v", d.Statements)
	}
	if len(d.Skipped) != 1 {
		t.Errorf("skipped: %v", d.Skipped)
	}
}

func TestCouncilRunnerAllFail(t *testing.T) {
	mock := &generate.Mock{Err: errors.New("model down")}
	runner := NewCouncilRunner(mock)

	if _, err := runner.Run(context.Background(), "q", []string{"ISKRA", "SAM"}); err == nil {
		t.Error("expected error when no voice produces a statement")
	}
}

func TestCouncilRunnerDefaultsToIskra(t *testing.T) {
	mock := &generate.Mock{}
	runner := NewCouncilRunner(mock)

	d, err := runner.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("council: %v", err)
	}
	if len(d.Statements) != 1 || d.Statements[0].Voice != "ISKRA" {
		t.Errorf("statements: %+v", d.Statements)
	}
}
