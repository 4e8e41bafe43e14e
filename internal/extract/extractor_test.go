package extract

import (
	"testing"

	"github.com/iskra-project/spark-engine/internal/metrics"
)

func TestDeltasFiringDimensions(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantDim  metrics.Dimension
		positive bool
	}{
		{"pain-up", "everything hurts and I'm exhausted", metrics.DimPain, true},
		{"pain-down", "I feel better after yesterday", metrics.DimPain, false},
		{"trust-up", "thank you, that helped a lot", metrics.DimTrust, true},
		{"trust-down", "you don't understand me at all", metrics.DimTrust, false},
		{"clarity-up", "that makes sense, I know what to do", metrics.DimClarity, true},
		{"clarity-down", "I'm so confused, this makes no sense", metrics.DimClarity, false},
		{"chaos-up", "everything at once, I can't focus", metrics.DimChaos, true},
		{"drift-up", "we already talked about this, same thing again", metrics.DimDrift, true},
		{"echo-up", "it keeps coming back, again and again", metrics.DimEcho, true},
		{"silence-up", "never mind... nothing to say", metrics.DimSilenceMass, true},
		{"interrupt-up", "wait, hold on", metrics.DimInterrupt, true},
		{"ctx-switch", "anyway, by the way, different topic", metrics.DimCtxSwitch, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Deltas(tt.text)
			delta, ok := got.Deltas[tt.wantDim]
			if !ok {
				t.Fatalf("dimension %s did not fire; deltas=%v signals=%v", tt.wantDim, got.Deltas, got.Signals)
			}
			if tt.positive && delta <= 0 {
				t.Errorf("%s: want positive delta, got %.4f", tt.wantDim, delta)
			}
			if !tt.positive && delta >= 0 {
				t.Errorf("%s: want negative delta, got %.4f", tt.wantDim, delta)
			}
		})
	}
}

func TestDeltasSilentDimensionsOmitted(t *testing.T) {
	got := Deltas("thank you, that helped")
	if _, ok := got.Deltas[metrics.DimPain]; ok {
		t.Errorf("pain fired without a pain pattern: %v", got.Signals)
	}
	if _, ok := got.Deltas[metrics.DimChaos]; ok {
		t.Errorf("chaos fired without a chaos pattern: %v", got.Signals)
	}
}

func TestDeltasEmptyUtterance(t *testing.T) {
	got := Deltas("   ")
	if len(got.Deltas) != 1 {
		t.Fatalf("empty turn should only touch silence mass: %v", got.Deltas)
	}
	if got.Deltas[metrics.DimSilenceMass] <= 0 {
		t.Errorf("empty turn silence delta: got %.4f", got.Deltas[metrics.DimSilenceMass])
	}
}

func TestDeltasRhythmFromShape(t *testing.T) {
	short := Deltas("ok")
	if short.Deltas[metrics.DimRhythm] >= 0 {
		t.Errorf("terse turn should slow rhythm: %.2f", short.Deltas[metrics.DimRhythm])
	}

	long := Deltas("I have been thinking about what you said yesterday and I want to walk through " +
		"the whole situation carefully because there are several threads here that tangle into each " +
		"other and I would like to lay them out one by one so we can look at them together properly " +
		"and decide what actually matters most right now")
	if long.Deltas[metrics.DimRhythm] <= 0 {
		t.Errorf("engaged turn should raise rhythm: %.2f", long.Deltas[metrics.DimRhythm])
	}
}

func TestDeltasInterruptNeedsWholeWords(t *testing.T) {
	got := Deltas("I stopped by the store while waiting for the bus")
	if _, ok := got.Deltas[metrics.DimInterrupt]; ok {
		t.Errorf("interrupt fired inside unrelated words: %v", got.Signals)
	}

	got = Deltas("wait, stop for a second")
	if got.Deltas[metrics.DimInterrupt] <= 0 {
		t.Errorf("whole-word interrupt not detected: %v", got.Signals)
	}
}

func TestDeltasStayApplicable(t *testing.T) {
	v := metrics.Defaults()
	res := Deltas("I'm exhausted, everything hurts, can't focus, going in circles!!!")
	v.Apply(res.Deltas)
	if v.Pain <= 0.1 {
		t.Errorf("pain did not rise: %.4f", v.Pain)
	}
	if v.Pain > 1 || v.Chaos > 1 {
		t.Errorf("vector left domain: %+v", v)
	}
}
