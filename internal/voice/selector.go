package voice

// #region imports
import (
	"fmt"
	"strings"

	"github.com/iskra-project/spark-engine/internal/metrics"
)

// #endregion

// #region preference-store

// PreferenceStore persists the per-voice preference multipliers. They
// are the only persona state with an independent lifecycle: adjusted in
// ±0.2 steps by user feedback, clamped to [0.1, 2.0], and never reset
// outside an explicit data wipe.
type PreferenceStore interface {
	Preferences() (map[string]float64, error)
	SetPreference(voice string, multiplier float64) error
}

const (
	PreferenceMin  = 0.1
	PreferenceMax  = 2.0
	PreferenceStep = 0.2
)

// #endregion

// #region selector

// hysteresisBonus damps oscillation between near-tied voices by
// favoring the one that spoke last turn.
const hysteresisBonus = 0.05

// Selector scores the canon against the affect vector.
type Selector struct {
	prefs PreferenceStore
}

// NewSelector creates a selector backed by the given preference store.
func NewSelector(prefs PreferenceStore) *Selector {
	return &Selector{prefs: prefs}
}

// Selection is the outcome of one selection pass.
type Selection struct {
	Voice   Voice
	Score   float64
	Manual  bool
	Signals []string
}

// #endregion

// #region select

// Select picks the speaking voice. A manual override wins
// unconditionally when it names a known voice; an unknown override is
// treated as AUTO rather than propagated. Otherwise: raw activation ×
// preference multiplier, hysteresis bonus for lastVoice, arg-max, ties
// broken by canonical order.
func (s *Selector) Select(vec metrics.Vector, lastVoice, manualOverride string) Selection {
	if manualOverride != "" {
		if v, ok := ByName(strings.ToUpper(strings.TrimSpace(manualOverride))); ok {
			return Selection{
				Voice:   v,
				Score:   1.0,
				Manual:  true,
				Signals: []string{fmt.Sprintf("manual_override=%s", v.Name)},
			}
		}
		// Unknown override falls through to AUTO.
	}

	prefs := s.preferences()

	best := Selection{}
	haveBest := false
	for _, v := range Canon {
		raw := v.Activation(vec)
		if raw <= 0 {
			continue
		}
		mult := prefs[v.Name]
		if mult == 0 {
			mult = 1.0
		}
		score := raw * mult
		if v.Name == lastVoice {
			score += hysteresisBonus
		}
		// Strictly-greater keeps the canonical-order tie-break.
		if !haveBest || score > best.Score {
			best = Selection{
				Voice: v,
				Score: score,
				Signals: []string{
					fmt.Sprintf("%s raw=%.2f mult=%.2f score=%.2f", v.Name, raw, mult, score),
				},
			}
			haveBest = true
		}
	}

	if !haveBest {
		// Unreachable while the baseline facet always activates.
		def, _ := ByName(DefaultVoice)
		return Selection{Voice: def, Score: 0, Signals: []string{"fallback=" + DefaultVoice}}
	}
	return best
}

// #endregion

// #region feedback

// AdjustPreference nudges a voice's multiplier one step in the given
// direction (+1 or -1), clamps it to the allowed range, and persists it
// immediately. Repeated identical feedback at a clamp boundary is
// idempotent.
func (s *Selector) AdjustPreference(voiceName string, direction int) (float64, error) {
	name := strings.ToUpper(strings.TrimSpace(voiceName))
	if _, ok := ByName(name); !ok {
		return 0, fmt.Errorf("unknown voice %q", voiceName)
	}

	prefs := s.preferences()
	mult := prefs[name]
	if mult == 0 {
		mult = 1.0
	}

	if direction >= 0 {
		mult += PreferenceStep
	} else {
		mult -= PreferenceStep
	}
	mult = clampPreference(mult)

	if s.prefs != nil {
		if err := s.prefs.SetPreference(name, mult); err != nil {
			return mult, fmt.Errorf("persist preference: %w", err)
		}
	}
	return mult, nil
}

func clampPreference(m float64) float64 {
	if m < PreferenceMin {
		return PreferenceMin
	}
	if m > PreferenceMax {
		return PreferenceMax
	}
	return m
}

// #endregion

// #region helpers

func (s *Selector) preferences() map[string]float64 {
	if s.prefs == nil {
		return map[string]float64{}
	}
	prefs, err := s.prefs.Preferences()
	if err != nil || prefs == nil {
		// Selection must never fail because the store does.
		return map[string]float64{}
	}
	return prefs
}

// #endregion
