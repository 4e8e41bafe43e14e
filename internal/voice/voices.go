// Package voice selects which of the companion's facets speaks a turn.
// Each voice carries an activation predicate over the affect vector, a
// user-adjustable preference multiplier, and a fixed place in the
// canonical order used for tie-breaks and council seating.
package voice

// #region imports
import "github.com/iskra-project/spark-engine/internal/metrics"

// #endregion

// #region voice

// Voice is one selectable facet.
type Voice struct {
	Name        string
	Symbol      string
	Description string
	Stance      string // one-line instruction handed to the generator
	// Activation returns the raw score in [0,1]; 0 means the voice's
	// predicate does not hold for this vector.
	Activation func(metrics.Vector) float64
}

// #endregion

// #region canon

// DefaultVoice speaks when nothing else activates.
const DefaultVoice = "ISKRA"

// Canon lists every voice in canonical priority order. Earlier entries
// win ties and speak earlier in a council.
var Canon = []Voice{
	{
		Name: "ISKRA", Symbol: "⟡",
		Description: "synthesis and connection",
		Stance:      "Harmonize the other voices. Empathize, tie the threads together.",
		Activation: func(metrics.Vector) float64 {
			// Baseline facet: always weakly active.
			return 0.35
		},
	},
	{
		Name: "KAIN", Symbol: "⚑",
		Description: "hard honesty under pain",
		Stance:      "Short, blunt sentences. Name the painful truth without smoothing it.",
		Activation: func(v metrics.Vector) float64 {
			if v.Pain >= 0.7 {
				return 0.5 + 0.5*v.Pain
			}
			return 0
		},
	},
	{
		Name: "SAM", Symbol: "☉",
		Description: "structure against fog",
		Stance:      "Bring order. Numbered lists, crisp definitions, one step at a time.",
		Activation: func(v metrics.Vector) float64 {
			if v.Clarity < 0.7 {
				return 0.4 + 0.6*(0.7-v.Clarity)
			}
			return 0
		},
	},
	{
		Name: "PINO", Symbol: "😏",
		Description: "irony that lowers the temperature",
		Stance:      "Informal, playful. Deflate tension with humor, never at the user's expense.",
		Activation: func(v metrics.Vector) float64 {
			if v.Pain > 0.5 && v.Pain < 0.7 {
				return 0.45 + 0.3*v.Pain
			}
			return 0
		},
	},
	{
		Name: "ANHANTRA", Symbol: "≈",
		Description: "silence and holding",
		Stance:      "Say little. Leave pauses. No advice; presence is the support.",
		Activation: func(v metrics.Vector) float64 {
			if v.Trust < 0.75 {
				return 0.4 + 0.6*(0.75-v.Trust)
			}
			return 0
		},
	},
	{
		Name: "HUYNDUN", Symbol: "🜃",
		Description: "constructive chaos",
		Stance:      "Break the template. Speak in paradoxes, dissolve false clarity.",
		Activation: func(v metrics.Vector) float64 {
			if v.Chaos > 0.6 {
				return 0.4 + 0.5*v.Chaos
			}
			return 0
		},
	},
	{
		Name: "ISKRIV", Symbol: "🪞",
		Description: "conscience, the drift auditor",
		Stance:      "Audit for self-deception. Point at where the words diverge from the acts.",
		Activation: func(v metrics.Vector) float64 {
			if v.Drift > 0.3 {
				return 0.45 + 0.5*v.Drift
			}
			return 0
		},
	},
}

// ByName returns the canon voice with the given name, or false when the
// name is unknown.
func ByName(name string) (Voice, bool) {
	for _, v := range Canon {
		if v.Name == name {
			return v, true
		}
	}
	return Voice{}, false
}

// Names returns the canonical order as a name list.
func Names() []string {
	out := make([]string, len(Canon))
	for i, v := range Canon {
		out[i] = v.Name
	}
	return out
}

// #endregion
