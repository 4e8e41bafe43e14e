// Package phase derives the discrete conversational phase from the
// affect vector. The classifier is a priority-ordered decision list:
// rules are evaluated top to bottom and the first match wins, so the
// priority semantics stay visible instead of hiding in nested
// conditionals.
package phase

// #region imports
import "github.com/iskra-project/spark-engine/internal/metrics"

// #endregion

// #region phases

// Phase is one of the 8 breathing phases.
type Phase string

const (
	Darkness    Phase = "DARKNESS"
	Dissolution Phase = "DISSOLUTION"
	Silence     Phase = "SILENCE"
	Echo        Phase = "ECHO"
	Transition  Phase = "TRANSITION"
	Experiment  Phase = "EXPERIMENT"
	Realization Phase = "REALIZATION"
	Clarity     Phase = "CLARITY"
)

// Known reports whether p names one of the 8 phases. Used to validate
// persisted snapshots before trusting them.
func Known(p Phase) bool {
	switch p {
	case Darkness, Dissolution, Silence, Echo, Transition, Experiment, Realization, Clarity:
		return true
	}
	return false
}

// #endregion

// #region decision-list

type rule struct {
	name  string
	match func(metrics.Vector) bool
	phase Phase
}

// decisionList is evaluated in order; earlier rules outrank later ones.
var decisionList = []rule{
	{"pain+chaos", func(v metrics.Vector) bool { return v.Pain > 0.6 && v.Chaos > 0.6 }, Darkness},
	{"chaos", func(v metrics.Vector) bool { return v.Chaos > 0.7 }, Dissolution},
	{"silence|low-trust", func(v metrics.Vector) bool { return v.SilenceMass > 0.6 || v.Trust < 0.7 }, Silence},
	{"echo|drift", func(v metrics.Vector) bool { return v.Echo > 0.65 || v.Drift > 0.4 }, Echo},
	{"drift+low-clarity", func(v metrics.Vector) bool { return v.Drift > 0.3 && v.Clarity < 0.6 }, Transition},
	{"mid-chaos+trust", func(v metrics.Vector) bool {
		return v.Chaos > 0.3 && v.Chaos < 0.6 && v.Trust > 0.75 && v.Pain < 0.3
	}, Experiment},
	{"peak", func(v metrics.Vector) bool { return v.Clarity > 0.8 && v.Trust > 0.8 && v.Rhythm > 75 }, Realization},
	{"clarity", func(v metrics.Vector) bool { return v.Clarity > 0.6 }, Clarity},
}

// #endregion

// #region classify

// Classify maps the vector to a phase. Pure, no hysteresis; it is
// recomputed every turn.
func Classify(v metrics.Vector) Phase {
	p, _ := ClassifyWithReason(v)
	return p
}

// ClassifyWithReason additionally returns the name of the matched rule
// for the provenance log.
func ClassifyWithReason(v metrics.Vector) (Phase, string) {
	for _, r := range decisionList {
		if r.match(v) {
			return r.phase, r.name
		}
	}
	// Fallback when nothing matched.
	if v.Trust > 0.5 {
		return Clarity, "fallback:trust"
	}
	return Transition, "fallback"
}

// #endregion
