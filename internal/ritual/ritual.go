// Package ritual watches the affect vector for reset-worthy conditions
// and applies the corresponding state transforms. Triggers form an
// ordered decision list (first match wins) and executors are pure
// functions over the vector.
package ritual

// #region imports
import (
	"fmt"

	"github.com/iskra-project/spark-engine/internal/metrics"
	"github.com/iskra-project/spark-engine/internal/phase"
)

// #endregion

// #region rituals

// Ritual names a threshold-triggered state transform.
type Ritual string

const (
	Phoenix Ritual = "PHOENIX" // full reset to the neutral baseline
	Shatter Ritual = "SHATTER" // partial pattern-break mutation
	Council Ritual = "COUNCIL" // multi-voice deliberation, no mutation
)

// Trigger is a stateless recommendation. In the interactive path it is
// surfaced for user confirmation before any executor runs; only the
// background drift monitor may apply it unprompted.
type Trigger struct {
	ShouldTrigger bool   `json:"should_trigger"`
	Ritual        Ritual `json:"ritual,omitempty"`
	Reason        string `json:"reason"`
}

// #endregion

// #region decision-list

type rule struct {
	match  func(metrics.Vector) bool
	ritual Ritual
	reason func(metrics.Vector) string
}

// decisionList order is load-bearing: PHOENIX outranks SHATTER even
// when drift alone would satisfy the SHATTER predicate.
var decisionList = []rule{
	{
		match: func(v metrics.Vector) bool {
			return (v.Drift > 0.6 && v.Trust < 0.5) || v.Chaos > 0.8
		},
		ritual: Phoenix,
		reason: func(v metrics.Vector) string {
			return fmt.Sprintf("drift=%.2f trust=%.2f chaos=%.2f", v.Drift, v.Trust, v.Chaos)
		},
	},
	{
		match:  func(v metrics.Vector) bool { return v.Drift > 0.8 },
		ritual: Shatter,
		reason: func(v metrics.Vector) string { return fmt.Sprintf("drift=%.2f", v.Drift) },
	},
	{
		match: func(v metrics.Vector) bool {
			count := 0
			if v.Pain > 0.6 {
				count++
			}
			if v.Chaos > 0.5 {
				count++
			}
			if v.Drift > 0.4 {
				count++
			}
			if v.Trust < 0.6 {
				count++
			}
			return count >= 3
		},
		ritual: Council,
		reason: func(v metrics.Vector) string {
			return fmt.Sprintf("pain=%.2f chaos=%.2f drift=%.2f trust=%.2f", v.Pain, v.Chaos, v.Drift, v.Trust)
		},
	},
}

// #endregion

// #region check-triggers

// CheckTriggers evaluates the decision list against the vector.
func CheckTriggers(v metrics.Vector) Trigger {
	for _, r := range decisionList {
		if r.match(v) {
			return Trigger{
				ShouldTrigger: true,
				Ritual:        r.ritual,
				Reason:        r.reason(v),
			}
		}
	}
	return Trigger{Reason: "no trigger condition met"}
}

// #endregion

// #region executors

// ExecutePhoenix replaces the whole vector with the neutral baseline,
// discarding everything history accumulated.
func ExecutePhoenix(metrics.Vector) metrics.Vector {
	return metrics.Defaults()
}

// ExecuteShatter mutates only the pattern-bound fields: drift drops to
// zero, clarity takes a bounded hit, chaos and pain rise to bounded
// ceilings. Every other field is untouched.
func ExecuteShatter(v metrics.Vector) metrics.Vector {
	v.Drift = 0
	v.Clarity = max(0.3, v.Clarity-0.3)
	v.Chaos = min(0.7, v.Chaos+0.2)
	v.Pain = min(0.8, v.Pain+0.1)
	v.Normalize()
	return v
}

// #endregion

// #region phase-after

// PhaseAfter is the static phase each ritual lands the session in.
func PhaseAfter(r Ritual) phase.Phase {
	switch r {
	case Phoenix:
		return phase.Transition
	case Shatter:
		return phase.Dissolution
	case Council:
		return phase.Clarity
	default:
		return phase.Clarity
	}
}

// #endregion
