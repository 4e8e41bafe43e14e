// Package extract maps free user text to per-metric deltas. Every
// dimension runs its own pattern table through the shared scoring
// primitive; dimensions with no firing rule stay out of the result so
// the caller keeps their prior values.
package extract

// #region imports
import (
	"strings"

	"github.com/iskra-project/spark-engine/internal/metrics"
	"github.com/iskra-project/spark-engine/internal/scoring"
)

// #endregion

// #region result

// Result bundles the sparse delta set with the signals that produced it.
type Result struct {
	Deltas  metrics.Deltas
	Signals []string
}

// #endregion

// #region extract

// scoreBaseline centers each dimension pass so positive rules push the
// delta up and negative rules push it down.
const scoreBaseline = 0.5

// Deltas runs every dimension table against text. An empty utterance is
// itself a signal: it contributes silence mass and nothing else.
func Deltas(text string) Result {
	res := Result{Deltas: metrics.Deltas{}}

	if strings.TrimSpace(text) == "" {
		res.Deltas[metrics.DimSilenceMass] = 0.1
		res.Signals = append(res.Signals, "silence:empty-turn +0.10")
		return res
	}

	for _, table := range ruleTables {
		scored := scoring.Score(text, scoreBaseline, table.positive, table.negative)
		if !scored.Fired() {
			continue
		}
		res.Deltas[table.dim] = (scored.Score - scoreBaseline) * 2 * table.scale
		res.Signals = append(res.Signals, scored.Signals...)
	}

	applyRhythm(text, &res)
	return res
}

// #endregion

// #region rhythm

// applyRhythm derives a tempo delta from message shape rather than
// patterns: terse turns slow the shared rhythm, engaged ones raise it.
func applyRhythm(text string, res *Result) {
	words := len(strings.Fields(text))
	switch {
	case words <= 3:
		res.Deltas[metrics.DimRhythm] = -4
		res.Signals = append(res.Signals, "rhythm:terse -4")
	case words >= 60:
		res.Deltas[metrics.DimRhythm] = 3
		res.Signals = append(res.Signals, "rhythm:engaged +3")
	case words >= 25:
		res.Deltas[metrics.DimRhythm] = 1.5
		res.Signals = append(res.Signals, "rhythm:steady +1.5")
	}
}

// #endregion
