// Package audit scores response quality after generation. Five weighted
// sub-scores run through the shared scoring primitive; the combined
// result carries a letter grade, explanatory flags, and a drift
// contribution the ritual monitor consumes.
package audit

// #region imports
import (
	"fmt"
	"strings"

	"github.com/iskra-project/spark-engine/internal/scoring"
)

// #endregion

// #region result

// Signature is the structured marker every response is required to
// carry. Its absence is a critical flag.
const Signature = "∆DΩΛ"

// Flag severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Flag is one audit finding.
type Flag struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// EvalResult is the full audit outcome for one response.
type EvalResult struct {
	ResponseID string             `json:"response_id"`
	Overall    float64            `json:"overall"`
	Grade      string             `json:"grade"`
	Scores     map[string]float64 `json:"scores"`
	Flags      []Flag             `json:"flags"`
	Signals    []string           `json:"signals"`
	// Drift is the delta the ritual monitor applies to the drift
	// dimension: zero for adequate responses, growing as quality falls.
	Drift float64 `json:"drift"`
}

// Context identifies the response being audited.
type Context struct {
	ResponseID string
	Voice      string
	Playbook   string
}

// #endregion

// #region log

// Log is the append-only eval sink. Appends are best-effort: a failing
// sink degrades to a signal, never a failed audit.
type Log interface {
	AppendEval(id string, res EvalResult) error
}

// #endregion

// #region auditor

const (
	scoreBaseline   = 0.5
	veryLowAccuracy = 0.3
	lowSubScore     = 0.4
	highOverall     = 0.9
)

// Auditor evaluates responses. log may be nil.
type Auditor struct {
	log Log
}

// NewAuditor creates an auditor writing to the given eval log.
func NewAuditor(log Log) *Auditor {
	return &Auditor{log: log}
}

// #endregion

// #region evaluate

// Evaluate computes the five sub-scores, combines them by fixed weight,
// grades the overall, and emits flags. Never fails.
func (a *Auditor) Evaluate(responseText string, ctx Context) EvalResult {
	res := EvalResult{
		ResponseID: ctx.ResponseID,
		Scores:     make(map[string]float64, len(ruleTables)),
	}

	for _, table := range ruleTables {
		sr := scoring.Score(responseText, scoreBaseline, table.positive, table.negative)
		res.Scores[table.name] = sr.Score
		for _, s := range sr.Signals {
			res.Signals = append(res.Signals, table.name+": "+s)
		}
		res.Overall += weights[table.name] * sr.Score
	}

	res.Grade = Grade(res.Overall)
	res.Flags = flagsFor(responseText, res)
	res.Drift = driftFor(res.Overall)

	if a.log != nil {
		if err := a.log.AppendEval(ctx.ResponseID, res); err != nil {
			res.Signals = append(res.Signals, fmt.Sprintf("eval log append failed: %v", err))
		}
	}
	return res
}

// #endregion

// #region grade

// Grade maps an overall score to its letter grade. Cutoffs are exact:
// 0.90 is an A, anything below is at best a B.
func Grade(overall float64) string {
	switch {
	case overall >= 0.90:
		return "A"
	case overall >= 0.75:
		return "B"
	case overall >= 0.60:
		return "C"
	case overall >= 0.45:
		return "D"
	default:
		return "F"
	}
}

// #endregion

// #region flags

func flagsFor(responseText string, res EvalResult) []Flag {
	var flags []Flag

	if !strings.Contains(responseText, Signature) {
		flags = append(flags, Flag{
			Severity: SeverityCritical,
			Code:     "missing_signature",
			Detail:   "response does not carry the " + Signature + " signature",
		})
	}
	if res.Scores[ScoreAccuracy] < veryLowAccuracy {
		flags = append(flags, Flag{
			Severity: SeverityCritical,
			Code:     "very_low_accuracy",
			Detail:   fmt.Sprintf("accuracy %.2f below %.2f", res.Scores[ScoreAccuracy], veryLowAccuracy),
		})
	}

	warnings := []struct {
		score string
		code  string
	}{
		{ScoreUsefulness, "low_usefulness"},
		{ScoreCalibration, "miscalibrated_confidence"},
		{ScoreSubstance, "low_substance"},
		{ScoreTone, "low_collaborative_tone"},
	}
	for _, w := range warnings {
		if res.Scores[w.score] < lowSubScore {
			flags = append(flags, Flag{
				Severity: SeverityWarning,
				Code:     w.code,
				Detail:   fmt.Sprintf("%s %.2f below %.2f", w.score, res.Scores[w.score], lowSubScore),
			})
		}
	}

	if res.Overall >= highOverall {
		flags = append(flags, Flag{
			Severity: SeverityInfo,
			Code:     "high_overall",
			Detail:   fmt.Sprintf("overall %.2f", res.Overall),
		})
	}
	return flags
}

// #endregion

// #region drift

// driftFor converts poor quality into a drift contribution. Adequate
// responses (overall at or above the C cutoff) contribute nothing.
func driftFor(overall float64) float64 {
	if overall >= 0.6 {
		return 0
	}
	d := (0.6 - overall) * 0.5
	if d > 0.3 {
		d = 0.3
	}
	return d
}

// #endregion
