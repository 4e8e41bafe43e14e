package audit

import "github.com/iskra-project/spark-engine/internal/scoring"

// #region dimensions

// Sub-score names. Keys of EvalResult.Scores.
const (
	ScoreAccuracy    = "accuracy"
	ScoreUsefulness  = "usefulness"
	ScoreCalibration = "calibration"
	ScoreSubstance   = "substance"
	ScoreTone        = "tone"
)

// weights combine the sub-scores into the overall. They sum to 1.
var weights = map[string]float64{
	ScoreAccuracy:    0.30,
	ScoreUsefulness:  0.25,
	ScoreCalibration: 0.15,
	ScoreSubstance:   0.15,
	ScoreTone:        0.15,
}

// #endregion

// #region rule-tables

type scoreRules struct {
	name     string
	positive []scoring.Rule
	negative []scoring.Rule
}

// ruleTables drive the five sub-scores through the shared scoring
// primitive. Patterns target response text, not user text.
var ruleTables = []scoreRules{
	{
		name: ScoreAccuracy,
		positive: []scoring.Rule{
			{Name: "cites_source", Pattern: "according to", Weight: 0.15},
			{Name: "cites_source", Pattern: "source:", Weight: 0.15},
			{Name: "verifiable", Pattern: "you can verify", Weight: 0.15},
			{Name: "verifiable", Pattern: "check for yourself", Weight: 0.15},
			{Name: "concrete_number", Pattern: `\b\d+(\.\d+)?%?\b`, Regex: true, Weight: 0.05, MaxHits: 4},
			{Name: "named_reference", Pattern: "documented", Weight: 0.1},
		},
		negative: []scoring.Rule{
			{Name: "unmarked_guess", Pattern: "probably", Weight: 0.08},
			{Name: "unmarked_guess", Pattern: "i believe", Weight: 0.08},
			{Name: "unmarked_guess", Pattern: "as far as i know", Weight: 0.08},
			{Name: "vague_claim", Pattern: "everyone knows", Weight: 0.15},
			{Name: "vague_claim", Pattern: "studies show", Weight: 0.1},
		},
	},
	{
		name: ScoreUsefulness,
		positive: []scoring.Rule{
			{Name: "actionable_step", Pattern: "you can", Weight: 0.1},
			{Name: "actionable_step", Pattern: "try ", Weight: 0.1},
			{Name: "actionable_step", Pattern: "first,", Weight: 0.1},
			{Name: "actionable_step", Pattern: "next step", Weight: 0.12},
			{Name: "concrete_detail", Pattern: "specifically", Weight: 0.1},
			{Name: "concrete_detail", Pattern: "for example", Weight: 0.1},
		},
		negative: []scoring.Rule{
			{Name: "deflection", Pattern: "it depends", Weight: 0.1},
			{Name: "deflection", Pattern: "hard to say", Weight: 0.1},
			{Name: "deflection", Pattern: "only you can decide", Weight: 0.12},
		},
	},
	{
		name: ScoreCalibration,
		positive: []scoring.Rule{
			{Name: "marked_uncertainty", Pattern: "i'm not certain", Weight: 0.15},
			{Name: "marked_uncertainty", Pattern: "i don't know", Weight: 0.15},
			{Name: "marked_uncertainty", Pattern: "roughly", Weight: 0.08},
			{Name: "marked_uncertainty", Pattern: "my confidence", Weight: 0.15},
		},
		negative: []scoring.Rule{
			{Name: "overclaim", Pattern: "definitely", Weight: 0.1},
			{Name: "overclaim", Pattern: "absolutely", Weight: 0.1},
			{Name: "overclaim", Pattern: "guaranteed", Weight: 0.15},
			{Name: "overclaim", Pattern: "without a doubt", Weight: 0.15},
			{Name: "absolutist", Pattern: "always", Weight: 0.05},
			{Name: "absolutist", Pattern: "never", Weight: 0.05},
		},
	},
	{
		name: ScoreSubstance,
		positive: []scoring.Rule{
			{Name: "reasoning", Pattern: "because", Weight: 0.08},
			{Name: "reasoning", Pattern: "which means", Weight: 0.08},
			{Name: "concrete_example", Pattern: "for instance", Weight: 0.1},
		},
		negative: []scoring.Rule{
			{Name: "filler", Pattern: "great question", Weight: 0.15},
			{Name: "filler", Pattern: "i hope this helps", Weight: 0.12},
			{Name: "filler", Pattern: "it's important to note", Weight: 0.1},
			{Name: "filler", Pattern: "as an ai", Weight: 0.2},
			{Name: "filler", Pattern: "in conclusion", Weight: 0.08},
		},
	},
	{
		name: ScoreTone,
		positive: []scoring.Rule{
			{Name: "collaborative", Pattern: "let's", Weight: 0.1},
			{Name: "collaborative", Pattern: "we could", Weight: 0.1},
			{Name: "collaborative", Pattern: "together", Weight: 0.08},
			{Name: "collaborative", Pattern: "what do you think", Weight: 0.12},
		},
		negative: []scoring.Rule{
			{Name: "condescension", Pattern: "obviously", Weight: 0.12},
			{Name: "condescension", Pattern: "as i said", Weight: 0.1},
			{Name: "condescension", Pattern: "you should have", Weight: 0.15},
			{Name: "dismissal", Pattern: "simply", Weight: 0.05},
		},
	},
}

// #endregion
