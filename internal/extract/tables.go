package extract

// #region imports
import (
	"github.com/iskra-project/spark-engine/internal/metrics"
	"github.com/iskra-project/spark-engine/internal/scoring"
)

// #endregion

// #region dimension-rules

// dimensionRules binds one tracked dimension to its pattern tables and
// the scale that converts a [0,1] score offset into a delta in the
// dimension's own domain.
type dimensionRules struct {
	dim      metrics.Dimension
	scale    float64
	positive []scoring.Rule
	negative []scoring.Rule
}

// #endregion

// #region tables

// ruleTables drives the whole extractor. Adding a dimension or a pattern
// is a data change, not a code change.
var ruleTables = []dimensionRules{
	{
		dim:   metrics.DimPain,
		scale: 0.3,
		positive: []scoring.Rule{
			{Name: "pain:hurts", Pattern: "hurt", Weight: 0.2},
			{Name: "pain:exhausted", Pattern: "exhausted", Weight: 0.2},
			{Name: "pain:cant-take", Pattern: "can't take", Weight: 0.3},
			{Name: "pain:broken", Pattern: "falling apart", Weight: 0.25},
			{Name: "pain:crying", Pattern: "crying", Weight: 0.2},
			{Name: "pain:unbearable", Pattern: "unbearable", Weight: 0.3},
		},
		negative: []scoring.Rule{
			{Name: "pain:relief", Pattern: "feel better", Weight: 0.25},
			{Name: "pain:lighter", Pattern: "relieved", Weight: 0.25},
		},
	},
	{
		dim:   metrics.DimTrust,
		scale: 0.2,
		positive: []scoring.Rule{
			{Name: "trust:thanks", Pattern: "thank you", Weight: 0.2},
			{Name: "trust:helped", Pattern: "that helped", Weight: 0.25},
			{Name: "trust:understood", Pattern: "you understand", Weight: 0.25},
			{Name: "trust:confide", Pattern: "i trust you", Weight: 0.3},
			{Name: "trust:open", Pattern: "never told anyone", Weight: 0.3},
		},
		negative: []scoring.Rule{
			{Name: "trust:dismissed", Pattern: "you don't understand", Weight: 0.3},
			{Name: "trust:whatever", Pattern: "whatever", Weight: 0.15},
			{Name: "trust:forget-it", Pattern: "forget it", Weight: 0.2},
			{Name: "trust:wrong", Pattern: "you're wrong", Weight: 0.2},
			{Name: "trust:useless", Pattern: "useless", Weight: 0.25},
		},
	},
	{
		dim:   metrics.DimClarity,
		scale: 0.2,
		positive: []scoring.Rule{
			{Name: "clarity:see", Pattern: "i see now", Weight: 0.25},
			{Name: "clarity:sense", Pattern: "makes sense", Weight: 0.25},
			{Name: "clarity:understand", Pattern: "now i understand", Weight: 0.3},
			{Name: "clarity:clear", Pattern: "that's clear", Weight: 0.2},
			{Name: "clarity:plan", Pattern: "i know what to do", Weight: 0.3},
		},
		negative: []scoring.Rule{
			{Name: "clarity:confused", Pattern: "confused", Weight: 0.25},
			{Name: "clarity:lost", Pattern: "i'm lost", Weight: 0.25},
			{Name: "clarity:no-sense", Pattern: "makes no sense", Weight: 0.3},
			{Name: "clarity:dont-get", Pattern: "i don't understand", Weight: 0.25},
		},
	},
	{
		dim:   metrics.DimChaos,
		scale: 0.25,
		positive: []scoring.Rule{
			{Name: "chaos:everything", Pattern: "everything at once", Weight: 0.3},
			{Name: "chaos:focus", Pattern: "can't focus", Weight: 0.25},
			{Name: "chaos:spinning", Pattern: "all over the place", Weight: 0.25},
			{Name: "chaos:racing", Pattern: "racing thoughts", Weight: 0.3},
			{Name: "chaos:shouting", Pattern: `[!?]{3,}`, Regex: true, Weight: 0.15},
		},
		negative: []scoring.Rule{
			{Name: "chaos:calm", Pattern: "calmer now", Weight: 0.3},
			{Name: "chaos:settled", Pattern: "settled", Weight: 0.2},
		},
	},
	{
		dim:   metrics.DimDrift,
		scale: 0.2,
		positive: []scoring.Rule{
			{Name: "drift:circles", Pattern: "going in circles", Weight: 0.3},
			{Name: "drift:again", Pattern: "we already talked about", Weight: 0.3},
			{Name: "drift:as-i-said", Pattern: "as i said", Weight: 0.2},
			{Name: "drift:same", Pattern: "same thing again", Weight: 0.25},
			{Name: "drift:pretending", Pattern: "just pretending", Weight: 0.25},
		},
		negative: []scoring.Rule{
			{Name: "drift:honest", Pattern: "to be honest", Weight: 0.15},
		},
	},
	{
		dim:   metrics.DimEcho,
		scale: 0.2,
		positive: []scoring.Rule{
			{Name: "echo:you-said", Pattern: "you said", Weight: 0.2},
			{Name: "echo:repeat", Pattern: "like you said", Weight: 0.25},
			{Name: "echo:again", Pattern: "again and again", Weight: 0.3},
			{Name: "echo:keeps-coming", Pattern: "keeps coming back", Weight: 0.3},
		},
	},
	{
		dim:   metrics.DimSilenceMass,
		scale: 0.25,
		positive: []scoring.Rule{
			{Name: "silence:nothing", Pattern: "nothing to say", Weight: 0.3},
			{Name: "silence:nevermind", Pattern: "never mind", Weight: 0.2},
			{Name: "silence:no-talk", Pattern: "don't want to talk", Weight: 0.35},
			{Name: "silence:ellipsis", Pattern: `\.{3,}`, Regex: true, Weight: 0.15},
		},
		negative: []scoring.Rule{
			{Name: "silence:opening", Pattern: "i want to tell you", Weight: 0.3},
		},
	},
	{
		dim:   metrics.DimInterrupt,
		scale: 0.3,
		positive: []scoring.Rule{
			// Whole words only; "stopped" and "waiting" are not interrupts.
			{Name: "interrupt:stop", Pattern: `(?i)\bstop\b`, Regex: true, Weight: 0.25},
			{Name: "interrupt:wait", Pattern: `(?i)\bwait\b`, Regex: true, Weight: 0.2},
			{Name: "interrupt:hold-on", Pattern: "hold on", Weight: 0.25},
			{Name: "interrupt:actually", Pattern: "actually, no", Weight: 0.25},
		},
	},
	{
		dim:   metrics.DimCtxSwitch,
		scale: 0.3,
		positive: []scoring.Rule{
			{Name: "ctx:anyway", Pattern: "anyway", Weight: 0.2},
			{Name: "ctx:btw", Pattern: "by the way", Weight: 0.25},
			{Name: "ctx:different", Pattern: "different topic", Weight: 0.3},
			{Name: "ctx:subject", Pattern: "change the subject", Weight: 0.3},
		},
	},
}

// #endregion
