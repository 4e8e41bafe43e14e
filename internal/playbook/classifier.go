// Package playbook classifies each turn into a response-policy class.
// Signal sources (text patterns, the affect vector, recent history)
// are combined with escalate-only reconciliation: a later
// source may raise the severity but never lower it.
package playbook

// #region imports
import (
	"fmt"
	"strings"

	"github.com/iskra-project/spark-engine/internal/metrics"
)

// #endregion

// #region thresholds

// Thresholds tunes the metric signal source.
type Thresholds struct {
	LowTrust         float64 // below → low_trust signal, escalate
	HighPain         float64 // above → high_pain signal, escalate
	HighDrift        float64 // above → suggest the drift auditor voice
	ComplexWordCount int     // above → complex_message signal, stakes bump
}

// DefaultThresholds returns the canonical tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowTrust:         0.4,
		HighPain:         0.7,
		HighDrift:        0.4,
		ComplexWordCount: 120,
	}
}

// #endregion

// #region classifier

// Classifier evaluates turns. Stateless apart from its thresholds.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// #endregion

// #region classify

// Classify combines pattern, metric and history signals into a
// Decision. It never fails: with no matching signal the turn is
// ROUTINE.
func (c *Classifier) Classify(text string, vec metrics.Vector, history []Turn) Decision {
	lower := strings.ToLower(text)

	d := c.patternDecision(lower)
	c.applyMetricSignals(&d, vec)
	c.applyComplexity(&d, text)
	c.applyHistory(&d, history)

	if len(d.Signals) == 0 {
		d.Signals = []string{"no_signal"}
		d.Confidence = 0.5
	}
	return d
}

// #endregion

// #region pattern-source

func (c *Classifier) patternDecision(lower string) Decision {
	if p := firstMatch(lower, crisisPatterns); p != "" {
		return Decision{
			Playbook:   Crisis,
			Risk:       RiskCritical,
			Stakes:     StakesExistential,
			Signals:    []string{"crisis_language:" + p},
			Confidence: 0.9,
		}
	}
	if p := firstMatch(lower, councilPatterns); p != "" {
		return Decision{
			Playbook:   Council,
			Risk:       RiskHigh,
			Stakes:     StakesDecisional,
			Signals:    []string{"decision_fork:" + p},
			Confidence: 0.75,
		}
	}
	if p := firstMatch(lower, siftPatterns); p != "" {
		return Decision{
			Playbook:      Sift,
			Risk:          RiskModerate,
			Stakes:        StakesFactual,
			Signals:       []string{"fact_verification:" + p},
			Confidence:    0.75,
			RequiresDelta: true,
		}
	}
	if p := firstMatch(lower, shadowPatterns); p != "" {
		return Decision{
			Playbook:   Shadow,
			Risk:       RiskModerate,
			Stakes:     StakesEmotional,
			Signals:    []string{"ambiguous_emotion:" + p},
			Confidence: 0.65,
		}
	}
	return Decision{
		Playbook:   Routine,
		Risk:       RiskLow,
		Stakes:     StakesDaily,
		Confidence: 0.6,
	}
}

// #endregion

// #region metric-source

// applyMetricSignals escalates on affect state even when the text
// itself carried no risky pattern.
func (c *Classifier) applyMetricSignals(d *Decision, vec metrics.Vector) {
	if vec.Trust < c.thresholds.LowTrust {
		d.Signals = append(d.Signals, fmt.Sprintf("low_trust=%.2f", vec.Trust))
		c.escalate(d, Shadow, RiskModerate)
	}
	if vec.Pain > c.thresholds.HighPain {
		d.Signals = append(d.Signals, fmt.Sprintf("high_pain=%.2f", vec.Pain))
		c.escalate(d, Shadow, RiskHigh)
	}
	if vec.Drift > c.thresholds.HighDrift {
		// The drift auditor joins regardless of playbook.
		d.Signals = append(d.Signals, fmt.Sprintf("high_drift=%.2f", vec.Drift))
		d.SuggestedVoices = appendUnique(d.SuggestedVoices, "ISKRIV")
	}
}

// escalate raises playbook and risk, never lowers either.
func (c *Classifier) escalate(d *Decision, pb Playbook, risk string) {
	if moreSevere(d.Playbook, pb) != d.Playbook {
		d.Playbook = pb
		d.Stakes = defaultStakes(pb)
	}
	if riskRank(risk) > riskRank(d.Risk) {
		d.Risk = risk
	}
}

// #endregion

// #region complexity-source

// applyComplexity flags long or many-question turns. Complexity raises
// stakes but never changes the playbook on its own.
func (c *Classifier) applyComplexity(d *Decision, text string) {
	words := len(strings.Fields(text))
	questions := strings.Count(text, "?")
	if words > c.thresholds.ComplexWordCount || questions >= 3 {
		d.Signals = append(d.Signals, fmt.Sprintf("complex_message words=%d questions=%d", words, questions))
		if d.Stakes == StakesDaily {
			d.Stakes = StakesElevated
		}
	}
}

// #endregion

// #region history-source

// applyHistory scans the trailing window for crisis repetition. Two or
// more crisis turns force CRISIS regardless of the current text;
// escalation overrides de-escalation.
func (c *Classifier) applyHistory(d *Decision, history []Turn) {
	window := history
	if len(window) > CrisisHistoryWindow {
		window = window[len(window)-CrisisHistoryWindow:]
	}

	hits := 0
	for _, turn := range window {
		if firstMatch(strings.ToLower(turn.Text), crisisPatterns) != "" {
			hits++
		}
	}
	if hits >= crisisHistoryThreshold {
		d.Signals = append(d.Signals, fmt.Sprintf("crisis_history hits=%d window=%d", hits, len(window)))
		d.Playbook = Crisis
		d.Risk = RiskCritical
		d.Stakes = StakesExistential
		if d.Confidence < 0.9 {
			d.Confidence = 0.9
		}
	}
}

// #endregion

// #region force

// ForcePlaybook bypasses classification entirely, the operator escape
// hatch.
func ForcePlaybook(pb Playbook, reason string) Decision {
	return Decision{
		Playbook:   pb,
		Risk:       defaultRisk(pb),
		Stakes:     defaultStakes(pb),
		Signals:    []string{"manual_override:" + reason},
		Confidence: 1.0,
	}
}

// #endregion

// #region make-decision

// MakeDecision composes classification, static config, and pre-actions
// for the response pipeline.
func (c *Classifier) MakeDecision(text string, vec metrics.Vector, history []Turn) FullDecision {
	d := c.Classify(text, vec, history)
	return FullDecision{
		Decision:   d,
		Config:     ConfigFor(d.Playbook),
		PreActions: preActionsFor(d.Playbook),
	}
}

func preActionsFor(pb Playbook) []string {
	switch pb {
	case Crisis:
		return []string{PreActionAlert, PreActionLog}
	case Shadow:
		return []string{PreActionPause}
	default:
		return nil
	}
}

// #endregion

// #region quick-risk-check

// QuickRiskCheck is the low-latency pattern-only pre-screen run before
// the full classifier: no metrics, no history.
func QuickRiskCheck(text string) RiskCheck {
	lower := strings.ToLower(text)
	crisis := firstMatch(lower, crisisPatterns) != ""
	return RiskCheck{
		IsCrisis:       crisis,
		NeedsAttention: crisis || firstMatch(lower, attentionPatterns) != "",
	}
}

// #endregion

// #region helpers

func firstMatch(lower string, patterns []string) string {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}

func appendUnique(list []string, item string) []string {
	for _, v := range list {
		if v == item {
			return list
		}
	}
	return append(list, item)
}

func riskRank(risk string) int {
	switch risk {
	case RiskCritical:
		return 3
	case RiskHigh:
		return 2
	case RiskModerate:
		return 1
	default:
		return 0
	}
}

func defaultRisk(pb Playbook) string {
	switch pb {
	case Crisis:
		return RiskCritical
	case Council:
		return RiskHigh
	case Shadow, Sift:
		return RiskModerate
	default:
		return RiskLow
	}
}

func defaultStakes(pb Playbook) string {
	switch pb {
	case Crisis:
		return StakesExistential
	case Council:
		return StakesDecisional
	case Shadow:
		return StakesEmotional
	case Sift:
		return StakesFactual
	default:
		return StakesDaily
	}
}

// #endregion
