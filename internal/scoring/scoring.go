// Package scoring implements the shared rule-driven scoring primitive.
// Both the metric extractor and the response auditor run their pattern
// tables through Score, so there is exactly one tested matching
// implementation instead of parallel ad hoc logic per feature.
package scoring

// #region imports
import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// #endregion

// #region rule

// Rule is a single weighted pattern. Pattern is matched as a lowercase
// substring unless Regex is set. MaxHits caps how many occurrences of a
// single rule can contribute (0 means DefaultMaxHits).
type Rule struct {
	Name    string
	Pattern string
	Regex   bool
	Weight  float64
	MaxHits int
}

// DefaultMaxHits bounds the contribution of one rule so repeated tokens
// cannot run a score away on their own.
const DefaultMaxHits = 3

// #endregion

// #region result

// Result is the outcome of one scoring pass.
type Result struct {
	Score   float64
	Signals []string
}

// Fired reports whether at least one rule matched.
func (r Result) Fired() bool {
	return len(r.Signals) > 0
}

// #endregion

// #region regex-cache

var (
	regexMu    sync.Mutex
	regexCache = map[string]*regexp.Regexp{}
)

func compiled(pattern string) (*regexp.Regexp, error) {
	regexMu.Lock()
	defer regexMu.Unlock()
	if re, ok := regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache[pattern] = re
	return re, nil
}

// #endregion

// #region score

// Score starts at baseline, adds weight*hits for each positive rule and
// subtracts weight*hits for each negative rule, then clamps to [0,1].
// Hits are capped per rule. A misbehaving rule never aborts the pass:
// its evaluation is isolated, treated as "did not fire", and recorded
// as a signal.
func Score(text string, baseline float64, positive, negative []Rule) Result {
	lower := strings.ToLower(text)
	score := baseline
	var signals []string

	for _, rule := range positive {
		hits, sig := evaluate(rule, text, lower)
		if sig != "" {
			signals = append(signals, sig)
		}
		if hits > 0 {
			score += rule.Weight * float64(hits)
			signals = append(signals, fmt.Sprintf("%s +%.2f x%d", rule.Name, rule.Weight, hits))
		}
	}

	for _, rule := range negative {
		hits, sig := evaluate(rule, text, lower)
		if sig != "" {
			signals = append(signals, sig)
		}
		if hits > 0 {
			score -= rule.Weight * float64(hits)
			signals = append(signals, fmt.Sprintf("%s -%.2f x%d", rule.Name, rule.Weight, hits))
		}
	}

	return Result{Score: clamp01(score), Signals: signals}
}

// #endregion

// #region evaluate

// evaluate returns the capped hit count for one rule. The second return
// is a non-empty signal when the rule could not be evaluated.
func evaluate(rule Rule, original, lower string) (hits int, skipped string) {
	defer func() {
		if r := recover(); r != nil {
			hits = 0
			skipped = fmt.Sprintf("%s skipped: %v", rule.Name, r)
		}
	}()

	if rule.Pattern == "" {
		return 0, ""
	}

	if rule.Regex {
		re, err := compiled(rule.Pattern)
		if err != nil {
			return 0, fmt.Sprintf("%s skipped: %v", rule.Name, err)
		}
		hits = len(re.FindAllStringIndex(original, -1))
	} else {
		hits = strings.Count(lower, strings.ToLower(rule.Pattern))
	}

	maxHits := rule.MaxHits
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	if hits > maxHits {
		hits = maxHits
	}
	return hits, ""
}

// #endregion

// #region helpers

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion
