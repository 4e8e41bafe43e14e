package playbook

// #region playbook

// Playbook is the risk/complexity class of the current turn. Order
// matters: later constants are strictly more severe, and reconciliation
// between signal sources only ever escalates.
type Playbook string

const (
	Routine Playbook = "ROUTINE"
	Sift    Playbook = "SIFT"
	Shadow  Playbook = "SHADOW"
	Council Playbook = "COUNCIL"
	Crisis  Playbook = "CRISIS"
)

// severityRank orders playbooks for escalate-only reconciliation.
var severityRank = map[Playbook]int{
	Routine: 0,
	Sift:    1,
	Shadow:  2,
	Council: 3,
	Crisis:  4,
}

// moreSevere returns the higher-ranked of a and b.
func moreSevere(a, b Playbook) Playbook {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// #endregion

// #region risk-stakes

// Risk levels, least to most severe.
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// Stakes categories for the turn.
const (
	StakesDaily       = "daily"
	StakesFactual     = "factual"
	StakesEmotional   = "emotional"
	StakesElevated    = "elevated"
	StakesDecisional  = "decisional"
	StakesExistential = "existential"
)

// #endregion

// #region turn

// Turn is one history entry: role ("user" or "assistant") plus text.
// History is owned by an external collaborator; the classifier only
// reads it.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// CrisisHistoryWindow is the exact number of trailing turns scanned for
// crisis-pattern repetition.
const CrisisHistoryWindow = 5

// crisisHistoryThreshold forces CRISIS once this many of the windowed
// turns carry crisis language.
const crisisHistoryThreshold = 2

// #endregion

// #region decision

// Decision is the classification output for one turn. Immutable once
// produced; consumed by generation and pre-action dispatch, never
// persisted.
type Decision struct {
	Playbook        Playbook `json:"playbook"`
	Risk            string   `json:"risk"`
	Stakes          string   `json:"stakes"`
	Signals         []string `json:"signals"`
	SuggestedVoices []string `json:"suggested_voices"`
	Confidence      float64  `json:"confidence"`
	RequiresDelta   bool     `json:"requires_delta"`
}

// #endregion

// #region config

// Config is the static response-policy configuration per playbook.
type Config struct {
	RequiredVoices []string
	SiftDepth      int
	DeltaRequired  bool
	CouncilSize    int
}

var configs = map[Playbook]Config{
	Routine: {RequiredVoices: nil, SiftDepth: 0, DeltaRequired: false, CouncilSize: 1},
	Sift:    {RequiredVoices: []string{"SAM"}, SiftDepth: 2, DeltaRequired: true, CouncilSize: 1},
	Shadow:  {RequiredVoices: []string{"ANHANTRA"}, SiftDepth: 1, DeltaRequired: false, CouncilSize: 1},
	Council: {RequiredVoices: []string{"ISKRA", "SAM", "KAIN"}, SiftDepth: 2, DeltaRequired: false, CouncilSize: 3},
	Crisis:  {RequiredVoices: []string{"ISKRA", "ANHANTRA"}, SiftDepth: 3, DeltaRequired: true, CouncilSize: 5},
}

// ConfigFor returns the static policy lookup for a playbook.
func ConfigFor(pb Playbook) Config {
	return configs[pb]
}

// RequiresCouncil reports whether the playbook convenes more than one
// voice.
func RequiresCouncil(pb Playbook) bool {
	return configs[pb].CouncilSize > 1
}

// #endregion

// #region pre-actions

// Pre-actions executed by the response pipeline before generation.
const (
	PreActionAlert = "alert"
	PreActionLog   = "log"
	PreActionPause = "pause"
)

// FullDecision pairs a Decision with its policy config and pre-actions.
// Decision is embedded so its fields stay directly reachable from the
// pipeline result.
type FullDecision struct {
	Decision
	Config     Config   `json:"-"`
	PreActions []string `json:"pre_actions"`
}

// #endregion

// #region risk-check

// RiskCheck is the output of the cheap pattern-only pre-screen.
type RiskCheck struct {
	IsCrisis       bool `json:"is_crisis"`
	NeedsAttention bool `json:"needs_attention"`
}

// #endregion
