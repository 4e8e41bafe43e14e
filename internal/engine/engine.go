// Package engine runs the per-turn decision pipeline. Ordering within a
// turn is strict compute-then-use: the affect vector is mutated and the
// snapshot written before phase, voice and playbook classification read
// it. No two turns are processed concurrently; the mutex is the single
// logical thread.
package engine

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iskra-project/spark-engine/internal/audit"
	"github.com/iskra-project/spark-engine/internal/extract"
	"github.com/iskra-project/spark-engine/internal/generate"
	"github.com/iskra-project/spark-engine/internal/metrics"
	"github.com/iskra-project/spark-engine/internal/phase"
	"github.com/iskra-project/spark-engine/internal/playbook"
	"github.com/iskra-project/spark-engine/internal/provenance"
	"github.com/iskra-project/spark-engine/internal/ritual"
	"github.com/iskra-project/spark-engine/internal/store"
	"github.com/iskra-project/spark-engine/internal/voice"
)

// #endregion

// #region engine

// historyMax bounds the conversation window kept for classification.
const historyMax = 20

// Engine owns the session state and drives every decision component.
type Engine struct {
	mu sync.Mutex

	log        *zap.SugaredLogger
	store      *store.Store
	gen        generate.Generator
	selector   *voice.Selector
	classifier *playbook.Classifier
	auditor    *audit.Auditor
	council    *ritual.CouncilRunner

	snap          store.Snapshot
	history       []playbook.Turn
	pending       *ritual.Trigger
	lastUtterance string
	voiceOverride string

	rhythmStep float64
}

// Options tunes engine construction.
type Options struct {
	Thresholds playbook.Thresholds
	RhythmStep float64
}

// New loads (or reseeds) the snapshot and wires the pipeline. gen may
// be nil for decision-only use.
func New(log *zap.SugaredLogger, st *store.Store, gen generate.Generator, opts Options) (*Engine, error) {
	snap, reseeded, err := st.LoadOrReseed()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if reseeded {
		log.Infow("snapshot reseeded from defaults", "phase", snap.Phase)
		if err := provenance.Append(st.DB(), provenance.Entry{
			Kind:     provenance.KindReseed,
			Decision: string(snap.Phase),
			Reason:   "snapshot missing or corrupt",
		}); err != nil {
			log.Warnw("provenance append failed", "err", err)
		}
	}

	step := opts.RhythmStep
	if step <= 0 {
		step = 2.0
	}

	return &Engine{
		log:        log,
		store:      st,
		gen:        gen,
		selector:   voice.NewSelector(st),
		classifier: playbook.NewClassifier(opts.Thresholds),
		auditor:    audit.NewAuditor(st),
		council:    ritual.NewCouncilRunner(gen),
		snap:       snap,
		rhythmStep: step,
	}, nil
}

// #endregion

// #region turn-result

// TurnResult is everything one turn produced.
type TurnResult struct {
	TurnID      string                `json:"turn_id"`
	Risk        playbook.RiskCheck    `json:"risk"`
	Signals     []string              `json:"signals"`
	Metrics     metrics.Vector        `json:"metrics"`
	Phase       phase.Phase           `json:"phase"`
	PhaseReason string                `json:"phase_reason"`
	Voice       voice.Selection       `json:"-"`
	VoiceName   string                `json:"voice"`
	VoiceSymbol string                `json:"voice_symbol"`
	Decision    playbook.FullDecision `json:"decision"`
	Ritual      ritual.Trigger        `json:"ritual"`
	Response    string                `json:"response,omitempty"`
	Eval        *audit.EvalResult     `json:"eval,omitempty"`
	GenError    string                `json:"gen_error,omitempty"`
}

// #endregion

// #region process-turn

// ProcessTurn runs the full pipeline for one user utterance.
func (e *Engine) ProcessTurn(ctx context.Context, utterance, manualVoice string) (*TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &TurnResult{TurnID: uuid.New().String()}
	res.Risk = playbook.QuickRiskCheck(utterance)

	// Mutate first: extraction deltas land in the vector before anything
	// classifies it.
	extracted := extract.Deltas(utterance)
	e.snap.Metrics.Apply(extracted.Deltas)
	res.Signals = extracted.Signals

	prevPhase := e.snap.Phase
	newPhase, reason := phase.ClassifyWithReason(e.snap.Metrics)
	if newPhase != prevPhase {
		e.log.Infow("phase change", "from", prevPhase, "to", newPhase, "rule", reason)
		e.appendProvenance(provenance.Entry{
			Kind:     provenance.KindPhaseChange,
			Decision: fmt.Sprintf("%s->%s", prevPhase, newPhase),
			Reason:   reason,
		})
	}
	e.snap.Phase = newPhase
	res.Phase = newPhase
	res.PhaseReason = reason

	override := manualVoice
	if override == "" {
		override = e.voiceOverride
	}
	sel := e.selector.Select(e.snap.Metrics, e.snap.LastVoice, override)
	e.snap.LastVoice = sel.Voice.Name
	res.Voice = sel
	res.VoiceName = sel.Voice.Name
	res.VoiceSymbol = sel.Voice.Symbol

	res.Decision = e.classifier.MakeDecision(utterance, e.snap.Metrics, e.history)
	e.appendProvenance(provenance.Entry{
		Kind:        provenance.KindPlaybook,
		Decision:    string(res.Decision.Playbook),
		Reason:      res.Decision.Risk,
		SignalsJSON: marshalSignals(res.Decision.Signals),
	})

	e.pushHistory(playbook.Turn{Role: "user", Text: utterance})
	e.lastUtterance = utterance
	e.persist()

	if e.gen != nil {
		e.respond(ctx, utterance, res)
	}

	// Ritual check runs last so the drift the auditor fed back is already
	// in the vector. A response bad enough to push drift over a threshold
	// surfaces the recommendation on this turn, not the next.
	res.Ritual = ritual.CheckTriggers(e.snap.Metrics)
	if res.Ritual.ShouldTrigger {
		// Interactive path: recommend only, wait for confirm/defer.
		e.pending = &res.Ritual
		e.appendProvenance(provenance.Entry{
			Kind:     provenance.KindRitualTrigger,
			Decision: string(res.Ritual.Ritual),
			Reason:   res.Ritual.Reason,
		})
	}

	res.Metrics = e.snap.Metrics
	return res, nil
}

// respond generates, audits, and feeds the audit drift back into the
// vector. Generation failure degrades to a recorded error, never a
// failed turn.
func (e *Engine) respond(ctx context.Context, utterance string, res *TurnResult) {
	text, err := e.generateText(ctx, utterance, res)
	if err != nil {
		e.log.Warnw("generation failed", "turn", res.TurnID, "err", err)
		res.GenError = err.Error()
		return
	}
	res.Response = text
	e.pushHistory(playbook.Turn{Role: "assistant", Text: text})

	eval := e.auditor.Evaluate(text, audit.Context{
		ResponseID: res.TurnID,
		Voice:      res.VoiceName,
		Playbook:   string(res.Decision.Playbook),
	})
	res.Eval = &eval

	if eval.Drift > 0 {
		e.snap.Metrics.Apply(metrics.Deltas{metrics.DimDrift: eval.Drift})
		e.persist()
	}
}

func (e *Engine) generateText(ctx context.Context, utterance string, res *TurnResult) (string, error) {
	if playbook.RequiresCouncil(res.Decision.Playbook) {
		d, err := e.council.Run(ctx, utterance, res.Decision.Config.RequiredVoices)
		if err != nil {
			return "", err
		}
		return d.Synthesis, nil
	}
	resp, err := e.gen.Generate(ctx, generate.Request{
		Voice:    res.VoiceName,
		Phase:    string(res.Phase),
		Playbook: string(res.Decision.Playbook),
		Prompt:   utterance,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// #endregion

// #region rituals

// PendingRitual returns the trigger awaiting confirmation, if any.
func (e *Engine) PendingRitual() *ritual.Trigger {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	t := *e.pending
	return &t
}

// ConfirmRitual executes the pending ritual and clears it.
func (e *Engine) ConfirmRitual(ctx context.Context) (*ritual.Trigger, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil, fmt.Errorf("no ritual pending")
	}
	t := *e.pending
	e.pending = nil
	if err := e.execute(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeferRitual discards the pending trigger without executing it.
func (e *Engine) DeferRitual() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return fmt.Errorf("no ritual pending")
	}
	e.appendProvenance(provenance.Entry{
		Kind:     provenance.KindRitualDeferred,
		Decision: string(e.pending.Ritual),
		Reason:   e.pending.Reason,
	})
	e.pending = nil
	return nil
}

// execute applies one ritual under the held lock.
func (e *Engine) execute(ctx context.Context, t ritual.Trigger) error {
	switch t.Ritual {
	case ritual.Phoenix:
		e.snap.Metrics = ritual.ExecutePhoenix(e.snap.Metrics)
	case ritual.Shatter:
		e.snap.Metrics = ritual.ExecuteShatter(e.snap.Metrics)
	case ritual.Council:
		if e.gen != nil {
			if _, err := e.council.Run(ctx, e.lastUtterance, voice.Names()); err != nil {
				return fmt.Errorf("council ritual: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown ritual %q", t.Ritual)
	}

	e.snap.Phase = ritual.PhaseAfter(t.Ritual)
	e.persist()
	e.log.Infow("ritual executed", "ritual", t.Ritual, "phase", e.snap.Phase)
	e.appendProvenance(provenance.Entry{
		Kind:     provenance.KindRitualExecuted,
		Decision: string(t.Ritual),
		Reason:   t.Reason,
	})
	return nil
}

// #endregion

// #region voice-controls

// SetVoiceOverride pins the speaking voice for subsequent turns. An
// empty name clears the pin; an unknown name is rejected.
func (e *Engine) SetVoiceOverride(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == "" {
		e.voiceOverride = ""
		return nil
	}
	v, ok := voice.ByName(name)
	if !ok {
		return fmt.Errorf("unknown voice %q", name)
	}
	e.voiceOverride = v.Name
	e.appendProvenance(provenance.Entry{
		Kind:     provenance.KindOverride,
		Decision: v.Name,
		Reason:   "manual voice override",
	})
	return nil
}

// AdjustVoicePreference applies one step of user feedback to a voice's
// multiplier.
func (e *Engine) AdjustVoicePreference(name string, direction int) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mult, err := e.selector.AdjustPreference(name, direction)
	if err != nil {
		return 0, err
	}
	if e.snap.Prefs == nil {
		e.snap.Prefs = map[string]float64{}
	}
	e.snap.Prefs[voiceKey(name)] = mult
	return mult, nil
}

// #endregion

// #region state-access

// State returns a copy of the current snapshot.
func (e *Engine) State() store.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.snap
	snap.Prefs = make(map[string]float64, len(e.snap.Prefs))
	for k, v := range e.snap.Prefs {
		snap.Prefs[k] = v
	}
	return snap
}

// CurrentPhase returns the phase alone.
func (e *Engine) CurrentPhase() phase.Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Phase
}

// Eval looks up a stored audit result by response id.
func (e *Engine) Eval(responseID string) (audit.EvalResult, error) {
	return e.store.GetEval(responseID)
}

// #endregion

// #region rhythm-ticker

// StartRhythm launches the background rhythm drift: each tick lowers
// the shared rhythm by one step, simulating a conversation going quiet.
// This is the only path allowed to auto-apply a triggered ritual
// without user confirmation. Ordering relative to user turns is
// deliberately nondeterministic.
func (e *Engine) StartRhythm(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.rhythmTick(ctx)
			}
		}
	}()
}

func (e *Engine) rhythmTick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snap.Metrics.Apply(metrics.Deltas{metrics.DimRhythm: -e.rhythmStep})
	e.snap.Phase = phase.Classify(e.snap.Metrics)
	e.persist()

	if t := ritual.CheckTriggers(e.snap.Metrics); t.ShouldTrigger {
		e.log.Infow("background ritual auto-apply", "ritual", t.Ritual, "reason", t.Reason)
		if err := e.execute(ctx, t); err != nil {
			e.log.Warnw("background ritual failed", "err", err)
		}
	}
}

// #endregion

// #region helpers

func (e *Engine) pushHistory(t playbook.Turn) {
	e.history = append(e.history, t)
	if len(e.history) > historyMax {
		e.history = e.history[len(e.history)-historyMax:]
	}
}

// persist writes the snapshot. The in-memory state is already the
// source of truth for this turn; a failed write is logged and the
// session carries on.
func (e *Engine) persist() {
	if err := e.store.SaveSnapshot(e.snap); err != nil {
		e.log.Warnw("snapshot save failed", "err", err)
	}
}

func (e *Engine) appendProvenance(entry provenance.Entry) {
	if err := provenance.Append(e.store.DB(), entry); err != nil {
		e.log.Warnw("provenance append failed", "kind", entry.Kind, "err", err)
	}
}

func marshalSignals(signals []string) string {
	b, err := json.Marshal(signals)
	if err != nil {
		return ""
	}
	return string(b)
}

func voiceKey(name string) string {
	if v, ok := voice.ByName(strings.ToUpper(strings.TrimSpace(name))); ok {
		return v.Name
	}
	return name
}

// #endregion
