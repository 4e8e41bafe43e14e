package ritual

// #region imports
import (
	"context"
	"fmt"
	"strings"

	"github.com/iskra-project/spark-engine/internal/generate"
	"github.com/iskra-project/spark-engine/internal/voice"
)

// #endregion

// #region deliberation

// Statement is one voice's contribution to a council.
type Statement struct {
	Voice  string `json:"voice"`
	Symbol string `json:"symbol"`
	Text   string `json:"text"`
}

// Deliberation is the full council outcome: every voice speaks in turn,
// then the default voice synthesizes.
type Deliberation struct {
	Statements []Statement `json:"statements"`
	Synthesis  string      `json:"synthesis"`
	Skipped    []string    `json:"skipped,omitempty"`
}

// #endregion

// #region runner

// CouncilRunner convenes a set of voices over a single prompt. Voices
// speak sequentially so that each sees the statements before it.
type CouncilRunner struct {
	gen generate.Generator
}

// NewCouncilRunner creates a runner over the given generator.
func NewCouncilRunner(gen generate.Generator) *CouncilRunner {
	return &CouncilRunner{gen: gen}
}

// Run deliberates the prompt across the named voices. A single voice
// failing is recorded and skipped; the council fails only when no voice
// produced a statement or the synthesis itself fails.
func (r *CouncilRunner) Run(ctx context.Context, prompt string, voices []string) (*Deliberation, error) {
	if len(voices) == 0 {
		voices = []string{voice.DefaultVoice}
	}

	d := &Deliberation{}
	var transcript strings.Builder
	for _, name := range voices {
		v, ok := voice.ByName(name)
		if !ok {
			d.Skipped = append(d.Skipped, name+": unknown voice")
			continue
		}
		req := generate.Request{
			Voice:  v.Name,
			Prompt: councilPrompt(prompt, v, transcript.String()),
		}
		resp, err := r.gen.Generate(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("council cancelled: %w", ctx.Err())
			}
			d.Skipped = append(d.Skipped, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		d.Statements = append(d.Statements, Statement{Voice: v.Name, Symbol: v.Symbol, Text: resp.Text})
		fmt.Fprintf(&transcript, "%s %s: %s\n", v.Symbol, v.Name, resp.Text)
	}

	if len(d.Statements) == 0 {
		return nil, fmt.Errorf("council produced no statements (skipped: %s)", strings.Join(d.Skipped, "; "))
	}

	synth, err := r.gen.Generate(ctx, generate.Request{
		Voice:  voice.DefaultVoice,
		Prompt: synthesisPrompt(prompt, transcript.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("council synthesis: %w", err)
	}
	d.Synthesis = synth.Text
	return d, nil
}

// #endregion

// #region prompts

func councilPrompt(prompt string, v voice.Voice, transcript string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s %s. %s\n", v.Symbol, v.Name, v.Stance)
	if transcript != "" {
		b.WriteString("The council so far:\n")
		b.WriteString(transcript)
	}
	b.WriteString("Speak to: ")
	b.WriteString(prompt)
	return b.String()
}

func synthesisPrompt(prompt string, transcript string) string {
	var b strings.Builder
	b.WriteString("Synthesize the council into one answer.\n")
	b.WriteString(transcript)
	b.WriteString("Question: ")
	b.WriteString(prompt)
	return b.String()
}

// #endregion
