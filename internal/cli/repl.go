package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iskra-project/spark-engine/internal/config"
	"github.com/iskra-project/spark-engine/internal/engine"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session against the full turn pipeline",
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	eng, st, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.StartRhythm(ctx, cfg.RhythmTickInterval())

	fmt.Println("spark repl. /help for commands, /quit to leave.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			if quit := replCommand(ctx, eng, line); quit {
				return nil
			}
			continue
		}

		res, err := eng.ProcessTurn(ctx, line, "")
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		printTurn(res)
	}
}

// replCommand handles slash commands; returns true on /quit.
func replCommand(ctx context.Context, eng *engine.Engine, line string) bool {
	parts := strings.Fields(line)
	switch parts[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println("/state  show the affect vector and phase")
		fmt.Println("/voice NAME  pin a voice (no name clears the pin)")
		fmt.Println("/more NAME | /less NAME  adjust a voice preference")
		fmt.Println("/confirm | /defer  answer a pending ritual")
		fmt.Println("/quit  leave")
	case "/state":
		snap := eng.State()
		fmt.Printf("phase=%s voice=%s\n", snap.Phase, snap.LastVoice)
		fmt.Printf("trust=%.2f clarity=%.2f pain=%.2f drift=%.2f chaos=%.2f rhythm=%.0f\n",
			snap.Metrics.Trust, snap.Metrics.Clarity, snap.Metrics.Pain,
			snap.Metrics.Drift, snap.Metrics.Chaos, snap.Metrics.Rhythm)
	case "/voice":
		name := ""
		if len(parts) > 1 {
			name = parts[1]
		}
		if err := eng.SetVoiceOverride(name); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case "/more", "/less":
		if len(parts) < 2 {
			fmt.Println("usage: /more NAME")
			return false
		}
		dir := +1
		if parts[0] == "/less" {
			dir = -1
		}
		mult, err := eng.AdjustVoicePreference(parts[1], dir)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Printf("%s preference now %.1f\n", strings.ToUpper(parts[1]), mult)
		}
	case "/confirm":
		executed, err := eng.ConfirmRitual(ctx)
		if err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Printf("ritual %s executed\n", executed.Ritual)
		}
	case "/defer":
		if err := eng.DeferRitual(); err != nil {
			fmt.Printf("error: %v\n", err)
		} else {
			fmt.Println("ritual deferred")
		}
	default:
		fmt.Println("unknown command, /help for the list")
	}
	return false
}

func printTurn(res *engine.TurnResult) {
	fmt.Printf("[%s %s | %s | %s]\n",
		res.VoiceSymbol, res.VoiceName, res.Phase, res.Decision.Playbook)
	if res.Response != "" {
		fmt.Println(res.Response)
	}
	if res.GenError != "" {
		fmt.Println("(connection lost, decision shown without a response)")
	}
	if res.Eval != nil {
		fmt.Printf("(eval %s %.2f)\n", res.Eval.Grade, res.Eval.Overall)
	}
	if res.Ritual.ShouldTrigger {
		fmt.Printf("ritual %s suggested (%s). /confirm to apply, /defer to skip.\n",
			res.Ritual.Ritual, res.Ritual.Reason)
	}
}
