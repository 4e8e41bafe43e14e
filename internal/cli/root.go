// Package cli wires the spark commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iskra-project/spark-engine/internal/config"
	"github.com/iskra-project/spark-engine/internal/engine"
	"github.com/iskra-project/spark-engine/internal/generate"
	"github.com/iskra-project/spark-engine/internal/playbook"
	"github.com/iskra-project/spark-engine/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "spark",
	Short: "Conversational companion decision engine",
	Long:  "Spark tracks the affect state of a conversation and decides phase, voice, playbook and rituals for every turn.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "spark.yaml", "config file path")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

// buildEngine opens the store and assembles the engine from config.
func buildEngine(cfg *config.Config, log *zap.SugaredLogger) (*engine.Engine, *store.Store, error) {
	st, err := store.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	var gen generate.Generator
	switch cfg.Generator.Provider {
	case "mock":
		gen = &generate.Mock{}
	default:
		gen = generate.NewOllama(cfg.Generator.URL, cfg.Generator.Model)
	}

	e, err := engine.New(log, st, gen, engine.Options{
		Thresholds: playbook.Thresholds{
			LowTrust:         cfg.Playbook.LowTrust,
			HighPain:         cfg.Playbook.HighPain,
			HighDrift:        cfg.Playbook.HighDrift,
			ComplexWordCount: cfg.Playbook.ComplexWordCount,
		},
		RhythmStep: cfg.RhythmDriftStep,
	})
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return e, st, nil
}

func newLogger() (*zap.SugaredLogger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log.Sugar(), nil
}
