package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iskra-project/spark-engine/internal/config"
	"github.com/iskra-project/spark-engine/internal/provenance"
	"github.com/iskra-project/spark-engine/internal/store"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump the current snapshot, recent provenance and evals",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 10, "rows of provenance and evals to show")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, reseeded, err := st.LoadOrReseed()
	if err != nil {
		return err
	}
	if reseeded {
		fmt.Fprintln(os.Stderr, "note: snapshot was missing or corrupt, defaults reseeded")
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")

	fmt.Println("snapshot:")
	if err := out.Encode(snap); err != nil {
		return err
	}

	entries, err := provenance.Recent(st.DB(), inspectLimit)
	if err != nil {
		return err
	}
	fmt.Printf("provenance (last %d):\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %s  %-16s %-24s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Decision, e.Reason)
	}

	evals, err := st.RecentEvals(inspectLimit)
	if err != nil {
		return err
	}
	fmt.Printf("evals (last %d):\n", len(evals))
	for _, ev := range evals {
		fmt.Printf("  %-36s grade=%s overall=%.2f flags=%d\n",
			ev.ResponseID, ev.Grade, ev.Overall, len(ev.Flags))
	}
	return nil
}
