package main

import (
	"fmt"

	"github.com/jonathan/insight-journal/internal/observability"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/spf13/cobra"
)

var (
	narrativePillar  string
	narrativeSignal  string
	narrativeAnswers []string
	narrativeFrom    string
)

var narrativeCmd = &cobra.Command{
	Use:   "narrative",
	Short: "Synthesize an editorial narrative from a signal and its reflections",
	Long: "Synthesize a narrative from --signal and --answer N=text flags, or from a saved insight with --from <id>.\n" +
		"The narrative is printed; it is not saved.",
	RunE: runNarrative,
}

func init() {
	narrativeCmd.Flags().StringVarP(&narrativePillar, "pillar", "p", "", "Pillar id")
	narrativeCmd.Flags().StringVar(&narrativeSignal, "signal", "", "Market signal")
	narrativeCmd.Flags().StringArrayVar(&narrativeAnswers, "answer", nil, "Reflection as N=text, repeatable")
	narrativeCmd.Flags().StringVar(&narrativeFrom, "from", "", "Use the signal and reflections of a saved insight")
	narrativeCmd.MarkFlagsMutuallyExclusive("from", "signal")
	narrativeCmd.MarkFlagsMutuallyExclusive("from", "pillar")
	rootCmd.AddCommand(narrativeCmd)
}

func runNarrative(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	pillarID := types.PillarID(narrativePillar)
	signal := narrativeSignal
	var answers map[string]string

	if narrativeFrom != "" {
		in, ok := findInsight(a, narrativeFrom)
		if !ok {
			return fmt.Errorf("no saved insight matches %q", narrativeFrom)
		}
		pillarID, signal, answers = in.PillarID, in.Signal, in.JournalAnswers
	} else {
		p, ok := a.catalog.Get(pillarID)
		if !ok {
			return fmt.Errorf("unknown pillar %q", narrativePillar)
		}
		if signal == "" {
			return fmt.Errorf("--signal is required without --from")
		}
		if answers, err = parseAnswers(p.Questions, narrativeAnswers); err != nil {
			return err
		}
	}

	narrative, err := a.generation.SynthesizeNarrative(ctx, pillarID, signal, answers)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).Plain("%s", narrative)
	return nil
}

// findInsight resolves a full id or the short id shown by insights list.
func findInsight(a *app, id string) (types.Insight, bool) {
	if in, ok := a.store.Get(id); ok {
		return in, true
	}
	var match types.Insight
	found := 0
	for _, in := range a.store.Insights() {
		if len(id) >= 4 && len(in.ID) >= len(id) && in.ID[:len(id)] == id {
			match = in
			found++
		}
	}
	return match, found == 1
}
