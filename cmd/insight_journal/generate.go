package main

import (
	"fmt"

	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/observability"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/spf13/cobra"
)

var (
	generatePillar string
	generateSource string
	generateAll    bool
	generateSave   bool
	generateTags   []string
)

var insightsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Research the current signal for a pillar with grounded search",
	Long: "Generate an insight for one pillar, or for every content pillar with --all.\n" +
		"With --save the generated signal, reflections and narrative are saved to the journal.",
	RunE: runInsightsGenerate,
}

func init() {
	insightsGenerateCmd.Flags().StringVarP(&generatePillar, "pillar", "p", "", "Pillar id")
	insightsGenerateCmd.Flags().StringVarP(&generateSource, "source", "s", types.SuggestedSources[0], "Data source to focus the research on")
	insightsGenerateCmd.Flags().BoolVar(&generateAll, "all", false, "Generate for every content pillar")
	insightsGenerateCmd.Flags().BoolVar(&generateSave, "save", false, "Save each generated insight")
	insightsGenerateCmd.Flags().StringArrayVar(&generateTags, "tag", nil, "Output type tag for saved insights, repeatable")
	insightsGenerateCmd.MarkFlagsMutuallyExclusive("pillar", "all")
	insightsGenerateCmd.MarkFlagsOneRequired("pillar", "all")

	insightsCmd.AddCommand(insightsGenerateCmd)
}

func runInsightsGenerate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(cmd.OutOrStdout())

	if generateAll {
		printer.Info("Generating %d pillars from %s...", len(a.catalog.ContentPillars()), generateSource)
		results := a.generation.GenerateAll(ctx, generateSource, func(r generation.BatchResult) {
			if r.Err != nil {
				printer.Error("%s: %v", r.PillarID, r.Err)
				return
			}
			printer.Success("%s", r.PillarID)
		})
		printer.PrintBatchResults(results)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				continue
			}
			if generateSave {
				if err := saveGenerated(cmd, a, r.PillarID, r.Insight); err != nil {
					return err
				}
			}
		}
		if failed == len(results) {
			return fmt.Errorf("generation failed for every pillar")
		}
		return nil
	}

	id := types.PillarID(generatePillar)
	g, err := a.generation.GenerateInsight(ctx, id, generateSource)
	if err != nil {
		return err
	}
	p, _ := a.catalog.Get(id)
	printer.PrintGeneratedInsight(p, &g)

	if generateSave {
		return saveGenerated(cmd, a, id, g)
	}
	return nil
}

func saveGenerated(cmd *cobra.Command, a *app, id types.PillarID, g types.GeneratedInsight) error {
	p, _ := a.catalog.Get(id)
	return saveDraft(cmd, a, types.InsightDraft{
		PillarID:       id,
		Source:         generateSource,
		Signal:         g.Signal,
		JournalAnswers: g.JournalAnswers(p.Questions),
		Narrative:      g.Narrative,
		OutputTypes:    generateTags,
	})
}
