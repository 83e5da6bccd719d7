package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/insight-journal/internal/observability"
	"github.com/jonathan/insight-journal/internal/store"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "List, save and generate insights",
}

var (
	listPillar     string
	listOutputType string
	listJSON       bool
)

var insightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved insights, newest first",
	RunE:  runInsightsList,
}

var (
	savePillar    string
	saveSource    string
	saveSignal    string
	saveNarrative string
	saveAnswers   []string
	saveTags      []string
)

var insightsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save an insight to the journal",
	Long: "Save an insight. Reflections are given by question number, e.g. --answer 1=\"ETF flows positive\".\n" +
		"Tags select downstream uses; tag Newsletter to make the insight eligible for curation.",
	RunE: runInsightsSave,
}

func init() {
	insightsListCmd.Flags().StringVar(&listPillar, "pillar", "", "Only insights for this pillar id")
	insightsListCmd.Flags().StringVar(&listOutputType, "output-type", "", "Only insights carrying this tag")
	insightsListCmd.Flags().BoolVar(&listJSON, "json", false, "Print the collection as JSON")

	insightsSaveCmd.Flags().StringVarP(&savePillar, "pillar", "p", "", "Pillar id (required)")
	insightsSaveCmd.Flags().StringVarP(&saveSource, "source", "s", "", "Data source")
	insightsSaveCmd.Flags().StringVar(&saveSignal, "signal", "", "Market signal (required)")
	insightsSaveCmd.Flags().StringVar(&saveNarrative, "narrative", "", "Editorial narrative")
	insightsSaveCmd.Flags().StringArrayVar(&saveAnswers, "answer", nil, "Reflection as N=text, repeatable")
	insightsSaveCmd.Flags().StringArrayVar(&saveTags, "tag", nil, "Output type tag, repeatable")
	_ = insightsSaveCmd.MarkFlagRequired("pillar")
	_ = insightsSaveCmd.MarkFlagRequired("signal")

	insightsCmd.AddCommand(insightsListCmd, insightsSaveCmd)
	rootCmd.AddCommand(insightsCmd)
}

func runInsightsList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(commandContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close()

	var out types.InsightCollection
	for _, in := range a.store.Insights() {
		if listPillar != "" && string(in.PillarID) != listPillar {
			continue
		}
		if listOutputType != "" && !in.HasOutputType(listOutputType) {
			continue
		}
		out = append(out, in)
	}

	if listJSON {
		if out == nil {
			out = types.InsightCollection{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(out) == 0 {
		observability.NewPrinter(cmd.OutOrStdout()).Info("No insights saved yet.")
		return nil
	}
	tbl := observability.NewTable(cmd.OutOrStdout(), "ID", "Date", "Pillar", "Source", "Signal", "Tags")
	for _, in := range out {
		tbl.AddRow(shortID(in.ID), shortDate(in.Date), string(in.PillarID), in.Source, clip(in.Signal, 50), strings.Join(in.OutputTypes, ", "))
	}
	return tbl.Render()
}

func runInsightsSave(cmd *cobra.Command, _ []string) error {
	a, err := newApp(commandContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close()

	p, ok := a.catalog.Get(types.PillarID(savePillar))
	if !ok {
		return fmt.Errorf("unknown pillar %q", savePillar)
	}
	answers, err := parseAnswers(p.Questions, saveAnswers)
	if err != nil {
		return err
	}

	return saveDraft(cmd, a, types.InsightDraft{
		PillarID:       p.ID,
		Source:         saveSource,
		Signal:         saveSignal,
		JournalAnswers: answers,
		Narrative:      saveNarrative,
		OutputTypes:    saveTags,
	})
}

// saveDraft creates an insight and reports the outcome. A persistence failure is
// reported as an error since the in-memory copy ends with the process.
func saveDraft(cmd *cobra.Command, a *app, draft types.InsightDraft) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	in, c, err := a.store.Create(commandContext(cmd), draft)
	var persistErr *store.PersistenceError
	if errors.As(err, &persistErr) {
		printer.Warning("insight %s was not persisted", shortID(in.ID))
		return err
	}
	if err != nil {
		return err
	}

	printer.PrintInsight(&in)
	printer.Success("saved insight %s (%d in journal)", shortID(in.ID), len(c))
	return nil
}

// parseAnswers maps N=text flags onto the pillar's questions.
func parseAnswers(questions []string, raw []string) (map[string]string, error) {
	answers := make(map[string]string, len(raw))
	for _, r := range raw {
		num, text, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid answer %q: want N=text", r)
		}
		n, err := strconv.Atoi(strings.TrimSpace(num))
		if err != nil || n < 1 || n > len(questions) {
			return nil, fmt.Errorf("invalid answer %q: question number must be 1-%d", r, len(questions))
		}
		answers[questions[n-1]] = strings.TrimSpace(text)
	}
	return answers, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortDate(date string) string {
	if len(date) >= 10 {
		return date[:10]
	}
	return date
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
