package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/insight-journal/internal/newsletter"
	"github.com/jonathan/insight-journal/internal/observability"
	"github.com/jonathan/insight-journal/internal/rendering"
	"github.com/jonathan/insight-journal/internal/schemas"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/spf13/cobra"
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Draft and export newsletters",
}

var (
	researchType   string
	researchSource string
	curateIDs      []string
	draftOut       string
	exportIn       string
	exportFormat   string
	exportOut      string
)

var newsletterResearchCmd = &cobra.Command{
	Use:   "research",
	Short: "Write an edition from grounded search",
	RunE:  runNewsletterResearch,
}

var newsletterCurateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Write an edition from insights tagged Newsletter",
	RunE:  runNewsletterCurate,
}

var newsletterEligibleCmd = &cobra.Command{
	Use:   "eligible",
	Short: "List insights eligible for curation",
	RunE:  runNewsletterEligible,
}

var newsletterExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a saved draft as Markdown or plain text",
	RunE:  runNewsletterExport,
}

func init() {
	newsletterResearchCmd.Flags().StringVarP(&researchType, "type", "t", types.NewsletterTypes[0], "Newsletter type")
	newsletterResearchCmd.Flags().StringVarP(&researchSource, "source", "s", types.SuggestedSources[0], "Data source to focus the research on")
	newsletterResearchCmd.Flags().StringVarP(&draftOut, "out", "o", "", "Write the draft JSON to this file")

	newsletterCurateCmd.Flags().StringSliceVar(&curateIDs, "ids", nil, "Curate only these insight ids (default: all eligible)")
	newsletterCurateCmd.Flags().StringVarP(&draftOut, "out", "o", "", "Write the draft JSON to this file")

	newsletterExportCmd.Flags().StringVarP(&exportIn, "in", "i", "", "Draft JSON file (required)")
	newsletterExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Export format: markdown or text")
	newsletterExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	_ = newsletterExportCmd.MarkFlagRequired("in")

	newsletterCmd.AddCommand(newsletterResearchCmd, newsletterCurateCmd, newsletterEligibleCmd, newsletterExportCmd)
	rootCmd.AddCommand(newsletterCmd)
}

func runNewsletterResearch(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	draft, err := a.assembler.Research(ctx, researchType, researchSource)
	if err != nil {
		return err
	}
	return emitDraft(cmd, draft)
}

func runNewsletterCurate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	insights := []types.Insight(a.store.Insights())
	if len(curateIDs) > 0 {
		insights = insights[:0:0]
		for _, id := range curateIDs {
			in, ok := findInsight(a, id)
			if !ok {
				return fmt.Errorf("no saved insight matches %q", id)
			}
			insights = append(insights, in)
		}
	}

	draft, err := a.assembler.Curate(ctx, insights)
	if err != nil {
		return err
	}
	return emitDraft(cmd, draft)
}

func runNewsletterEligible(cmd *cobra.Command, _ []string) error {
	a, err := newApp(commandContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close()

	eligible := newsletter.Eligible(a.store.Insights())
	if len(eligible) == 0 {
		observability.NewPrinter(cmd.OutOrStdout()).Warning("No insights are tagged %s.", types.OutputTypeNewsletter)
		return nil
	}
	tbl := observability.NewTable(cmd.OutOrStdout(), "ID", "Pillar", "Signal")
	for _, in := range eligible {
		tbl.AddRow(shortID(in.ID), string(in.PillarID), clip(in.Signal, 60))
	}
	return tbl.Render()
}

// emitDraft prints a draft summary and writes the JSON to --out when given.
func emitDraft(cmd *cobra.Command, draft types.NewsletterDraft) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintDraft(&draft)

	if draftOut == "" {
		return nil
	}
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(draftOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}
	printer.Success("draft written to %s", draftOut)
	return nil
}

func runNewsletterExport(cmd *cobra.Command, _ []string) error {
	format, err := rendering.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(exportIn)
	if err != nil {
		return fmt.Errorf("failed to read draft: %w", err)
	}
	if err := schemas.Validate(schemas.NewsletterDraft, data); err != nil {
		return fmt.Errorf("invalid draft %s: %w", exportIn, err)
	}
	var draft types.NewsletterDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return fmt.Errorf("failed to parse draft: %w", err)
	}

	out, err := rendering.RenderDraft(draft, format)
	if err != nil {
		return err
	}

	if exportOut == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(exportOut, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	observability.NewPrinter(cmd.OutOrStdout()).Success("exported to %s", exportOut)
	return nil
}
