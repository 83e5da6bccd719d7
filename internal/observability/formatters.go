// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/insight-journal/internal/generation"
	"github.com/jonathan/insight-journal/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeSources lists up to maxItemsToShow citations.
func writeSources(sb *strings.Builder, sources []types.Citation) {
	if len(sources) == 0 {
		return
	}
	sb.WriteString("\nSources:\n")
	count := min(len(sources), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", sources[i].Title))
		sb.WriteString(fmt.Sprintf("    %s\n", sources[i].URI))
	}
	if len(sources) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sources)-maxItemsToShow))
	}
}

// PrintGeneratedInsight outputs a generated insight with its reflections in question order.
func (p *Printer) PrintGeneratedInsight(pillar types.Pillar, g *types.GeneratedInsight) {
	if g == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Signal:   %s\n\n", g.Signal))

	if len(g.Reflections) > 0 {
		sb.WriteString("Reflections:\n")
		for i, r := range g.Reflections {
			q := ""
			if i < len(pillar.Questions) {
				q = pillar.Questions[i]
			}
			sb.WriteString(fmt.Sprintf("  Q%d %s\n", i+1, truncate(q, 45)))
			sb.WriteString(fmt.Sprintf("     %s\n", r))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Narrative: %s\n", g.Narrative))
	writeSources(&sb, g.Sources)

	p.printBox(strings.ToUpper(pillar.Name), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInsight outputs a saved insight.
func (p *Printer) PrintInsight(in *types.Insight) {
	if in == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", in.ID))
	sb.WriteString(fmt.Sprintf("Pillar:   %s\n", in.PillarID))
	sb.WriteString(fmt.Sprintf("Date:     %s\n", in.Date))
	if in.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:   %s\n", in.Source))
	}
	if len(in.OutputTypes) > 0 {
		sb.WriteString(fmt.Sprintf("Tags:     %s\n", strings.Join(in.OutputTypes, ", ")))
	}
	sb.WriteString(fmt.Sprintf("\nSignal:   %s\n", in.Signal))
	if in.Narrative != "" {
		sb.WriteString(fmt.Sprintf("Narrative: %s\n", in.Narrative))
	}

	p.printBox("SAVED INSIGHT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDraft outputs the head of a newsletter draft and its sources.
func (p *Printer) PrintDraft(d *types.NewsletterDraft) {
	if d == nil {
		return
	}

	var sb strings.Builder
	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	sb.WriteString(fmt.Sprintf("Title:    %s\n", title))
	if d.Type != "" {
		sb.WriteString(fmt.Sprintf("Type:     %s\n", d.Type))
	}
	if len(d.InsightIDs) > 0 {
		sb.WriteString(fmt.Sprintf("Insights: %d\n", len(d.InsightIDs)))
	}
	sb.WriteString("\n")

	lines := strings.Split(strings.TrimSpace(d.Content), "\n")
	count := min(len(lines), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(lines[i] + "\n")
	}
	if len(lines) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-maxItemsToShow))
	}
	writeSources(&sb, d.Sources)

	p.printBox("NEWSLETTER DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchResults outputs one line per pillar of a generate-all run.
func (p *Printer) PrintBatchResults(results []generation.BatchResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			sb.WriteString(fmt.Sprintf("✗ %-18s %s\n", r.PillarID, r.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %-18s %s\n", r.PillarID, r.Insight.Signal))
	}
	sb.WriteString(fmt.Sprintf("\n%d generated, %d failed", len(results)-failed, failed))

	p.printBox("BATCH GENERATION", sb.String())
}
