package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/insight-journal/internal/observability"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/spf13/cobra"
)

var pillarsCmd = &cobra.Command{
	Use:   "pillars [id]",
	Short: "List topic pillars or show one pillar's questions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPillars,
}

func init() {
	rootCmd.AddCommand(pillarsCmd)
}

func runPillars(cmd *cobra.Command, args []string) error {
	a, err := newApp(commandContext(cmd), false)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 1 {
		p, ok := a.catalog.Get(types.PillarID(args[0]))
		if !ok {
			return fmt.Errorf("unknown pillar %q", args[0])
		}
		return printPillar(cmd, p)
	}
	return pillarTable(cmd, a.catalog)
}

func pillarTable(cmd *cobra.Command, catalog *pillars.Catalog) error {
	tbl := observability.NewTable(cmd.OutOrStdout(), "ID", "Name", "Questions", "Sources")
	for _, p := range catalog.All() {
		tbl.AddRow(string(p.ID), p.Icon+" "+p.Name, strconv.Itoa(len(p.Questions)), strings.Join(p.Sources, ", "))
	}
	return tbl.Render()
}

func printPillar(cmd *cobra.Command, p types.Pillar) error {
	out := observability.NewPrinter(cmd.OutOrStdout())
	out.Info("%s %s", p.Icon, p.Name)
	for i, q := range p.Questions {
		out.Plain("  Q%d  %s", i+1, q)
	}
	if len(p.Metrics) > 0 {
		out.Plain("Metrics: %s", strings.Join(p.Metrics, ", "))
	}
	if len(p.Sources) > 0 {
		out.Plain("Sources: %s", strings.Join(p.Sources, ", "))
	}
	if p.Reminder != "" {
		out.Warning("%s", p.Reminder)
	}
	return nil
}
