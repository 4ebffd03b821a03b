package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsawler/takeoff"
	"github.com/tsawler/takeoff/model"
)

var (
	batchConcurrency int
	batchFormat      string
)

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Analyse several drawings in parallel",
	Long: `batch analyses page 1 of each drawing, one pipeline per drawing, and
prints a summary table. Use --format json or yaml for the full results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "j", 0, "Drawings analysed at once (default: GOMAXPROCS)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "table", "Output format: table, json or yaml")
}

func runBatch(cmd *cobra.Command, args []string) error {
	items := make([]takeoff.BatchItem, len(args))
	for i, path := range args {
		items[i] = takeoff.BatchItem{
			Path:    path,
			Request: takeoff.Request{Overrides: settings.ScaleOverrides()},
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	results, err := newAnalyzer().AnalyzeAll(ctx, items, batchConcurrency)
	if err != nil {
		return err
	}

	if batchFormat != "table" {
		return writeOutput(cmd.OutOrStdout(), results, batchFormat)
	}
	return writeTable(cmd, results)
}

func writeTable(cmd *cobra.Command, results []*model.Result) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DRAWING\tSCALE\tRUNS\tTRAY (m)\tDROPS\tQUESTIONS")
	for _, res := range results {
		total, drops := 0.0, 0
		for _, run := range res.TrayRuns {
			total += run.LengthM
			drops += run.Drops
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%d\t%d\n",
			res.DrawingRef, scaleLabel(res), len(res.TrayRuns), total, drops, len(res.Questions))
	}
	return w.Flush()
}

func scaleLabel(res *model.Result) string {
	if res.Scale == "" {
		return "-"
	}
	return res.Scale + " " + res.PaperSize
}
