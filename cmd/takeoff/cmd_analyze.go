package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/takeoff"
	"github.com/tsawler/takeoff/scale"
)

// requestFlags are the page selection flags shared by analyze and overlay.
type requestFlags struct {
	page  int
	ratio int
	paper string
	ref   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&f.ratio, "scale", 0, "Scale ratio, e.g. 100 for 1:100 (default: detect)")
	cmd.Flags().StringVar(&f.paper, "paper", "", "Paper size A0 to A4 (default: detect)")
	cmd.Flags().StringVar(&f.ref, "ref", "", "Drawing reference (default: file name)")
}

// request builds the analysis request for path. Flags take precedence over
// the configured scale.
func (f *requestFlags) request(path string) (takeoff.Request, error) {
	if f.page < 1 {
		return takeoff.Request{}, fmt.Errorf("invalid page %d", f.page)
	}
	if f.ratio < 0 {
		return takeoff.Request{}, fmt.Errorf("invalid scale %d", f.ratio)
	}
	if f.paper != "" && !scale.ValidPaper(f.paper) {
		return takeoff.Request{}, fmt.Errorf("invalid paper size %q", f.paper)
	}

	req := takeoff.Request{
		DrawingRef: f.ref,
		Page:       f.page,
		Overrides:  settings.ScaleOverrides(),
	}
	if req.DrawingRef == "" {
		req.DrawingRef = takeoff.RefFromPath(path)
	}
	if f.ratio > 0 {
		req.Overrides.Ratio = f.ratio
	}
	if f.paper != "" {
		req.Overrides.PaperSize = strings.ToUpper(f.paper)
	}
	return req, nil
}

var (
	analyzeFlags  requestFlags
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Analyse one drawing page and print the takeoff",
	Example: `  takeoff analyze E-101.pdf
  takeoff analyze E-101.pdf --page 2 --scale 50 --paper A1 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "json", "Output format: json or yaml")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	req, err := analyzeFlags.request(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, err := newAnalyzer().AnalyzeFile(ctx, args[0], req)
	if err != nil {
		return err
	}
	logger.Info("Drawing analysed",
		zap.String("ref", res.DrawingRef),
		zap.Int("runs", len(res.TrayRuns)),
		zap.Int("questions", len(res.Questions)))

	return writeOutput(cmd.OutOrStdout(), res, analyzeFormat)
}
