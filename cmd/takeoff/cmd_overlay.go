package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/takeoff/overlay"
)

var (
	overlayFlags  requestFlags
	overlayOutput string
	overlayPNG    string
	overlayWidth  int
)

var overlayCmd = &cobra.Command{
	Use:   "overlay <file.pdf>",
	Short: "Draw the measured tray runs as SVG or PNG",
	Example: `  takeoff overlay E-101.pdf -o E-101.svg
  takeoff overlay E-101.pdf --png E-101.png --width 3000`,
	Args: cobra.ExactArgs(1),
	RunE: runOverlay,
}

func init() {
	overlayFlags.register(overlayCmd)
	overlayCmd.Flags().StringVarP(&overlayOutput, "output", "o", "", "SVG output file (default: stdout unless --png is set)")
	overlayCmd.Flags().StringVar(&overlayPNG, "png", "", "PNG output file")
	overlayCmd.Flags().IntVar(&overlayWidth, "width", 2000, "PNG width in pixels")
}

func runOverlay(cmd *cobra.Command, args []string) error {
	req, err := overlayFlags.request(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, err := newAnalyzer().AnalyzeFile(ctx, args[0], req)
	if err != nil {
		return err
	}

	if overlayPNG != "" {
		data, err := overlay.RenderPNG(res, overlayWidth)
		if err != nil {
			return err
		}
		if err := os.WriteFile(overlayPNG, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", overlayPNG, err)
		}
		logger.Info("PNG overlay written", zap.String("path", overlayPNG))
		if overlayOutput == "" {
			return nil
		}
	}

	svg, err := overlay.RenderSVG(res)
	if err != nil {
		return err
	}
	if overlayOutput == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), svg+"\n")
		return err
	}
	if err := os.WriteFile(overlayOutput, []byte(svg), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", overlayOutput, err)
	}
	logger.Info("SVG overlay written", zap.String("path", overlayOutput))
	return nil
}
