package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/takeoff/cable"
	"github.com/tsawler/takeoff/model"
)

var (
	cableFilter     string
	cableDrop       float64
	cableFirstPoint float64
	cableCircuits   int
	cableAdditional float64
	cableFormat     string
)

var cableCmd = &cobra.Command{
	Use:   "cable <result.json>",
	Short: "Estimate cable for the runs of a saved takeoff",
	Long: `cable reads a takeoff result written by "takeoff analyze" (use - for
stdin) and prints the cable estimate. Unset flags use the configured inputs.`,
	Example: `  takeoff analyze E-101.pdf > E-101.json
  takeoff cable E-101.json --filter LV --circuits 4`,
	Args: cobra.ExactArgs(1),
	RunE: runCable,
}

func init() {
	cableCmd.Flags().StringVar(&cableFilter, "filter", "", "Tray type to include, or all")
	cableCmd.Flags().Float64Var(&cableDrop, "drop", 0, "Extra cable per drop in metres")
	cableCmd.Flags().Float64Var(&cableFirstPoint, "first-point", 0, "Run to the first point per circuit in metres")
	cableCmd.Flags().IntVar(&cableCircuits, "circuits", 0, "Number of circuits")
	cableCmd.Flags().Float64Var(&cableAdditional, "additional", 0, "Additional allowance in percent")
	cableCmd.Flags().StringVarP(&cableFormat, "format", "f", "json", "Output format: json or yaml")
}

func runCable(cmd *cobra.Command, args []string) error {
	res, err := readResult(cmd, args[0])
	if err != nil {
		return err
	}

	in := settings.Inputs
	flags := cmd.Flags()
	if flags.Changed("filter") {
		in.TrayFilter = cableFilter
	}
	if flags.Changed("drop") {
		in.ExtraDropPerFittingM = cableDrop
	}
	if flags.Changed("first-point") {
		in.FirstPointRunLengthM = cableFirstPoint
	}
	if flags.Changed("circuits") {
		in.NumberOfCircuits = cableCircuits
	}
	if flags.Changed("additional") {
		in.AdditionalCablePercent = cableAdditional
	}
	if in.ExtraDropPerFittingM < 0 || in.FirstPointRunLengthM < 0 || in.NumberOfCircuits < 0 || in.AdditionalCablePercent < 0 {
		return fmt.Errorf("cable inputs must not be negative")
	}

	return writeOutput(cmd.OutOrStdout(), cable.Calculate(res.TrayRuns, in), cableFormat)
}

// readResult decodes a JSON takeoff result from path, or stdin for "-".
func readResult(cmd *cobra.Command, path string) (*model.Result, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open result: %w", err)
		}
		defer f.Close()
		r = f
	}

	var res model.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", path, err)
	}
	return &res, nil
}
