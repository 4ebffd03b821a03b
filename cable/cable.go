// Package cable estimates the cable needed to wire a set of tray runs.
package cable

import (
	"math"
	"strings"

	"github.com/tsawler/takeoff/model"
)

// Filter returns the runs whose tray type matches filter. An empty filter
// or "all" keeps every run.
func Filter(runs []model.TrayRun, filter string) []model.TrayRun {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, model.TrayFilterAll) {
		return runs
	}
	var kept []model.TrayRun
	for _, r := range runs {
		if strings.EqualFold(string(r.TrayType), filter) {
			kept = append(kept, r)
		}
	}
	return kept
}

// Calculate estimates cable for runs:
//
//	route      = sum of run lengths
//	drops      = sum of run drops × ExtraDropPerFittingM
//	firstPoint = NumberOfCircuits × FirstPointRunLengthM
//	additional = (route + drops + firstPoint) × AdditionalCablePercent / 100
//	total      = route + drops + firstPoint + additional
//
// Every figure is rounded to one decimal place and the drum count is the
// total divided by the drum length, rounded up.
func Calculate(runs []model.TrayRun, in model.UserInputs) model.CableSummary {
	kept := Filter(runs, in.TrayFilter)

	route := 0.0
	drops := 0
	for _, r := range kept {
		route += r.LengthM
		drops += r.Drops
	}
	dropAllowance := float64(drops) * in.ExtraDropPerFittingM
	firstPoint := float64(in.NumberOfCircuits) * in.FirstPointRunLengthM
	subtotal := route + dropAllowance + firstPoint
	additional := subtotal * in.AdditionalCablePercent / 100
	total := model.Round(subtotal+additional, 1)

	filter := in.TrayFilter
	if strings.TrimSpace(filter) == "" {
		filter = model.TrayFilterAll
	}

	return model.CableSummary{
		TrayFilter:           filter,
		RunCount:             len(kept),
		TrayRouteLengthM:     model.Round(route, 1),
		DropAllowanceM:       model.Round(dropAllowance, 1),
		FirstPointM:          model.Round(firstPoint, 1),
		AdditionalAllowanceM: model.Round(additional, 1),
		TotalCableM:          total,
		CableDrums:           Drums(total),
	}
}

// Drums returns the number of cable drums needed for totalM metres.
func Drums(totalM float64) int {
	if totalM <= 0 {
		return 0
	}
	return int(math.Ceil(totalM / model.CableDrumLengthM))
}
