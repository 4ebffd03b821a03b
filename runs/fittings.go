package runs

import "github.com/tsawler/takeoff/model"

// SummarizeFittings totals fitting counts per tray size. Couplers are
// derived from each run's wholesaler lengths.
func SummarizeFittings(runs []model.TrayRun) model.FittingSummary {
	summary := make(model.FittingSummary)
	for _, r := range runs {
		key := model.SizeKey(r.SizeMm)
		c := summary[key]
		c.TPieces += r.TPieces
		c.CrossPieces += r.CrossPieces
		c.Bends90 += r.Bends90
		c.Drops += r.Drops
		c.Couplers += model.Couplers(r.WholesalerLengths)
		summary[key] = c
	}
	return summary
}
