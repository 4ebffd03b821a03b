package model

// TrayFilterAll disables tray-type filtering in the cable calculation.
const TrayFilterAll = "all"

// Duty ratings offered for UserInputs.TrayDuty.
const (
	DutyLight  = "light"
	DutyMedium = "medium"
	DutyHeavy  = "heavy"
)

// UserInputs are the operator-supplied parameters for the cable estimate.
type UserInputs struct {
	TrayFilter             string  `json:"trayFilter" yaml:"tray_filter" mapstructure:"tray_filter"`
	TrayDuty               string  `json:"trayDuty" yaml:"tray_duty" mapstructure:"tray_duty"`
	ExtraDropPerFittingM   float64 `json:"extraDropPerFittingM" yaml:"extra_drop_per_fitting_m" mapstructure:"extra_drop_per_fitting_m"`
	FirstPointRunLengthM   float64 `json:"firstPointRunLengthM" yaml:"first_point_run_length_m" mapstructure:"first_point_run_length_m"`
	NumberOfCircuits       int     `json:"numberOfCircuits" yaml:"number_of_circuits" mapstructure:"number_of_circuits"`
	AdditionalCablePercent float64 `json:"additionalCablePercent" yaml:"additional_cable_percent" mapstructure:"additional_cable_percent"`
}

// DefaultUserInputs returns the inputs used until an operator answers the
// takeoff questions.
func DefaultUserInputs() UserInputs {
	return UserInputs{
		TrayFilter:             TrayFilterAll,
		TrayDuty:               DutyMedium,
		ExtraDropPerFittingM:   2,
		FirstPointRunLengthM:   15,
		NumberOfCircuits:       1,
		AdditionalCablePercent: 10,
	}
}

// CableDrumLengthM is the cable drum size used for the drum count.
const CableDrumLengthM = 100.0

// CableSummary is the cable-length estimate for a set of runs.
type CableSummary struct {
	TrayFilter           string  `json:"trayFilter"`
	RunCount             int     `json:"runCount"`
	TrayRouteLengthM     float64 `json:"trayRouteLengthM"`
	DropAllowanceM       float64 `json:"dropAllowanceM"`
	FirstPointM          float64 `json:"firstPointM"`
	AdditionalAllowanceM float64 `json:"additionalAllowanceM"`
	TotalCableM          float64 `json:"totalCableM"`
	CableDrums           int     `json:"cableDrums"`
}
