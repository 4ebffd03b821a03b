// Package config loads takeoff settings from defaults, an optional YAML
// file and TAKEOFF_ environment variables.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/takeoff"
	"github.com/tsawler/takeoff/grammar"
	"github.com/tsawler/takeoff/layout"
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/runs"
	"github.com/tsawler/takeoff/scale"
	"github.com/tsawler/takeoff/vector"
)

// EnvPrefix prefixes environment overrides, as in TAKEOFF_SERVER_LISTEN.
const EnvPrefix = "TAKEOFF"

// FileName is the configuration file name without extension.
const FileName = "takeoff"

type Settings struct {
	Clustering struct {
		LineTolerance float64 `mapstructure:"line_tolerance" yaml:"line_tolerance"` // max Y difference within a phrase
		GapTolerance  float64 `mapstructure:"gap_tolerance" yaml:"gap_tolerance"`   // max gap between words of a phrase
	} `mapstructure:"clustering" yaml:"clustering"`

	Assembly struct {
		AxisTolerance    float64 `mapstructure:"axis_tolerance" yaml:"axis_tolerance"`
		DropRadius       float64 `mapstructure:"drop_radius" yaml:"drop_radius"`
		ColourRadius     float64 `mapstructure:"colour_radius" yaml:"colour_radius"`
		MinimumRunM      float64 `mapstructure:"minimum_run_m" yaml:"minimum_run_m"` // length given to single-label runs
		BendThresholdDeg float64 `mapstructure:"bend_threshold_deg" yaml:"bend_threshold_deg"`
	} `mapstructure:"assembly" yaml:"assembly"`

	Colour struct {
		MinBrightness float64 `mapstructure:"min_brightness" yaml:"min_brightness"` // 0..255
		MaxBrightness float64 `mapstructure:"max_brightness" yaml:"max_brightness"` // 0..255
		MinSaturation float64 `mapstructure:"min_saturation" yaml:"min_saturation"`
		MergeDistance float64 `mapstructure:"merge_distance" yaml:"merge_distance"`
		MinPathLength float64 `mapstructure:"min_path_length" yaml:"min_path_length"`
		MinRunM       float64 `mapstructure:"min_run_m" yaml:"min_run_m"`
	} `mapstructure:"colour" yaml:"colour"`

	// Scale forces a ratio or paper size for every drawing. Zero values
	// leave detection to the drawing text.
	Scale struct {
		Ratio int    `mapstructure:"ratio" yaml:"ratio"`
		Paper string `mapstructure:"paper" yaml:"paper"`
	} `mapstructure:"scale" yaml:"scale"`

	StatusPolicy string `mapstructure:"status_policy" yaml:"status_policy"` // new or existing

	Inputs model.UserInputs `mapstructure:"inputs" yaml:"inputs"`

	Server struct {
		Listen   string        `mapstructure:"listen" yaml:"listen"`
		CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
		MaxBytes int64         `mapstructure:"max_bytes" yaml:"max_bytes"` // upload limit
	} `mapstructure:"server" yaml:"server"`

	OCR struct {
		Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
		Language string `mapstructure:"language" yaml:"language"`
	} `mapstructure:"ocr" yaml:"ocr"`

	Log struct {
		Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	} `mapstructure:"log" yaml:"log"`
}

// setDefaults registers every default with v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("clustering.line_tolerance", layout.DefaultLineTolerance)
	v.SetDefault("clustering.gap_tolerance", layout.DefaultGapTolerance)

	v.SetDefault("assembly.axis_tolerance", runs.DefaultAxisTolerance)
	v.SetDefault("assembly.drop_radius", runs.DefaultDropRadius)
	v.SetDefault("assembly.colour_radius", runs.DefaultColourRadius)
	v.SetDefault("assembly.minimum_run_m", runs.DefaultMinimumRunM)
	v.SetDefault("assembly.bend_threshold_deg", runs.DefaultBendThresholdDeg)

	cf := vector.DefaultColourFilter()
	mc := vector.DefaultMergeConfig()
	v.SetDefault("colour.min_brightness", cf.MinBrightness)
	v.SetDefault("colour.max_brightness", cf.MaxBrightness)
	v.SetDefault("colour.min_saturation", cf.MinSaturation)
	v.SetDefault("colour.merge_distance", mc.MergeDistance)
	v.SetDefault("colour.min_path_length", mc.MinPathLength)
	v.SetDefault("colour.min_run_m", mc.MinRunM)

	v.SetDefault("scale.ratio", 0)
	v.SetDefault("scale.paper", "")

	v.SetDefault("status_policy", string(grammar.DefaultStatusPolicy))

	in := model.DefaultUserInputs()
	v.SetDefault("inputs.tray_filter", in.TrayFilter)
	v.SetDefault("inputs.tray_duty", in.TrayDuty)
	v.SetDefault("inputs.extra_drop_per_fitting_m", in.ExtraDropPerFittingM)
	v.SetDefault("inputs.first_point_run_length_m", in.FirstPointRunLengthM)
	v.SetDefault("inputs.number_of_circuits", in.NumberOfCircuits)
	v.SetDefault("inputs.additional_cable_percent", in.AdditionalCablePercent)

	v.SetDefault("server.listen", ":5050")
	v.SetDefault("server.cache_ttl", 10*time.Minute)
	v.SetDefault("server.max_bytes", 64<<20)

	v.SetDefault("ocr.enabled", false)
	v.SetDefault("ocr.language", "eng")

	v.SetDefault("log.level", "info")
}

// Default returns the default settings.
func Default() *Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	// Defaults always decode.
	_ = v.Unmarshal(&s)
	return &s
}

// Load reads settings. An explicit path must exist; otherwise takeoff.yaml
// is looked up in the default paths and its absence is not an error.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, p := range DefaultPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultPaths returns the directories searched for takeoff.yaml.
func DefaultPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "takeoff"))
	}
	return append(paths, "/etc/takeoff")
}

// Validate checks the settings for values the pipeline cannot use.
func (s *Settings) Validate() error {
	var errs []error
	nonNegative := map[string]float64{
		"clustering.line_tolerance":   s.Clustering.LineTolerance,
		"clustering.gap_tolerance":    s.Clustering.GapTolerance,
		"assembly.axis_tolerance":     s.Assembly.AxisTolerance,
		"assembly.drop_radius":        s.Assembly.DropRadius,
		"assembly.colour_radius":      s.Assembly.ColourRadius,
		"assembly.minimum_run_m":      s.Assembly.MinimumRunM,
		"assembly.bend_threshold_deg": s.Assembly.BendThresholdDeg,
		"colour.merge_distance":       s.Colour.MergeDistance,
		"colour.min_path_length":      s.Colour.MinPathLength,
		"colour.min_run_m":            s.Colour.MinRunM,
	}
	for _, key := range slices.Sorted(maps.Keys(nonNegative)) {
		if nonNegative[key] < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", key))
		}
	}

	if s.Colour.MinBrightness >= s.Colour.MaxBrightness {
		errs = append(errs, errors.New("colour.min_brightness must be below colour.max_brightness"))
	}
	if _, err := grammar.ParseStatusPolicy(s.StatusPolicy); err != nil {
		errs = append(errs, fmt.Errorf("status_policy: %w", err))
	}
	if s.Scale.Ratio < 0 {
		errs = append(errs, errors.New("scale.ratio must not be negative"))
	}
	if s.Scale.Paper != "" && !scale.ValidPaper(s.Scale.Paper) {
		errs = append(errs, fmt.Errorf("scale.paper %q is not A0 to A4", s.Scale.Paper))
	}
	if s.Inputs.NumberOfCircuits < 0 || s.Inputs.AdditionalCablePercent < 0 {
		errs = append(errs, errors.New("inputs must not be negative"))
	}
	return errors.Join(errs...)
}

// AnalyzerConfig converts the settings into a pipeline configuration.
func (s *Settings) AnalyzerConfig() takeoff.Config {
	cfg := takeoff.DefaultConfig()

	cfg.Phrases = layout.PhraseConfig{
		LineTolerance: s.Clustering.LineTolerance,
		GapTolerance:  s.Clustering.GapTolerance,
	}

	cfg.Assembly.AxisTolerance = s.Assembly.AxisTolerance
	cfg.Assembly.DropRadius = s.Assembly.DropRadius
	cfg.Assembly.ColourRadius = s.Assembly.ColourRadius
	cfg.Assembly.MinimumRunM = s.Assembly.MinimumRunM
	cfg.Assembly.BendThresholdDeg = s.Assembly.BendThresholdDeg

	cfg.Colour = vector.ColourFilter{
		MinBrightness: s.Colour.MinBrightness,
		MaxBrightness: s.Colour.MaxBrightness,
		MinSaturation: s.Colour.MinSaturation,
	}
	cfg.Merge = vector.MergeConfig{
		MergeDistance: s.Colour.MergeDistance,
		MinPathLength: s.Colour.MinPathLength,
		MinRunM:       s.Colour.MinRunM,
	}

	if p, err := grammar.ParseStatusPolicy(s.StatusPolicy); err == nil {
		cfg.StatusPolicy = p
	}
	cfg.OCR = s.OCR.Enabled
	cfg.OCRLanguage = s.OCR.Language
	return cfg
}

// ScaleOverrides returns the configured scale as per-request overrides.
func (s *Settings) ScaleOverrides() scale.Overrides {
	return scale.Overrides{Ratio: s.Scale.Ratio, PaperSize: strings.ToUpper(s.Scale.Paper)}
}

// WriteDefault writes the default settings as YAML to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("error encoding default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directories for config file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString("# Containment takeoff configuration\n\n"); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return nil
}
