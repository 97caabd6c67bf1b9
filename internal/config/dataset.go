package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is the path to the canonical dataset defaults file.
const DefaultConfigPath = "config/dataset.defaults.json"

// DatasetConfig is the root configuration for dataset extraction. Every
// field is optional; the Get* accessors supply defaults for omitted fields.
type DatasetConfig struct {
	// Session files
	DataDir         *string `json:"data_dir,omitempty"`
	VideoExt        *string `json:"video_ext,omitempty"`
	TelemetryExt    *string `json:"telemetry_ext,omitempty"`
	TelemetryColumn *string `json:"telemetry_column,omitempty"`

	// Session sets. Train and eval must not overlap.
	TrainEpochs []int `json:"train_epochs,omitempty"`
	EvalEpochs  []int `json:"eval_epochs,omitempty"`

	// Output geometry
	TargetHeight *int `json:"target_height,omitempty"`
	TargetWidth  *int `json:"target_width,omitempty"`

	// Alignment and throughput
	CountPolicy *string `json:"count_policy,omitempty"` // strict | truncate | lenient
	Workers     *int    `json:"workers,omitempty"`

	// Decoder binaries
	FFmpegPath  *string `json:"ffmpeg_path,omitempty"`
	FFprobePath *string `json:"ffprobe_path,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyDatasetConfig returns a DatasetConfig with every field unset.
func EmptyDatasetConfig() *DatasetConfig {
	return &DatasetConfig{}
}

// DefaultDatasetConfig returns a config with every field set to its default.
func DefaultDatasetConfig() *DatasetConfig {
	return &DatasetConfig{
		DataDir:         ptrString("data"),
		VideoExt:        ptrString("mp4"),
		TelemetryExt:    ptrString("csv"),
		TelemetryColumn: ptrString("wheel"),
		TrainEpochs:     []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
		EvalEpochs:      []int{10},
		TargetHeight:    ptrInt(66),
		TargetWidth:     ptrInt(200),
		CountPolicy:     ptrString("strict"),
		Workers:         ptrInt(1),
		FFmpegPath:      ptrString("ffmpeg"),
		FFprobePath:     ptrString("ffprobe"),
	}
}

// LoadDatasetConfig loads a DatasetConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Omitted fields keep
// their defaults through the Get* accessors, so partial configs are safe.
func LoadDatasetConfig(path string) (*DatasetConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDatasetConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *DatasetConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadDatasetConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *DatasetConfig) Validate() error {
	if c.TargetHeight != nil && *c.TargetHeight <= 0 {
		return fmt.Errorf("target_height must be positive, got %d", *c.TargetHeight)
	}
	if c.TargetWidth != nil && *c.TargetWidth <= 0 {
		return fmt.Errorf("target_width must be positive, got %d", *c.TargetWidth)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	if c.CountPolicy != nil {
		switch strings.ToLower(*c.CountPolicy) {
		case "strict", "truncate", "lenient":
		default:
			return fmt.Errorf("count_policy must be strict, truncate or lenient, got %q", *c.CountPolicy)
		}
	}

	if c.TelemetryColumn != nil && strings.TrimSpace(*c.TelemetryColumn) == "" {
		return fmt.Errorf("telemetry_column must not be empty")
	}

	if err := validateEpochs("train_epochs", c.TrainEpochs); err != nil {
		return err
	}
	if err := validateEpochs("eval_epochs", c.EvalEpochs); err != nil {
		return err
	}
	train := make(map[int]bool, len(c.GetTrainEpochs()))
	for _, e := range c.GetTrainEpochs() {
		train[e] = true
	}
	for _, e := range c.GetEvalEpochs() {
		if train[e] {
			return fmt.Errorf("epoch %d is in both train_epochs and eval_epochs", e)
		}
	}

	return nil
}

func validateEpochs(field string, epochs []int) error {
	seen := make(map[int]bool, len(epochs))
	for _, e := range epochs {
		if e < 0 {
			return fmt.Errorf("%s: epoch must be non-negative, got %d", field, e)
		}
		if seen[e] {
			return fmt.Errorf("%s: epoch %d listed twice", field, e)
		}
		seen[e] = true
	}
	return nil
}

// GetDataDir returns the data_dir value or the default.
func (c *DatasetConfig) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return "data"
	}
	return *c.DataDir
}

// GetVideoExt returns the video_ext value or the default, without a dot.
func (c *DatasetConfig) GetVideoExt() string {
	if c.VideoExt == nil || *c.VideoExt == "" {
		return "mp4"
	}
	return strings.TrimPrefix(*c.VideoExt, ".")
}

// GetTelemetryExt returns the telemetry_ext value or the default, without a dot.
func (c *DatasetConfig) GetTelemetryExt() string {
	if c.TelemetryExt == nil || *c.TelemetryExt == "" {
		return "csv"
	}
	return strings.TrimPrefix(*c.TelemetryExt, ".")
}

// GetTelemetryColumn returns the telemetry_column value or the default.
func (c *DatasetConfig) GetTelemetryColumn() string {
	if c.TelemetryColumn == nil || *c.TelemetryColumn == "" {
		return "wheel"
	}
	return *c.TelemetryColumn
}

// GetTrainEpochs returns train_epochs or the default set 1..9.
func (c *DatasetConfig) GetTrainEpochs() []int {
	if len(c.TrainEpochs) == 0 {
		return []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	}
	return append([]int(nil), c.TrainEpochs...)
}

// GetEvalEpochs returns eval_epochs or the default set {10}.
func (c *DatasetConfig) GetEvalEpochs() []int {
	if len(c.EvalEpochs) == 0 {
		return []int{10}
	}
	return append([]int(nil), c.EvalEpochs...)
}

// GetTargetHeight returns the target_height value or the default.
func (c *DatasetConfig) GetTargetHeight() int {
	if c.TargetHeight == nil {
		return 66
	}
	return *c.TargetHeight
}

// GetTargetWidth returns the target_width value or the default.
func (c *DatasetConfig) GetTargetWidth() int {
	if c.TargetWidth == nil {
		return 200
	}
	return *c.TargetWidth
}

// GetCountPolicy returns the count_policy value or the default.
func (c *DatasetConfig) GetCountPolicy() string {
	if c.CountPolicy == nil || *c.CountPolicy == "" {
		return "strict"
	}
	return strings.ToLower(*c.CountPolicy)
}

// GetWorkers returns the workers value or the default.
func (c *DatasetConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetFFmpegPath returns the ffmpeg_path value or the default.
func (c *DatasetConfig) GetFFmpegPath() string {
	if c.FFmpegPath == nil || *c.FFmpegPath == "" {
		return "ffmpeg"
	}
	return *c.FFmpegPath
}

// GetFFprobePath returns the ffprobe_path value or the default.
func (c *DatasetConfig) GetFFprobePath() string {
	if c.FFprobePath == nil || *c.FFprobePath == "" {
		return "ffprobe"
	}
	return *c.FFprobePath
}
