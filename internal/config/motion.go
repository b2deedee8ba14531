package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"go-motion-inspector/internal/decoder"
	"go-motion-inspector/internal/motion"
	"go-motion-inspector/internal/tracker"
)

// MotionConfig is the motion detection configuration file.
type MotionConfig struct {
	Sensitivity     *int     `yaml:"sensitivity"`
	Mask            string   `yaml:"mask"`
	SaturationError *int     `yaml:"saturation_error"`
	HueError        *int     `yaml:"hue_error"`
	LightCurve      [][2]int `yaml:"light_curve"`
	HistoCurve      [][2]int `yaml:"histo_curve"`
	Scale           int      `yaml:"scale"`
	Workers         int      `yaml:"workers"`
	// SnapshotCapacity bounds the snapshots kept by the API
	SnapshotCapacity int `yaml:"snapshot_capacity"`

	Tracker       tracker.Config     `yaml:"tracker"`
	Camera        CameraConfig       `yaml:"camera"`
	Archive       ArchiveConfig      `yaml:"archive"`
	HistoricDB    string             `yaml:"historic_db"`
	Polling       PollingConfig      `yaml:"polling"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// CameraConfig selects the frame source. An empty type disables the monitor.
type CameraConfig struct {
	Type         string   `yaml:"type"` // http | directory
	URL          string   `yaml:"url"`
	Dir          string   `yaml:"dir"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	InsecureTLS  bool     `yaml:"insecure_tls"`
	MaxFrameSize int64    `yaml:"max_frame_size"`
}

// ArchiveConfig selects where detected motion frames go.
type ArchiveConfig struct {
	Type           string `yaml:"type"` // local | azure
	Dir            string `yaml:"dir"`
	AzureAccount   string `yaml:"azure_account"`
	AzureKey       string `yaml:"azure_key"`
	AzureContainer string `yaml:"azure_container"`
}

// PollingConfig holds the capture intervals.
type PollingConfig struct {
	Fast time.Duration `yaml:"fast"`
	Slow time.Duration `yaml:"slow"`
	// StateDuration is how long without detection before the motion is cleared
	StateDuration time.Duration `yaml:"state_duration"`
}

// NotificationConfig tunes the motion image cadencer.
type NotificationConfig struct {
	Batch       int           `yaml:"batch"`
	Duration    time.Duration `yaml:"duration"`
	MaxDuration time.Duration `yaml:"max_duration"`
}

// DefaultMotionConfig returns the configuration used without a file.
func DefaultMotionConfig() *MotionConfig {
	cfg := &MotionConfig{Tracker: tracker.DefaultConfig()}
	cfg.applyDefaults()
	return cfg
}

// LoadMotionConfig reads path, an empty path yields the defaults.
func LoadMotionConfig(path string) (*MotionConfig, error) {
	if path == "" {
		return DefaultMotionConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read motion config: %w", err)
	}

	// Tracker thresholds are prefilled so an explicit 0 survives decoding
	cfg := MotionConfig{Tracker: tracker.DefaultConfig()}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse motion config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *MotionConfig) applyDefaults() {
	if c.Sensitivity == nil {
		s := motion.DefaultSensitivity
		c.Sensitivity = &s
	}
	if c.SaturationError == nil {
		v := motion.DefaultSaturationError
		c.SaturationError = &v
	}
	if c.HueError == nil {
		v := motion.DefaultHueError
		c.HueError = &v
	}
	if c.Scale == 0 {
		c.Scale = int(decoder.Scale8X)
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.SnapshotCapacity <= 0 {
		c.SnapshotCapacity = 64
	}

	if c.Camera.MaxFrameSize <= 0 {
		c.Camera.MaxFrameSize = 4 << 20
	}
	if c.Archive.Type == "" {
		c.Archive.Type = "local"
	}
	if c.Archive.Dir == "" {
		c.Archive.Dir = "motions"
	}
	if c.Archive.AzureKey == "" {
		c.Archive.AzureKey = os.Getenv("AZURE_STORAGE_KEY")
	}
	if c.HistoricDB == "" {
		c.HistoricDB = "historic.db"
	}

	if c.Polling.Fast <= 0 {
		c.Polling.Fast = 100 * time.Millisecond
	}
	if c.Polling.Slow <= 0 {
		c.Polling.Slow = 500 * time.Millisecond
	}
	if c.Polling.StateDuration <= 0 {
		c.Polling.StateDuration = 30 * time.Second
	}

	if c.Notifications.Batch <= 0 {
		c.Notifications.Batch = 5
	}
	if c.Notifications.Duration <= 0 {
		c.Notifications.Duration = 15 * time.Second
	}
	if c.Notifications.MaxDuration <= 0 {
		c.Notifications.MaxDuration = time.Minute
	}
}

// Validate checks the values defaults cannot repair.
func (c *MotionConfig) Validate() error {
	if s := *c.Sensitivity; s < 0 || s > 100 {
		return fmt.Errorf("sensitivity must be in 0..100 (got %d)", s)
	}
	if *c.SaturationError < 0 || *c.HueError < 0 {
		return fmt.Errorf("saturation_error and hue_error must be >= 0")
	}
	if _, err := decoder.ParseScale(c.Scale); err != nil {
		return err
	}
	if (c.LightCurve == nil) != (c.HistoCurve == nil) {
		return fmt.Errorf("light_curve and histo_curve must be given together")
	}
	if err := c.Tracker.Validate(); err != nil {
		return err
	}
	switch c.Camera.Type {
	case "":
	case "http":
		if c.Camera.URL == "" {
			return fmt.Errorf("camera.url is required for an http camera")
		}
	case "directory":
		if c.Camera.Dir == "" {
			return fmt.Errorf("camera.dir is required for a directory camera")
		}
	default:
		return fmt.Errorf("unsupported camera type: %s", c.Camera.Type)
	}
	switch c.Archive.Type {
	case "local":
	case "azure":
		if c.Archive.AzureAccount == "" || c.Archive.AzureContainer == "" {
			return fmt.Errorf("archive.azure_account and archive.azure_container are required")
		}
	default:
		return fmt.Errorf("unsupported archive type: %s", c.Archive.Type)
	}
	return nil
}

// DecodeScale returns the configured decode reduction.
func (c *MotionConfig) DecodeScale() (decoder.Scale, error) {
	return decoder.ParseScale(c.Scale)
}

// Tolerance builds the comparison tolerance, from explicit curves when
// given, otherwise from the sensitivity.
func (c *MotionConfig) Tolerance() (motion.Tolerance, error) {
	mask := []byte(c.Mask)

	var tol motion.Tolerance
	if c.LightCurve != nil {
		light, err := motion.CurveFromPairs(c.LightCurve)
		if err != nil {
			return motion.Tolerance{}, fmt.Errorf("light_curve: %w", err)
		}
		histo, err := motion.CurveFromPairs(c.HistoCurve)
		if err != nil {
			return motion.Tolerance{}, fmt.Errorf("histo_curve: %w", err)
		}
		tol = motion.DefaultTolerance()
		tol.LightCurve = light
		tol.HistoCurve = histo
		tol.Mask = motion.NormalizeMask(mask)
	} else {
		var err error
		if tol, err = motion.ToleranceForSensitivity(*c.Sensitivity, mask); err != nil {
			return motion.Tolerance{}, err
		}
	}

	tol.SaturationError = *c.SaturationError
	tol.HueError = *c.HueError
	return tol, tol.Validate()
}
