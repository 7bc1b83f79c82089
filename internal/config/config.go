// Package config loads the simulation settings from a JSON or YAML file
// validated against a JSON Schema.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock/pkg/steering"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var embeddedSchema string

const embeddedSchemaURL = "config.schema.json"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Population
	NumFlocks     int `json:"numFlocks"`
	BoidsPerFlock int `json:"boidsPerFlock"`

	// Boid properties (snapshotted by every boid when it joins its flock)
	MaxSpeed        float64 `json:"maxSpeed"`
	CenteringFactor float64 `json:"centeringFactor"` // Cohesion strength
	AvoidFactor     float64 `json:"avoidFactor"`     // Separation strength
	MatchingFactor  float64 `json:"matchingFactor"`  // Alignment strength

	// Flock properties
	VisualRange    float64 `json:"visualRange"`    // How far can they see?
	ProtectedRange float64 `json:"protectedRange"` // Personal space radius

	// Steering policy
	MinSpeed   float64 `json:"minSpeed"`
	TurnFactor float64 `json:"turnFactor"` // Edge turning strength
	Margin     float64 `json:"margin"`
	UpdateMode string  `json:"updateMode"`

	// Driver
	TicksPerSecond int    `json:"ticksPerSecond"`
	LogLevel       string `json:"logLevel"`
}

func Default() *Config {
	return &Config{
		WorldWidth:      1000,
		WorldHeight:     800,
		NumFlocks:       3,
		BoidsPerFlock:   80,
		MaxSpeed:        4.0,
		CenteringFactor: 0.0005,
		AvoidFactor:     0.05,
		MatchingFactor:  0.05,
		VisualRange:     70.0,
		ProtectedRange:  20.0,
		MinSpeed:        2.0,
		TurnFactor:      0.2,
		Margin:          100,
		UpdateMode:      flock.Jacobi.String(),
		TicksPerSecond:  60,
		LogLevel:        "info",
	}
}

// Load reads configFile (.json, .yaml or .yml), validates it against the
// schema at schemaFile, or the embedded one when schemaFile is empty, and
// returns it merged over Default.
func Load(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, YAML is converted to JSON first
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if raw, err = yamlToJSON(raw); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	}

	// 3. Validate
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile != "" {
		return jsonschema.Compile(schemaFile)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(embeddedSchemaURL, strings.NewReader(embeddedSchema)); err != nil {
		return nil, err
	}
	return c.Compile(embeddedSchemaURL)
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(doc)
}

// Validate checks the constraints the schema cannot express.
func (c *Config) Validate() error {
	if c.MinSpeed > c.MaxSpeed {
		return fmt.Errorf("%w: minSpeed %v exceeds maxSpeed %v", ErrInvalid, c.MinSpeed, c.MaxSpeed)
	}
	if c.ProtectedRange > c.VisualRange {
		return fmt.Errorf("%w: protectedRange %v exceeds visualRange %v", ErrInvalid, c.ProtectedRange, c.VisualRange)
	}
	if c.TicksPerSecond < 1 {
		return fmt.Errorf("%w: ticksPerSecond %d must be at least 1", ErrInvalid, c.TicksPerSecond)
	}
	if _, err := ParseUpdateMode(c.UpdateMode); err != nil {
		return err
	}
	if err := c.BoidProperties().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.FlockProperties().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) BoidProperties() flock.BoidProperties {
	return flock.NewBoidProperties(c.MaxSpeed,
		flock.WithAlignment(c.MatchingFactor),
		flock.WithCohesion(c.CenteringFactor),
		flock.WithSeparation(c.AvoidFactor),
	)
}

func (c *Config) FlockProperties() flock.FlockProperties {
	return flock.NewFlockProperties(c.VisualRange, c.ProtectedRange)
}

func (c *Config) SteeringSettings() steering.Settings {
	// Validate already rejected unknown modes
	mode, _ := ParseUpdateMode(c.UpdateMode)
	return steering.Settings{
		Width:      c.WorldWidth,
		Height:     c.WorldHeight,
		Margin:     c.Margin,
		TurnFactor: c.TurnFactor,
		MinSpeed:   c.MinSpeed,
		Mode:       mode,
	}
}

// ParseUpdateMode maps the configuration spelling to a flock.UpdateMode.
func ParseUpdateMode(s string) (flock.UpdateMode, error) {
	switch s {
	case "", flock.Jacobi.String():
		return flock.Jacobi, nil
	case flock.GaussSeidel.String():
		return flock.GaussSeidel, nil
	default:
		return flock.Jacobi, fmt.Errorf("%w: unknown update mode %q", ErrInvalid, s)
	}
}

// Logger builds the goakt logger matching LogLevel.
func (c *Config) Logger() log.Logger {
	return log.New(c.level(), os.Stdout)
}

func (c *Config) level() log.Level {
	switch c.LogLevel {
	case "debug":
		return log.DebugLevel
	case "warning":
		return log.WarningLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
