package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/smart-attendance/internal/constants"
)

//go:embed tolerances.yaml
var tolerancesYAML []byte

type Config struct {
	Embedding   EmbeddingConfig
	Storage     StorageConfig
	Recognition RecognitionConfig
	Web         WebConfig
}

type EmbeddingConfig struct {
	URL   string // defaults to http://localhost:8000
	Model string // model name reported by the embedding service, for reference only
	Dim   int    // expected descriptor length, defaults to 128
}

type StorageConfig struct {
	DataDir string // base directory for student photos, encodings, and the ledger
}

// StudentDir returns the directory holding labeled reference photos.
func (c *StorageConfig) StudentDir() string {
	return filepath.Join(c.DataDir, "student_images")
}

// EncodingsPath returns the path of the persisted encoding database.
func (c *StorageConfig) EncodingsPath() string {
	return filepath.Join(c.DataDir, "encodings.gob")
}

// LedgerPath returns the path of the attendance CSV ledger.
func (c *StorageConfig) LedgerPath() string {
	return filepath.Join(c.DataDir, "attendance", "attendance.csv")
}

type RecognitionConfig struct {
	Tolerance float64 // maximum match distance, 0 = use model preset
	Presets   TolerancePresets
}

type WebConfig struct {
	Host string
	Port int
}

// TolerancePresets holds per-model tolerance defaults loaded from the
// embedded tolerances.yaml.
type TolerancePresets struct {
	Models map[string]ModelTolerance `yaml:"models"`
}

type ModelTolerance struct {
	Tolerance float64 `yaml:"tolerance"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var presets TolerancePresets
	if err := yaml.Unmarshal(tolerancesYAML, &presets); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded tolerances.yaml: " + err.Error())
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	return &Config{
		Embedding: EmbeddingConfig{
			URL:   os.Getenv("EMBEDDING_URL"),
			Model: os.Getenv("EMBEDDING_MODEL"),
			Dim:   envInt("EMBEDDING_DIM", 128),
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Recognition: RecognitionConfig{
			Tolerance: envFloat("RECOGNITION_TOLERANCE", 0),
			Presets:   presets,
		},
		Web: WebConfig{
			Host: envOr("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// Tolerance resolves the match tolerance for the given embedding model.
// An explicit RECOGNITION_TOLERANCE wins, then the model preset, then the
// global default.
func (c *Config) Tolerance(model string) float64 {
	if c.Recognition.Tolerance > 0 {
		return c.Recognition.Tolerance
	}
	if preset, ok := c.Recognition.Presets.Models[model]; ok && preset.Tolerance > 0 {
		return preset.Tolerance
	}
	return constants.DefaultTolerance
}
