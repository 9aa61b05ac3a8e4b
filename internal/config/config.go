package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/owlgebra/providers/prover"
)

const (
	// DefaultEnvFile is read by Load when no other file is named.
	DefaultEnvFile = ".env"

	defaultAPIURL       = "http://localhost:8000"
	defaultPollInterval = time.Second
)

// Config is the runtime configuration of the owl command.
type Config struct {
	APIURL       string        `validate:"required,url"`
	APIKey       string        `validate:"-"`
	PollInterval time.Duration `validate:"gt=0"`
	// SolverProfile is the path of a YAML solver profile, if any.
	SolverProfile string
}

// Load reads envFile (a missing file is not an error; existing environment
// variables win over the file), then builds a Config from:
//
//   - OWLGEBRA_API_URL: backend base URL (default http://localhost:8000)
//   - OWLGEBRA_API_KEY: bearer token (optional)
//   - OWLGEBRA_POLL_INTERVAL: Go duration between status polls (default 1s)
//   - OWLGEBRA_SOLVER_PROFILE: path of a YAML solver profile (optional)
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	config := Config{
		APIURL:        defaultAPIURL,
		APIKey:        os.Getenv("OWLGEBRA_API_KEY"),
		PollInterval:  defaultPollInterval,
		SolverProfile: os.Getenv("OWLGEBRA_SOLVER_PROFILE"),
	}
	if v := os.Getenv("OWLGEBRA_API_URL"); v != "" {
		config.APIURL = v
	}
	if v := os.Getenv("OWLGEBRA_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("OWLGEBRA_POLL_INTERVAL: %w", err)
		}
		config.PollInterval = d
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate checks the URL and the poll interval.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// Solver returns the solver configuration: the defaults, overlaid with the
// profile named by SolverProfile when set.
func (c Config) Solver() (prover.SolverConfig, error) {
	if c.SolverProfile == "" {
		return prover.DefaultSolverConfig(), nil
	}
	return LoadSolverProfile(c.SolverProfile)
}

// LoadSolverProfile decodes a YAML solver profile over
// [prover.DefaultSolverConfig]. Keys absent from the file keep their default.
// Unknown keys are rejected. The result is validated.
//
// Example profile:
//
//	ai_for_hypotheses_generation: Claude
//	ai_for_hypotheses_proof: DeepSeek1.5
//	max_iteration_final_proof: 8
func LoadSolverProfile(path string) (prover.SolverConfig, error) {
	config := prover.DefaultSolverConfig()

	file, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("open solver profile: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parse solver profile %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("solver profile %s: %w", path, err)
	}
	return config, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())
