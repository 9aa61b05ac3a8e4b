package prover

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Model names an AI backend the solver can use for one pipeline stage.
type Model string

const (
	ModelClaude      Model = "Claude"
	ModelOpenAIO1    Model = "OpenAI(o1)"
	ModelOpenAI4o    Model = "OpenAI(4o)"
	ModelDeepSeek1_5 Model = "DeepSeek1.5"
)

// KnownModels lists the models the backend shipped with. The authoritative
// list is the one returned by [Client.Options].
var KnownModels = []Model{ModelClaude, ModelOpenAIO1, ModelOpenAI4o, ModelDeepSeek1_5}

// SolverConfig selects the models and iteration budgets of a proof job.
type SolverConfig struct {
	HypothesesGenerationModel Model `yaml:"ai_for_hypotheses_generation" validate:"required"`
	HypothesesProofModel      Model `yaml:"ai_for_hypotheses_proof" validate:"required"`
	FinalProofModel           Model `yaml:"ai_for_final_proof" validate:"required"`

	MaxIterationHypothesesProof           int `yaml:"max_iteration_hypotheses_proof" validate:"min=1,max=100"`
	MaxCorrectionIterationHypothesesProof int `yaml:"max_correction_iteration_hypotheses_proof" validate:"min=1,max=100"`
	MaxIterationFinalProof                int `yaml:"max_iteration_final_proof" validate:"min=1,max=100"`
	MaxCorrectionIterationFinalProof      int `yaml:"max_correction_iteration_final_proof" validate:"min=1,max=100"`

	Verbose bool `yaml:"verbose"`
}

// DefaultSolverConfig returns the configuration the backend UI starts with.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		HypothesesGenerationModel:             ModelClaude,
		HypothesesProofModel:                  ModelDeepSeek1_5,
		FinalProofModel:                       ModelDeepSeek1_5,
		MaxIterationHypothesesProof:           3,
		MaxCorrectionIterationHypothesesProof: 3,
		MaxIterationFinalProof:                5,
		MaxCorrectionIterationFinalProof:      5,
		Verbose:                               true,
	}
}

// Validate checks field presence and iteration bounds.
func (c SolverConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return validationError("solver config", err)
	}
	return nil
}

// ValidateAgainst checks c against the models and limits the backend
// publishes. It implies [SolverConfig.Validate].
func (c SolverConfig) ValidateAgainst(options SolverOptions) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var problems []string
	for _, stage := range []struct {
		name  string
		model Model
	}{
		{"ai_for_hypotheses_generation", c.HypothesesGenerationModel},
		{"ai_for_hypotheses_proof", c.HypothesesProofModel},
		{"ai_for_final_proof", c.FinalProofModel},
	} {
		if !slices.Contains(options.Models, stage.model) {
			problems = append(problems, fmt.Sprintf("%s: model %q is not offered by the backend", stage.name, stage.model))
		}
	}

	for _, limit := range []struct {
		name       string
		value, max int
	}{
		{"max_iteration_hypotheses_proof", c.MaxIterationHypothesesProof, options.Limits.MaxIterationHypothesesProof},
		{"max_correction_iteration_hypotheses_proof", c.MaxCorrectionIterationHypothesesProof, options.Limits.MaxCorrectionIterationHypothesesProof},
		{"max_iteration_final_proof", c.MaxIterationFinalProof, options.Limits.MaxIterationFinalProof},
		{"max_correction_iteration_final_proof", c.MaxCorrectionIterationFinalProof, options.Limits.MaxCorrectionIterationFinalProof},
	} {
		if limit.value > limit.max {
			problems = append(problems, fmt.Sprintf("%s: %d exceeds backend limit %d", limit.name, limit.value, limit.max))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("solver config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SolverOverrides holds optional changes to a SolverConfig. Nil fields keep
// the base value.
type SolverOverrides struct {
	HypothesesGenerationModel *Model
	HypothesesProofModel      *Model
	FinalProofModel           *Model

	MaxIterationHypothesesProof           *int
	MaxCorrectionIterationHypothesesProof *int
	MaxIterationFinalProof                *int
	MaxCorrectionIterationFinalProof      *int

	Verbose *bool
}

// Apply returns base with every non-nil override applied.
func (o SolverOverrides) Apply(base SolverConfig) SolverConfig {
	setIf(&base.HypothesesGenerationModel, o.HypothesesGenerationModel)
	setIf(&base.HypothesesProofModel, o.HypothesesProofModel)
	setIf(&base.FinalProofModel, o.FinalProofModel)
	setIf(&base.MaxIterationHypothesesProof, o.MaxIterationHypothesesProof)
	setIf(&base.MaxCorrectionIterationHypothesesProof, o.MaxCorrectionIterationHypothesesProof)
	setIf(&base.MaxIterationFinalProof, o.MaxIterationFinalProof)
	setIf(&base.MaxCorrectionIterationFinalProof, o.MaxCorrectionIterationFinalProof)
	setIf(&base.Verbose, o.Verbose)
	return base
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// SolverOptions is the dynamic set of models and iteration ceilings the
// backend accepts, as returned by GET /options/.
type SolverOptions struct {
	Models []Model `json:"models" validate:"required,min=1,unique,dive,required"`
	Limits Limits  `json:"limits"`
}

// Limits are the backend's upper bounds for each iteration budget.
type Limits struct {
	MaxIterationHypothesesProof           int `json:"max_iteration_hypotheses_proof" validate:"gt=0"`
	MaxCorrectionIterationHypothesesProof int `json:"max_correction_iteration_hypotheses_proof" validate:"gt=0"`
	MaxIterationFinalProof                int `json:"max_iteration_final_proof" validate:"gt=0"`
	MaxCorrectionIterationFinalProof      int `json:"max_correction_iteration_final_proof" validate:"gt=0"`
}

// Validate reports an [ErrInvalidOptions] error for an empty or duplicated
// model list or non-positive limits.
func (o SolverOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, validationError("solver options", err))
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validationError flattens validator output into one readable error.
func validationError(subject string, err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%s: %w", subject, err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		if fieldErr.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed %q (%s)", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s failed %q", fieldErr.Namespace(), fieldErr.Tag()))
		}
	}
	return fmt.Errorf("%s: %s", subject, strings.Join(problems, "; "))
}
