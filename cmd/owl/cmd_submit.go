package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/owlgebra/core/signature"
	"github.com/leofalp/owlgebra/internal/config"
	"github.com/leofalp/owlgebra/internal/utils"
	"github.com/leofalp/owlgebra/providers/prover"
)

// theoremName is the identifier rule the parser applies to parsed names.
var theoremName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type submitFlags struct {
	parser     parserFlags
	profile    string
	name       string
	goal       string
	preamble   string
	hypotheses string
	dryRun     bool
	check      bool
	follow     bool
	quiet      bool

	generationModel string
	hypothesesModel string
	finalModel      string
	hypothesesIters int
	hypothesesFixes int
	finalIters      int
	finalFixes      int
}

func newSubmitCmd(a *app) *cobra.Command {
	var flags submitFlags

	cmd := &cobra.Command{
		Use:   "submit [file|-]",
		Short: "Parse a theorem and submit it to the proving backend",
		Example: `  owl submit theorem.lean
  owl submit --profile fast.yaml --max-final-iterations 8 theorem.lean
  owl submit --dry-run --hypotheses '["(n : ℕ)", "(h : 0 < n)"]' theorem.lean
  owl submit --name gcd_lemma --goal 'Nat.gcd n n = n' theorem.lean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := sourcePath(args)
			sig, err := parseSource(cmd.InOrStdin(), path, flags.parser.parser())
			if err != nil {
				return err
			}

			sig, err = editDraft(cmd, flags, sig)
			if err != nil {
				return err
			}

			solver, err := a.solverConfig(cmd, flags)
			if err != nil {
				return err
			}

			request := prover.NewProveRequest(sig, solver)
			if err := request.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.dryRun {
				_, err := fmt.Fprintln(out, utils.JSONToString(request, true))
				return err
			}

			ctx := cmd.Context()
			if flags.check {
				options, err := a.client.Options(ctx)
				if err != nil {
					return err
				}
				if err := solver.ValidateAgainst(options); err != nil {
					return err
				}
			}

			resp, err := a.client.Submit(ctx, request)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s task %s submitted for %s\n", styles.Success.Render("✓"), styles.Title.Render(resp.TaskID), request.Name)

			if !flags.follow {
				return nil
			}
			return a.watchTask(cmd, resp.TaskID, prover.WatchOptions{Interval: a.config.PollInterval}, flags.quiet)
		},
	}

	flags.parser.register(cmd)
	f := cmd.Flags()
	f.StringVar(&flags.profile, "profile", "", "YAML solver profile (overrides OWLGEBRA_SOLVER_PROFILE)")
	f.StringVar(&flags.name, "name", "", "theorem name replacing the parsed one")
	f.StringVar(&flags.goal, "goal", "", "goal replacing the parsed one")
	f.StringVar(&flags.preamble, "preamble", "", "code replayed before the theorem (empty means import Mathlib)")
	f.StringVar(&flags.hypotheses, "hypotheses", "", "JSON array replacing the parsed hypotheses")
	f.BoolVar(&flags.dryRun, "dry-run", false, "print the request instead of sending it")
	f.BoolVar(&flags.check, "check", false, "validate the solver config against the backend's options first")
	f.BoolVar(&flags.follow, "watch", false, "follow the task until it finishes")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "with --watch, print only the final state")

	f.StringVar(&flags.generationModel, "model-generation", "", "model generating hypotheses")
	f.StringVar(&flags.hypothesesModel, "model-hypotheses", "", "model proving hypotheses")
	f.StringVar(&flags.finalModel, "model-final", "", "model writing the final proof")
	f.IntVar(&flags.hypothesesIters, "max-hypotheses-iterations", 0, "iterations for proving hypotheses")
	f.IntVar(&flags.hypothesesFixes, "max-hypotheses-corrections", 0, "correction iterations for hypotheses proofs")
	f.IntVar(&flags.finalIters, "max-final-iterations", 0, "iterations for the final proof")
	f.IntVar(&flags.finalFixes, "max-final-corrections", 0, "correction iterations for the final proof")
	return cmd
}

// editDraft replaces the parsed fields the user set explicitly, so a
// declaration with a missing name or goal can still be submitted.
func editDraft(cmd *cobra.Command, flags submitFlags, sig signature.Signature) (signature.Signature, error) {
	changed := cmd.Flags().Changed
	if changed("name") {
		if !theoremName.MatchString(flags.name) {
			return sig, fmt.Errorf("--name %q: must be a letter or underscore followed by letters, digits or underscores", flags.name)
		}
		sig.Name = flags.name
	}
	if changed("goal") {
		sig.Goal = strings.TrimSpace(flags.goal)
	}
	if changed("preamble") {
		sig.Preamble = flags.preamble
	}
	if changed("hypotheses") {
		hypotheses, err := prover.ParseHypotheses(flags.hypotheses)
		if err != nil {
			return sig, fmt.Errorf("--hypotheses: %w", err)
		}
		sig.Hypotheses = hypotheses
	}
	return sig, nil
}

// solverConfig resolves the solver configuration: the profile from --profile
// or the environment, then any flag the user set explicitly.
func (a *app) solverConfig(cmd *cobra.Command, flags submitFlags) (prover.SolverConfig, error) {
	var (
		base prover.SolverConfig
		err  error
	)
	if flags.profile != "" {
		base, err = config.LoadSolverProfile(flags.profile)
	} else {
		base, err = a.config.Solver()
	}
	if err != nil {
		return prover.SolverConfig{}, err
	}

	changed := cmd.Flags().Changed
	var overrides prover.SolverOverrides
	if changed("model-generation") {
		overrides.HypothesesGenerationModel = utils.Ptr(prover.Model(flags.generationModel))
	}
	if changed("model-hypotheses") {
		overrides.HypothesesProofModel = utils.Ptr(prover.Model(flags.hypothesesModel))
	}
	if changed("model-final") {
		overrides.FinalProofModel = utils.Ptr(prover.Model(flags.finalModel))
	}
	if changed("max-hypotheses-iterations") {
		overrides.MaxIterationHypothesesProof = utils.Ptr(flags.hypothesesIters)
	}
	if changed("max-hypotheses-corrections") {
		overrides.MaxCorrectionIterationHypothesesProof = utils.Ptr(flags.hypothesesFixes)
	}
	if changed("max-final-iterations") {
		overrides.MaxIterationFinalProof = utils.Ptr(flags.finalIters)
	}
	if changed("max-final-corrections") {
		overrides.MaxCorrectionIterationFinalProof = utils.Ptr(flags.finalFixes)
	}

	solver := overrides.Apply(base)
	if err := solver.Validate(); err != nil {
		return prover.SolverConfig{}, err
	}
	return solver, nil
}
