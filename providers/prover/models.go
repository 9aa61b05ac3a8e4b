package prover

import (
	"encoding/json"
	"strings"

	"github.com/leofalp/owlgebra/core/signature"
)

// DefaultEnvironment is sent as code_for_env_0 when a theorem has no preamble.
const DefaultEnvironment = "import Mathlib"

// ProveRequest is the body of POST /prove/.
type ProveRequest struct {
	Name        string   `json:"name" validate:"required"`
	Hypotheses  []string `json:"hypotheses" validate:"dive,required"`
	Goal        string   `json:"goal" validate:"required"`
	Environment string   `json:"code_for_env_0"`

	HypothesesGenerationModel Model `json:"ai_for_hypotheses_generation" validate:"required"`
	// The backend spells this field "hyptheses".
	HypothesesProofModel Model `json:"ai_for_hyptheses_proof" validate:"required"`
	FinalProofModel      Model `json:"ai_for_final_proof" validate:"required"`

	MaxIterationHypothesesProof           int `json:"max_iteration_hypotheses_proof" validate:"min=1"`
	MaxCorrectionIterationHypothesesProof int `json:"max_correction_iteration_hypotheses_proof" validate:"min=1"`
	MaxIterationFinalProof                int `json:"max_iteration_final_proof" validate:"min=1"`
	MaxCorrectionIterationFinalProof      int `json:"max_correction_iteration_final_proof" validate:"min=1"`

	Verbose bool `json:"verbose"`
}

// NewProveRequest builds a submission from a parsed theorem and a solver
// configuration. An empty preamble becomes [DefaultEnvironment].
func NewProveRequest(sig signature.Signature, solver SolverConfig) ProveRequest {
	environment := sig.Preamble
	if strings.TrimSpace(environment) == "" {
		environment = DefaultEnvironment
	}
	hypotheses := sig.Hypotheses
	if hypotheses == nil {
		hypotheses = []string{}
	}

	return ProveRequest{
		Name:                                  sig.Name,
		Hypotheses:                            hypotheses,
		Goal:                                  sig.Goal,
		Environment:                           environment,
		HypothesesGenerationModel:             solver.HypothesesGenerationModel,
		HypothesesProofModel:                  solver.HypothesesProofModel,
		FinalProofModel:                       solver.FinalProofModel,
		MaxIterationHypothesesProof:           solver.MaxIterationHypothesesProof,
		MaxCorrectionIterationHypothesesProof: solver.MaxCorrectionIterationHypothesesProof,
		MaxIterationFinalProof:                solver.MaxIterationFinalProof,
		MaxCorrectionIterationFinalProof:      solver.MaxCorrectionIterationFinalProof,
		Verbose:                               solver.Verbose,
	}
}

// Validate checks that the request names a theorem with a goal and a usable
// solver configuration.
func (r ProveRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError("prove request", err)
	}
	return nil
}

// SubmitResponse is the reply to POST /prove/.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
}

// Task states reported by the backend. StateNotFound is synthesized by
// [Client.Watch] for unknown ids.
const (
	StatePending  = "pending"
	StateRunning  = "running"
	StateFailed   = "failed"
	StateFinished = "finished"
	StateNotFound = "not_found"
)

// IsTerminal reports whether a task in state will not change any more.
func IsTerminal(state string) bool {
	switch state {
	case StateFinished, StateFailed, StateNotFound:
		return true
	default:
		return false
	}
}

// TaskEntry is one line of the task board, formatted "<id>: <label>".
type TaskEntry struct {
	ID    string
	Raw   string
	State string
}

func newTaskEntry(raw, state string) TaskEntry {
	id, _, _ := strings.Cut(raw, ":")
	return TaskEntry{ID: strings.TrimSpace(id), Raw: raw, State: state}
}

// TaskBoard groups the backend's tasks by state, oldest first.
type TaskBoard struct {
	Pending  []TaskEntry
	Running  []TaskEntry
	Failed   []TaskEntry
	Finished []TaskEntry
}

type taskBoardResponse struct {
	Pending  []string `json:"pending_tasks"`
	Running  []string `json:"running_tasks"`
	Failed   []string `json:"failed_tasks"`
	Finished []string `json:"finished_tasks"`
}

func (r taskBoardResponse) board() TaskBoard {
	return TaskBoard{
		Pending:  toEntries(r.Pending, StatePending),
		Running:  toEntries(r.Running, StateRunning),
		Failed:   toEntries(r.Failed, StateFailed),
		Finished: toEntries(r.Finished, StateFinished),
	}
}

func toEntries(raw []string, state string) []TaskEntry {
	entries := make([]TaskEntry, 0, len(raw))
	for _, line := range raw {
		entries = append(entries, newTaskEntry(line, state))
	}
	return entries
}

// Recent keeps only the last n entries of each list.
func (b TaskBoard) Recent(n int) TaskBoard {
	return b.apply(func(entries []TaskEntry) []TaskEntry {
		if n < 0 {
			n = 0
		}
		if len(entries) <= n {
			return entries
		}
		return entries[len(entries)-n:]
	})
}

// Filter keeps entries whose raw line contains query, ignoring case. An
// empty query keeps everything.
func (b TaskBoard) Filter(query string) TaskBoard {
	needle := strings.ToLower(query)
	return b.apply(func(entries []TaskEntry) []TaskEntry {
		kept := make([]TaskEntry, 0, len(entries))
		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.Raw), needle) {
				kept = append(kept, entry)
			}
		}
		return kept
	})
}

// First returns the task worth looking at first: the first running task,
// else the first failed one, else the first finished one.
func (b TaskBoard) First() (TaskEntry, bool) {
	for _, entries := range [][]TaskEntry{b.Running, b.Failed, b.Finished} {
		if len(entries) > 0 {
			return entries[0], true
		}
	}
	return TaskEntry{}, false
}

// Len returns the number of entries across all states.
func (b TaskBoard) Len() int {
	return len(b.Pending) + len(b.Running) + len(b.Failed) + len(b.Finished)
}

func (b TaskBoard) apply(fn func([]TaskEntry) []TaskEntry) TaskBoard {
	return TaskBoard{
		Pending:  fn(b.Pending),
		Running:  fn(b.Running),
		Failed:   fn(b.Failed),
		Finished: fn(b.Finished),
	}
}

// TaskDetails is the state of one task with its logs grouped by step.
type TaskDetails struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	// Result is the backend's raw result object, if any.
	Result json.RawMessage `json:"result,omitempty"`
	Logs   []LogGroup      `json:"logs"`
}

// ResultError returns result.error when the backend reported one.
func (d TaskDetails) ResultError() string {
	if len(d.Result) == 0 {
		return ""
	}
	var result struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(d.Result, &result); err != nil {
		return ""
	}
	return result.Error
}

type statusResponse struct {
	TaskID string          `json:"task_id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Logs   string          `json:"logs"`
}
