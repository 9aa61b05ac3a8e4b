package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/leofalp/owlgebra/core/signature"
	"github.com/leofalp/owlgebra/providers/prover"
)

func TestRenderSignature(t *testing.T) {
	out := renderSignature(signature.Signature{
		Preamble:   "import Mathlib\nopen Nat",
		Name:       "simple",
		Hypotheses: []string{"(n : ℕ)", "(h : n > 0)"},
		Goal:       "n + 1 > 0",
	})
	for _, want := range []string{"simple", "2 line(s)", "• (n : ℕ)", "• (h : n > 0)", "n + 1 > 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	out = renderSignature(signature.Signature{Goal: "True", Hypotheses: []string{}})
	if !strings.Contains(out, "(unnamed)") || !strings.Contains(out, "none") || strings.Contains(out, "preamble") {
		t.Errorf("unexpected rendering of a bare signature:\n%s", out)
	}
}

func TestRenderBoard(t *testing.T) {
	if got := renderBoard(prover.TaskBoard{}); !strings.Contains(got, "no tasks") {
		t.Errorf("expected empty board message, got %q", got)
	}

	out := renderBoard(prover.TaskBoard{
		Failed: []prover.TaskEntry{{ID: "f1", Raw: "f1: gcd_test", State: prover.StateFailed}},
	})
	if !strings.Contains(out, "Failed (1)") || !strings.Contains(out, "f1") || !strings.Contains(out, "gcd_test") {
		t.Errorf("unexpected board:\n%s", out)
	}
	if strings.Contains(out, "Running") {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
}

func TestRenderDetails(t *testing.T) {
	out := renderDetails(prover.TaskDetails{
		TaskID: "t1",
		Status: prover.StateNotFound,
		Result: []byte(`{"error":"Task not found"}`),
	})
	if !strings.Contains(out, "not_found") || !strings.Contains(out, "Task not found") {
		t.Errorf("unexpected details:\n%s", out)
	}

	out = renderDetails(prover.TaskDetails{
		TaskID: "t2",
		Status: prover.StateRunning,
		Result: []byte("null"),
		Logs: []prover.LogGroup{
			{Step: "hypotheses", Messages: []string{"a", "b"}},
			{Step: prover.UnknownStep, Messages: []string{"c"}},
		},
	})
	for _, want := range []string{"step 1", "hypotheses", "(2)", "step 2", "unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "result") {
		t.Errorf("null result should not be shown:\n%s", out)
	}
}

func TestRenderOptions(t *testing.T) {
	options := prover.SolverOptions{Models: []prover.Model{prover.ModelClaude}, Limits: prover.Limits{MaxIterationFinalProof: 7}}

	out := renderOptions(options, prover.DefaultSolverConfig(), nil)
	if !strings.Contains(out, "accepted") || !strings.Contains(out, "max_iteration_final_proof") {
		t.Errorf("unexpected options rendering:\n%s", out)
	}

	out = renderOptions(options, prover.DefaultSolverConfig(), errors.New("model not offered"))
	if !strings.Contains(out, "model not offered") {
		t.Errorf("expected validation error:\n%s", out)
	}
}

func TestStatusStyle(t *testing.T) {
	for _, status := range []string{prover.StateFinished, prover.StateRunning, prover.StateFailed, "mystery"} {
		if got := statusStyle(status).Render(status); !strings.Contains(got, status) {
			t.Errorf("statusStyle(%q) dropped the text: %q", status, got)
		}
	}
}
