package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leofalp/owlgebra/core/signature"
)

// runOwl executes the root command with args and returns stdout.
func runOwl(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"OWLGEBRA_API_URL", "OWLGEBRA_API_KEY", "OWLGEBRA_POLL_INTERVAL", "OWLGEBRA_SOLVER_PROFILE", "OWLGEBRA_LOG_LEVEL", "OWLGEBRA_LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"}, args...))

	err := root.Execute()
	return stdout.String(), err
}

func writeTheorem(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "theorem.lean")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write theorem: %v", err)
	}
	return path
}

func TestParseCmd_JSON(t *testing.T) {
	path := writeTheorem(t, "import Mathlib\n\ntheorem simple (n : ℕ) (h : n > 0) : n + 1 > 0 := by\n  omega\n")

	out, err := runOwl(t, "", "parse", path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var sig signature.Signature
	if err := json.Unmarshal([]byte(out), &sig); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if sig.Name != "simple" || sig.Preamble != "import Mathlib" || sig.Goal != "n + 1 > 0" {
		t.Errorf("unexpected signature %+v", sig)
	}
	if len(sig.Hypotheses) != 2 || sig.Hypotheses[1] != "(h : n > 0)" {
		t.Errorf("unexpected hypotheses %v", sig.Hypotheses)
	}
	if !strings.Contains(out, `"n + 1 > 0"`) {
		t.Errorf("expected unescaped goal in output, got %s", out)
	}
}

func TestParseCmd_StdinLean(t *testing.T) {
	out, err := runOwl(t, "theorem no_hyp : 1 + 1 = 2 := by sorry", "parse", "--format", "lean")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if strings.TrimSpace(out) != "theorem no_hyp : 1 + 1 = 2 := by" {
		t.Errorf("unexpected lean output %q", out)
	}
}

func TestParseCmd_Text(t *testing.T) {
	out, err := runOwl(t, "theorem t {α : Type} [Inhabited α] (a : α) : a = a := by", "parse", "--binders", "-f", "text")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for _, want := range []string{"{α : Type}", "[Inhabited α]", "(a : α)", "a = a"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestParseCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"no declaration", "not a theorem at all", []string{"parse"}, signature.ErrNoDeclaration, "<stdin>"},
		{"missing goal", "import Mathlib\ntheorem t (n : ℕ)", []string{"parse"}, signature.ErrMissingGoalSeparator, "line 2"},
		{"strict marker", "theorem t : True", []string{"parse", "--strict"}, signature.ErrMissingProofMarker, ""},
		{"bad format", "theorem t : True := by", []string{"parse", "-f", "yaml"}, nil, "unknown format"},
		{"watch stdin", "", []string{"parse", "--watch"}, nil, "--watch needs a file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runOwl(t, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestSubmitCmd_DryRun(t *testing.T) {
	path := writeTheorem(t, "theorem gcd_test (n : ℕ) : Nat.gcd (21*n + 4) (14*n + 3) = 1 := by")

	out, err := runOwl(t, "", "submit", path, "--dry-run",
		"--hypotheses", `['(n : ℕ)', '(oh0 : 0 < n)',]`,
		"--max-final-iterations", "8",
		"--model-final", "Claude",
	)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if body["code_for_env_0"] != "import Mathlib" || body["ai_for_final_proof"] != "Claude" || body["max_iteration_final_proof"] != float64(8) {
		t.Errorf("unexpected request %v", body)
	}
	if body["ai_for_hyptheses_proof"] != "DeepSeek1.5" {
		t.Errorf("expected default hypotheses model, got %v", body["ai_for_hyptheses_proof"])
	}
	hyps, _ := body["hypotheses"].([]any)
	if len(hyps) != 2 || hyps[1] != "(oh0 : 0 < n)" {
		t.Errorf("expected overridden hypotheses, got %v", body["hypotheses"])
	}
}

func TestSubmitCmd_EditDraft(t *testing.T) {
	path := writeTheorem(t, "theorem (n : ℕ) : n = n := by")

	t.Run("nameless theorem is rejected", func(t *testing.T) {
		_, err := runOwl(t, "", "submit", path, "--dry-run")
		if err == nil || !strings.Contains(err.Error(), "Name") {
			t.Errorf("expected missing name error, got %v", err)
		}
	})

	t.Run("name goal and preamble replace the parsed fields", func(t *testing.T) {
		out, err := runOwl(t, "", "submit", path, "--dry-run",
			"--name", "n_eq_self",
			"--goal", "  n + 0 = n ",
			"--preamble", "import Mathlib.Tactic",
		)
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal([]byte(out), &body); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if body["name"] != "n_eq_self" || body["goal"] != "n + 0 = n" || body["code_for_env_0"] != "import Mathlib.Tactic" {
			t.Errorf("unexpected request %v", body)
		}
	})

	t.Run("empty preamble falls back to Mathlib", func(t *testing.T) {
		out, err := runOwl(t, "", "submit", path, "--dry-run", "--name", "t", "--preamble", "")
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if !strings.Contains(out, `"code_for_env_0": "import Mathlib"`) {
			t.Errorf("expected default environment:\n%s", out)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := runOwl(t, "", "submit", path, "--dry-run", "--name", "1 bad")
		if err == nil || !strings.Contains(err.Error(), "--name") {
			t.Errorf("expected --name error, got %v", err)
		}
	})
}

func TestSubmitCmd_InvalidOverride(t *testing.T) {
	path := writeTheorem(t, "theorem t : True := by")

	_, err := runOwl(t, "", "submit", path, "--dry-run", "--max-final-iterations", "0")
	if err == nil || !strings.Contains(err.Error(), "MaxIterationFinalProof") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSubmitCmd_Profile(t *testing.T) {
	path := writeTheorem(t, "theorem t : True := by")
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(profile, []byte("ai_for_hypotheses_generation: OpenAI(o1)\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runOwl(t, "", "submit", path, "--dry-run", "--profile", profile)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !strings.Contains(out, `"ai_for_hypotheses_generation": "OpenAI(o1)"`) {
		t.Errorf("expected profile model in request:\n%s", out)
	}
}

func TestSubmitCmd_SendsAndWatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/prove/":
			fmt.Fprint(w, `{"task_id":"abc123"}`)
		case r.URL.Path == "/status/abc123":
			fmt.Fprint(w, `{"task_id":"abc123","status":"finished","result":{"proof":"by simp"},"logs":"{\"step\":\"final\",\"message\":\"done\"}\n"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	path := writeTheorem(t, "theorem t : True := by")
	out, err := runOwl(t, "", "--api-url", server.URL, "submit", path, "--watch")
	if err != nil {
		t.Fatalf("submit failed: %v\n%s", err, out)
	}
	for _, want := range []string{"abc123", "finished", "by simp", "final", "done"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTasksCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pending_tasks":[],"running_tasks":["r1: gcd_test"],"failed_tasks":["f1: broken","f2: other"],"finished_tasks":["d1: a","d2: b","d3: c","d4: d"]}`)
	}))
	defer server.Close()

	out, err := runOwl(t, "", "--api-url", server.URL, "tasks")
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	for _, want := range []string{"Running (1)", "r1", "gcd_test", "Finished (3)", "owl status r1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "d1") {
		t.Errorf("expected only the 3 most recent finished tasks:\n%s", out)
	}

	out, err = runOwl(t, "", "--api-url", server.URL, "tasks", "--filter", "BROKEN", "--recent", "0")
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	if !strings.Contains(out, "f1") || strings.Contains(out, "f2") || strings.Contains(out, "r1") {
		t.Errorf("unexpected filtered output:\n%s", out)
	}
}

func TestStatusCmd_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/status/t1" {
			fmt.Fprint(w, `{"task_id":"t1","status":"running","result":null,"logs":"{\"step\":\"gen\",\"message\":\"m1\"}\n"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	out, err := runOwl(t, "", "--api-url", server.URL, "status", "t1", "missing", "-f", "json")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}

	var results []struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
		Logs   []struct {
			Step     string   `json:"step"`
			Messages []string `json:"messages"`
		} `json:"logs"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(results) != 2 || results[0].Logs[0].Step != "gen" || results[1].Status != "not_found" {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestWatchCmd_FailedTaskIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"task_id":"t1","status":"failed","result":{"error":"lean timeout"},"logs":""}`)
	}))
	defer server.Close()

	out, err := runOwl(t, "", "--api-url", server.URL, "watch", "t1", "--interval", "1ms")
	if err == nil || !strings.Contains(err.Error(), "ended failed") {
		t.Errorf("expected failed task error, got %v", err)
	}
	if !strings.Contains(out, "lean timeout") {
		t.Errorf("expected result error in output:\n%s", out)
	}
}

func TestLogsCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"step\":\"gen\",\"message\":\"first\"}\n\n")
		fmt.Fprint(w, "data: {\"step\":\"gen\",\"message\":\"second\"}\n\n")
		fmt.Fprint(w, "data: {\"step\":\"final\",\"message\":\"\\u001b[32mthird\\u001b[0m\"}\n\n")
	}))
	defer server.Close()

	out, err := runOwl(t, "", "--api-url", server.URL, "logs", "t1")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if strings.Count(out, "gen") != 1 || !strings.Contains(out, "final") {
		t.Errorf("expected one header per step:\n%s", out)
	}
	if !strings.Contains(out, "first\n") || !strings.Contains(out, "third\n") {
		t.Errorf("expected messages in output:\n%s", out)
	}
	if strings.Contains(out, "\x1b[32m") {
		t.Errorf("expected ANSI codes stripped:\n%q", out)
	}
}

func TestOptionsCmd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":["Claude"],"limits":{"max_iteration_hypotheses_proof":10,"max_correction_iteration_hypotheses_proof":10,"max_iteration_final_proof":10,"max_correction_iteration_final_proof":10}}`)
	}))
	defer server.Close()

	out, err := runOwl(t, "", "--api-url", server.URL, "options")
	if err != nil {
		t.Fatalf("options failed: %v", err)
	}
	for _, want := range []string{"Claude", "max_iteration_final_proof", `"DeepSeek1.5" is not offered`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRootCmd_LogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "owl.log")

	_, err := runOwl(t, "theorem t : True := by", "--log-file", logFile, "--log-level", "debug", "parse")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "Configuration loaded") {
		t.Errorf("expected debug record in log file, got %q", data)
	}
}
