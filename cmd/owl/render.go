package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/leofalp/owlgebra/core/signature"
	"github.com/leofalp/owlgebra/internal/utils"
	"github.com/leofalp/owlgebra/providers/prover"
)

var (
	colorAccent  = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#7F8C8D")
)

var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Label:   lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
}

// statusStyle colors a task state the way the task board does.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case prover.StateFinished:
		return styles.Success
	case prover.StateRunning, prover.StatePending:
		return styles.Warning
	case prover.StateFailed, prover.StateNotFound:
		return styles.Error
	default:
		return styles.Muted
	}
}

func renderSignature(sig signature.Signature) string {
	var b strings.Builder
	name := sig.Name
	if name == "" {
		name = styles.Muted.Render("(unnamed)")
	}
	fmt.Fprintf(&b, "%s %s\n", styles.Label.Render("theorem"), styles.Title.Render(name))

	if preamble := strings.TrimSpace(sig.Preamble); preamble != "" {
		lines := strings.Count(sig.Preamble, "\n") + 1
		fmt.Fprintf(&b, "%s %s\n", styles.Label.Render("preamble"), styles.Muted.Render(fmt.Sprintf("%d line(s)", lines)))
	}

	fmt.Fprintf(&b, "%s\n", styles.Label.Render("hypotheses"))
	if len(sig.Hypotheses) == 0 {
		fmt.Fprintf(&b, "  %s\n", styles.Muted.Render("none"))
	}
	for _, hypothesis := range sig.Hypotheses {
		fmt.Fprintf(&b, "  • %s\n", hypothesis)
	}

	fmt.Fprintf(&b, "%s %s", styles.Label.Render("goal"), sig.Goal)
	return styles.Box.Render(b.String())
}

func renderBoard(board prover.TaskBoard) string {
	if board.Len() == 0 {
		return styles.Muted.Render("no tasks")
	}

	sections := []struct {
		title   string
		state   string
		entries []prover.TaskEntry
	}{
		{"Pending", prover.StatePending, board.Pending},
		{"Running", prover.StateRunning, board.Running},
		{"Failed", prover.StateFailed, board.Failed},
		{"Finished", prover.StateFinished, board.Finished},
	}

	var blocks []string
	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(statusStyle(section.state).Bold(true).Render(fmt.Sprintf("%s (%d)", section.title, len(section.entries))))
		for _, entry := range section.entries {
			label := strings.TrimSpace(strings.TrimPrefix(entry.Raw, entry.ID))
			label = strings.TrimSpace(strings.TrimPrefix(label, ":"))
			fmt.Fprintf(&b, "\n  %s  %s", entry.ID, styles.Muted.Render(label))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func renderDetails(details prover.TaskDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s",
		styles.Label.Render("task"),
		styles.Title.Render(details.TaskID),
		statusStyle(details.Status).Render(details.Status),
	)

	if resultErr := details.ResultError(); resultErr != "" {
		fmt.Fprintf(&b, "\n%s %s", styles.Label.Render("error"), styles.Error.Render(resultErr))
	} else if result := compactResult(details.Result); result != "" {
		fmt.Fprintf(&b, "\n%s\n%s", styles.Label.Render("result"), result)
	}

	for i, group := range details.Logs {
		fmt.Fprintf(&b, "\n%s %s %s",
			styles.Muted.Render(fmt.Sprintf("step %d", i+1)),
			styles.Label.Render(group.Step),
			styles.Muted.Render(fmt.Sprintf("(%d)", len(group.Messages))),
		)
		for _, message := range group.Messages {
			fmt.Fprintf(&b, "\n  %s", ansi.Strip(message))
		}
	}
	return styles.Box.Render(b.String())
}

// compactResult pretty-prints a raw result, or returns "" for none.
func compactResult(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "{}" {
		return ""
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return trimmed
	}
	return utils.JSONToString(value, true)
}

func renderOptions(options prover.SolverOptions, current prover.SolverConfig, currentErr error) string {
	var b strings.Builder
	b.WriteString(styles.Label.Render("models"))
	for _, model := range options.Models {
		fmt.Fprintf(&b, "\n  • %s", model)
	}

	b.WriteString("\n" + styles.Label.Render("limits"))
	for _, limit := range []struct {
		name  string
		value int
	}{
		{"max_iteration_hypotheses_proof", options.Limits.MaxIterationHypothesesProof},
		{"max_correction_iteration_hypotheses_proof", options.Limits.MaxCorrectionIterationHypothesesProof},
		{"max_iteration_final_proof", options.Limits.MaxIterationFinalProof},
		{"max_correction_iteration_final_proof", options.Limits.MaxCorrectionIterationFinalProof},
	} {
		fmt.Fprintf(&b, "\n  %-42s %d", limit.name, limit.value)
	}

	b.WriteString("\n" + styles.Label.Render("current solver config") + " ")
	if currentErr != nil {
		b.WriteString(styles.Error.Render("✗ " + currentErr.Error()))
	} else {
		b.WriteString(styles.Success.Render("✓ accepted"))
	}
	fmt.Fprintf(&b, "\n  %s / %s / %s", current.HypothesesGenerationModel, current.HypothesesProofModel, current.FinalProofModel)
	return styles.Box.Render(b.String())
}

func renderError(err error) string {
	return styles.Error.Render("✗ " + err.Error())
}
