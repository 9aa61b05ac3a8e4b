package prover

import (
	"reflect"
	"testing"
)

func TestGroupLogs(t *testing.T) {
	logs := "" +
		`{"step":"hypotheses_generation","message":"asking Claude"}` + "\n" +
		"\n" +
		`{"step":"final_proof","message":"attempt 1"}` + "\n" +
		"plain text line\n" +
		`{"message":"stepless"}` + "\n" +
		`{"step":"hypotheses_generation","message":"3 hypotheses",}` + "\n" +
		`{"step":"final_proof","message":"attempt 2"}` + "\n"

	got := GroupLogs(logs)
	want := []LogGroup{
		{Step: "hypotheses_generation", Messages: []string{"asking Claude", "3 hypotheses"}},
		{Step: "final_proof", Messages: []string{"attempt 1", "attempt 2"}},
		{Step: UnknownStep, Messages: []string{"stepless"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupLogs() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestGroupLogs_Empty(t *testing.T) {
	got := GroupLogs("")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestParseHypotheses(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{
			name:  "json array",
			input: `["(n : ℕ)", "(oh0 : 0 < n)"]`,
			want:  []string{"(n : ℕ)", "(oh0 : 0 < n)"},
		},
		{
			name:  "trailing comma",
			input: `["(n : ℕ)", "(oh0 : 0 < n)",]`,
			want:  []string{"(n : ℕ)", "(oh0 : 0 < n)"},
		},
		{
			name:  "blank entries dropped",
			input: `["  (n : ℕ)  ", ""]`,
			want:  []string{"(n : ℕ)"},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  []string{},
		},
		{
			name:    "object instead of array",
			input:   `{"h": "(n : ℕ)"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHypotheses(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
