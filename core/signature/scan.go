package signature

import "strings"

// alphabet is the set of bracket pairs a scan counts toward nesting depth.
// open[i] pairs with close[i].
type alphabet struct {
	open  string
	close string
}

var (
	parens      = alphabet{open: "(", close: ")"}
	allBrackets = alphabet{open: "([{", close: ")]}"}
)

// walk visits every byte of s, reporting the nesting depth before and after
// the byte is applied. Closers never take the depth below zero. Walking stops
// early when visit returns false.
//
// Bracket characters are ASCII, so byte-wise iteration is safe for UTF-8
// input: multi-byte runes such as "ℕ" never contain a byte equal to a
// bracket and pass through as opaque text.
func walk(s string, a alphabet, visit func(i, before, after int) bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		before := depth
		switch c := s[i]; {
		case strings.IndexByte(a.open, c) >= 0:
			depth++
		case strings.IndexByte(a.close, c) >= 0:
			depth = max(0, depth-1)
		}
		if !visit(i, before, depth) {
			return
		}
	}
}

// findTopLevel returns the index of the first byte at depth zero for which
// accept reports true, or -1.
func findTopLevel(s string, a alphabet, accept func(s string, i int) bool) int {
	found := -1
	walk(s, a, func(i, before, _ int) bool {
		if before == 0 && accept(s, i) {
			found = i
			return false
		}
		return true
	})
	return found
}

// splitGroups cuts s into its top-level bracket groups. Each time the depth
// drops from one to zero, the text accumulated since the previous cut is
// emitted trimmed. Whitespace between groups is skipped; other text at depth
// zero is kept and ends up in the entry of the group that follows it. Text
// left over after the last group is appended to that group's entry, and
// dropped when no group was found at all.
func splitGroups(s string, a alphabet) []string {
	groups := []string{}
	start := -1
	walk(s, a, func(i, before, after int) bool {
		if start < 0 {
			if before == 0 && isSpace(s[i]) {
				return true
			}
			start = i
		}
		if before == 1 && after == 0 {
			groups = append(groups, strings.TrimSpace(s[start:i+1]))
			start = -1
		}
		return true
	})

	if start >= 0 && len(groups) > 0 {
		last := len(groups) - 1
		groups[last] = groups[last] + " " + strings.TrimSpace(s[start:])
	}
	return groups
}

func isColon(s string, i int) bool {
	return s[i] == ':'
}

func isProofMarker(s string, i int) bool {
	return s[i] == ':' && i+1 < len(s) && s[i+1] == '='
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
