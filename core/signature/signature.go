package signature

import (
	"strings"
)

// Keyword introduces the declaration the parser looks for.
const Keyword = "theorem"

// Signature is the structured form of a theorem declaration. It holds plain
// strings only so it can be JSON-encoded directly into a job request.
type Signature struct {
	// Preamble is the source text before the declaration line, line breaks
	// and indentation preserved. Blank lines separating it from the
	// declaration are not part of it.
	Preamble string `json:"preamble"`
	// Name is the identifier after the keyword; empty when none follows.
	Name string `json:"name"`
	// Hypotheses are the top-level binder groups in source order, each with
	// its enclosing brackets, e.g. "(n : ℕ)". Never nil.
	Hypotheses []string `json:"hypotheses"`
	// Goal is the proposition between the goal separator and ":=".
	Goal string `json:"goal"`
}

// Declaration renders the signature back into a single-line declaration
// ending in ":= by". Parsing the result yields the same name, hypotheses and
// goal.
func (s Signature) Declaration() string {
	var b strings.Builder
	b.WriteString(Keyword)
	if s.Name != "" {
		b.WriteByte(' ')
		b.WriteString(s.Name)
	}
	for _, h := range s.Hypotheses {
		b.WriteByte(' ')
		b.WriteString(h)
	}
	b.WriteString(" : ")
	b.WriteString(s.Goal)
	b.WriteString(" := by")
	return b.String()
}

// Source renders the preamble followed by the declaration.
func (s Signature) Source() string {
	if s.Preamble == "" {
		return s.Declaration()
	}
	return s.Preamble + "\n\n" + s.Declaration()
}

// Parser extracts signatures. The zero value is not usable; call NewParser.
// A Parser holds configuration only and is safe for concurrent use.
type Parser struct {
	policy  ProofMarkerPolicy
	binders alphabet
}

// NewParser returns a Parser with the lenient proof-marker policy and
// parenthesis-only binders, changed by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		policy:  PolicyLenient,
		binders: parens,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse extracts the signature of the first theorem declaration in source
// using the default lenient parser.
func Parse(source string) (Signature, error) {
	return defaultParser.Parse(source)
}

// Parse extracts the signature of the first theorem declaration in source.
// Errors are *ParseError values wrapping ErrNoDeclaration,
// ErrMissingGoalSeparator or, under PolicyStrict, ErrMissingProofMarker.
func (p *Parser) Parse(source string) (Signature, error) {
	lines := splitLines(source)

	k := declarationLine(lines)
	if k < 0 {
		return Signature{}, &ParseError{Err: ErrNoDeclaration}
	}

	text := joinTrimmed(lines[k:])
	name, nameEnd := readName(text)

	sep := findTopLevel(text[nameEnd:], p.binders, isColon)
	if sep < 0 {
		return Signature{}, &ParseError{Line: k + 1, Err: ErrMissingGoalSeparator}
	}
	sep += nameEnd

	goal := text[sep+1:]
	if end := findTopLevel(goal, allBrackets, isProofMarker); end >= 0 {
		goal = goal[:end]
	} else if p.policy == PolicyStrict {
		return Signature{}, &ParseError{Line: k + 1, Err: ErrMissingProofMarker}
	}

	return Signature{
		Preamble:   preamble(lines[:k]),
		Name:       name,
		Hypotheses: splitGroups(text[nameEnd:sep], p.binders),
		Goal:       strings.TrimSpace(goal),
	}, nil
}

func splitLines(source string) []string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// declarationLine returns the index of the first line that, trimmed, starts
// with the keyword as a whole word.
func declarationLine(lines []string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, Keyword) {
			continue
		}
		if len(trimmed) == len(Keyword) || !isWordByte(trimmed[len(Keyword)]) {
			return i
		}
	}
	return -1
}

// joinTrimmed folds a declaration spread over several lines into one line.
func joinTrimmed(lines []string) string {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.TrimSpace(line)
	}
	return strings.Join(trimmed, " ")
}

// readName reads the identifier following the keyword at the start of text.
// It returns the name and the offset where the binders begin. A missing name
// yields "" and the offset just past the keyword.
func readName(text string) (string, int) {
	i := len(Keyword)
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	if i == len(Keyword) {
		return "", i
	}
	if i < len(text) && isDigit(text[i]) {
		return "", len(Keyword)
	}
	j := i
	for j < len(text) && isWordByte(text[j]) {
		j++
	}
	if j == i {
		return "", len(Keyword)
	}
	return text[i:j], j
}

func preamble(lines []string) string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

