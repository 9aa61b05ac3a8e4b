// Package signature extracts the structured signature of a Lean theorem
// declaration from free-form source text.
//
// [Parse] splits its input into four fields: the preamble (everything before
// the declaration, replayed verbatim by the proving backend), the theorem
// name, the ordered hypothesis binders, and the goal expression with the
// proof-start marker (":= by ...") removed.
//
// The parser does not understand the proof language. It tracks bracket
// nesting depth, which is enough to tell the goal separator ":" apart from
// the colons inside binders like "(h : n > 0)", and a proof-start ":=" apart
// from one nested inside the goal term.
//
// Two inputs are rejected: text with no line starting with the theorem
// keyword ([ErrNoDeclaration]) and a declaration with no top-level ":"
// ([ErrMissingGoalSeparator]). A missing ":=" is tolerated by default; use
// [WithProofMarkerPolicy] with [PolicyStrict] to reject it with
// [ErrMissingProofMarker].
//
// Example:
//
//	sig, err := signature.Parse("theorem t (n : ℕ) : n = n := by")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(sig.Name, sig.Hypotheses, sig.Goal) // t [(n : ℕ)] n = n
package signature
