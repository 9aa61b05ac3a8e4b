package signature

// ProofMarkerPolicy decides what happens when the goal has no top-level ":=".
type ProofMarkerPolicy int

const (
	// PolicyLenient uses the trimmed remainder of the declaration as the goal.
	PolicyLenient ProofMarkerPolicy = iota
	// PolicyStrict fails with ErrMissingProofMarker.
	PolicyStrict
)

// String returns "lenient" or "strict".
func (p ProofMarkerPolicy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	default:
		return "lenient"
	}
}

// Option configures a Parser.
type Option func(*Parser)

// WithProofMarkerPolicy sets the policy applied when ":=" is missing.
func WithProofMarkerPolicy(policy ProofMarkerPolicy) Option {
	return func(p *Parser) {
		p.policy = policy
	}
}

// WithBinderBrackets makes "{...}" and "[...]" count as binder groups next to
// "(...)". Implicit binders such as "{α : Type}" and instance binders such as
// "[Group G]" then become hypotheses instead of having their colon taken for
// the goal separator.
func WithBinderBrackets() Option {
	return func(p *Parser) {
		p.binders = allBrackets
	}
}
