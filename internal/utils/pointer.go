package utils

// Ptr returns a pointer to v. Optional fields such as solver overrides are
// pointers so that an explicit zero can be told apart from "not set".
//
// Example:
//
//	overrides.MaxIterationFinalProof = utils.Ptr(8)
func Ptr[T any](v T) *T {
	return &v
}
