package utils

// Ptr returns a pointer to v, for building test fixtures.
func Ptr[T any](v T) *T {
	return &v
}
