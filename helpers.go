package slims

// ToPtr returns a pointer to the given value.
// This is useful for optional filter fields such as RunFilter.Status.
func ToPtr[T any](v T) *T {
	return &v
}
