package store

// cmpOr mirrors cmp.Or from Go 1.22+: it returns the first argument that is
// not the zero value, or the zero value if there is none.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
