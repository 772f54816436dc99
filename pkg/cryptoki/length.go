package cryptoki

// Unsigned is the set of foreign count widths CheckedLength can narrow to.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CheckedLength narrows a native length to the foreign count type T. It never
// truncates: a negative length or one above T's maximum yields a
// *LengthOverflowError naming field.
func CheckedLength[T Unsigned](field string, n int) (T, error) {
	limit := uint64(^T(0))
	if n < 0 || uint64(n) > limit {
		return 0, &LengthOverflowError{Field: field, Length: n, Max: limit}
	}
	return T(n), nil
}

// ToULong is CheckedLength at the CK_ULONG width.
func ToULong(field string, n int) (ULong, error) {
	return CheckedLength[ULong](field, n)
}
