package format

// AlignUp returns n rounded up to the next multiple of unit. unit must be a
// power of two. The second result is false when the rounded value does not
// fit in a uint64.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 8)  = 16
//	AlignUp(20, 8) = 24
func AlignUp(n, unit uint64) (uint64, bool) {
	mask := unit - 1
	if n > ^uint64(0)-mask {
		return 0, false
	}
	return (n + mask) &^ mask, true
}

// AlignUp32 is the uint32 form used for header geometry.
func AlignUp32(n, unit uint32) uint32 {
	mask := unit - 1
	return (n + mask) &^ mask
}

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// IsAligned reports whether n is a multiple of unit (a power of two).
func IsAligned(n, unit uint64) bool {
	return n&(unit-1) == 0
}
