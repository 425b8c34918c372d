//go:build unix && !linux

package pages

// Discard releases the pages of b and zeroes them. MADV_DONTNEED is only a
// hint outside linux and may leave the old contents in place.
func Discard(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	err := advise(b)
	clear(b)
	return err
}
