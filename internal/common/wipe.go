package common

// WipeByteArray zeroes b so secrets do not linger in memory longer than
// needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
