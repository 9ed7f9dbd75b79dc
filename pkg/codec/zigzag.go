package codec

// ZigZag maps a signed 16-bit delta onto an unsigned value so that small
// magnitudes of either sign stay small: 0, -1, 1, -2, ... -> 0, 1, 2, 3, ...
func ZigZag(n int16) uint16 {
	return uint16((n >> 15) ^ (n << 1))
}

// UnZigZag reverses ZigZag.
func UnZigZag(z uint16) int16 {
	return int16(z>>1) ^ -int16(z&1)
}
