package codec

import (
	"math"
	"testing"
)

func TestZigZag(t *testing.T) {
	tests := []struct {
		n        int16
		expected uint16
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{16383, 32766},
		{-16383, 32765},
		{math.MaxInt16, 0xFFFE},
		{math.MinInt16, 0xFFFF},
	}

	for _, tt := range tests {
		if got := ZigZag(tt.n); got != tt.expected {
			t.Errorf("ZigZag(%d): expected %d, got %d", tt.n, tt.expected, got)
		}
		if got := UnZigZag(tt.expected); got != tt.n {
			t.Errorf("UnZigZag(%d): expected %d, got %d", tt.expected, tt.n, got)
		}
	}
}

func TestZigZag_AllValues(t *testing.T) {
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		if got := UnZigZag(ZigZag(int16(v))); got != int16(v) {
			t.Fatalf("round trip %d: got %d", v, got)
		}
	}
}
