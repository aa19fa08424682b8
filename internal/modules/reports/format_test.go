package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ns   float64
		want string
	}{
		{0, "0 ns"},
		{1, "1.00 ns"},
		{999, "999.00 ns"},
		{1e3, "1.00 us"},
		{1.5e3, "1.50 us"},
		{1e6, "1.00 ms"},
		{2.5e6, "2.50 ms"},
		// Exact boundaries pick the larger unit
		{1e9, "1.00 secs"},
		{60e9, "1.00 mins"},
		{3600e9, "1.00 hours"},
		{90e9, "1.50 mins"},
		{7200e9, "2.00 hours"},
		{0.5, "0.50 ns"},
		{-1e6, "-1.00 ms"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.ns), "ns=%v", tt.ns)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0, "0.00 %"},
		{0.5, "50.00 %"},
		{1, "100.00 %"},
		{0.0002, "0.02 %"},
		// Below two displayable decimals: scientific notation
		{0.00001, "1.00e-03 %"},
		{1e-9, "1.00e-07 %"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPercent(tt.rate), "rate=%v", tt.rate)
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0", FormatRate(0))
	assert.Equal(t, "1.00e-03", FormatRate(0.001))
	assert.Equal(t, "3.33e-04", FormatRate(0.001/3))
	assert.Equal(t, "5.00e-01", FormatRate(0.5))
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{25200, "25,200"},
		{1234567, "1,234,567"},
		{1000000000, "1,000,000,000"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.n), "n=%d", tt.n)
	}
}
