package format

import (
	"testing"
	"time"
)

func TestHumanNumber(t *testing.T) {
	cases := []struct {
		input    uint64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.00K"},
		{12300, "12.3K"},
		{500000, "500K"},
		{1500000, "1.50M"},
		{2000000000, "2.00B"},
	}
	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := HumanNumber(tc.input); got != tc.expected {
				t.Errorf("HumanNumber(%d) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestHumanBytes(t *testing.T) {
	cases := []struct {
		input    int64
		expected string
	}{
		{42, "42 B"},
		{1200, "1.2 KB"},
		{1250000, "1.2 MB"},
		{3600000000, "3.6 GB"},
	}
	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := HumanBytes(tc.input); got != tc.expected {
				t.Errorf("HumanBytes(%d) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestHumanDuration(t *testing.T) {
	cases := []struct {
		input    time.Duration
		expected string
	}{
		{42 * time.Millisecond, "42ms"},
		{1530 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			if got := HumanDuration(tc.input); got != tc.expected {
				t.Errorf("HumanDuration(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
