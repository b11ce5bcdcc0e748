package model

import (
	"reflect"
	"testing"
)

func TestDisplayQualities(t *testing.T) {
	tests := []struct {
		name      string
		encodings []Encoding
		expected  []string
	}{
		{
			name: "catalog reaches both preferred tiers",
			encodings: []Encoding{
				{Height: 480, HasVideo: true},
				{Height: 720, HasVideo: true},
			},
			expected: []string{"480", "720"},
		},
		{
			name: "high catalog offers every preferred tier",
			encodings: []Encoding{
				{Height: 1080, HasVideo: true},
			},
			expected: []string{"480", "720"},
		},
		{
			name: "mid catalog offers only the lower tier",
			encodings: []Encoding{
				{Height: 360, HasVideo: true},
				{Height: 480, HasVideo: true},
			},
			expected: []string{"480"},
		},
		{
			name: "low catalog falls back to the wide list",
			encodings: []Encoding{
				{Height: 240, HasVideo: true},
			},
			expected: []string{"360", "480", "720"},
		},
		{
			name:      "empty catalog falls back to the wide list",
			encodings: nil,
			expected:  []string{"360", "480", "720"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := DisplayQualities(test.encodings)
			if !reflect.DeepEqual(result, test.expected) {
				t.Errorf("DisplayQualities() = %v, expected %v", result, test.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{599, "9:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-5, "0:00"},
	}

	for _, test := range tests {
		result := FormatDuration(test.seconds)
		if result != test.expected {
			t.Errorf("FormatDuration(%d) = %s, expected %s", test.seconds, result, test.expected)
		}
	}
}
