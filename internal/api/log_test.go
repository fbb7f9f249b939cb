package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			"Basic",
			`time=2026-08-31T10:15:30Z level=INFO msg="Generating scene" location=Salem`,
			"10:15:30 Generating scene (location=Salem)",
		},
		{
			"LongValuesDropped",
			`time=2026-08-31T10:15:30Z level=INFO msg=Started prompt="A photorealistic historical scene of Salem"`,
			"10:15:30 Started",
		},
		{
			"ParamsSorted",
			`time=2026-08-31T10:15:30Z level=INFO msg=Hit z=1 a=2`,
			"10:15:30 Hit (a=2, z=1)",
		},
		{
			"NoMatchPassthrough",
			"plain text line",
			"plain text line",
		},
		{
			"Empty",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatLogLine(tt.raw))
		})
	}
}
