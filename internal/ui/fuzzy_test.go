package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyMatchScore(t *testing.T) {
	tests := []struct {
		needle, haystack string
		ok               bool
	}{
		{"", "anything", true},
		{"dev", "development", true},
		{"DEV", "development", true},
		{"dvl", "development", true},
		{"ved", "development", false},
		{"prodx", "production", false},
		{"é", "café-api", true},
	}
	for _, tt := range tests {
		_, ok := fuzzyMatchScore(tt.needle, tt.haystack)
		assert.Equal(t, tt.ok, ok, "%q in %q", tt.needle, tt.haystack)
	}
}

func TestRankOptions(t *testing.T) {
	options := []string{"beta-api (b2)", "alpha (a1)", "api-gateway (c3)"}

	assert.Equal(t, []int{0, 1, 2}, rankOptions("", options))
	assert.Equal(t, []int{0, 1, 2}, rankOptions("   ", options))
	assert.Equal(t, []int{2, 1, 0}, rankOptions("ap", options))
	assert.Equal(t, []int{1}, rankOptions("a1", options))
	assert.Empty(t, rankOptions("zzz", options))
}
