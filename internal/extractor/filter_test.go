package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupePreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"A", "B", "C"}, Dedupe([]string{"A", "B", "A", "C"}))
	require.Empty(t, Dedupe(nil))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := []string{"1", "2", "3", "4", "5", "6", "7"}
	require.Len(t, Truncate(long, 5), 5)
	require.Equal(t, []string{"1", "2"}, Truncate([]string{"1", "2"}, 5))
	require.Empty(t, Truncate(long, 0))
}

func TestFilterNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{name: "topic", in: "#GoLang", keep: true},
		{name: "padded topic", in: "  Gophers  ", keep: true},
		{name: "empty", in: "", keep: false},
		{name: "whitespace", in: " \t\n", keep: false},
		{name: "post count", in: "12.5K posts", keep: false},
		{name: "post count upper", in: "1,204 Posts", keep: false},
		{name: "heading", in: "What’s happening", keep: false},
		{name: "ascii heading", in: "What's happening", keep: false},
		{name: "trending label", in: "Sports · Trending", keep: false},
		{name: "category prefix", in: "Trending in United States", keep: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FilterNoise([]string{tt.in})
			if tt.keep {
				require.Equal(t, []string{strings.TrimSpace(tt.in)}, got)
			} else {
				require.Empty(t, got)
			}
		})
	}
}

func TestCleanTopicsRegardlessOfPosition(t *testing.T) {
	t.Parallel()

	raw := []string{
		"What’s happening",
		"Trending in Germany",
		"Alpha",
		"4,321 posts",
		"Beta",
		"Politics · Trending",
		"Alpha",
		"",
		"Gamma",
		"Delta",
		"Epsilon",
		"Zeta",
		"Show more",
	}
	got := CleanTopics(raw, 5)
	require.Equal(t, []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon"}, got)
}
