package extractor

import "strings"

// Noise markers found among the trend container's text nodes.
const (
	postCountMarker   = "posts"
	trendingMarker    = "· Trending"
	categoryPrefix    = "Trending in"
	placeholderHeader = "What’s happening"
)

// CleanTopics filters noise, deduplicates preserving first-seen order, and
// truncates to at most limit entries.
func CleanTopics(raw []string, limit int) []string {
	return Truncate(Dedupe(FilterNoise(raw)), limit)
}

// FilterNoise drops empty strings and the container's non-topic labels.
func FilterNoise(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, text := range raw {
		topic := strings.TrimSpace(text)
		if isNoise(topic) {
			continue
		}
		out = append(out, topic)
	}
	return out
}

func isNoise(topic string) bool {
	switch {
	case topic == "":
		return true
	case strings.Contains(strings.ToLower(topic), postCountMarker):
		return true
	case topic == placeholderHeader, topic == strings.ReplaceAll(placeholderHeader, "’", "'"):
		return true
	case strings.Contains(topic, trendingMarker):
		return true
	case strings.HasPrefix(topic, categoryPrefix):
		return true
	default:
		return false
	}
}

// Dedupe keeps the first occurrence of each topic.
func Dedupe(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
	}
	return out
}

// Truncate caps topics at limit entries; a non-positive limit keeps none.
func Truncate(topics []string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	if len(topics) > limit {
		return topics[:limit]
	}
	return topics
}
