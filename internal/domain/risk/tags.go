package risk

import (
	"strings"

	"metascrub/internal/domain/model"
)

var aiTokens = []string{"workflow", "prompt"}

// ContainsAIMarker reports whether a free-form value looks like generative
// AI provenance (node graphs, prompts). Matching is case-insensitive.
func ContainsAIMarker(value string) bool {
	v := strings.ToLower(value)
	for _, tok := range aiTokens {
		if strings.Contains(v, tok) {
			return true
		}
	}
	return false
}

// SummarizeTags applies the container-tag heuristics to a key/value map
// as produced by a media probe.
func SummarizeTags(tags map[string]string) model.MetadataSummary {
	var s model.MetadataSummary
	for k, v := range tags {
		key := strings.ToLower(k)
		if strings.Contains(key, "location") || strings.Contains(key, "gps") {
			s.HasGPS = true
		}
		if strings.Contains(key, "artist") || strings.Contains(key, "author") {
			s.HasAuthor = true
		}
		if strings.Contains(key, "comment") && ContainsAIMarker(v) {
			s.HasAIMarker = true
		}
	}
	return s
}

// SummarizeText flags AI provenance in image text chunks, where any value
// may carry a prompt or workflow graph regardless of its key.
func SummarizeText(entries map[string]string) model.MetadataSummary {
	var s model.MetadataSummary
	for _, v := range entries {
		if ContainsAIMarker(v) {
			s.HasAIMarker = true
			break
		}
	}
	return s
}

// Merge ORs the flags of two summaries.
func Merge(a, b model.MetadataSummary) model.MetadataSummary {
	return model.MetadataSummary{
		HasGPS:      a.HasGPS || b.HasGPS,
		HasAuthor:   a.HasAuthor || b.HasAuthor,
		HasAIMarker: a.HasAIMarker || b.HasAIMarker,
	}
}
