package analytics

import "strings"

// Traffic source categories. Every page view lands in exactly one.
const (
	SourceDirect   = "Direct"
	SourceSearch   = "Search"
	SourceSocial   = "Social"
	SourceReferral = "Referral"
)

// PlaceholderCategory is shown when no page view carries source data.
const PlaceholderCategory = "No data"

var searchEngines = map[string]struct{}{
	"google": {}, "bing": {}, "yahoo": {}, "duckduckgo": {}, "baidu": {},
}

var socialPlatforms = map[string]struct{}{
	"facebook": {}, "instagram": {}, "twitter": {}, "linkedin": {},
	"tiktok": {}, "pinterest": {}, "youtube": {},
}

// SourceCount is one category slice of the traffic sources chart.
type SourceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ClassifySource maps a raw source field to its category. Absent sources are
// Direct; known engine and platform names are Search/Social; anything else
// that isn't direct is a Referral.
func ClassifySource(source string) string {
	src := strings.ToLower(source)
	switch {
	case src == "" || src == "direct":
		return SourceDirect
	default:
		if _, ok := searchEngines[src]; ok {
			return SourceSearch
		}
		if _, ok := socialPlatforms[src]; ok {
			return SourceSocial
		}
		return SourceReferral
	}
}

// SourceCounts partitions page views into categories, omitting empty ones.
// When every category is empty a single placeholder slice is returned so the
// chart always has something to draw.
func SourceCounts(pageViews []PageView) []SourceCount {
	counts := map[string]int{}
	for _, pv := range pageViews {
		counts[ClassifySource(pv.Source)]++
	}
	out := make([]SourceCount, 0, 4)
	for _, name := range []string{SourceDirect, SourceSocial, SourceSearch, SourceReferral} {
		if counts[name] > 0 {
			out = append(out, SourceCount{Name: name, Count: counts[name]})
		}
	}
	if len(out) == 0 {
		return []SourceCount{{Name: PlaceholderCategory, Count: 1}}
	}
	return out
}
