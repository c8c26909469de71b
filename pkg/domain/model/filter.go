package model

import (
	"strings"

	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// AssetFilter selects assets by keyword and status. Zero value matches all.
type AssetFilter struct {
	Keyword  string
	Statuses []types.AssetStatus
}

// IsZero reports whether the filter matches everything
func (f AssetFilter) IsZero() bool {
	return strings.TrimSpace(f.Keyword) == "" && len(f.Statuses) == 0
}

// FilterAssets returns the assets that match f, in input order. Keyword
// matches Code, Name and Location case-insensitively; statuses are OR'ed;
// keyword and status are AND'ed.
func FilterAssets(assets []*Asset, f AssetFilter) []*Asset {
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))

	statusSet := make(map[types.AssetStatus]struct{}, len(f.Statuses))
	for _, s := range f.Statuses {
		statusSet[s.Normalize()] = struct{}{}
	}

	result := make([]*Asset, 0, len(assets))
	for _, a := range assets {
		if !matchKeyword(a, keyword) {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[a.Status.Normalize()]; !ok {
				continue
			}
		}
		result = append(result, a)
	}
	return result
}

func matchKeyword(a *Asset, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Code), keyword) ||
		strings.Contains(strings.ToLower(a.Name), keyword) ||
		strings.Contains(strings.ToLower(a.Location), keyword)
}

// StatusSummary counts assets per status. Every status is present.
type StatusSummary map[types.AssetStatus]int

// Summarize counts assets per status, including zero counts
func Summarize(assets []*Asset) StatusSummary {
	summary := make(StatusSummary, len(types.AllAssetStatuses()))
	for _, s := range types.AllAssetStatuses() {
		summary[s] = 0
	}
	for _, a := range assets {
		summary[a.Status.Normalize()]++
	}
	return summary
}

// Total returns the number of counted assets
func (s StatusSummary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// StatusCount is one entry of an ordered summary
type StatusCount struct {
	Status types.AssetStatus
	Count  int
}

// Ordered returns the counts in display order
func (s StatusSummary) Ordered() []StatusCount {
	statuses := types.AllAssetStatuses()
	result := make([]StatusCount, len(statuses))
	for i, st := range statuses {
		result[i] = StatusCount{Status: st, Count: s[st]}
	}
	return result
}
