package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

func sampleAssets() []*model.Asset {
	return []*model.Asset{
		{Code: "A100", Name: "Desk", Location: "Room 1", Status: types.AssetStatusUnchecked},
		{Code: "B200", Name: "Chair", Location: "Lab a1", Status: types.AssetStatusMatched},
		{Code: "C300", Name: "Printer a1x", Location: "Hall", Status: types.AssetStatusMismatch},
		{Code: "XA1Z", Name: "Monitor", Location: "Room 2", Status: types.AssetStatusLabelReprint},
		{Code: "D400", Name: "Laptop", Location: "Room 3", Status: types.AssetStatusUnchecked},
	}
}

func codes(assets []*model.Asset) []string {
	result := make([]string, len(assets))
	for i, a := range assets {
		result[i] = a.Code
	}
	return result
}

func TestFilterAssets(t *testing.T) {
	assets := sampleAssets()

	tests := []struct {
		name   string
		filter model.AssetFilter
		want   []string
	}{
		{
			name:   "zero filter matches all",
			filter: model.AssetFilter{},
			want:   []string{"A100", "B200", "C300", "XA1Z", "D400"},
		},
		{
			name:   "keyword matches code, name and location case-insensitively",
			filter: model.AssetFilter{Keyword: "A1"},
			want:   []string{"A100", "B200", "C300", "XA1Z"},
		},
		{
			name:   "whitespace keyword matches all",
			filter: model.AssetFilter{Keyword: "   "},
			want:   []string{"A100", "B200", "C300", "XA1Z", "D400"},
		},
		{
			name:   "status set is OR'ed",
			filter: model.AssetFilter{Statuses: []types.AssetStatus{types.AssetStatusMatched, types.AssetStatusMismatch}},
			want:   []string{"B200", "C300"},
		},
		{
			name: "keyword and status are AND'ed",
			filter: model.AssetFilter{
				Keyword:  "room",
				Statuses: []types.AssetStatus{types.AssetStatusUnchecked},
			},
			want: []string{"A100", "D400"},
		},
		{
			name:   "no match",
			filter: model.AssetFilter{Keyword: "sofa"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.FilterAssets(assets, tt.filter)
			gt.A(t, codes(got)).Equal(tt.want)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Run("includes zero counts", func(t *testing.T) {
		assets := []*model.Asset{
			{Code: "1", Status: types.AssetStatusUnchecked},
			{Code: "2", Status: types.AssetStatusUnchecked},
			{Code: "3", Status: types.AssetStatusUnchecked},
			{Code: "4", Status: types.AssetStatusUnchecked},
			{Code: "5", Status: types.AssetStatusMatched},
		}

		summary := model.Summarize(assets)
		gt.N(t, len(summary)).Equal(4)
		gt.N(t, summary[types.AssetStatusUnchecked]).Equal(4)
		gt.N(t, summary[types.AssetStatusMatched]).Equal(1)
		gt.N(t, summary[types.AssetStatusMismatch]).Equal(0)
		gt.N(t, summary[types.AssetStatusLabelReprint]).Equal(0)
		gt.N(t, summary.Total()).Equal(5)
	})

	t.Run("empty status counts as unchecked", func(t *testing.T) {
		summary := model.Summarize([]*model.Asset{{Code: "1"}})
		gt.N(t, summary[types.AssetStatusUnchecked]).Equal(1)
	})

	t.Run("ordered follows display order", func(t *testing.T) {
		ordered := model.Summarize(nil).Ordered()
		gt.A(t, ordered).Length(4)
		gt.V(t, ordered[0].Status).Equal(types.AssetStatusUnchecked)
		gt.V(t, ordered[3].Status).Equal(types.AssetStatusLabelReprint)
	})
}
