package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// AssetStatus represents the inventory-check outcome of an asset
type AssetStatus string

const (
	AssetStatusUnchecked    AssetStatus = "UNCHECKED"
	AssetStatusMatched      AssetStatus = "MATCHED"
	AssetStatusMismatch     AssetStatus = "MISMATCH"
	AssetStatusLabelReprint AssetStatus = "LABEL_REPRINT"
)

// AllAssetStatuses returns all valid asset statuses in display order
func AllAssetStatuses() []AssetStatus {
	return []AssetStatus{
		AssetStatusUnchecked,
		AssetStatusMatched,
		AssetStatusMismatch,
		AssetStatusLabelReprint,
	}
}

// IsValid checks if the asset status is valid
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusUnchecked,
		AssetStatusMatched,
		AssetStatusMismatch,
		AssetStatusLabelReprint:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as AssetStatusUnchecked.
func (s AssetStatus) Normalize() AssetStatus {
	if s == "" {
		return AssetStatusUnchecked
	}
	return s
}

// IsChecked reports whether the asset already went through a check in the
// current pass.
func (s AssetStatus) IsChecked() bool {
	return s.Normalize() != AssetStatusUnchecked
}

// String returns the string representation of the asset status
func (s AssetStatus) String() string {
	return string(s)
}

// Label returns the display label of the status
func (s AssetStatus) Label() string {
	return s.Presentation().Label
}

// Presentation returns the presentation entry of the status. Unknown
// statuses get a neutral entry labelled with the raw value.
func (s AssetStatus) Presentation() StatusPresentation {
	if p, ok := statusPresentations[s.Normalize()]; ok {
		return p
	}
	return StatusPresentation{Status: s, Label: string(s), LocalLabel: string(s), Hint: HintNeutral}
}

// legacy names written by older schema versions
var assetStatusAliases = map[string]AssetStatus{
	"MISMATCHED": AssetStatusMismatch,
	"REPRINT":    AssetStatusLabelReprint,
}

// ParseAssetStatus parses a canonical status name, a legacy alias, or a
// display label into an AssetStatus.
func ParseAssetStatus(s string) (AssetStatus, error) {
	key := strings.TrimSpace(s)

	status := AssetStatus(strings.ToUpper(key))
	if status.IsValid() {
		return status, nil
	}
	if alias, ok := assetStatusAliases[string(status)]; ok {
		return alias, nil
	}

	for _, p := range statusPresentations {
		if strings.EqualFold(p.Label, key) || p.LocalLabel == key {
			return p.Status, nil
		}
	}

	return "", goerr.New("invalid asset status", goerr.V("status", s))
}
