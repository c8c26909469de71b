package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

// Asset is one physical item tracked by a task. (TaskID, Code) identifies it.
type Asset struct {
	TaskID     types.TaskID
	Code       string
	Name       string
	Category   string
	User       string
	Department string
	Location   string
	StartDate  string // display only, no date arithmetic
	Status     types.AssetStatus
}

// AssetKey is the composite identity of an asset
type AssetKey struct {
	TaskID types.TaskID
	Code   string
}

// Key returns the composite identity of the asset
func (a *Asset) Key() AssetKey {
	return AssetKey{TaskID: a.TaskID, Code: a.Code}
}

// Copy returns a shallow copy; Asset has no reference fields.
func (a *Asset) Copy() *Asset {
	c := *a
	return &c
}

// Validate checks the invariants every persisted asset must satisfy
func (a *Asset) Validate() error {
	if a.Code == "" {
		return goerr.Wrap(ErrValidation, "asset code is required", goerr.V(AssetNameKey, a.Name))
	}
	if a.Name == "" {
		return goerr.Wrap(ErrValidation, "asset name is required", goerr.V(AssetCodeKey, a.Code))
	}
	if !a.Status.Normalize().IsValid() {
		return goerr.Wrap(ErrValidation, "invalid asset status",
			goerr.V(AssetCodeKey, a.Code), goerr.V(StatusKey, a.Status))
	}
	return nil
}

// AssetDetails carries the mutable demographic fields of an asset. A nil
// field is left untouched by an update.
type AssetDetails struct {
	User       *string
	Department *string
	Location   *string
}

// ApplyTo overwrites the non-nil fields on a
func (d AssetDetails) ApplyTo(a *Asset) {
	if d.User != nil {
		a.User = *d.User
	}
	if d.Department != nil {
		a.Department = *d.Department
	}
	if d.Location != nil {
		a.Location = *d.Location
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every set field
func (d AssetDetails) Trimmed() AssetDetails {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	return AssetDetails{
		User:       trim(d.User),
		Department: trim(d.Department),
		Location:   trim(d.Location),
	}
}

var lowValueConsumableMarkers = []string{"低值易耗", "consumable"}

// IsLowValueConsumable reports whether the category marks a low-value
// consumable item, which labels annotate.
func IsLowValueConsumable(category string) bool {
	c := strings.ToLower(category)
	for _, m := range lowValueConsumableMarkers {
		if strings.Contains(c, m) {
			return true
		}
	}
	return false
}
