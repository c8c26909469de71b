package types

import "github.com/m-mizutani/goerr/v2"

// CheckTrigger is an operator action that moves an asset to a new status
type CheckTrigger string

const (
	// TriggerConfirmMatch: asset matches, label is fine
	TriggerConfirmMatch CheckTrigger = "confirm_match"
	// TriggerConfirmReprint: asset matches, label must be reprinted
	TriggerConfirmReprint CheckTrigger = "confirm_reprint"
	// TriggerDeclareMismatch: asset differs from the list, details corrected
	TriggerDeclareMismatch CheckTrigger = "declare_mismatch"
)

// Target returns the status a trigger moves an asset to. Every trigger is
// legal from every status; re-applying a trigger on a checked asset is a
// re-verification.
func (t CheckTrigger) Target() (AssetStatus, error) {
	switch t {
	case TriggerConfirmMatch:
		return AssetStatusMatched, nil
	case TriggerConfirmReprint:
		return AssetStatusLabelReprint, nil
	case TriggerDeclareMismatch:
		return AssetStatusMismatch, nil
	default:
		return "", goerr.New("unknown check trigger", goerr.V("trigger", t))
	}
}

// OverwritesDetails reports whether the transition also writes the
// user/department/location fields.
func (t CheckTrigger) OverwritesDetails() bool {
	return t == TriggerDeclareMismatch
}

// MatchTrigger returns the trigger for a positive confirmation
func MatchTrigger(needReprint bool) CheckTrigger {
	if needReprint {
		return TriggerConfirmReprint
	}
	return TriggerConfirmMatch
}
