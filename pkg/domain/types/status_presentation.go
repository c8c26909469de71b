package types

// PresentationHint tells presentation layers how to render a status
type PresentationHint string

const (
	HintNeutral PresentationHint = "neutral"
	HintSuccess PresentationHint = "success"
	HintDanger  PresentationHint = "danger"
	HintWarning PresentationHint = "warning"
)

// StatusPresentation is one row of the status display table
type StatusPresentation struct {
	Status     AssetStatus      `json:"status"`
	Label      string           `json:"label"`
	LocalLabel string           `json:"local_label"`
	Hint       PresentationHint `json:"hint"`
}

var statusPresentations = map[AssetStatus]StatusPresentation{
	AssetStatusUnchecked:    {Status: AssetStatusUnchecked, Label: "Unchecked", LocalLabel: "未盘点", Hint: HintNeutral},
	AssetStatusMatched:      {Status: AssetStatusMatched, Label: "Matched", LocalLabel: "相符", Hint: HintSuccess},
	AssetStatusMismatch:     {Status: AssetStatusMismatch, Label: "Mismatch", LocalLabel: "不相符", Hint: HintDanger},
	AssetStatusLabelReprint: {Status: AssetStatusLabelReprint, Label: "Label reprint", LocalLabel: "补打标签", Hint: HintWarning},
}

// StatusPresentations returns the display table in display order
func StatusPresentations() []StatusPresentation {
	statuses := AllAssetStatuses()
	result := make([]StatusPresentation, len(statuses))
	for i, s := range statuses {
		result[i] = statusPresentations[s]
	}
	return result
}
