package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/secmon-lab/assetcheck/pkg/utils/errutil"
)

type taskResponse struct {
	ID         types.TaskID `json:"id"`
	Name       string       `json:"name"`
	CreatedAt  time.Time    `json:"created_at"`
	AssetCount *int         `json:"asset_count,omitempty"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func toTaskSummaryResponse(t *model.TaskSummary) taskResponse {
	count := t.AssetCount
	return taskResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, AssetCount: &count}
}

type assetResponse struct {
	TaskID      types.TaskID           `json:"task_id"`
	Code        string                 `json:"code"`
	Name        string                 `json:"name"`
	Category    string                 `json:"category"`
	User        string                 `json:"user"`
	Department  string                 `json:"department"`
	Location    string                 `json:"location"`
	StartDate   string                 `json:"start_date"`
	Status      types.AssetStatus      `json:"status"`
	StatusLabel string                 `json:"status_label"`
	Hint        types.PresentationHint `json:"hint"`
	Consumable  bool                   `json:"consumable"`
}

func toAssetResponse(a *model.Asset) assetResponse {
	p := a.Status.Presentation()
	return assetResponse{
		TaskID:      a.TaskID,
		Code:        a.Code,
		Name:        a.Name,
		Category:    a.Category,
		User:        a.User,
		Department:  a.Department,
		Location:    a.Location,
		StartDate:   a.StartDate,
		Status:      a.Status,
		StatusLabel: p.Label,
		Hint:        p.Hint,
		Consumable:  model.IsLowValueConsumable(a.Category),
	}
}

func toAssetResponses(assets []*model.Asset) []assetResponse {
	resp := make([]assetResponse, len(assets))
	for i, a := range assets {
		resp[i] = toAssetResponse(a)
	}
	return resp
}

type statusCountResponse struct {
	Status types.AssetStatus      `json:"status"`
	Label  string                 `json:"label"`
	Hint   types.PresentationHint `json:"hint"`
	Count  int                    `json:"count"`
}

type summaryResponse struct {
	Total    int                   `json:"total"`
	Statuses []statusCountResponse `json:"statuses"`
}

func toSummaryResponse(summary model.StatusSummary) summaryResponse {
	resp := summaryResponse{Total: summary.Total()}
	for _, sc := range summary.Ordered() {
		p := sc.Status.Presentation()
		resp.Statuses = append(resp.Statuses, statusCountResponse{
			Status: sc.Status,
			Label:  p.Label,
			Hint:   p.Hint,
			Count:  sc.Count,
		})
	}
	return resp
}

type openResponse struct {
	Asset          assetResponse `json:"asset"`
	AlreadyChecked bool          `json:"already_checked"`
}

func toOpenResponse(result *usecase.OpenResult) openResponse {
	return openResponse{
		Asset:          toAssetResponse(result.Asset),
		AlreadyChecked: result.AlreadyChecked,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// writeError maps the error taxonomy to an HTTP status
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, spreadsheet.ErrParse),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrConstraintViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// badRequest marks err as a client input problem
func badRequest(err error, msg string, values ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrValidation, err), msg, values...)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return badRequest(err, "invalid JSON body")
	}
	return nil
}

func taskIDParam(r *http.Request) (types.TaskID, error) {
	raw := chi.URLParam(r, "taskID")
	id, err := types.ParseTaskID(raw)
	if err != nil {
		return 0, badRequest(err, "invalid task ID", goerr.V(usecase.TaskIDKey, raw))
	}
	return id, nil
}

// codeParam returns the asset code path segment. Codes containing "/" must be
// sent percent-encoded. chi matches on RawPath when the request carries one,
// and only then is the segment still escaped.
func codeParam(r *http.Request) string {
	raw := chi.URLParam(r, "code")
	if r.URL.RawPath == "" {
		return raw
	}
	if code, err := url.PathUnescape(raw); err == nil {
		return code
	}
	return raw
}

// filterQuery reads ?keyword= and repeated or comma-separated ?status=
func filterQuery(r *http.Request) (model.AssetFilter, error) {
	q := r.URL.Query()
	filter := model.AssetFilter{Keyword: q.Get("keyword")}
	for _, v := range q["status"] {
		for _, s := range strings.Split(v, ",") {
			if strings.TrimSpace(s) == "" {
				continue
			}
			status, err := types.ParseAssetStatus(s)
			if err != nil {
				return model.AssetFilter{}, badRequest(err, "invalid status filter")
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	return filter, nil
}
