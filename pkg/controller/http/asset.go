package http

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
)

type assetListResponse struct {
	Task    taskResponse    `json:"task"`
	Assets  []assetResponse `json:"assets"`
	Summary summaryResponse `json:"summary"`
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := filterQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.uc.Asset.List(r.Context(), id, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, assetListResponse{
		Task:    toTaskResponse(list.Task),
		Assets:  toAssetResponses(list.Assets),
		Summary: toSummaryResponse(list.Summary),
	})
}

func (s *Server) openAsset(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Asset.Open(r.Context(), id, codeParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOpenResponse(result))
}

func (s *Server) scanAsset(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.uc.Asset.Scan(r.Context(), id, r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOpenResponse(result))
}

func (s *Server) matchAsset(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Reprint bool `json:"reprint"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	asset, err := s.uc.Asset.ConfirmMatch(r.Context(), id, codeParam(r), req.Reprint)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAssetResponse(asset))
}

func (s *Server) mismatchAsset(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Omitted fields keep their stored values
	var req struct {
		User       *string `json:"user"`
		Department *string `json:"department"`
		Location   *string `json:"location"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	asset, err := s.uc.Asset.DeclareMismatch(r.Context(), id, codeParam(r), model.AssetDetails{
		User:       req.User,
		Department: req.Department,
		Location:   req.Location,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAssetResponse(asset))
}

// exportAssets streams the report as an attachment; ?format= defaults to xlsx
func (s *Server) exportAssets(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := filterQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	format := spreadsheet.FormatXLSX
	if raw := r.URL.Query().Get("format"); raw != "" {
		if format, err = spreadsheet.ParseFormat(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	report, err := s.uc.Asset.Export(r.Context(), id, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fileName := fmt.Sprintf("%s.%s", report.Title, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(fileName))
	if err := spreadsheet.Write(w, format, *report); err != nil {
		writeError(w, r, err)
		return
	}
}
