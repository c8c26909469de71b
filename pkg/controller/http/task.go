package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/service/spreadsheet"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/secmon-lab/assetcheck/pkg/utils/safe"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.uc.Task.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = toTaskSummaryResponse(t)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"tasks": resp})
}

type importResponse struct {
	Task     taskResponse `json:"task"`
	Imported int          `json:"imported"`
	Dropped  int          `json:"dropped"`
}

// importTask accepts multipart form fields "file", optional "name" and "format"
func (s *Server) importTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, r, badRequest(err, "invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequest(err, "file field is required"))
		return
	}
	defer safe.Close(ctx, file)

	in := usecase.ImportInput{
		Reader:   file,
		FileName: header.Filename,
		Name:     r.FormValue("name"),
	}
	if raw := r.FormValue("format"); raw != "" {
		format, err := spreadsheet.ParseFormat(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		in.Format = format
	}

	result, err := s.uc.Task.Import(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, importResponse{
		Task:     toTaskResponse(result.Task),
		Imported: result.Imported,
		Dropped:  result.Dropped,
	})
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.uc.Task.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTaskResponse(task))
}

func (s *Server) renameTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := s.uc.Task.Rename(r.Context(), id, req.Name)
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to rename task"))
		return
	}
	writeJSON(w, r, http.StatusOK, toTaskResponse(task))
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.uc.Task.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
