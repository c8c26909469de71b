package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/assetcheck/pkg/controller/http"
	"github.com/secmon-lab/assetcheck/pkg/repository/memory"
	"github.com/secmon-lab/assetcheck/pkg/usecase"
	"github.com/xuri/excelize/v2"
)

const inventoryCSV = "code,name,category,user,department,location,start_date\n" +
	"A001,Desk,Furniture,alice,IT,Room 1,2023-04-01\n" +
	"A002,Chair,Furniture,bob,HR,Room 2,2022-01-10\n" +
	"IT/2024/001,Laptop,Electronics,carol,IT,Room 1,2024-02-01\n" +
	",Orphan,,,,,\n"

type task struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	AssetCount *int   `json:"asset_count"`
}

type asset struct {
	TaskID     int64  `json:"task_id"`
	Code       string `json:"code"`
	User       string `json:"user"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	Hint       string `json:"hint"`
}

type openResult struct {
	Asset          asset `json:"asset"`
	AlreadyChecked bool  `json:"already_checked"`
}

type selection struct {
	ID     string  `json:"id"`
	Count  int     `json:"count"`
	Assets []asset `json:"assets"`
}

func newServer() *httpctrl.Server {
	return httpctrl.New(usecase.New(memory.New()))
}

func do(t *testing.T, srv http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

func upload(t *testing.T, srv http.Handler, fileName, content, name string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	gt.NoError(t, err).Required()
	_, err = fw.Write([]byte(content))
	gt.NoError(t, err).Required()
	if name != "" {
		gt.NoError(t, mw.WriteField("name", name)).Required()
	}
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func importTask(t *testing.T, srv http.Handler) int64 {
	t.Helper()
	w := upload(t, srv, "Q1 Audit.csv", inventoryCSV, "")
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	resp := decode[struct {
		Task     task `json:"task"`
		Imported int  `json:"imported"`
		Dropped  int  `json:"dropped"`
	}](t, w)
	gt.Value(t, resp.Task.Name).Equal("Q1 Audit")
	gt.Number(t, resp.Imported).Equal(3)
	gt.Number(t, resp.Dropped).Equal(1)
	return resp.Task.ID
}

func TestServer_Tasks(t *testing.T) {
	srv := newServer()
	id := importTask(t, srv)

	t.Run("list includes asset counts", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/tasks", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		resp := decode[struct {
			Tasks []task `json:"tasks"`
		}](t, w)
		gt.Array(t, resp.Tasks).Length(1).Required()
		gt.Number(t, *resp.Tasks[0].AssetCount).Equal(3)
	})

	t.Run("rename", func(t *testing.T) {
		w := do(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), map[string]string{"name": "  Annual  "})
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[task](t, w).Name).Equal("Annual")

		w = do(t, srv, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), nil)
		gt.Value(t, decode[task](t, w).Name).Equal("Annual")
	})

	t.Run("rename to blank is rejected", func(t *testing.T) {
		w := do(t, srv, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), map[string]string{"name": " "})
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed task ID", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/tasks/abc", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := do(t, srv, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil)
		gt.Number(t, w.Code).Equal(http.StatusNoContent)

		w = do(t, srv, http.MethodGet, fmt.Sprintf("/api/tasks/%d/assets", id), nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)

		w = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_Import(t *testing.T) {
	t.Run("no valid rows", func(t *testing.T) {
		w := upload(t, newServer(), "empty.csv", "code,name\n,\n", "")
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		w := upload(t, newServer(), "list.pdf", inventoryCSV, "")
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing file field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		gt.NoError(t, mw.WriteField("name", "x")).Required()
		gt.NoError(t, mw.Close()).Required()

		req := httptest.NewRequest(http.MethodPost, "/api/tasks/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		newServer().ServeHTTP(w, req)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("explicit name wins", func(t *testing.T) {
		w := upload(t, newServer(), "Q1.csv", inventoryCSV, "Warehouse")
		gt.Number(t, w.Code).Equal(http.StatusCreated)
		resp := decode[struct {
			Task task `json:"task"`
		}](t, w)
		gt.Value(t, resp.Task.Name).Equal("Warehouse")
	})
}

func TestServer_CheckWorkflow(t *testing.T) {
	srv := newServer()
	id := importTask(t, srv)
	base := fmt.Sprintf("/api/tasks/%d", id)

	t.Run("open unchecked asset", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/assets/A001", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		resp := decode[openResult](t, w)
		gt.Value(t, resp.Asset.Status).Equal("UNCHECKED")
		gt.Bool(t, resp.AlreadyChecked).False()
	})

	t.Run("match with reprint", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, base+"/assets/A001/match", map[string]bool{"reprint": true})
		gt.Number(t, w.Code).Equal(http.StatusOK)
		resp := decode[asset](t, w)
		gt.Value(t, resp.Status).Equal("LABEL_REPRINT")
		gt.Value(t, resp.Hint).Equal("warning")
	})

	t.Run("match without body", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, base+"/assets/A002/match", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[asset](t, w).Status).Equal("MATCHED")
	})

	t.Run("already checked is flagged on open", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/assets/A002", nil)
		gt.Bool(t, decode[openResult](t, w).AlreadyChecked).True()
	})

	t.Run("mismatch keeps omitted details", func(t *testing.T) {
		w := do(t, srv, http.MethodPost, base+"/assets/IT%2F2024%2F001/mismatch",
			map[string]string{"user": "dave", "location": "Room 9"})
		gt.Number(t, w.Code).Equal(http.StatusOK)
		resp := decode[asset](t, w)
		gt.Value(t, resp.Code).Equal("IT/2024/001")
		gt.Value(t, resp.Status).Equal("MISMATCH")
		gt.Value(t, resp.User).Equal("dave")
		gt.Value(t, resp.Location).Equal("Room 9")
		gt.Value(t, resp.Department).Equal("IT")
	})

	t.Run("scan resolves a trimmed payload", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/scan?code=%20A002%20", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, decode[openResult](t, w).Asset.Code).Equal("A002")
	})

	t.Run("scan with empty payload", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/scan?code=", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown code", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/scan?code=ZZZ", nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)

		w = do(t, srv, http.MethodPost, base+"/assets/ZZZ/match", nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("list filters and summarizes the whole task", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/assets?status=MATCHED,LABEL_REPRINT", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		resp := decode[struct {
			Assets  []asset `json:"assets"`
			Summary struct {
				Total    int `json:"total"`
				Statuses []struct {
					Status string `json:"status"`
					Count  int    `json:"count"`
				} `json:"statuses"`
			} `json:"summary"`
		}](t, w)
		gt.Array(t, resp.Assets).Length(2).Required()
		gt.Value(t, resp.Assets[0].Code).Equal("A001")
		gt.Value(t, resp.Assets[1].Code).Equal("A002")
		gt.Number(t, resp.Summary.Total).Equal(3)
		gt.Array(t, resp.Summary.Statuses).Length(4)
	})

	t.Run("keyword filter", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/assets?keyword=room%209", nil)
		resp := decode[struct {
			Assets []asset `json:"assets"`
		}](t, w)
		gt.Array(t, resp.Assets).Length(1).Required()
		gt.Value(t, resp.Assets[0].Code).Equal("IT/2024/001")
	})

	t.Run("invalid status filter", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/assets?status=BROKEN", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})
}

func TestServer_Export(t *testing.T) {
	srv := newServer()
	id := importTask(t, srv)
	base := fmt.Sprintf("/api/tasks/%d", id)

	t.Run("csv", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/export?format=csv&keyword=A00", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Header().Get("Content-Type")).Contains("text/csv")
		gt.String(t, w.Header().Get("Content-Disposition")).Contains("Q1%20Audit.csv")
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		gt.Array(t, lines).Length(3)
	})

	t.Run("xlsx by default", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/export", nil)
		gt.Number(t, w.Code).Equal(http.StatusOK)

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		gt.NoError(t, err).Required()
		defer f.Close()
		rows, err := f.GetRows("Report")
		gt.NoError(t, err).Required()
		gt.Array(t, rows).Length(6)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, base+"/export?format=pdf", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})
}

func TestServer_Selection(t *testing.T) {
	srv := newServer()
	id := importTask(t, srv)

	w := do(t, srv, http.MethodPost, "/api/selections", nil)
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	selID := decode[selection](t, w).ID
	gt.String(t, selID).NotEqual("")
	path := "/api/selections/" + selID

	t.Run("select codes and resolve in listing order", func(t *testing.T) {
		w := do(t, srv, http.MethodPut, path, map[string]any{
			"task_id": id, "codes": []string{"IT/2024/001", "A001"}, "selected": true,
		})
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.Number(t, decode[selection](t, w).Count).Equal(2)

		w = do(t, srv, http.MethodGet, fmt.Sprintf("%s?task_id=%d", path, id), nil)
		resp := decode[selection](t, w)
		gt.Array(t, resp.Assets).Length(2).Required()
		gt.Value(t, resp.Assets[0].Code).Equal("A001")
		gt.Value(t, resp.Assets[1].Code).Equal("IT/2024/001")
	})

	t.Run("select all then deselect all", func(t *testing.T) {
		w := do(t, srv, http.MethodPut, path, map[string]any{"task_id": id, "all": true, "selected": true})
		gt.Number(t, decode[selection](t, w).Count).Equal(3)

		w = do(t, srv, http.MethodPut, path, map[string]any{"task_id": id, "all": true, "selected": false})
		gt.Number(t, decode[selection](t, w).Count).Equal(0)
	})

	t.Run("missing task_id", func(t *testing.T) {
		w := do(t, srv, http.MethodPut, path, map[string]any{"codes": []string{"A001"}, "selected": true})
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("delete resets the session", func(t *testing.T) {
		w := do(t, srv, http.MethodDelete, path, nil)
		gt.Number(t, w.Code).Equal(http.StatusNoContent)

		w = do(t, srv, http.MethodGet, path, nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_Statuses(t *testing.T) {
	w := do(t, newServer(), http.MethodGet, "/api/statuses", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	resp := decode[struct {
		Statuses []struct {
			Status string `json:"status"`
			Hint   string `json:"hint"`
		} `json:"statuses"`
	}](t, w)
	gt.Array(t, resp.Statuses).Length(4).Required()
	gt.Value(t, resp.Statuses[0].Status).Equal("UNCHECKED")
}

func TestServer_AssetCodeEscaping(t *testing.T) {
	srv := newServer()
	csv := "code,name,category,user,department,location,start_date\n" +
		"A%41,Percent,Furniture,alice,IT,Room 1,2023-04-01\n" +
		"AA,Plain,Furniture,bob,IT,Room 2,2023-04-01\n"

	w := upload(t, srv, "codes.csv", csv, "")
	gt.Number(t, w.Code).Equal(http.StatusCreated)
	id := decode[struct {
		Task task `json:"task"`
	}](t, w).Task.ID
	base := fmt.Sprintf("/api/tasks/%d", id)

	testCases := map[string]struct {
		path string
		code string
		user string
	}{
		"escaped percent is decoded once": {path: "/assets/A%2541", code: "A%41", user: "alice"},
		"plain code":                      {path: "/assets/AA", code: "AA", user: "bob"},
		"escaped letter":                  {path: "/assets/A%41", code: "AA", user: "bob"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, base+tc.path, nil)
			gt.Number(t, w.Code).Equal(http.StatusOK)
			resp := decode[openResult](t, w)
			gt.Value(t, resp.Asset.Code).Equal(tc.code)
			gt.Value(t, resp.Asset.User).Equal(tc.user)
		})
	}
}

func TestServer_SelectionLimits(t *testing.T) {
	newSelection := func(t *testing.T, srv http.Handler) string {
		t.Helper()
		w := do(t, srv, http.MethodPost, "/api/selections", nil)
		gt.Number(t, w.Code).Equal(http.StatusCreated)
		return "/api/selections/" + decode[selection](t, w).ID
	}

	t.Run("idle selection expires", func(t *testing.T) {
		srv := httpctrl.New(usecase.New(memory.New()), httpctrl.WithSelectionTTL(20*time.Millisecond))
		path := newSelection(t, srv)

		gt.Number(t, do(t, srv, http.MethodGet, path, nil).Code).Equal(http.StatusOK)
		time.Sleep(50 * time.Millisecond)
		gt.Number(t, do(t, srv, http.MethodGet, path, nil).Code).Equal(http.StatusNotFound)
	})

	t.Run("least recently used selection is evicted at the cap", func(t *testing.T) {
		srv := httpctrl.New(usecase.New(memory.New()), httpctrl.WithMaxSelections(2))
		first := newSelection(t, srv)
		time.Sleep(time.Millisecond)
		second := newSelection(t, srv)
		time.Sleep(time.Millisecond)

		// touching first makes second the oldest
		gt.Number(t, do(t, srv, http.MethodGet, first, nil).Code).Equal(http.StatusOK)
		time.Sleep(time.Millisecond)
		third := newSelection(t, srv)

		gt.Number(t, do(t, srv, http.MethodGet, first, nil).Code).Equal(http.StatusOK)
		gt.Number(t, do(t, srv, http.MethodGet, second, nil).Code).Equal(http.StatusNotFound)
		gt.Number(t, do(t, srv, http.MethodGet, third, nil).Code).Equal(http.StatusOK)
	})
}
