package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/service"
)

// recordView is a record as rendered to clients.
type recordView struct {
	domain.Record
	StatusLabel     string `json:"status_label"`
	ProgressPercent int    `json:"progress_percent"`
}

func viewOf(r domain.Record) recordView {
	return recordView{Record: r, StatusLabel: r.Status.Label(), ProgressPercent: r.Progress()}
}

func viewsOf(records []domain.Record) []recordView {
	out := make([]recordView, 0, len(records))
	for _, r := range records {
		out = append(out, viewOf(r))
	}
	return out
}

type listResponse struct {
	Status      domain.Status           `json:"status"`
	StatusLabel string                  `json:"status_label"`
	Counts      map[domain.Status]int64 `json:"counts"`
	Records     []recordView            `json:"records"`
}

type recordResponse struct {
	Message string     `json:"message,omitempty"`
	Record  recordView `json:"record"`
}

// recordRequest is the body of create and update calls.
type recordRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Status      string `json:"status"`
	CurrentPage int    `json:"current_page"`
	TotalPages  *int   `json:"total_pages"`
	Summary     string `json:"summary"`
	Thoughts    string `json:"thoughts"`
}

func (req recordRequest) toRecord(id int64) (domain.Record, error) {
	status := domain.DefaultStatus
	if strings.TrimSpace(req.Status) != "" {
		var ok bool
		if status, ok = domain.ParseStatus(req.Status); !ok {
			return domain.Record{}, fmt.Errorf("%w: unknown status %q", service.ErrInvalidRecord, req.Status)
		}
	}
	return domain.Record{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Status:      status,
		CurrentPage: req.CurrentPage,
		TotalPages:  req.TotalPages,
		Summary:     req.Summary,
		Thoughts:    req.Thoughts,
	}, nil
}

func decodeRecordRequest(r *http.Request) (recordRequest, error) {
	var req recordRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return recordRequest{}, fmt.Errorf("%w: %v", service.ErrInvalidRecord, err)
	}
	return req, nil
}

// ListRecords serves GET /records?status=S. A missing or unknown status
// falls back to the default status.
func ListRecords(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, _ := domain.ParseStatus(r.URL.Query().Get("status"))

		records, err := d.Records.ListByStatus(r.Context(), status)
		if err != nil {
			fail(w, r, d, err, "list records")
			return
		}
		counts, err := d.Records.Counts(r.Context())
		if err != nil {
			fail(w, r, d, err, "count records")
			return
		}

		writeJSON(w, http.StatusOK, listResponse{
			Status:      status,
			StatusLabel: status.Label(),
			Counts:      counts,
			Records:     viewsOf(records),
		})
	}
}

func GetRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordID(w, r)
		if !ok {
			return
		}

		rec, found, err := d.Records.Get(r.Context(), id)
		if err != nil {
			fail(w, r, d, err, "get record")
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, recordResponse{Record: viewOf(rec)})
	}
}

func CreateRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saveRecord(w, r, d, 0, http.StatusCreated)
	}
}

func UpdateRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordID(w, r)
		if !ok {
			return
		}
		saveRecord(w, r, d, id, http.StatusOK)
	}
}

func saveRecord(w http.ResponseWriter, r *http.Request, d deps.Deps, id int64, status int) {
	req, err := decodeRecordRequest(r)
	if err != nil {
		fail(w, r, d, err, "save record")
		return
	}
	rec, err := req.toRecord(id)
	if err != nil {
		fail(w, r, d, err, "save record")
		return
	}

	saved, err := d.Records.Save(r.Context(), rec)
	if err != nil {
		fail(w, r, d, err, "save record")
		return
	}
	writeJSON(w, status, recordResponse{Message: "record saved", Record: viewOf(saved)})
}

func DeleteRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := recordID(w, r)
		if !ok {
			return
		}
		if err := d.Records.Delete(r.Context(), id); err != nil {
			fail(w, r, d, err, "delete record")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "record deleted"})
	}
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return 0, false
	}
	return id, true
}
