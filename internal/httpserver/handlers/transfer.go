package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/readlog/internal/httpserver/deps"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/MrSnakeDoc/readlog/internal/service"
)

// UploadField is the multipart field carrying the CSV file.
const UploadField = "csvFile"

type previewResponse struct {
	Records  []recordView `json:"records"`
	Count    int          `json:"count"`
	Rejected int          `json:"rejected"`
	Skipped  int          `json:"skipped"`
	Warnings []string     `json:"warnings,omitempty"`
	CSVData  string       `json:"csv_data"`
}

type commitRequest struct {
	CSVData string `json:"csv_data"`
}

// commitEnvelopeBytes covers the JSON around the payload.
const commitEnvelopeBytes = 1 << 10

// CommitBodyLimit is the commit body cap for a given upload cap: the
// payload is the uploaded file in base64, plus its JSON envelope.
func CommitBodyLimit(maxUploadBytes int64) int64 {
	return int64(base64.StdEncoding.EncodedLen(int(maxUploadBytes))) + commitEnvelopeBytes
}

type commitResponse struct {
	Message string `json:"message"`
	BatchID string `json:"batch_id"`
	Count   int    `json:"count"`
}

// ExportRecords serves every record as a CSV attachment.
func ExportRecords(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := d.Records.Export(r.Context())
		if err != nil {
			fail(w, r, d, err, "export records")
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=UTF-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(file.Data); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}

// PreviewImport decodes an uploaded CSV and returns the candidates
// together with the payload to send to CommitImport. Nothing is stored.
func PreviewImport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := readUpload(r)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				fail(w, r, d, err, "read upload")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		preview, err := d.Records.PreviewImport(r.Context(), data)
		if err != nil {
			fail(w, r, d, err, "preview import")
			return
		}

		writeJSON(w, http.StatusOK, previewResponse{
			Records:  viewsOf(preview.Records),
			Count:    len(preview.Records),
			Rejected: preview.Rejected,
			Skipped:  preview.Skipped,
			Warnings: preview.Warnings,
			CSVData:  preview.Payload,
		})
	}
}

func readUpload(r *http.Request) ([]byte, error) {
	file, header, err := r.FormFile(UploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, errors.New("no file selected")
	}
	defer file.Close()

	if header.Size == 0 {
		return nil, errors.New("no file selected")
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		return nil, errors.New("please select a CSV file")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// CommitImport persists the records carried by a preview payload.
func CommitImport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req commitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				fail(w, r, d, err, "commit import")
				return
			}
			fail(w, r, d, service.ErrInvalidPayload, "commit import")
			return
		}
		if req.CSVData == "" {
			fail(w, r, d, service.ErrInvalidPayload, "commit import")
			return
		}

		receipt, err := d.Records.CommitImport(r.Context(), req.CSVData)
		if err != nil {
			fail(w, r, d, err, "commit import")
			return
		}

		writeJSON(w, http.StatusCreated, commitResponse{
			Message: fmt.Sprintf("%d records imported", len(receipt.Records)),
			BatchID: receipt.BatchID.String(),
			Count:   len(receipt.Records),
		})
	}
}
