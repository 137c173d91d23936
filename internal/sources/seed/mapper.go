package seed

import (
	"strings"

	"github.com/MrSnakeDoc/readlog/internal/domain"
)

// MapRecords converts seed entries to unsaved records. Entries without a
// title are dropped and counted in skipped. Unknown statuses fall back to
// the default status.
func MapRecords(lib *Library) (records []domain.Record, skipped int) {
	if lib == nil {
		return []domain.Record{}, 0
	}

	records = make([]domain.Record, 0, len(lib.Records))
	for _, e := range lib.Records {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			skipped++
			continue
		}

		status := domain.DefaultStatus
		if e.Status != "" {
			status, _ = domain.ParseStatus(e.Status)
		}

		rec := domain.Record{
			Title:       title,
			Author:      strings.TrimSpace(e.Author),
			Status:      status,
			CurrentPage: max(e.CurrentPage, 0),
			Summary:     e.Summary,
			Thoughts:    e.Thoughts,
		}
		if e.TotalPages != nil && *e.TotalPages > 0 {
			rec.TotalPages = domain.IntPtr(*e.TotalPages)
		}
		records = append(records, rec)
	}
	return records, skipped
}
