package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/MrSnakeDoc/readlog/internal/csvcodec"
	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/logger"
	"github.com/google/uuid"
)

const exportFileLayout = "20060102_150405"

// ExportFile is a ready to serve CSV download.
type ExportFile struct {
	Filename string
	Data     []byte
}

// ImportPreview describes what a commit of Payload would create.
type ImportPreview struct {
	Records  []domain.Record
	Rejected int
	Skipped  int
	Warnings []string

	// Payload is the uploaded file, base64 encoded. The caller sends it
	// back unchanged to CommitImport.
	Payload string
}

// ImportReceipt is the result of a committed import.
type ImportReceipt struct {
	BatchID  uuid.UUID
	Records  []domain.Record
	Rejected int
	Skipped  int
}

// Export encodes every record, in ID order.
func (s *RecordService) Export(ctx context.Context) (*ExportFile, error) {
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	data, err := csvcodec.Encode(records)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	name := fmt.Sprintf("reading-records_%s.csv", s.now().Format(exportFileLayout))
	s.logger.Info("records exported", logger.Int("count", len(records)), logger.String("file", name))
	return &ExportFile{Filename: name, Data: data}, nil
}

// PreviewImport decodes data without writing anything.
func (s *RecordService) PreviewImport(_ context.Context, data []byte) (*ImportPreview, error) {
	res, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	return &ImportPreview{
		Records:  res.Records,
		Rejected: res.Rejected,
		Skipped:  res.Skipped,
		Warnings: res.Warnings,
		Payload:  base64.StdEncoding.EncodeToString(data),
	}, nil
}

// CommitImport decodes a payload from PreviewImport again and saves the records.
func (s *RecordService) CommitImport(ctx context.Context, payload string) (*ImportReceipt, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	res, err := s.decode(data)
	if err != nil {
		return nil, err
	}

	batch := uuid.New()
	saved, err := s.SaveAll(ctx, res.Records)
	if err != nil {
		return nil, fmt.Errorf("import batch %s: %w", batch, err)
	}

	s.logger.Info("import committed",
		logger.String("batch_id", batch.String()),
		logger.Int("records", len(saved)),
		logger.Int("rejected", res.Rejected),
		logger.Int("skipped", res.Skipped))

	return &ImportReceipt{
		BatchID:  batch,
		Records:  saved,
		Rejected: res.Rejected,
		Skipped:  res.Skipped,
	}, nil
}

func (s *RecordService) decode(data []byte) (*csvcodec.Result, error) {
	res, err := s.decoder.Decode(data)
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("%w (%d rows rejected, %d unreadable)", ErrNoValidRecords, res.Rejected, res.Skipped)
	}
	return res, nil
}

// Seed saves records only when the store is empty. It returns how many
// records were written.
func (s *RecordService) Seed(ctx context.Context, records []domain.Record) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("store not empty, skipping seed", logger.Int64("existing", n))
		return 0, nil
	}

	saved, err := s.SaveAll(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	return len(saved), nil
}
