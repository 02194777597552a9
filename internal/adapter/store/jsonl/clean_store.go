package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/user/event-pipeline/internal/domain"
)

const cleanFileName = "records.jsonl"

// CleanedRecordStore writes the cleaning pipeline's output under
// <dir>/event_date=YYYY-MM-DD/records.jsonl, one record per line,
// partitioned by the derived date.
type CleanedRecordStore struct {
	dir    string
	logger *slog.Logger
}

// NewCleanedRecordStore creates the store rooted at dir, creating it if
// needed.
func NewCleanedRecordStore(dir string, logger *slog.Logger) (*CleanedRecordStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create clean events directory %s: %w", dir, err)
	}
	return &CleanedRecordStore{
		dir:    dir,
		logger: logger.With("component", "jsonl_clean_store"),
	}, nil
}

// WriteRecords groups records by event_date and overwrites one file per
// partition. Row order within a partition is not guaranteed.
func (s *CleanedRecordStore) WriteRecords(ctx context.Context, records []domain.CleanedRecord) error {
	byDate := make(map[string][]domain.CleanedRecord)
	for _, record := range records {
		byDate[record.EventDate] = append(byDate[record.EventDate], record)
	}

	for date, partition := range byDate {
		if err := s.writePartition(date, partition); err != nil {
			return err
		}
	}

	s.logger.Debug("wrote cleaned records", "partitions", len(byDate), "records", len(records))
	return nil
}

func (s *CleanedRecordStore) writePartition(date string, records []domain.CleanedRecord) error {
	dir := filepath.Join(s.dir, partitionPrefix+date)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create partition %s: %w", dir, err)
	}

	path := filepath.Join(dir, cleanFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("open partition file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", record.EventID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write partition file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush partition file %s: %w", path, err)
	}
	return nil
}

// ReadAll returns every cleaned record across all partitions. Mostly
// useful for verification and re-runs.
func (s *CleanedRecordStore) ReadAll(ctx context.Context) ([]domain.CleanedRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read clean events directory %s: %w", s.dir, err)
	}

	var records []domain.CleanedRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name(), cleanFileName)
		partition, err := readLines(path, func(line []byte) (domain.CleanedRecord, error) {
			var r domain.CleanedRecord
			err := json.Unmarshal(line, &r)
			return r, err
		})
		if err != nil {
			return nil, err
		}
		records = append(records, partition...)
	}
	return records, nil
}
