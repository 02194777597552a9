// Package jsonl implements the file-backed stores: raw event batches
// and cleaned records, both laid out as one directory per calendar day
// (event_date=YYYY-MM-DD) holding newline-delimited JSON.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/user/event-pipeline/internal/domain"
)

const (
	partitionPrefix = "event_date="
	rawFileName     = "events.jsonl"
	dirPerm         = 0755
	filePerm        = 0644

	// Generous line limit; a raw event is well under this.
	maxLineBytes = 1 << 20
)

// RawEventStore persists one JSONL batch per day under
// <dir>/event_date=YYYY-MM-DD/events.jsonl.
type RawEventStore struct {
	dir    string
	logger *slog.Logger
}

// NewRawEventStore creates the store rooted at dir, creating it if
// needed.
func NewRawEventStore(dir string, logger *slog.Logger) (*RawEventStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create raw events directory %s: %w", dir, err)
	}
	return &RawEventStore{
		dir:    dir,
		logger: logger.With("component", "jsonl_raw_store"),
	}, nil
}

// WriteBatch overwrites the batch for the given day. Each event becomes
// one compact JSON line.
func (s *RawEventStore) WriteBatch(ctx context.Context, day time.Time, events []domain.Event) error {
	partition := filepath.Join(s.dir, partitionPrefix+day.UTC().Format(domain.DateLayout))
	if err := os.MkdirAll(partition, dirPerm); err != nil {
		return fmt.Errorf("create partition %s: %w", partition, err)
	}

	path := filepath.Join(partition, rawFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("open batch file %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.EventID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write batch file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush batch file %s: %w", path, err)
	}

	s.logger.Debug("wrote raw batch", "path", path, "events", len(events))
	return nil
}

// ReadAll scans every partition in date order and returns the union of
// all batches.
func (s *RawEventStore) ReadAll(ctx context.Context) ([]domain.Event, error) {
	partitions, err := s.sortedPartitions()
	if err != nil {
		return nil, err
	}

	var events []domain.Event
	for _, partition := range partitions {
		path := filepath.Join(partition, rawFileName)
		batch, err := readLines(path, func(line []byte) (domain.Event, error) {
			var e domain.Event
			err := json.Unmarshal(line, &e)
			return e, err
		})
		if err != nil {
			return nil, err
		}
		events = append(events, batch...)
	}

	s.logger.Debug("read raw batches", "partitions", len(partitions), "events", len(events))
	return events, nil
}

func (s *RawEventStore) sortedPartitions() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read raw events directory %s: %w", s.dir, err)
	}

	var partitions []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), partitionPrefix) {
			partitions = append(partitions, filepath.Join(s.dir, entry.Name()))
		}
	}
	sort.Strings(partitions)
	return partitions, nil
}

// readLines decodes one value per line from a JSONL file. A missing
// file is an empty batch, not an error.
func readLines[T any](path string, decode func([]byte) (T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var out []T
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		v, err := decode(line)
		if err != nil {
			return nil, fmt.Errorf("decode line in %s: %w", path, err)
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return out, nil
}
