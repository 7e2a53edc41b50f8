package plan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// TextStore appends (id, caption) rows to a headerless CSV file. Rows are
// flushed one at a time so a crash loses at most the sample in flight.
type TextStore struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

func OpenTextStore(path string) (*TextStore, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &TextStore{f: f, w: csv.NewWriter(f)}, nil
}

func (s *TextStore) Append(id int, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Write([]string{strconv.Itoa(id), caption}); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *TextStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	return errors.Join(s.w.Error(), s.f.Close())
}

// Text is one stored row.
type Text struct {
	ID      int
	Caption string
}

// ReadTexts loads every row in file order. A missing file yields no rows.
func ReadTexts(path string) ([]Text, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	var rows []Text
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read %s: bad id %q", path, rec[0])
		}
		rows = append(rows, Text{ID: id, Caption: rec[1]})
	}
}
