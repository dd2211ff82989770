package csvwriter

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// Writer is a simple CSV writer, safe for concurrent use.
type Writer struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewWriter creates a CSV writer backed by a freshly created file.
func NewWriter(filePath string) (*Writer, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	return &Writer{
		file:   file,
		writer: csv.NewWriter(file),
	}, nil
}

// Write writes a single record to the CSV file.
func (w *Writer) Write(record []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record to CSV: %w", err)
	}
	return nil
}

// Flush flushes any buffered data to the underlying file.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writer.Flush()
}

// Close flushes buffered data and closes the file.
func (w *Writer) Close() error {
	w.Flush()
	return w.file.Close()
}
