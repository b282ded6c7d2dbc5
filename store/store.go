// Package store persists evaluated batches.
//
// Three formats are supported: a SQLite database that accumulates batches in a
// results table, newline-delimited JSON, and CSV with the columns
// prompt, result, result_code.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoobzio/verdict"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatSQLite Format = "sqlite"
	FormatJSONL  Format = "jsonl"
	FormatCSV    Format = "csv"
)

// Formats lists every supported format.
var Formats = []Format{FormatSQLite, FormatJSONL, FormatCSV}

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Writer persists batches.
type Writer interface {
	Write(ctx context.Context, batch *verdict.Batch) error
	Close() error
}

// Open creates a writer for the format at path, creating parent directories.
// File formats truncate an existing file; the SQLite store appends.
func Open(format Format, path string) (Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	switch format {
	case FormatSQLite:
		return NewSQLiteStore(path)
	case FormatJSONL:
		return newFileWriter(path, newJSONLEncoder)
	case FormatCSV:
		return newFileWriter(path, newCSVEncoder)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// EncodeResult renders a record's result as a single text column.
// Strings are stored verbatim, nil as the empty string, anything else as JSON.
func EncodeResult(result any) (string, error) {
	switch v := result.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		return string(data), nil
	}
}
