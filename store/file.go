package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/zoobzio/verdict"
)

// recordEncoder writes records to a stream.
type recordEncoder interface {
	begin() error
	encode(rec verdict.BatchRecord) error
	flush() error
}

type fileWriter struct {
	file    *os.File
	buf     *bufio.Writer
	enc     recordEncoder
	started bool
}

func newFileWriter(path string, newEncoder func(io.Writer) recordEncoder) (*fileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	return &fileWriter{file: f, buf: buf, enc: newEncoder(buf)}, nil
}

func (w *fileWriter) Write(ctx context.Context, batch *verdict.Batch) error {
	if !w.started {
		if err := w.enc.begin(); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		w.started = true
	}
	for _, rec := range batch.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.enc.encode(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", rec.Index, err)
		}
	}
	if err := w.enc.flush(); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *fileWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// jsonlEncoder writes one JSON object per record.
type jsonlEncoder struct {
	enc *json.Encoder
}

func newJSONLEncoder(w io.Writer) recordEncoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &jsonlEncoder{enc: enc}
}

func (e *jsonlEncoder) encode(rec verdict.BatchRecord) error {
	return e.enc.Encode(rec)
}

func (*jsonlEncoder) begin() error { return nil }

func (*jsonlEncoder) flush() error { return nil }

// csvEncoder writes a header row followed by one row per record.
type csvEncoder struct {
	w *csv.Writer
}

func newCSVEncoder(w io.Writer) recordEncoder {
	return &csvEncoder{w: csv.NewWriter(w)}
}

func (e *csvEncoder) begin() error {
	return e.w.Write([]string{"prompt", "result", "result_code"})
}

func (e *csvEncoder) encode(rec verdict.BatchRecord) error {
	result, err := EncodeResult(rec.Result)
	if err != nil {
		return err
	}
	return e.w.Write([]string{rec.Prompt, result, strconv.Itoa(int(rec.ResultCode))})
}

func (e *csvEncoder) flush() error {
	e.w.Flush()
	return e.w.Error()
}
