// Copyright (c) 2026 Tabulaire. All rights reserved.

package tabular

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/taibuivan/tabulaire/internal/pgrest"
	"github.com/taibuivan/tabulaire/internal/query"
	"github.com/taibuivan/tabulaire/internal/resource"
)

// Export is a prepared full-result read of one resource. Preparation runs
// every lookup and validation that can fail, so the handler can commit to a
// success status before the first byte is written.
type Export struct {
	service  *Service
	ref      *resource.Ref
	header   []string
	rawQuery string
}

// NewExport resolves and validates an export request. The query grammar is
// the same as on the paged endpoint; page and page_size are accepted but
// ignored, exports always cover the full result set.
func (s *Service) NewExport(ctx context.Context, resourceID, rawQuery string) (*Export, error) {
	ref, profile, plan, err := s.prepare(ctx, resourceID, rawQuery)
	if err != nil {
		return nil, err
	}

	header := plan.OutputColumns()
	if header == nil {
		header = append([]string{"__id"}, profile.Header...)
	}

	return &Export{
		service:  s,
		ref:      ref,
		header:   header,
		rawQuery: query.Compile(plan).RawQuery,
	}, nil
}

// Filename suggests a download filename for the export.
func (e *Export) Filename(extension string) string {
	return fmt.Sprintf("%s.%s", e.ref.ResourceID, extension)
}

// WriteCSV streams the full result set as CSV: one header record, then every
// row, fetched downstream one batch at a time. Rows reach the client as each
// batch completes; a canceled context stops the downstream paging.
func (e *Export) WriteCSV(ctx context.Context, writer http.ResponseWriter) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(e.header); err != nil {
		return err
	}

	err := e.eachBatch(ctx, func(rows []map[string]any) error {
		record := make([]string, len(e.header))
		for _, row := range rows {
			for i, column := range e.header {
				record[i] = renderCell(row[column])
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}

		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return err
		}
		flush(writer)
		return nil
	})
	if err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteJSON streams the full result set as one flat JSON array, without the
// pagination envelope.
func (e *Export) WriteJSON(ctx context.Context, writer http.ResponseWriter) error {
	if _, err := writer.Write([]byte("[")); err != nil {
		return err
	}

	first := true
	err := e.eachBatch(ctx, func(rows []map[string]any) error {
		for _, row := range rows {
			if !first {
				if _, err := writer.Write([]byte(",")); err != nil {
					return err
				}
			}
			first = false

			payload, err := json.Marshal(row)
			if err != nil {
				return err
			}
			if _, err := writer.Write(payload); err != nil {
				return err
			}
		}
		flush(writer)
		return nil
	})
	if err != nil {
		return err
	}

	_, err = writer.Write([]byte("]\n"))
	return err
}

// eachBatch pages through the downstream result set, invoking fn once per
// non-empty batch. It stops on the first short batch, on an error, or when
// the context is canceled.
func (e *Export) eachBatch(ctx context.Context, fn func(rows []map[string]any) error) error {
	batchSize := e.service.options.BatchSize

	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		window := pgrest.Window{First: offset, Last: offset + batchSize - 1}
		result, err := e.service.client.Rows(ctx, e.ref.TableName, e.rawQuery, window, false)
		if err != nil {
			return err
		}

		if len(result.Rows) > 0 {
			if err := fn(result.Rows); err != nil {
				return err
			}
		}
		if len(result.Rows) < batchSize {
			return nil
		}
	}
}

// renderCell formats one decoded JSON value as a CSV cell. Nested objects
// and arrays keep their JSON form.
func renderCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(payload)
	}
}

func flush(writer http.ResponseWriter) {
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}
