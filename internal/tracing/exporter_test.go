package tracing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeRecords(t *testing.T, data []byte) []SpanRecord {
	t.Helper()
	var records []SpanRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestWriterExporter_LiftsDispatchAttributes(t *testing.T) {
	var buf bytes.Buffer
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewWriterExporter(&buf)))
	d := newFact(t, TracingMiddlewareConfig{Tracer: tp.Tracer("test")})

	_, err := d.Invoke(context.Background(), "fact", 1)
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(context.Background()))

	records := decodeRecords(t, buf.Bytes())
	require.Len(t, records, 2)

	inner, outer := records[0], records[1]
	require.Equal(t, "fact", outer.Operation)
	require.Equal(t, int64(1), outer.Depth)
	require.Equal(t, int64(2), inner.Depth)
	require.Equal(t, outer.SpanID, inner.ParentSpanID)
	require.Equal(t, outer.TraceID, inner.TraceID)
	require.Equal(t, "OK", outer.Status)
	require.NotContains(t, outer.Attributes, AttrOperation)
	require.Contains(t, outer.Attributes, AttrCallID)
	require.Len(t, outer.Events, 1)
	require.Equal(t, EventClauseSelected, outer.Events[0].Name)
}

func TestFileExporter_CreatesParentsAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(`{"trace_id":"existing"}`+"\n"), 0o600))

	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	_, span := tp.Tracer("test").Start(context.Background(), "one")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records := decodeRecords(t, data)
	require.Len(t, records, 2)
	require.Equal(t, "existing", records[0].TraceID)
	require.Equal(t, "one", records[1].Name)
	require.Equal(t, "UNSET", records[1].Status)
}

func TestFileExporter_ShutdownTwice(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
}
