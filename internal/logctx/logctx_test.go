package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler_AddsGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithOperationData(context.Background(), &OperationData{API: "a.Api", Member: "greeting", Field: "greeting", Type: "query"})
	ctx = WithRequestData(ctx, &RequestData{RequestID: "r1", Endpoint: "http://x/graphql"})
	log.With("k", "v").DebugContext(ctx, "graphql.call")

	out := buf.String()
	for _, want := range []string{"op.api=a.Api", "op.member=greeting", "op.type=query", "req.id=r1", "req.endpoint=http://x/graphql", "k=v"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line %q missing %q", out, want)
		}
	}
}

func TestHandler_NoContextData(t *testing.T) {
	var buf bytes.Buffer
	New(slog.NewTextHandler(&buf, nil)).Info("plain")
	if strings.Contains(buf.String(), "op.") || strings.Contains(buf.String(), "req.") {
		t.Fatalf("unexpected groups in %q", buf.String())
	}
}

func TestNew_NilDiscards(t *testing.T) {
	log := New(nil)
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("nil handler should discard")
	}
}
