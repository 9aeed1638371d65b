package logctx

import (
	"context"
	"log/slog"
)

type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if od, ok := ctx.Value(operationDataKey{}).(*OperationData); ok {
		r.AddAttrs(slog.Group("op",
			slog.String("api", od.API),
			slog.String("member", od.Member),
			slog.String("field", od.Field),
			slog.String("type", od.Type),
		))
	}

	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("endpoint", rd.Endpoint),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type operationDataKey struct{}

// OperationData identifies the bound operation a call belongs to.
type OperationData struct {
	API    string
	Member string
	Field  string
	Type   string
}

func WithOperationData(ctx context.Context, data *OperationData) context.Context {
	return context.WithValue(ctx, operationDataKey{}, data)
}

type requestDataKey struct{}

type RequestData struct {
	RequestID string
	Endpoint  string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

// New returns a logger writing through a context-aware Handler. A nil h
// discards all records.
func New(h slog.Handler) *slog.Logger {
	if h == nil {
		h = slog.DiscardHandler
	}
	return slog.New(Handler{Handler: h})
}
