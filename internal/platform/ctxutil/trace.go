// Package ctxutil carries per-request identifiers through context so
// handlers and usecases can tag their log lines without threading ids
// explicitly.
package ctxutil

import "context"

type traceDataKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// Fields returns the trace identifiers as logger key/value pairs. Nil-safe
// so call sites can chain it off GetTraceData directly.
func (td *TraceData) Fields() []interface{} {
	if td == nil {
		return nil
	}
	return []interface{}{"trace_id", td.TraceID, "request_id", td.RequestID}
}
