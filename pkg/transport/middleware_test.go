package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/rhuss/vexgate/pkg/api"
	"github.com/rhuss/vexgate/pkg/observability"
)

var testRequest = api.Request{Path: "/0f8fad5b-d9cb-469f-a165-70867728950e", Authorization: "Bearer sk-secret-token"}

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next Decider) Decider {
			return DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
				order = append(order, name+":before")
				out := next.Decide(ctx, req)
				order = append(order, name+":after")
				return out
			})
		}
	}

	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		order = append(order, "handler")
		return api.OK("")
	})

	chain := Chain(mw("first"), mw("second"), mw("third"))
	wrapped := chain(handler)

	wrapped.Decide(context.Background(), testRequest)

	expected := []string{
		"first:before", "second:before", "third:before",
		"handler",
		"third:after", "second:after", "first:after",
	}

	if len(order) != len(expected) {
		t.Fatalf("execution order length = %d, want %d: %v", len(order), len(expected), order)
	}
	for i, got := range order {
		if got != expected[i] {
			t.Errorf("order[%d] = %q, want %q", i, got, expected[i])
		}
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		panic("test panic")
	})

	before := panicCount(t)
	wrapped := Recovery()(handler)
	out := wrapped.Decide(context.Background(), testRequest)

	if out.Kind != api.KindInternalError {
		t.Fatalf("Kind = %v, want internal_error", out.Kind)
	}
	if out.Body != "internal error" {
		t.Errorf("Body = %q, want %q", out.Body, "internal error")
	}
	if out.Err == nil || !strings.Contains(out.Err.Error(), "test panic") {
		t.Errorf("Err = %v, should mention the panic", out.Err)
	}
	if got := panicCount(t) - before; got != 1 {
		t.Errorf("panics recovered delta = %v, want 1", got)
	}
}

func TestRecoveryPassesThroughNormalExecution(t *testing.T) {
	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		return api.Reject(api.KindNotFound)
	})

	out := Recovery()(handler).Decide(context.Background(), testRequest)

	if out.Kind != api.KindNotFound {
		t.Fatalf("Kind = %v, want not_found", out.Kind)
	}
}

func TestRequestIDGeneratesNewID(t *testing.T) {
	var capturedID string

	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		capturedID = RequestIDFromContext(ctx)
		return api.OK("")
	})

	RequestID()(handler).Decide(context.Background(), testRequest)

	if capturedID == "" {
		t.Error("expected a generated request ID, got empty string")
	}
	if len(capturedID) != 32 { // 16 bytes = 32 hex chars
		t.Errorf("request ID length = %d, want 32 (hex encoded)", len(capturedID))
	}
}

func TestRequestIDPropagatesExisting(t *testing.T) {
	var capturedID string

	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		capturedID = RequestIDFromContext(ctx)
		return api.OK("")
	})

	ctx := ContextWithRequestID(context.Background(), "existing-id-123")
	RequestID()(handler).Decide(ctx, testRequest)

	if capturedID != "existing-id-123" {
		t.Errorf("request ID = %q, want %q", capturedID, "existing-id-123")
	}
}

func TestRequestIDUniqueness(t *testing.T) {
	ids := make(map[string]bool)
	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		ids[RequestIDFromContext(ctx)] = true
		return api.OK("")
	})

	wrapped := RequestID()(handler)
	for i := 0; i < 100; i++ {
		wrapped.Decide(context.Background(), testRequest)
	}

	if len(ids) != 100 {
		t.Errorf("expected 100 unique IDs, got %d", len(ids))
	}
}

func TestLoggingEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		return api.OK("value").WithAccount("acct-1")
	})

	ctx := ContextWithRequestID(context.Background(), "req-log-test")
	Logging(logger)(handler).Decide(ctx, testRequest)

	output := buf.String()
	for _, expected := range []string{
		"request_id=req-log-test",
		"project_id=0f8fad5b-d9cb-469f-a165-70867728950e",
		"outcome=ok",
		"account=acct-1",
		"request completed",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("log output missing %q in:\n%s", expected, output)
		}
	}
	if strings.Contains(output, "sk-secret-token") {
		t.Errorf("log output leaks the bearer token:\n%s", output)
	}
}

func TestLoggingEmitsErrorOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := DeciderFunc(func(ctx context.Context, req api.Request) api.Outcome {
		return api.Internal(errors.New("test failure"))
	})

	Logging(logger)(handler).Decide(context.Background(), testRequest)

	output := buf.String()
	if !strings.Contains(output, "request failed") {
		t.Errorf("log output missing 'request failed' in:\n%s", output)
	}
	if !strings.Contains(output, "test failure") {
		t.Errorf("log output missing error message in:\n%s", output)
	}
	if !strings.Contains(output, "level=ERROR") {
		t.Errorf("internal errors should log at ERROR:\n%s", output)
	}
}

func panicCount(t *testing.T) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := observability.PanicsRecoveredTotal.Write(m); err != nil {
		t.Fatalf("reading counter: %v", err)
	}
	return m.GetCounter().GetValue()
}
