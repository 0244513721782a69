package storage

import (
	"context"
	"time"

	"github.com/rhuss/vexgate/pkg/debug"
	"github.com/rhuss/vexgate/pkg/observability"
)

// Instrument wraps a Backend so every read is counted and timed under the
// given backend name.
func Instrument(name string, b Backend) Backend {
	return &instrumented{name: name, next: b}
}

type instrumented struct {
	name string
	next Backend
}

func (s *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	accountID, found, err := s.next.Get(ctx, key)
	s.observe("get_credential", start, found, err)
	return accountID, found, err
}

func (s *instrumented) GetWithMetadata(ctx context.Context, projectID string) (Record, error) {
	start := time.Now()
	rec, err := s.next.GetWithMetadata(ctx, projectID)
	s.observe("get_project", start, rec.Value != nil || rec.Owner != nil, err)
	return rec, err
}

func (s *instrumented) HealthCheck(ctx context.Context) error {
	return s.next.HealthCheck(ctx)
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

func (s *instrumented) observe(op string, start time.Time, found bool, err error) {
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case !found:
		result = "miss"
	}
	elapsed := time.Since(start)
	observability.StoreRequestsTotal.WithLabelValues(s.name, op, result).Inc()
	observability.StoreLatency.WithLabelValues(s.name, op).Observe(elapsed.Seconds())
	debug.Log("storage", "lookup", "backend", s.name, "op", op, "result", result, "elapsed", elapsed)
}
