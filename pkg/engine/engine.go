package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/vexgate/pkg/api"
	"github.com/rhuss/vexgate/pkg/auth"
	"github.com/rhuss/vexgate/pkg/credential"
	"github.com/rhuss/vexgate/pkg/debug"
	"github.com/rhuss/vexgate/pkg/observability"
	"github.com/rhuss/vexgate/pkg/storage"
	"github.com/rhuss/vexgate/pkg/transport"
)

// errUnexpectedDecision is returned for authenticator decisions outside the
// known set.
var errUnexpectedDecision = errors.New("unexpected authentication decision")

// Engine runs the decision pipeline. It implements transport.Decider and
// holds no per-request state, so one Engine serves all requests.
type Engine struct {
	authn    auth.Authenticator
	projects storage.ProjectStore
	cfg      Config
	mode     string
	decide   func(ctx context.Context, req api.Request) api.Outcome
}

// Ensure Engine implements transport.Decider at compile time.
var _ transport.Decider = (*Engine)(nil)

// New creates an Engine. Both collaborators are required; no-auth mode is
// selected by passing an open authenticator such as noop.Authenticator.
func New(authn auth.Authenticator, projects storage.ProjectStore, cfg Config) (*Engine, error) {
	if authn == nil {
		return nil, fmt.Errorf("engine: authenticator must not be nil")
	}
	if projects == nil {
		return nil, fmt.Errorf("engine: project store must not be nil")
	}

	e := &Engine{
		authn:    authn,
		projects: projects,
		cfg:      cfg,
	}

	switch {
	case auth.IsOpen(authn):
		e.mode, e.decide = "open", e.decideOpen
	case cfg.ParallelLookup:
		e.mode, e.decide = "parallel", e.decideParallel
	default:
		e.mode, e.decide = "sequential", e.decideSequential
	}

	return e, nil
}

// Mode returns the pipeline variant selected at construction: "open",
// "sequential" or "parallel".
func (e *Engine) Mode() string { return e.mode }

// Decide runs the pipeline for req and returns its single terminal outcome.
func (e *Engine) Decide(ctx context.Context, req api.Request) api.Outcome {
	start := time.Now()
	out := e.decide(ctx, req)
	e.record(req, out, time.Since(start))
	return out
}

// decideSequential awaits the credential read before the project read.
func (e *Engine) decideSequential(ctx context.Context, req api.Request) api.Outcome {
	result := e.authn.Authenticate(ctx, req.Authorization)
	accountID, rejected, done := authOutcome(result)
	if done {
		return rejected
	}

	projectID := req.ProjectID()
	if !api.ValidProjectID(projectID) {
		return api.Reject(api.KindInvalidProjectID).WithAccount(accountID)
	}

	rec, err := e.fetchProject(ctx, projectID)
	if err != nil {
		return api.Internal(err).WithAccount(accountID)
	}

	return authorize(rec, accountID).WithAccount(accountID)
}

// decideParallel issues both reads up front and then evaluates the gates in
// the same order as decideSequential. The project read is skipped when it
// could not influence the outcome (no bearer token or a malformed id).
func (e *Engine) decideParallel(ctx context.Context, req api.Request) api.Outcome {
	projectID := req.ProjectID()
	token, hasToken := credential.Extract(req.Authorization)
	prefetch := hasToken && token != "" && api.ValidProjectID(projectID)

	var (
		g      errgroup.Group
		result auth.AuthResult
		rec    storage.Record
		recErr error
	)
	g.Go(func() error {
		result = e.authn.Authenticate(ctx, req.Authorization)
		return nil
	})
	if prefetch {
		g.Go(func() error {
			rec, recErr = e.fetchProject(ctx, projectID)
			return nil
		})
	}
	_ = g.Wait()

	accountID, rejected, done := authOutcome(result)
	if done {
		return rejected
	}
	if !api.ValidProjectID(projectID) {
		return api.Reject(api.KindInvalidProjectID).WithAccount(accountID)
	}
	if !prefetch {
		// Authenticated without a bearer token in the header; read now.
		rec, recErr = e.fetchProject(ctx, projectID)
	}
	if recErr != nil {
		return api.Internal(recErr).WithAccount(accountID)
	}

	return authorize(rec, accountID).WithAccount(accountID)
}

// decideOpen serves deployments without authentication: only the project
// id and value gates run.
func (e *Engine) decideOpen(ctx context.Context, req api.Request) api.Outcome {
	projectID := req.ProjectID()
	if !api.ValidProjectID(projectID) {
		return api.Reject(api.KindInvalidProjectID)
	}

	rec, err := e.fetchProject(ctx, projectID)
	if err != nil {
		return api.Internal(err)
	}
	if !rec.HasValue() {
		return api.Reject(api.KindNotFound)
	}
	return api.OK(*rec.Value)
}

// fetchProject reads value and owner metadata in one call.
func (e *Engine) fetchProject(ctx context.Context, projectID string) (storage.Record, error) {
	rec, err := e.projects.GetWithMetadata(ctx, projectID)
	if err != nil {
		return storage.Record{}, fmt.Errorf("fetching project %s: %w", projectID, err)
	}
	return rec, nil
}

// authOutcome maps an authentication result onto gates 1 and 2. done is
// true when the pipeline must stop with the returned outcome.
func authOutcome(result auth.AuthResult) (accountID string, out api.Outcome, done bool) {
	switch result.Decision {
	case auth.Yes:
		if result.Identity == nil || result.Identity.AccountID == "" {
			return "", api.Reject(api.KindInvalidToken), true
		}
		return result.Identity.AccountID, api.Outcome{}, false
	case auth.Abstain:
		return "", api.Reject(api.KindMissingToken), true
	case auth.No:
		return "", api.Reject(api.KindInvalidToken), true
	case auth.Fail:
		return "", api.Internal(fmt.Errorf("resolving account: %w", result.Err)), true
	default:
		return "", api.Internal(fmt.Errorf("%w: %v", errUnexpectedDecision, result.Decision)), true
	}
}

// authorize applies gates 5 and 6: ownership before existence.
func authorize(rec storage.Record, accountID string) api.Outcome {
	if !rec.OwnedBy(accountID) {
		return api.Reject(api.KindUnauthorized)
	}
	if !rec.HasValue() {
		return api.Reject(api.KindNotFound)
	}
	return api.OK(*rec.Value)
}

// record updates the decision counter and emits an "engine" debug entry.
// Request level logging is left to transport.Logging. The token is never logged.
func (e *Engine) record(req api.Request, out api.Outcome, elapsed time.Duration) {
	observability.DecisionsTotal.WithLabelValues(out.Kind.String()).Inc()

	if !debug.Enabled("engine") {
		return
	}
	args := []any{
		"mode", e.mode,
		"outcome", out.Kind.String(),
		"project_id", req.ProjectID(),
		"elapsed", elapsed,
	}
	if out.AccountID != "" {
		args = append(args, "account", out.AccountID)
	}
	if out.Err != nil {
		args = append(args, "error", out.Err.Error())
	}
	debug.Log("engine", "decision", args...)
}
