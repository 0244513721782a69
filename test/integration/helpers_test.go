// Package integration provides end-to-end tests for the vexgate server.
//
// Tests run against real vexgate HTTP servers backed by a seeded
// in-memory store, started in-process on loopback listeners.
package integration

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/vexgate/pkg/auth"
	"github.com/rhuss/vexgate/pkg/auth/kv"
	"github.com/rhuss/vexgate/pkg/auth/noop"
	"github.com/rhuss/vexgate/pkg/credential"
	"github.com/rhuss/vexgate/pkg/engine"
	"github.com/rhuss/vexgate/pkg/observability"
	"github.com/rhuss/vexgate/pkg/storage"
	"github.com/rhuss/vexgate/pkg/storage/memory"
	transporthttp "github.com/rhuss/vexgate/pkg/transport/http"
)

const (
	projectAlice   = "0f8fad5b-d9cb-469f-a165-70867728950e"
	projectBob     = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	projectNoValue = "16fd2706-8baf-433b-82eb-8c7fada847da"
	projectOrphan  = "886313e1-3b8a-5372-9b90-0c9aee199e5d"
	projectUnknown = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"

	aliceConfig = `{"flag":true}`
)

const seed = `
tokens:
  token-alice: acct-alice
  token-bob: acct-bob
  token-blank: ""
projects:
  ` + projectAlice + `:
    owner: acct-alice
    value: '` + aliceConfig + `'
  ` + projectBob + `:
    owner: acct-bob
    value: '{"bob":1}'
  ` + projectNoValue + `:
    owner: acct-alice
  ` + projectOrphan + `:
    value: '{"orphan":true}'
`

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds one server per decision mode over the same store.
type TestEnvironment struct {
	Sequential string
	Parallel   string
	Open       string

	cancel context.CancelFunc
	done   []chan error
}

// TestMain starts the vexgate servers before running tests.
func TestMain(m *testing.M) {
	env, err := setupTestEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up integration environment: %v\n", err)
		os.Exit(1)
	}
	testEnv = env
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

func setupTestEnvironment() (*TestEnvironment, error) {
	store := memory.New()
	if err := store.Seed(strings.NewReader(seed), credential.SHA256{}); err != nil {
		return nil, err
	}
	backend := storage.Instrument("memory", store)

	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{cancel: cancel}

	start := func(authn auth.Authenticator, parallel bool) (string, error) {
		eng, err := engine.New(authn, backend, engine.Config{ParallelLookup: parallel})
		if err != nil {
			return "", err
		}
		srv := transporthttp.NewServer(eng,
			transporthttp.WithRequestTimeout(2*time.Second),
			transporthttp.WithShutdownTimeout(2*time.Second),
			transporthttp.WithMetrics("/metrics", promhttp.Handler()),
			transporthttp.WithHTTPMiddleware(observability.MetricsMiddleware),
		)
		srv.Adapter().AddReadinessCheck("storage", backend.HealthCheck)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return "", err
		}
		done := make(chan error, 1)
		go func() { done <- srv.RunOn(ctx, ln) }()
		env.done = append(env.done, done)
		return "http://" + ln.Addr().String(), nil
	}

	var err error
	if env.Sequential, err = start(kv.New(backend, credential.SHA256{}), false); err != nil {
		return nil, err
	}
	if env.Parallel, err = start(kv.New(backend, credential.SHA256{}), true); err != nil {
		return nil, err
	}
	if env.Open, err = start(&noop.Authenticator{}, false); err != nil {
		return nil, err
	}

	return env, waitReady(env.Sequential, env.Parallel, env.Open)
}

// waitReady polls the health endpoint of each server.
func waitReady(bases ...string) error {
	deadline := time.Now().Add(5 * time.Second)
	for _, base := range bases {
		for {
			resp, err := http.Get(base + "/healthz")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					break
				}
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("server %s not healthy", base)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	return nil
}

// Teardown stops all servers and waits for them to exit.
func (env *TestEnvironment) Teardown() {
	env.cancel()
	for _, done := range env.done {
		<-done
	}
}

// Authenticated returns the base URLs of the servers that check tokens.
func (env *TestEnvironment) Authenticated() map[string]string {
	return map[string]string{
		"sequential": env.Sequential,
		"parallel":   env.Parallel,
	}
}

// --- HTTP helpers ---

// get sends a GET request with an optional Authorization header.
func get(t *testing.T, url, authorization string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(body)
}
