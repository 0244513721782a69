package noop

import (
	"context"
	"testing"

	"github.com/rhuss/vexgate/pkg/auth"
)

func TestAuthenticator(t *testing.T) {
	a := &Authenticator{}

	for _, header := range []string{"", "Bearer x", "Basic y"} {
		result := a.Authenticate(context.Background(), header)
		if result.Decision != auth.Yes {
			t.Errorf("Authenticate(%q) = %v, want yes", header, result.Decision)
		}
	}

	if !auth.IsOpen(a) {
		t.Error("noop authenticator should be open")
	}
}
