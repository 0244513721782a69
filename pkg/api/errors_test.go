package api

import (
	"errors"
	"testing"
)

func TestKindMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		msg  string
	}{
		{KindOK, "ok", ""},
		{KindMissingToken, "missing_token", "missing token"},
		{KindInvalidToken, "invalid_token", "invalid token"},
		{KindInvalidProjectID, "invalid_project_id", "invalid project id"},
		{KindUnauthorized, "unauthorized", "unauthorized"},
		{KindNotFound, "not_found", "not found"},
		{KindInternalError, "internal_error", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.kind.Message(); got != tt.msg {
				t.Errorf("Message() = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestKindUnknown(t *testing.T) {
	if got := Kind(42).String(); got != "kind(42)" {
		t.Errorf("String() = %q, want %q", got, "kind(42)")
	}
	if !Kind(42).Rejected() {
		t.Error("unknown kind should count as rejected")
	}
}

func TestOutcomeConstructors(t *testing.T) {
	ok := OK(`{"flag":true}`)
	if ok.Kind != KindOK || ok.Body != `{"flag":true}` {
		t.Errorf("OK() = %+v", ok)
	}

	rej := Reject(KindNotFound)
	if rej.Body != "not found" {
		t.Errorf("Reject(KindNotFound).Body = %q, want %q", rej.Body, "not found")
	}

	cause := errors.New("connection refused")
	internal := Internal(cause)
	if internal.Kind != KindInternalError {
		t.Errorf("Internal().Kind = %v, want internal_error", internal.Kind)
	}
	if internal.Body != "internal error" {
		t.Errorf("Internal().Body = %q, cause must not leak", internal.Body)
	}
	if !errors.Is(internal.Err, cause) {
		t.Error("Internal().Err should carry the cause")
	}

	annotated := rej.WithAccount("acct-1")
	if annotated.AccountID != "acct-1" || rej.AccountID != "" {
		t.Error("WithAccount should return an annotated copy")
	}
}

func TestRequestProjectID(t *testing.T) {
	tests := []struct {
		path  string
		want  string
		valid bool
	}{
		{"/0f8fad5b-d9cb-469f-a165-70867728950e", "0f8fad5b-d9cb-469f-a165-70867728950e", true},
		{"/short", "short", false},
		{"/", "", false},
		{"", "", false},
		{"/0f8fad5b-d9cb-469f-a165-70867728950e/extra", "0f8fad5b-d9cb-469f-a165-70867728950e/extra", false},
		// Length only: 36 arbitrary characters pass.
		{"/" + "abcdefghijklmnopqrstuvwxyz0123456789", "abcdefghijklmnopqrstuvwxyz0123456789", true},
	}

	for _, tt := range tests {
		req := Request{Path: tt.path}
		got := req.ProjectID()
		if got != tt.want {
			t.Errorf("ProjectID(%q) = %q, want %q", tt.path, got, tt.want)
		}
		if ValidProjectID(got) != tt.valid {
			t.Errorf("ValidProjectID(%q) = %v, want %v", got, !tt.valid, tt.valid)
		}
	}
}
