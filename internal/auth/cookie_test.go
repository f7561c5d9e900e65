package auth

import (
	"strings"
	"testing"
)

func TestSignSessionID_VerifyRoundTrip(t *testing.T) {
	value := SignSessionID("session-123", "secret")

	id, ok := VerifySessionCookie(value, "secret")
	if !ok {
		t.Fatal("expected signed value to verify")
	}
	if id != "session-123" {
		t.Errorf("id = %q, want session-123", id)
	}
}

func TestVerifySessionCookie_WrongSecret(t *testing.T) {
	value := SignSessionID("session-123", "secret")

	if _, ok := VerifySessionCookie(value, "other-secret"); ok {
		t.Error("signature made with a different secret should not verify")
	}
}

func TestVerifySessionCookie_TamperedID(t *testing.T) {
	value := SignSessionID("session-123", "secret")
	_, sig, _ := strings.Cut(value, ".")

	if _, ok := VerifySessionCookie("session-456."+sig, "secret"); ok {
		t.Error("signature should not survive an id swap")
	}
}

func TestVerifySessionCookie_MalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "no separator", value: "session-123"},
		{name: "empty id", value: ".deadbeef"},
		{name: "empty signature", value: "session-123."},
		{name: "garbage signature", value: "session-123.zzzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := VerifySessionCookie(tt.value, "secret"); ok {
				t.Errorf("VerifySessionCookie(%q) = true, want false", tt.value)
			}
		})
	}
}
