package main

import "testing"

func TestValidCSRF(t *testing.T) {
	s := Session{CSRFToken: "expected-token"}
	cases := []struct {
		name      string
		submitted string
		want      bool
	}{
		{"match", "expected-token", true},
		{"mismatch", "other-token", false},
		{"empty", "", false},
		{"prefix", "expected", false},
	}
	for _, tc := range cases {
		if got := validCSRF(s, tc.submitted); got != tc.want {
			t.Errorf("%s: validCSRF = %v, want %v", tc.name, got, tc.want)
		}
	}
	if validCSRF(Session{}, "") {
		t.Error("empty-vs-empty must not validate")
	}
}

func TestRandomTokenUnguessable(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := randomToken()
		if err != nil {
			t.Fatalf("randomToken: %v", err)
		}
		if len(tok) != 43 { // 32 bytes, raw URL base64
			t.Fatalf("token length = %d, want 43", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate token generated")
		}
		seen[tok] = true
	}
}
