package main

import "testing"

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		pw string
		ok bool
	}{
		{"Abcdef12", true},
		{"Sup3rSecret", true},
		{"short1", false},
		{"alllowercase1", false},
		{"NOLOWERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
		{"12345678", false},
	}
	for _, tc := range cases {
		err := validatePassword(tc.pw)
		if tc.ok && err != nil {
			t.Errorf("validatePassword(%q) = %v, want nil", tc.pw, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("validatePassword(%q) accepted a weak password", tc.pw)
		}
	}
}

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	h1, err := hashPassword("Abcdef12")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	h2, err := hashPassword("Abcdef12")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical")
	}
	if !verifyPassword("Abcdef12", h1) || !verifyPassword("Abcdef12", h2) {
		t.Error("verifyPassword rejects a matching password")
	}
	if verifyPassword("Abcdef13", h1) {
		t.Error("verifyPassword accepts a wrong password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$zz$broken"} {
		if verifyPassword("Abcdef12", hash) {
			t.Errorf("verifyPassword accepted malformed hash %q", hash)
		}
	}
}
