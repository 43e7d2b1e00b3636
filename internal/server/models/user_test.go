package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUser_JSONHidesPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: "1", UserName: "alice", PasswordHash: "$2a$10$secret"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password") {
		t.Fatalf("password hash leaked: %s", b)
	}
}

func TestUserPatch_ApplyAndEmpty(t *testing.T) {
	if !(UserPatch{}).Empty() {
		t.Fatal("zero patch must be empty")
	}

	email := "new@example.com"
	inactive := false
	p := UserPatch{Email: &email, Active: &inactive}
	if p.Empty() {
		t.Fatal("patch with fields must not be empty")
	}

	orig := User{ID: "1", UserName: "alice", Email: "old@example.com", Active: true}
	got := p.Apply(orig)
	if got.Email != email || got.Active {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.ID != orig.ID || got.UserName != orig.UserName {
		t.Fatalf("immutable fields changed: %+v", got)
	}
	if orig.Email != "old@example.com" {
		t.Fatal("Apply must not mutate the receiver's input")
	}
}
