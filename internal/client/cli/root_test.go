package cli

import "testing"

func TestGetStatus_Empty(t *testing.T) {
	a := &App{}
	if got := a.getStatus(); got != "" {
		t.Fatalf("want empty status, got %q", got)
	}
}

func TestGetStatus_WithUsernameOnly(t *testing.T) {
	a := &App{authService: &fakeAuth{userName: "alice"}}
	want := "(alice )"
	if got := a.getStatus(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestGetStatus_UserAndMode(t *testing.T) {
	a := &App{authService: &fakeAuth{userName: "alice"}, Mode: ModeOnline}
	want := "(alice online)"
	if got := a.getStatus(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}
