package validation

import "testing"

func TestRequired(t *testing.T) {
	v := Violations{}
	Required("username", "  ", v)
	Required("email", "a@b.c", v)
	if _, ok := v["username"]; !ok {
		t.Error("expected violation for blank username")
	}
	if _, ok := v["email"]; ok {
		t.Error("unexpected violation for filled email")
	}
}

func TestLength(t *testing.T) {
	v := Violations{}
	Length("username", "a", 2, 20, v)
	if _, ok := v["username"]; !ok {
		t.Error("expected violation for too-short username")
	}

	v = Violations{}
	Length("username", "alice", 2, 20, v)
	if !v.Empty() {
		t.Errorf("unexpected violations: %v", v)
	}

	// Blank values are Required's concern, not Length's.
	v = Violations{}
	Length("username", "", 2, 20, v)
	if !v.Empty() {
		t.Errorf("blank value should not trip Length: %v", v)
	}
}

func TestEmail(t *testing.T) {
	v := Violations{}
	Email("email", "not-an-email", v)
	if _, ok := v["email"]; !ok {
		t.Error("expected violation for malformed email")
	}

	v = Violations{}
	Email("email", "alice@example.com", v)
	if !v.Empty() {
		t.Errorf("unexpected violations: %v", v)
	}
}

func TestEqualTo(t *testing.T) {
	v := Violations{}
	EqualTo("confirm_password", "secret", "secrets", "password", v)
	if _, ok := v["confirm_password"]; !ok {
		t.Error("expected violation for mismatched confirmation")
	}
}
