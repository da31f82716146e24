package enums

import "testing"

func TestParseStaffRole(t *testing.T) {
	role, err := ParseStaffRole("manager")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if role != StaffRoleManager || !role.IsValid() {
		t.Fatalf("unexpected role %q", role)
	}
	if _, err := ParseStaffRole("admin"); err == nil {
		t.Fatal("expected unknown role error")
	}
	if StaffRole("").IsValid() {
		t.Fatal("empty role must be invalid")
	}
}
