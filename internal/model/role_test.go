package model

import "testing"

func TestParseRole(t *testing.T) {
	for _, want := range []Role{RoleClient, RoleEmployee, RoleAdmin} {
		got, err := ParseRole(string(want))
		if err != nil {
			t.Fatalf("parse %q: %v", want, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %q", want, got)
		}
	}
	for _, bad := range []string{"", "client", "ADMIN", "Owner"} {
		if _, err := ParseRole(bad); err == nil {
			t.Fatalf("parse %q: expected error", bad)
		}
	}
}

func TestRoleHierarchy(t *testing.T) {
	cases := []struct {
		have, need Role
		want       bool
	}{
		{RoleClient, RoleClient, true},
		{RoleClient, RoleEmployee, false},
		{RoleClient, RoleAdmin, false},
		{RoleEmployee, RoleClient, true},
		{RoleEmployee, RoleEmployee, true},
		{RoleEmployee, RoleAdmin, false},
		{RoleAdmin, RoleClient, true},
		{RoleAdmin, RoleEmployee, true},
		{RoleAdmin, RoleAdmin, true},
	}
	for _, tc := range cases {
		if got := tc.have.AtLeast(tc.need); got != tc.want {
			t.Fatalf("%s.AtLeast(%s) = %v, want %v", tc.have, tc.need, got, tc.want)
		}
	}
	// An unknown role never clears a gate, not even the lowest one.
	if Role("Visitor").AtLeast(RoleClient) {
		t.Fatalf("unknown role passed a role gate")
	}
}
