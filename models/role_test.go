package models

import "testing"

func TestParseRoleName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected RoleName
		ok       bool
	}{
		{name: "student", input: "student", expected: RoleStudent, ok: true},
		{name: "teacher", input: "teacher", expected: RoleTeacher, ok: true},
		{name: "admin", input: "admin", expected: RoleAdmin, ok: true},
		{name: "unknown falls back to student", input: "superuser", expected: RoleStudent, ok: false},
		{name: "empty falls back to student", input: "", expected: RoleStudent, ok: false},
		{name: "case sensitive", input: "Admin", expected: RoleStudent, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRoleName(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseRoleName(%q) = (%v, %v), expected (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
