package directory_test

import (
	"testing"

	"github.com/Activit123/job-matching-platform/internal/directory"
)

func TestParseRole_ValidValues(t *testing.T) {
	for _, s := range []string{"student", "employer"} {
		got, err := directory.ParseRole(s)
		if err != nil {
			t.Errorf("ParseRole(%q) unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseRole(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseRole_InvalidValues(t *testing.T) {
	for _, s := range []string{"", "admin", "STUDENT", " student"} {
		if _, err := directory.ParseRole(s); err == nil {
			t.Errorf("ParseRole(%q) expected error, got nil", s)
		}
	}
}

func TestRoleOpposite(t *testing.T) {
	if directory.RoleStudent.Opposite() != directory.RoleEmployer {
		t.Error("student should be matched against employers")
	}
	if directory.RoleEmployer.Opposite() != directory.RoleStudent {
		t.Error("employer should be matched against students")
	}
}

func TestProfileAttributes_ByRole(t *testing.T) {
	p := &directory.Profile{
		Role:         directory.RoleStudent,
		Skills:       []string{"Go"},
		Requirements: []string{"ignored"},
	}
	if got := p.Attributes(); len(got) != 1 || got[0] != "Go" {
		t.Errorf("student Attributes() = %v, want [Go]", got)
	}

	p.Role = directory.RoleEmployer
	if got := p.Attributes(); len(got) != 1 || got[0] != "ignored" {
		t.Errorf("employer Attributes() = %v, want [ignored]", got)
	}
}
