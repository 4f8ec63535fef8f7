// Package directory exposes read-only projections of the users table for the
// match engines. It never writes and never selects credential columns.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Role discriminates the two mutually exclusive account types.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
)

// ParseRole converts a raw string to a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleStudent, RoleEmployer:
		return r, nil
	}
	return "", fmt.Errorf("unknown user role %q", s)
}

// Opposite returns the role a user is matched against: students are matched
// with employers and vice versa.
func (r Role) Opposite() Role {
	if r == RoleStudent {
		return RoleEmployer
	}
	return RoleStudent
}

// Profile is the requester-side view: who is asking, and with which
// attribute set. Skills are meaningful for students, Requirements for
// employers; the unused set is empty.
type Profile struct {
	ID           string
	Name         string
	Role         Role
	Location     string
	Skills       []string
	Requirements []string
}

// Attributes returns the attribute set relevant for the profile's role.
func (p *Profile) Attributes() []string {
	if p.Role == RoleStudent {
		return p.Skills
	}
	return p.Requirements
}

// Candidate is the public projection sent to match engines and, for semantic
// matching, embedded verbatim into the oracle prompt. It deliberately carries
// no email or credential fields.
type Candidate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	Attributes []string `json:"attributes"` // skills (students) or requirements (employers)
}

// ErrNotFound is returned when the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Store reads user projections from PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetProfile loads the requester's own profile by ID.
func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var (
		p       Profile
		roleStr string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, user_type, COALESCE(location, ''),
		        COALESCE(skills, '{}'), COALESCE(requirements, '{}')
		 FROM users
		 WHERE id = $1`,
		userID,
	).Scan(&p.ID, &p.Name, &roleStr, &p.Location, &p.Skills, &p.Requirements)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getProfile query: %w", err)
	}

	role, err := ParseRole(roleStr)
	if err != nil {
		return nil, fmt.Errorf("getProfile: %w", err)
	}
	p.Role = role
	return &p, nil
}

// ListCandidates returns the public projection of every user with the given
// role, in stable database order. The attribute column selected depends on
// the role: skills for students, requirements for employers.
func (s *Store) ListCandidates(ctx context.Context, role Role) ([]Candidate, error) {
	attrColumn := "requirements"
	if role == RoleStudent {
		attrColumn = "skills"
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(location, ''), COALESCE(`+attrColumn+`, '{}')
		 FROM users
		 WHERE user_type = $1
		 ORDER BY id`,
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("listCandidates query: %w", err)
	}
	defer rows.Close()

	candidates := make([]Candidate, 0)
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Attributes); err != nil {
			return nil, fmt.Errorf("listCandidates scan: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
