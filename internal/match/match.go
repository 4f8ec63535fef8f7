// Package match contains the two candidate-ranking engines.
//
// The attribute engine is deterministic: pass/fail set-overlap against the
// requester's stored attributes, with optional filters. The semantic engine
// ranks the full opposite-role pool with a free-text description via an
// external AI oracle. Both are transport-agnostic and depend only on the
// read-only directory (plus the oracle for semantic matching).
package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Activit123/job-matching-platform/internal/directory"
)

// Filter narrows attribute-engine results. Both fields are optional.
type Filter struct {
	// Location keeps only candidates whose location contains this text,
	// case-insensitively. Applied on the student path (filtering employers).
	Location string

	// Skill keeps only candidates whose attribute set contains exactly this
	// value, case-sensitively. Applied on the employer path (filtering
	// students). The asymmetry with Location is inherited behaviour and is
	// preserved on purpose.
	Skill string
}

// Result is one ranked entry produced by the semantic engine.
// It is transient per request and never persisted.
type Result struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Score        float64 `json:"score"`
	KeyHighlight string  `json:"key_highlight"`
}

// Directory is the read-only data source both engines consume.
type Directory interface {
	GetProfile(ctx context.Context, userID string) (*directory.Profile, error)
	ListCandidates(ctx context.Context, role directory.Role) ([]directory.Candidate, error)
}

// ContentGenerator is the single-shot text-completion call against the
// ranking oracle. The response is raw text expected to contain a JSON array;
// nothing is validated oracle-side.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Service hosts both engines behind one dependency set.
type Service struct {
	dir           Directory
	generator     ContentGenerator
	oracleTimeout time.Duration
}

// NewService returns a Service. oracleTimeout bounds each semantic-match
// oracle call; zero or negative values fall back to 20 seconds.
func NewService(dir Directory, generator ContentGenerator, oracleTimeout time.Duration) *Service {
	if oracleTimeout <= 0 {
		oracleTimeout = 20 * time.Second
	}
	return &Service{dir: dir, generator: generator, oracleTimeout: oracleTimeout}
}

// FindStandardMatches runs the deterministic attribute engine for the given
// requester. Students are matched against employers whose requirements
// overlap their skills; employers against students whose skills overlap
// their requirements. Candidates come back in directory order — this engine
// computes no score.
func (s *Service) FindStandardMatches(ctx context.Context, requesterID string, f Filter) ([]directory.Candidate, error) {
	profile, err := s.dir.GetProfile(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	pool, err := s.dir.ListCandidates(ctx, profile.Role.Opposite())
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	own := profile.Attributes()
	matches := make([]directory.Candidate, 0)
	for _, cand := range pool {
		if !intersects(own, cand.Attributes) {
			continue
		}
		if profile.Role == directory.RoleStudent {
			if f.Location != "" && !containsFold(cand.Location, f.Location) {
				continue
			}
		} else {
			if f.Skill != "" && !containsExact(cand.Attributes, f.Skill) {
				continue
			}
		}
		matches = append(matches, cand)
	}
	return matches, nil
}

// intersects reports whether a and b share at least one element. Comparison
// is exact: same semantics as a PostgreSQL text[] overlap.
func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// containsFold reports whether haystack contains needle, ignoring case.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// containsExact reports whether values contains exactly v (case-sensitive).
func containsExact(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
