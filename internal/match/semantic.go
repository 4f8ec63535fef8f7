package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	_ "embed"

	"github.com/Activit123/job-matching-platform/internal/directory"
)

// ErrOracleUnavailable is the single user-facing failure mode of the
// semantic engine: network errors, non-JSON output and structural violations
// all collapse into it. Partial results are never returned.
var ErrOracleUnavailable = errors.New("the AI matching service is currently unavailable")

//go:embed prompt.md
var promptTemplate string

// FindAIMatches ranks the full opposite-role candidate pool against a
// free-text description via one oracle call.
//
// Oracle entries whose id does not resolve to a loaded candidate, or whose
// score is missing or non-numeric, are dropped rather than surfaced as
// placeholder rows. The surviving entries are stably sorted by score
// descending, so ties keep the oracle's relative order.
func (s *Service) FindAIMatches(ctx context.Context, requesterRole directory.Role, description string) ([]Result, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &ValidationError{Msg: "a search description is required for AI matching"}
	}

	candidateRole := requesterRole.Opposite()
	pool, err := s.dir.ListCandidates(ctx, candidateRole)
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	// Nothing to rank — skip the oracle round-trip entirely.
	if len(pool) == 0 {
		return []Result{}, nil
	}

	prompt := buildPrompt(description, candidateRole, pool)

	oracleCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()

	raw, err := s.generator.GenerateContent(oracleCtx, prompt)
	if err != nil {
		slog.Warn("ranking oracle call failed", "err", err)
		return nil, ErrOracleUnavailable
	}

	entries, err := parseOracleResponse(raw)
	if err != nil {
		slog.Warn("ranking oracle returned malformed output", "err", err)
		return nil, ErrOracleUnavailable
	}

	byID := make(map[string]directory.Candidate, len(pool))
	for _, c := range pool {
		byID[c.ID] = c
	}

	results := make([]Result, 0, len(entries))
	for _, e := range entries {
		cand, known := byID[e.id]
		if !known {
			slog.Debug("dropping oracle entry with unknown candidate id", "id", e.id)
			continue
		}
		if math.IsNaN(e.score) {
			slog.Debug("dropping oracle entry with non-numeric score", "id", e.id)
			continue
		}
		results = append(results, Result{
			ID:           cand.ID,
			Name:         cand.Name,
			Location:     cand.Location,
			Score:        e.score,
			KeyHighlight: e.justification,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// buildPrompt renders the embedded template with the description and one
// line per candidate. Only public projection fields are embedded.
func buildPrompt(description string, candidateRole directory.Role, pool []directory.Candidate) string {
	var lines strings.Builder
	for i, c := range pool {
		if i > 0 {
			lines.WriteString("\n")
		}
		fmt.Fprintf(&lines, "Candidate(id: %s, name: '%s', location: '%s', details: [%s])",
			c.ID, c.Name, c.Location, strings.Join(c.Attributes, ", "))
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{DESCRIPTION}}", description)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_TYPE}}", string(candidateRole))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES}}", lines.String())
	return prompt
}

// oracleEntry is one parsed element of the oracle's JSON array after type
// coercion. score is NaN when the oracle supplied nothing numeric.
type oracleEntry struct {
	id            string
	score         float64
	justification string
}

// parseOracleResponse strips markdown code fences the oracle sometimes adds
// despite instructions, then decodes the JSON array. Field types are coerced
// leniently (the oracle may emit a numeric id or a string score); anything
// beyond that is a structural violation that fails the whole call.
func parseOracleResponse(raw string) ([]oracleEntry, error) {
	cleaned := stripCodeFences(raw)

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}

	entries := make([]oracleEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, oracleEntry{
			id:            coerceID(item["id"]),
			score:         coerceScore(item["score"]),
			justification: coerceText(item["justification"]),
		})
	}
	return entries, nil
}

// stripCodeFences removes leading/trailing ``` markers (with or without a
// language tag) from the oracle output.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(cleaned)
}

func coerceID(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func coerceScore(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceText(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
