package registry

import (
	"sort"
	"strings"

	"github.com/alpemreelmas/hop-cli/internal/model"
)

// Candidate is a ranked fuzzy match. Lower Score is better.
type Candidate struct {
	Entry   model.ServerEntry
	Matched string
	Score   int
}

const (
	scorePrefix    = 0
	scoreSubstring = 10
	scoreDistance  = 20
)

// Suggest returns up to limit entries that loosely match query, best first.
// It never changes what Resolve returns; callers use it for hints and for
// asking the user to pick explicitly.
func (r *Registry) Suggest(query string, limit int) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit == 0 {
		return nil
	}

	var out []Candidate
	for i, e := range r.entries {
		best, matched, ok := -1, "", false
		for _, label := range []string{e.Name, e.Alias} {
			if label == "" {
				continue
			}
			s, hit := score(q, strings.ToLower(label))
			if hit && (!ok || s < best) {
				best, matched, ok = s, label, true
			}
		}
		if ok {
			// ties fall back to insertion order
			out = append(out, Candidate{Entry: r.entries[i], Matched: matched, Score: best})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(query, label string) (int, bool) {
	switch {
	case strings.HasPrefix(label, query):
		return scorePrefix + len(label) - len(query), true
	case strings.Contains(label, query):
		return scoreSubstring + strings.Index(label, query), true
	}
	d := levenshtein(query, label)
	if d <= maxDistance(query) {
		return scoreDistance + d, true
	}
	return 0, false
}

// Short queries get less slack so "db" does not match every two-letter name.
func maxDistance(query string) int {
	switch n := len([]rune(query)); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
