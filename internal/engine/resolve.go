package engine

import (
	"sort"

	"civdraft/internal/catalog"
	"civdraft/internal/domain"
)

// Resolve tallies the submitted ballots and draws one winning option per
// category, with probability proportional to vote count. A category nobody
// voted on is omitted from the result. Each category uses a single
// independent draw; ties carry no special treatment beyond their weight.
//
// Resolve itself is not idempotent. The caller computes it once per session
// and caches the result on the session record; a cached result is never
// re-drawn.
func (e *Engine) Resolve(votes map[domain.ParticipantID]domain.Ballot, categories []catalog.Category) map[string]domain.CategoryResult {
	resolved := make(map[string]domain.CategoryResult)

	for _, cat := range categories {
		tally := make(map[string]int)
		for _, ballot := range votes {
			if choice, ok := ballot[cat.Name]; ok {
				tally[choice]++
			}
		}
		if len(tally) == 0 {
			continue
		}
		resolved[cat.Name] = domain.CategoryResult{
			Selected: e.weightedPick(tally),
			Tally:    tally,
		}
	}

	return resolved
}

// ResolveForced behaves like Resolve but never drops a category: one with no
// votes falls back to the catalog default with an empty tally. Used when the
// creator force-advances past an unfinished vote.
func (e *Engine) ResolveForced(votes map[domain.ParticipantID]domain.Ballot, categories []catalog.Category) map[string]domain.CategoryResult {
	resolved := e.Resolve(votes, categories)
	for _, cat := range categories {
		if _, ok := resolved[cat.Name]; !ok {
			resolved[cat.Name] = domain.CategoryResult{
				Selected: cat.Default(),
				Tally:    map[string]int{},
			}
		}
	}
	return resolved
}

// weightedPick draws one option with probability count/total. Options are
// walked in sorted order so a fixed seed reproduces the same outcome.
func (e *Engine) weightedPick(tally map[string]int) string {
	options := make([]string, 0, len(tally))
	total := 0
	for opt, count := range tally {
		options = append(options, opt)
		total += count
	}
	sort.Strings(options)

	n := e.intN(total)
	for _, opt := range options {
		n -= tally[opt]
		if n < 0 {
			return opt
		}
	}
	// Unreachable: the counts sum to total.
	return options[len(options)-1]
}
