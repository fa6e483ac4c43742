package skills

import "strings"

// Score is the vote a domain received from a keyword set.
type Score struct {
	Domain string `json:"domain"`
	Votes  int    `json:"votes"`
}

// Classify locks the keyword set onto exactly one domain.
//
// A domain receives one vote for every input keyword that is a
// case-insensitive substring of one of its keywords, or contains one.
// The highest vote wins, earlier domains win ties and a zero vote everywhere
// yields the fallback domain. Classify never fails.
func (c *Catalogue) Classify(keywords []string) string {
	if c == nil {
		return DefaultDomain
	}

	best, bestVotes := "", 0
	for _, s := range c.Scores(keywords) {
		if s.Votes > bestVotes {
			best, bestVotes = s.Domain, s.Votes
		}
	}

	if bestVotes == 0 {
		return c.fallback()
	}
	return best
}

// Scores returns the vote of every domain in catalogue order.
func (c *Catalogue) Scores(keywords []string) []Score {
	if c == nil {
		return nil
	}

	inputs := normalizeKeywords(keywords)
	scores := make([]Score, 0, len(c.Domains))
	for _, d := range c.Domains {
		votes := 0
		for _, in := range inputs {
			if matchesAny(in, d.Keywords) {
				votes++
			}
		}
		scores = append(scores, Score{Domain: d.Name, Votes: votes})
	}
	return scores
}

func (c *Catalogue) fallback() string {
	if c.Fallback != "" {
		return c.Fallback
	}
	return DefaultDomain
}

func matchesAny(input string, domainKeywords []string) bool {
	for _, k := range domainKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(k, input) || strings.Contains(input, k) {
			return true
		}
	}
	return false
}

// normalizeKeywords lowercases, trims and de-duplicates the input set.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
