package classify

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// result is the memoized outcome of classifying one title.
type result struct {
	site string
	ok   bool
}

// Classifier maps a window title to zero or one tracked site.
//
// Matching is case-insensitive substring containment. Window titles rarely
// carry the full domain, so a domain also matches by its bare name with a
// trailing ".com" removed: "YouTube - Some Video" matches youtube.com. This
// is deliberately permissive. When several configured domains match one
// title, the longest domain wins; equal lengths tie-break lexicographically
// so the outcome never depends on map iteration order.
type Classifier struct {
	domains []string   // longest first, then lexicographic
	needles [][]string // per domain: folded forms that count as a hit
	cache   *lru.Cache[string, result]
}

// New builds a Classifier for the given site domains. cacheSize bounds the
// memoization cache for repeated titles; zero or negative disables it.
func New(domains []string, cacheSize int) (*Classifier, error) {
	c := &Classifier{
		domains: append([]string(nil), domains...),
	}
	sort.Slice(c.domains, func(i, j int) bool {
		if len(c.domains[i]) != len(c.domains[j]) {
			return len(c.domains[i]) > len(c.domains[j])
		}
		return c.domains[i] < c.domains[j]
	})

	c.needles = make([][]string, len(c.domains))
	for i, domain := range c.domains {
		folded := strings.ToLower(domain)
		needles := []string{folded}
		if bare := strings.TrimSuffix(folded, ".com"); bare != folded && bare != "" {
			needles = append(needles, bare)
		}
		c.needles[i] = needles
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create title cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Match returns the tracked site the window title belongs to, if any.
func (c *Classifier) Match(title string) (string, bool) {
	if title == "" {
		return "", false
	}
	folded := strings.ToLower(title)

	if c.cache != nil {
		if r, ok := c.cache.Get(folded); ok {
			return r.site, r.ok
		}
	}

	r := c.classify(folded)
	if c.cache != nil {
		c.cache.Add(folded, r)
	}
	return r.site, r.ok
}

// classify scans domains longest first, so the first hit is the winner.
func (c *Classifier) classify(foldedTitle string) result {
	for i, needles := range c.needles {
		for _, needle := range needles {
			if strings.Contains(foldedTitle, needle) {
				return result{site: c.domains[i], ok: true}
			}
		}
	}
	return result{}
}

// Domains returns the configured domains in match priority order.
func (c *Classifier) Domains() []string {
	return append([]string(nil), c.domains...)
}
