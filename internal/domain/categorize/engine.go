package categorize

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Engine matches transaction descriptions against the combined learned and
// static keyword tables in a single Aho-Corasick pass. Longer keywords beat
// shorter ones so "carpet clean" wins over "carpet" and "garden maintenance"
// wins over "maintenance"; on equal length a learned rule beats a static one.
type Engine struct {
	matcher *ahocorasick.Matcher
	rules   []Rule
	mu      sync.RWMutex
}

// NewEngine builds an engine over the static table plus the given learned
// rules.
func NewEngine(learned []Rule) *Engine {
	e := &Engine{}
	e.Build(learned)
	return e
}

// Build reconstructs the matcher. Called again whenever the delegated
// classifier mints a new learned rule.
func (e *Engine) Build(learned []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	combined := make([]Rule, 0, len(learned)+len(staticRules))
	combined = append(combined, learned...)
	combined = append(combined, staticRules...)

	// The matcher reports a single index per unique pattern, so keyword
	// collisions must be resolved before it is built. Learned rules are
	// appended first and keep the slot when a static keyword collides.
	rules := make([]Rule, 0, len(combined))
	seen := make(map[string]struct{}, len(combined))
	for _, rule := range combined {
		kw := strings.ToLower(rule.Keyword)
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		rules = append(rules, rule)
	}

	patterns := make([][]byte, len(rules))
	for i, rule := range rules {
		patterns[i] = []byte(strings.ToLower(rule.Keyword))
	}

	e.rules = rules
	e.matcher = ahocorasick.NewMatcher(patterns)
}

// Match returns the winning rule for a description, or false when no keyword
// is contained in it.
func (e *Engine) Match(description string) (Rule, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.matcher == nil {
		return Rule{}, false
	}

	hits := e.matcher.Match([]byte(strings.ToLower(description)))
	if len(hits) == 0 {
		return Rule{}, false
	}

	var best Rule
	found := false
	for _, idx := range hits {
		if idx < 0 || idx >= len(e.rules) {
			continue
		}
		rule := e.rules[idx]
		if !found || better(rule, best) {
			best = rule
			found = true
		}
	}
	return best, found
}

func better(a, b Rule) bool {
	if len(a.Keyword) != len(b.Keyword) {
		return len(a.Keyword) > len(b.Keyword)
	}
	return a.Learned && !b.Learned
}

// MatchInvoice classifies whole-document invoice text against the ordered
// keyword groups. The first group with any keyword present wins, which is why
// Council Rates outranks Maintenance: a rates notice mentioning "gutter
// cleaning charges" must still be rates.
func MatchInvoice(text string) (section, category string, ok bool) {
	lower := strings.ToLower(text)
	for _, rule := range invoiceRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.section, rule.category, true
			}
		}
	}
	return "", "", false
}
