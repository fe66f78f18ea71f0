package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/propledger/propledger/pkg/money"
)

// LayoutCache persists per-layout regex patterns learned from delegated
// extraction, keyed by a fingerprint of the document's header lines. Once a
// layout has been seen, later statements in the same format are extracted
// locally and the delegated call is skipped.
//
// Patterns arrive from an external service and are never trusted as-is: a
// pattern is stored only if it compiles and reproduces the delegated value on
// the very document it was learned from.
type LayoutCache struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	patterns map[string]map[string]string
	compiled map[string]map[string]*regexp.Regexp
}

// NewLayoutCache loads the pattern file at path. Missing file means an empty
// cache. Entries that no longer compile are dropped with a warning.
func NewLayoutCache(path string, logger *slog.Logger) (*LayoutCache, error) {
	c := &LayoutCache{
		path:     path,
		logger:   logger,
		patterns: make(map[string]map[string]string),
		compiled: make(map[string]map[string]*regexp.Regexp),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read layout patterns %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &c.patterns); err != nil {
		return nil, fmt.Errorf("parse layout patterns %s: %w", path, err)
	}

	for fp, fields := range c.patterns {
		for field, pat := range fields {
			re, err := compileFieldPattern(pat)
			if err != nil {
				logger.Warn("dropping cached layout pattern",
					slog.String("fingerprint", fp),
					slog.String("field", field),
					slog.Any("error", err))
				delete(fields, field)
				continue
			}
			if c.compiled[fp] == nil {
				c.compiled[fp] = make(map[string]*regexp.Regexp)
			}
			c.compiled[fp][field] = re
		}
	}
	return c, nil
}

// compileFieldPattern validates an externally supplied pattern: it must
// compile under RE2 and carry exactly one capture group for the amount.
func compileFieldPattern(pat string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pat) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	re, err := regexp.Compile("(?i)" + pat)
	if err != nil {
		return nil, err
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("pattern must have exactly one capture group, has %d", re.NumSubexp())
	}
	return re, nil
}

// Fingerprint identifies a document layout by its first header lines with
// digits and amount punctuation removed, so the same software's statements
// for different months and amounts collapse to one key.
func Fingerprint(text string) string {
	var header []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ToLower(line))
		if line == "" {
			continue
		}
		header = append(header, stripAmounts(line))
		if len(header) == 3 {
			break
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(header, "\n")))
	return hex.EncodeToString(sum[:8])
}

// stripAmounts drops digits along with the thousands and decimal separators,
// so "$900.00" and "$1,250.00" reduce to the same "$".
func stripAmounts(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Apply runs the cached patterns for a fingerprint over text and returns the
// parsed field amounts. An unknown fingerprint returns an empty map.
func (c *LayoutCache) Apply(fingerprint, text string) map[string]float64 {
	c.mu.RLock()
	fields := c.compiled[fingerprint]
	c.mu.RUnlock()

	out := make(map[string]float64)
	for field, re := range fields {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := money.ParseAmount(m[1]); ok && v > 0 {
			out[field] = v
		}
	}
	return out
}

// Learn stores the patterns a delegated extraction returned for this layout.
// Each pattern must compile and must re-extract the value the delegated call
// reported for this same document; anything else is rejected per field.
func (c *LayoutCache) Learn(fingerprint, text string, candidates map[string]string, want map[string]float64) {
	accepted := make(map[string]*regexp.Regexp)
	kept := make(map[string]string)

	for field, pat := range candidates {
		expect, ok := want[field]
		if !ok || expect <= 0 {
			continue
		}
		re, err := compileFieldPattern(pat)
		if err != nil {
			c.logger.Warn("rejecting delegated layout pattern",
				slog.String("field", field), slog.Any("error", err))
			continue
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		got, ok := money.ParseAmount(m[1])
		if !ok || !money.Equalish(got, expect) {
			c.logger.Warn("delegated layout pattern does not reproduce its value",
				slog.String("field", field))
			continue
		}
		accepted[field] = re
		kept[field] = pat
	}
	if len(accepted) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.patterns[fingerprint] == nil {
		c.patterns[fingerprint] = make(map[string]string)
		c.compiled[fingerprint] = make(map[string]*regexp.Regexp)
	}
	for field, re := range accepted {
		c.patterns[fingerprint][field] = kept[field]
		c.compiled[fingerprint][field] = re
	}

	if err := c.save(); err != nil {
		c.logger.Warn("failed to persist layout patterns", slog.Any("error", err))
	}
}

func (c *LayoutCache) save() error {
	data, err := json.MarshalIndent(c.patterns, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
