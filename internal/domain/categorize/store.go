package categorize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LearnedRule is one minted keyword rule as persisted in the rule file.
type LearnedRule struct {
	ID        uuid.UUID `json:"id"`
	Keyword   string    `json:"keyword"`
	Section   string    `json:"section"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// RuleStore persists learned rules. Injected into the classifier so tests can
// substitute an in-memory store.
type RuleStore interface {
	Rules() []Rule
	Add(keyword, section, category string) (added bool, err error)
}

// FileRuleStore is the append-only JSON file implementation, with an optional
// best-effort HTTP mirror that never blocks or fails a learn event.
type FileRuleStore struct {
	path      string
	mirrorURL string
	logger    *slog.Logger
	client    *http.Client

	mu    sync.Mutex
	rules []LearnedRule
	index map[string]struct{}
}

// NewFileRuleStore loads the rule file at path. A missing file is an empty
// store; a malformed one is an error. Entries violating the keyword or
// category invariants are skipped with a warning rather than poisoning the
// engine.
func NewFileRuleStore(path, mirrorURL string, logger *slog.Logger) (*FileRuleStore, error) {
	s := &FileRuleStore{
		path:      path,
		mirrorURL: mirrorURL,
		logger:    logger,
		client:    &http.Client{Timeout: 10 * time.Second},
		index:     make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}

	var loaded []LearnedRule
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}

	for _, rule := range loaded {
		if reason := validateRule(rule.Keyword, rule.Category); reason != "" {
			logger.Warn("skipping invalid learned rule",
				slog.String("keyword", rule.Keyword),
				slog.String("reason", reason))
			continue
		}
		if _, dup := s.index[rule.Keyword]; dup {
			continue
		}
		rule.Section = SectionFor(rule.Category)
		s.rules = append(s.rules, rule)
		s.index[rule.Keyword] = struct{}{}
	}
	return s, nil
}

func validateRule(keyword, category string) string {
	if keyword != strings.ToLower(keyword) {
		return "keyword not lowercase"
	}
	if len(strings.TrimSpace(keyword)) < 3 {
		return "keyword too short"
	}
	if !ValidCategory(category) {
		return "unknown category"
	}
	if category == CatMiscellaneous {
		return "miscellaneous is not learnable"
	}
	return ""
}

// Rules returns the learned rules in engine form.
func (s *FileRuleStore) Rules() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Rule, len(s.rules))
	for i, lr := range s.rules {
		out[i] = Rule{Keyword: lr.Keyword, Section: lr.Section, Category: lr.Category, Learned: true}
	}
	return out
}

// Add appends a rule and rewrites the file. Duplicates by keyword are ignored
// and report added=false. The mirror upload runs on its own goroutine; mirror
// failures are logged and otherwise invisible.
func (s *FileRuleStore) Add(keyword, section, category string) (bool, error) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if reason := validateRule(keyword, category); reason != "" {
		return false, fmt.Errorf("invalid rule %q: %s", keyword, reason)
	}
	// The canonical section always wins over what the caller supplied.
	section = SectionFor(category)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.index[keyword]; dup {
		return false, nil
	}

	rule := LearnedRule{
		ID:        uuid.New(),
		Keyword:   keyword,
		Section:   section,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	s.rules = append(s.rules, rule)
	s.index[keyword] = struct{}{}

	data, err := json.MarshalIndent(s.rules, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode rule file: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return false, err
	}

	if s.mirrorURL != "" {
		go s.mirror(data)
	}
	return true, nil
}

func (s *FileRuleStore) mirror(data []byte) {
	req, err := http.NewRequest(http.MethodPut, s.mirrorURL, bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("rule mirror request build failed", slog.Any("error", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("rule mirror upload failed", slog.Any("error", err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		s.logger.Warn("rule mirror rejected upload", slog.Int("status", resp.StatusCode))
	}
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// cannot truncate the rule file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create rule dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rules-*.json")
	if err != nil {
		return fmt.Errorf("create temp rule file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write rule file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close rule file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replace rule file: %w", err)
	}
	return nil
}
