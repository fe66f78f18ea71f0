package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/propledger/propledger/pkg/period"
)

// DefaultFYStartMonth is July, the Australian financial year.
const DefaultFYStartMonth = 7

// PropertyConfig is the operator-supplied description of one property. The
// reference address and postcode drive document address matching; the
// purchase figures feed the workbook summary.
type PropertyConfig struct {
	Name            string  `json:"name"`
	Tab             string  `json:"tab,omitempty"`
	Address         string  `json:"address"`
	Postcode        string  `json:"postcode,omitempty"`
	PurchasePrice   float64 `json:"purchase_price,omitempty"`
	CurrentValue    float64 `json:"current_value,omitempty"`
	MortgageBalance float64 `json:"mortgage_balance,omitempty"`
}

// Property pairs a configuration with its accumulated ledger.
type Property struct {
	Config PropertyConfig `json:"config"`
	Data   *Ledger        `json:"data"`
}

// Session is the full persisted state: every property, its ledger, and the
// financial-year settings. Period keys serialize as "YYYY-MM" strings and
// round-trip losslessly.
type Session struct {
	FYStartMonth int                  `json:"fy_start_month"`
	Properties   map[string]*Property `json:"properties"`

	restored bool
}

func NewSession() *Session {
	return &Session{
		FYStartMonth: DefaultFYStartMonth,
		Properties:   make(map[string]*Property),
	}
}

// Property returns the named property, creating it with an empty ledger on
// first reference.
func (s *Session) Property(id string) *Property {
	if p, ok := s.Properties[id]; ok {
		if p.Data == nil {
			p.Data = New()
		}
		return p
	}
	p := &Property{Data: New()}
	s.Properties[id] = p
	return p
}

// Mode returns the merge mode this session's ledgers require: restored
// sessions diff-and-log, everything else accumulates.
func (s *Session) Mode() Mode {
	if s.restored {
		return ModeRestored
	}
	return ModeFresh
}

// FYLabel names the financial year a period falls in, e.g. "FY2024-25" for
// May 2025 with a July year start.
func (s *Session) FYLabel(p period.Period) string {
	start := s.FYStartMonth
	if start < 1 || start > 12 {
		start = DefaultFYStartMonth
	}
	if start == 1 {
		return fmt.Sprintf("FY%d", p.Year)
	}
	startYear := p.Year
	if p.Month < start {
		startYear--
	}
	return fmt.Sprintf("FY%d-%02d", startYear, (startYear+1)%100)
}

// Load reads a previously saved session. The returned session is marked
// restored, so later merges diff against the stored amounts.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}

	s := NewSession()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if s.FYStartMonth < 1 || s.FYStartMonth > 12 {
		s.FYStartMonth = DefaultFYStartMonth
	}
	if s.Properties == nil {
		s.Properties = make(map[string]*Property)
	}
	for _, p := range s.Properties {
		if p.Data == nil {
			p.Data = New()
		}
	}
	s.restored = true
	return s, nil
}

// Save writes the session atomically.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
