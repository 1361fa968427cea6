package policy

import (
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// Identifier is everything the table needs to pick a rule for a broadcast.
type Identifier struct {
	ServiceCategory int
	Format          models.MessageFormat
	Etws            *models.EtwsInfo
	Cmas            *models.CmasInfo
}

// Rule is the base alerting behaviour selected for an identifier.
type Rule struct {
	ToneType     models.ToneType
	Emergency    bool
	AlwaysOn     bool
	ForceVibrate bool
	Name         string
	Source       string
	Range        *models.ChannelRange
}

// IsDefault reports the fallback rule.
func (r Rule) IsDefault() bool {
	return r.Source == SourceDefault
}

// Table resolves identifiers against built-in rules, then carrier ranges in order.
// Safe for concurrent use; Apply swaps the carrier list atomically.
type Table struct {
	mu     sync.RWMutex
	ranges []models.ChannelRange
	logger *zap.Logger
}

// NewTable builds a table from carrier entries, logging and skipping malformed ones.
func NewTable(entries []string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{logger: logger}
	t.Apply(entries)
	return t
}

// Apply replaces the carrier ranges and returns what was accepted and rejected.
func (t *Table) Apply(entries []string) ([]models.ChannelRange, []RejectedRange) {
	ranges, rejected := ParseChannelRanges(entries)
	for _, r := range rejected {
		t.logger.Warn("skipping malformed channel range", zap.String("entry", r.Entry), zap.String("reason", r.Reason))
	}

	t.mu.Lock()
	t.ranges = ranges
	t.mu.Unlock()

	t.logger.Info("channel ranges applied", zap.Int("accepted", len(ranges)), zap.Int("rejected", len(rejected)))
	return cloneRanges(ranges), rejected
}

// Ranges returns a copy of the active carrier ranges.
func (t *Table) Ranges() []models.ChannelRange {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneRanges(t.ranges)
}

// Lookup returns the rule for id. Built-in rules win, then the first matching
// carrier range, then the default rule.
func (t *Table) Lookup(id Identifier) Rule {
	if rule, ok := builtinRule(id); ok {
		return rule
	}
	if r, ok := t.match(id.ServiceCategory); ok {
		return Rule{
			ToneType:  r.ToneType,
			Emergency: r.Emergency,
			AlwaysOn:  r.AlwaysOn,
			Name:      r.Name,
			Source:    SourceCarrier,
			Range:     &r,
		}
	}
	return Rule{ToneType: models.ToneNone, Source: SourceDefault}
}

func (t *Table) match(id int) (models.ChannelRange, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.ranges {
		if r.Contains(id) {
			return r, true
		}
	}
	return models.ChannelRange{}, false
}

func builtinRule(id Identifier) (Rule, bool) {
	etws, cmas := id.Etws, id.Cmas
	if etws == nil && cmas == nil {
		etws, cmas = BuiltinInfo(id.Format, id.ServiceCategory)
	}
	switch {
	case etws != nil:
		return etwsRule(etws.WarningType), true
	case cmas != nil:
		return cmasRule(cmas.MessageClass), true
	}
	if id.Format != models.MessageFormat3GPP2 {
		return channelRule(id.ServiceCategory)
	}
	return Rule{}, false
}

func cloneRanges(in []models.ChannelRange) []models.ChannelRange {
	out := make([]models.ChannelRange, len(in))
	copy(out, in)
	return out
}
