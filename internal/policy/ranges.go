package policy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// RejectedRange is a carrier entry that could not be parsed.
type RejectedRange struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// ParseChannelRanges parses carrier entries in order. Malformed entries are
// returned as rejected and never affect their siblings. Blank entries are ignored.
//
// Accepted forms: "N", "N-M", "0xA-0xB" followed by optional ":attr=value,..."
// where attr is one of type, always_on, emergency or name.
func ParseChannelRanges(entries []string) ([]models.ChannelRange, []RejectedRange) {
	ranges := make([]models.ChannelRange, 0, len(entries))
	rejected := make([]RejectedRange, 0)
	for _, entry := range entries {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		r, err := ParseChannelRange(trimmed)
		if err != nil {
			rejected = append(rejected, RejectedRange{Entry: entry, Reason: err.Error()})
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, rejected
}

// ParseChannelRange parses one carrier entry.
func ParseChannelRange(entry string) (models.ChannelRange, error) {
	idPart, attrPart, hasAttrs := strings.Cut(strings.TrimSpace(entry), ":")
	start, end, err := parseIDs(idPart)
	if err != nil {
		return models.ChannelRange{}, err
	}

	r := models.ChannelRange{
		StartID:   start,
		EndID:     end,
		ToneType:  models.ToneCMASDefault,
		Emergency: true,
		Source:    SourceCarrier,
	}
	if !hasAttrs {
		return r, nil
	}
	for _, attr := range strings.Split(attrPart, ",") {
		key, value, ok := strings.Cut(attr, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !ok || key == "" {
			return models.ChannelRange{}, fmt.Errorf("malformed attribute %q", attr)
		}
		switch key {
		case "type":
			tone, ok := models.ParseToneType(value)
			if !ok {
				return models.ChannelRange{}, fmt.Errorf("unknown tone type %q", value)
			}
			r.ToneType = tone
		case "always_on":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return models.ChannelRange{}, fmt.Errorf("always_on: %w", err)
			}
			r.AlwaysOn = b
		case "emergency":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return models.ChannelRange{}, fmt.Errorf("emergency: %w", err)
			}
			r.Emergency = b
		case "name":
			r.Name = value
		default:
			return models.ChannelRange{}, fmt.Errorf("unknown attribute %q", key)
		}
	}
	return r, nil
}

func parseIDs(raw string) (int, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, fmt.Errorf("missing channel id")
	}
	startRaw, endRaw, isRange := strings.Cut(raw, "-")
	start, err := parseID(startRaw)
	if err != nil {
		return 0, 0, err
	}
	end := start
	if isRange {
		if end, err = parseID(endRaw); err != nil {
			return 0, 0, err
		}
	}
	if start > end {
		return 0, 0, fmt.Errorf("range start %d greater than end %d", start, end)
	}
	return start, end, nil
}

func parseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	base := 10
	digits := raw
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		base = 16
		digits = raw[2:]
	}
	v, err := strconv.ParseInt(digits, base, 32)
	if err != nil || digits == "" {
		return 0, fmt.Errorf("invalid channel id %q", raw)
	}
	if v < 0 || v > models.MaxChannelID {
		return 0, fmt.Errorf("channel id %q out of range", raw)
	}
	return int(v), nil
}

// FormatChannelRange renders a range back into carrier entry syntax.
func FormatChannelRange(r models.ChannelRange) string {
	var b strings.Builder
	if r.StartID == r.EndID {
		b.WriteString(strconv.Itoa(r.StartID))
	} else {
		fmt.Fprintf(&b, "0x%04X-0x%04X", r.StartID, r.EndID)
	}
	fmt.Fprintf(&b, ":type=%s", r.ToneType)
	if r.AlwaysOn {
		b.WriteString(",always_on=true")
	}
	if !r.Emergency {
		b.WriteString(",emergency=false")
	}
	if r.Name != "" {
		b.WriteString(",name=" + r.Name)
	}
	return b.String()
}
