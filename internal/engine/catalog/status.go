package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the interoperability tier of a feature.
type Tier string

const (
	TierWide    Tier = "wide"
	TierLimited Tier = "limited"
	TierNone    Tier = "none"
)

const dateLayout = "2006-01-02"

// SupportStatus is a normalized support status. WideSince is only set for
// TierWide, LimitedSince for TierWide and TierLimited.
type SupportStatus struct {
	Tier         Tier              `json:"tier"`
	WideSince    string            `json:"wide_since,omitempty"`
	LimitedSince string            `json:"limited_since,omitempty"`
	Support      map[string]string `json:"support,omitempty"`
}

// NoneStatus is the status used when a feature carries no status at all.
func NoneStatus() SupportStatus {
	return SupportStatus{Tier: TierNone}
}

// Declaration is a status as published by a catalog source, before it is
// checked against the catalog's computation time.
type Declaration struct {
	// Baseline is "high", "low" or empty (not baseline).
	Baseline string
	LowDate  string
	HighDate string
	Support  map[string]string
}

// Normalize derives the tier from the declaration. A declared tier is only
// kept when the dates backing it are present and not after asOf.
func (d Declaration) Normalize(asOf time.Time) SupportStatus {
	status := SupportStatus{Tier: TierNone, Support: cloneSupport(d.Support)}

	low, lowOK := parseStatusDate(d.LowDate, asOf)
	high, highOK := parseStatusDate(d.HighDate, asOf)

	switch strings.ToLower(strings.TrimSpace(d.Baseline)) {
	case "high":
		if lowOK && highOK {
			status.Tier = TierWide
			status.LimitedSince = low
			status.WideSince = high
			return status
		}
		if lowOK {
			status.Tier = TierLimited
			status.LimitedSince = low
		}
	case "low":
		if lowOK {
			status.Tier = TierLimited
			status.LimitedSince = low
		}
	}
	return status
}

func (d Declaration) clone() Declaration {
	d.Support = cloneSupport(d.Support)
	return d
}

// parseStatusDate accepts YYYY-MM-DD with an optional "≤" (or "<=") prefix and
// reports whether the date is valid and not after asOf.
func parseStatusDate(raw string, asOf time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "≤")
	raw = strings.TrimPrefix(raw, "<=")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	ts, err := time.Parse(dateLayout, raw)
	if err != nil {
		return "", false
	}
	if !asOf.IsZero() && ts.After(asOf) {
		return "", false
	}
	return ts.Format(dateLayout), true
}

// baselineValue converts the polymorphic baseline field ("high", "low", false).
func baselineValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case bool:
		if val {
			return "", fmt.Errorf("baseline must be \"high\", \"low\" or false, got true")
		}
		return "", nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "high", "low":
			return strings.ToLower(strings.TrimSpace(val)), nil
		case "", "false":
			return "", nil
		}
		return "", fmt.Errorf("baseline must be \"high\", \"low\" or false, got %q", val)
	default:
		return "", fmt.Errorf("baseline has unsupported type %T", v)
	}
}

func cloneSupport(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
