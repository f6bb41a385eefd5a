package coverage

import "strings"

// Matcher answers whether an address postcode falls inside the service area.
// Matching is a prefix check against configured coverage areas, so both
// outward codes ("N1") and full postcodes ("N1 6XE") resolve correctly.
type Matcher struct {
	areas []string
}

// NewMatcher normalizes the configured area prefixes once up front.
func NewMatcher(areas []string) *Matcher {
	normalized := make([]string, 0, len(areas))
	for _, area := range areas {
		area = strings.ToUpper(strings.TrimSpace(area))
		if area == "" {
			continue
		}
		normalized = append(normalized, area)
	}
	return &Matcher{areas: normalized}
}

// Areas returns the normalized coverage prefixes.
func (m *Matcher) Areas() []string {
	out := make([]string, len(m.areas))
	copy(out, m.areas)
	return out
}

// IsCovered reports whether the postcode starts with any coverage prefix.
// Both the raw upper-cased form and a whitespace-stripped variant are
// checked. Empty or malformed input simply fails to match.
func (m *Matcher) IsCovered(postcode string) bool {
	raw := strings.ToUpper(strings.TrimSpace(postcode))
	if raw == "" {
		return false
	}
	stripped := strings.ReplaceAll(raw, " ", "")

	for _, area := range m.areas {
		if strings.HasPrefix(stripped, area) || strings.HasPrefix(raw, area) {
			return true
		}
	}
	return false
}
