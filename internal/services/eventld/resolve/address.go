package resolve

import (
	"strings"

	"github.com/louisbranch/eventld/internal/services/eventld/domain"
)

// ParseMultilineAddress splits a street field written as
//
//	street
//	postal-code city
//	country
//
// Single-line input is returned as the street unchanged.
func ParseMultilineAddress(street string) domain.PostalAddress {
	if !strings.Contains(street, "\n") {
		return domain.PostalAddress{Street: strings.TrimSpace(street)}
	}
	var lines []string
	for _, line := range strings.Split(street, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	var parsed domain.PostalAddress
	if len(lines) > 0 {
		parsed.Street = lines[0]
	}
	if len(lines) > 1 {
		parts := strings.Fields(lines[1])
		if len(parts) >= 2 {
			parsed.PostalCode = parts[0]
			parsed.Locality = strings.Join(parts[1:], " ")
		} else {
			parsed.Locality = lines[1]
		}
	}
	if len(lines) > 2 {
		parsed.Country = lines[2]
	}
	return parsed
}

// mergeAddress fills blank explicit components from the parsed street.
func mergeAddress(explicit domain.PostalAddress) domain.PostalAddress {
	parsed := ParseMultilineAddress(explicit.Street)
	merged := domain.PostalAddress{
		Street:     parsed.Street,
		Locality:   strings.TrimSpace(explicit.Locality),
		Region:     strings.TrimSpace(explicit.Region),
		PostalCode: strings.TrimSpace(explicit.PostalCode),
		Country:    strings.TrimSpace(explicit.Country),
	}
	if merged.Locality == "" {
		merged.Locality = parsed.Locality
	}
	if merged.PostalCode == "" {
		merged.PostalCode = parsed.PostalCode
	}
	if merged.Country == "" {
		merged.Country = parsed.Country
	}
	return merged
}
