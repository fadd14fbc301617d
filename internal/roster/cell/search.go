package cell

import (
	"strings"

	"roster/internal/roster/models"
)

// Matches reports whether a person matches a search term: the lowercased
// "given family" name contains the lowercased term, or the DPI contains it.
// An empty term matches everyone.
func Matches(term, given, family, dpi string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	full := strings.ToLower(models.FullName(given, family))
	return strings.Contains(full, term) || strings.Contains(dpi, term)
}

// FilterAffiliates keeps the affiliates matching term.
func FilterAffiliates(affiliates []models.Affiliate, term string) []models.Affiliate {
	if strings.TrimSpace(term) == "" {
		return affiliates
	}
	out := make([]models.Affiliate, 0, len(affiliates))
	for _, a := range affiliates {
		if Matches(term, a.GivenNames, a.FamilyNames, a.DPI.String()) {
			out = append(out, a)
		}
	}
	return out
}

// FilterProfiles keeps the profiles matching term.
func FilterProfiles(profiles []models.Profile, term string) []models.Profile {
	if strings.TrimSpace(term) == "" {
		return profiles
	}
	out := make([]models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if Matches(term, p.GivenNames, p.FamilyNames, p.DPI.String()) {
			out = append(out, p)
		}
	}
	return out
}
