// Package profile persists leader profiles.
package profile

import (
	"sort"
	"strings"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
)

// Filter narrows List.
type Filter struct {
	RoleID *id.RoleID
}

func sortProfiles(ps []models.Profile) {
	sort.SliceStable(ps, func(i, j int) bool {
		fi, fj := strings.ToLower(ps[i].FamilyNames), strings.ToLower(ps[j].FamilyNames)
		if fi != fj {
			return fi < fj
		}
		return strings.ToLower(ps[i].GivenNames) < strings.ToLower(ps[j].GivenNames)
	})
}
