package cell

import (
	"time"

	"roster/internal/roster/models"
)

// Age returns the whole years elapsed between birth and today. The age
// increments on the birthday itself.
func Age(birth, today time.Time) int {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Bucket counts affiliates of an age band by sex.
type Bucket struct {
	Men     int     `json:"men"`
	Women   int     `json:"women"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Statistics summarizes affiliates by age band and sex.
//
// Men and Women sum the age bands only, so people under 18 count toward Total
// but not toward either sex. Percentages are shares of Total.
type Statistics struct {
	Total  int    `json:"total"`
	Men    int    `json:"men"`
	Women  int    `json:"women"`
	Young  Bucket `json:"young"`  // 18-30
	Adult  Bucket `json:"adult"`  // 31-60
	Senior Bucket `json:"senior"` // 61+
}

// Summarize computes Statistics as of today.
func Summarize(affiliates []models.Affiliate, today time.Time) Statistics {
	var s Statistics
	s.Total = len(affiliates)
	for _, a := range affiliates {
		var b *Bucket
		switch age := Age(a.BirthDate, today); {
		case age >= 18 && age <= 30:
			b = &s.Young
		case age >= 31 && age <= 60:
			b = &s.Adult
		case age >= 61:
			b = &s.Senior
		default:
			continue
		}
		b.Total++
		if a.Sex == models.SexMale {
			b.Men++
		} else if a.Sex == models.SexFemale {
			b.Women++
		}
	}

	for _, b := range []*Bucket{&s.Young, &s.Adult, &s.Senior} {
		s.Men += b.Men
		s.Women += b.Women
		if s.Total > 0 {
			b.Percent = round1(float64(b.Total) / float64(s.Total) * 100)
		}
	}
	return s
}
