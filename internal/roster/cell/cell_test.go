package cell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/internal/roster/models"
	id "roster/pkg/domain"
)

func leader(given, family string) models.Profile {
	return models.Profile{ID: id.NewUserID(), GivenNames: given, FamilyNames: family}
}

func affiliateOf(leaderID *id.UserID, given, family, dpi string) models.Affiliate {
	return models.Affiliate{
		ID:          id.NewAffiliateID(),
		GivenNames:  given,
		FamilyNames: family,
		DPI:         id.DPI(dpi),
		LeaderID:    leaderID,
	}
}

func affiliates(leaderID *id.UserID, n int) []models.Affiliate {
	out := make([]models.Affiliate, n)
	for i := range out {
		out[i] = affiliateOf(leaderID, "A", "B", "")
	}
	return out
}

func TestGroupByLeader(t *testing.T) {
	ana := leader("Ana", "Garcia")
	luis := leader("Luis", "Perez")
	ghost := id.NewUserID()

	flat := []models.Affiliate{
		affiliateOf(&ana.ID, "Maria", "Lopez", "1"),
		affiliateOf(nil, "Sin", "Lider", "2"),
		affiliateOf(&ghost, "Perdido", "Ref", "3"),
		affiliateOf(&ana.ID, "Jose", "Ruiz", "4"),
	}

	cells := GroupByLeader(flat, []models.Profile{ana, luis})

	t.Run("one cell per leader in order then unassigned", func(t *testing.T) {
		require.Len(t, cells, 3)
		assert.Equal(t, ana.ID, cells[0].Leader.ID)
		assert.Equal(t, luis.ID, cells[1].Leader.ID)
		assert.True(t, cells[2].Unassigned())
	})

	t.Run("dangling references land in unassigned", func(t *testing.T) {
		assert.Len(t, cells[0].Affiliates, 2)
		assert.Empty(t, cells[1].Affiliates)
		assert.Len(t, cells[2].Affiliates, 2)
	})

	t.Run("every affiliate appears exactly once", func(t *testing.T) {
		total := 0
		seen := map[id.AffiliateID]int{}
		for _, c := range cells {
			total += len(c.Affiliates)
			for _, a := range c.Affiliates {
				seen[a.ID]++
			}
		}
		assert.Equal(t, len(flat), total)
		for _, n := range seen {
			assert.Equal(t, 1, n)
		}
	})

	t.Run("no unassigned bucket when everyone has a leader", func(t *testing.T) {
		cells := GroupByLeader(affiliates(&luis.ID, 3), []models.Profile{ana, luis})
		require.Len(t, cells, 2)
		assert.Empty(t, cells[0].Affiliates)
		assert.Len(t, cells[1].Affiliates, 3)
	})
}

func TestCanDeleteLeader(t *testing.T) {
	ana := leader("Ana", "Garcia")

	assert.True(t, CanDeleteLeader(Cell{Leader: &ana}))
	assert.False(t, CanDeleteLeader(Cell{Leader: &ana, Affiliates: affiliates(&ana.ID, 3)}))
	assert.False(t, CanDeleteLeader(Cell{}), "the unassigned bucket has no leader to delete")
}

func TestProgressBands(t *testing.T) {
	ana := leader("Ana", "Garcia")
	tests := []struct {
		affiliates int
		size       int
		band       Band
		tier       string
		ratio      float64
	}{
		{0, 1, BandA, "blue", 1.0 / 15},
		{1, 2, BandB, "light-blue", 2.0 / 15},
		{4, 5, BandB, "light-blue", 5.0 / 15},
		{5, 6, BandC, "yellow", 6.0 / 15},
		{9, 10, BandC, "yellow", 10.0 / 15},
		{10, 11, BandD, "purple", 11.0 / 15},
		{13, 14, BandD, "purple", 14.0 / 15},
		{14, 15, BandE, "green", 1},
		{15, 16, BandF, "red", 1},
		{30, 31, BandF, "red", 1},
	}
	for _, tt := range tests {
		p := ProgressOf(Cell{Leader: &ana, Affiliates: affiliates(&ana.ID, tt.affiliates)})
		assert.Equal(t, tt.size, p.Size, "size for %d affiliates", tt.affiliates)
		assert.Equal(t, tt.band, p.Band, "band for size %d", tt.size)
		assert.Equal(t, tt.tier, p.Style.Tier, "tier for size %d", tt.size)
		assert.InDelta(t, tt.ratio, p.Ratio, 1e-9, "ratio for size %d", tt.size)
		assert.Equal(t, Target, p.Target)
		assert.NotEmpty(t, p.Style.Message)
	}

	full := ProgressOf(Cell{Leader: &ana, Affiliates: affiliates(&ana.ID, 14)})
	assert.Equal(t, 100.0, full.Percent)
	assert.Contains(t, full.Style.Message, "15")
}

func TestMatches(t *testing.T) {
	ana := leader("Ana", "Garcia")
	flat := []models.Affiliate{
		affiliateOf(&ana.ID, "Maria", "Garcia Lopez", "1111111111111"),
		affiliateOf(&ana.ID, "Jose", "Ruiz", "2222222222222"),
	}

	got := FilterAffiliates(flat, "garcia")
	require.Len(t, got, 1)
	assert.Equal(t, "Garcia Lopez", got[0].FamilyNames)

	assert.Len(t, FilterAffiliates(flat, "  "), 2)
	assert.Len(t, FilterAffiliates(flat, "22222"), 1)
	assert.True(t, Matches("MARIA GAR", "Maria", "Garcia", ""))
	assert.False(t, Matches("pedro", "Maria", "Garcia", "1"))

	profiles := FilterProfiles([]models.Profile{ana, leader("Luis", "Perez")}, "perez")
	require.Len(t, profiles, 1)
	assert.Equal(t, "Luis", profiles[0].GivenNames)
}

func TestAge(t *testing.T) {
	birth := time.Date(1990, time.May, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 36, Age(birth, time.Date(2026, time.May, 20, 8, 0, 0, 0, time.UTC)), "on the birthday")
	assert.Equal(t, 35, Age(birth, time.Date(2026, time.May, 19, 23, 0, 0, 0, time.UTC)), "the day before")
	assert.Equal(t, 0, Age(birth, birth))

	leap := time.Date(2004, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 21, Age(leap, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 22, Age(leap, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSummarize(t *testing.T) {
	today := time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)
	born := func(years int, sex models.Sex) models.Affiliate {
		return models.Affiliate{BirthDate: today.AddDate(-years, 0, 0), Sex: sex}
	}

	flat := []models.Affiliate{
		born(17, models.SexMale),
		born(18, models.SexMale),
		born(30, models.SexFemale),
		born(31, models.SexFemale),
		born(60, models.SexMale),
		born(61, models.SexFemale),
		born(90, models.SexMale),
		born(25, models.SexFemale),
	}

	s := Summarize(flat, today)
	assert.Equal(t, 8, s.Total)
	assert.Equal(t, Bucket{Men: 1, Women: 2, Total: 3, Percent: 37.5}, s.Young)
	assert.Equal(t, Bucket{Men: 1, Women: 1, Total: 2, Percent: 25}, s.Adult)
	assert.Equal(t, Bucket{Men: 1, Women: 1, Total: 2, Percent: 25}, s.Senior)
	assert.Equal(t, 3, s.Men, "the minor is not counted by sex")
	assert.Equal(t, 4, s.Women)

	empty := Summarize(nil, today)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Young.Percent)
}
