package cell

import (
	"fmt"
	"math"
)

// Band is the display tier of a cell's size.
type Band string

const (
	BandA Band = "A" // leader only
	BandB Band = "B" // 2-5
	BandC Band = "C" // 6-10
	BandD Band = "D" // 11-14
	BandE Band = "E" // exactly at quota
	BandF Band = "F" // over quota
)

// BandStyle is the fixed presentation of a band.
type BandStyle struct {
	Tier      string `json:"tier"`
	Message   string `json:"message"`
	Animation string `json:"animation"`
}

// styleFor renders the band's presentation for a cell of the given size.
func styleFor(b Band, size int) BandStyle {
	switch b {
	case BandA:
		return BandStyle{Tier: "blue", Message: "🎉 ¡El líder ha iniciado su grupo! 🎉", Animation: "gif1"}
	case BandB:
		return BandStyle{Tier: "light-blue", Message: fmt.Sprintf("🎉 ¡El grupo está creciendo con %d miembros! 🎉", size), Animation: "gif1"}
	case BandC:
		return BandStyle{Tier: "yellow", Message: fmt.Sprintf("🚀 ¡Vamos muy bien! Somos %d de %d. 🚀", size, Target), Animation: "gif2"}
	case BandD:
		return BandStyle{Tier: "purple", Message: fmt.Sprintf("😎 ¡Ya pasamos los 10! Somos %d de %d. 😎", size, Target), Animation: "gif3"}
	case BandE:
		return BandStyle{Tier: "green", Message: fmt.Sprintf("🏆 ¡Felicidades! Haz alcanzado el objetivo de %d afiliados. 🏆", Target), Animation: "gif5"}
	default:
		return BandStyle{Tier: "red", Message: fmt.Sprintf("🔥 ¡Woow! Haz superado el objetivo con %d afiliados! ¡Bien Hecho! 🔥", size), Animation: "fire"}
	}
}

// Progress is a cell's standing against the quota.
type Progress struct {
	Size   int     `json:"size"`
	Target int     `json:"target"`
	Ratio  float64 `json:"ratio"`
	// Percent is Ratio scaled to 0-100 and rounded to one decimal.
	Percent float64   `json:"percent"`
	Band    Band      `json:"band"`
	Style   BandStyle `json:"style"`
}

// BandFor maps a cell size onto its band.
func BandFor(size int) Band {
	switch {
	case size <= 1:
		return BandA
	case size <= 5:
		return BandB
	case size <= 10:
		return BandC
	case size < Target:
		return BandD
	case size == Target:
		return BandE
	default:
		return BandF
	}
}

// ProgressOf derives the progress of c. Ratio saturates at 1 once the cell
// reaches the quota.
func ProgressOf(c Cell) Progress {
	size := c.Size()
	ratio := math.Min(float64(size)/float64(Target), 1)
	band := BandFor(size)
	return Progress{
		Size:    size,
		Target:  Target,
		Ratio:   ratio,
		Percent: round1(ratio * 100),
		Band:    band,
		Style:   styleFor(band, size),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
