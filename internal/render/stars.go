package render

import (
	"fmt"
	"math"
	"strings"
)

const (
	FullStar  = "★"
	HalfStar  = "★"
	EmptyStar = "☆"

	maxStars = 5
)

// StarRating is the glyph rendering of a 0-5 rating.
type StarRating struct {
	Full   int    `json:"full"`
	Half   bool   `json:"half"`
	Empty  int    `json:"empty"`
	Glyphs string `json:"glyphs"`
	Label  string `json:"label"`
}

// String joins the glyphs and the numeric label, e.g. "★★★★☆(3.7)".
func (s StarRating) String() string {
	return s.Glyphs + s.Label
}

// Stars renders floor(r) full stars, one half star when the fraction is at least .5,
// and 5-ceil(r) empty stars. A nil rating renders as 0.
func Stars(rating *float64) StarRating {
	r := 0.0
	if rating != nil {
		r = math.Max(0, math.Min(maxStars, *rating))
	}

	s := StarRating{
		Full:  int(math.Floor(r)),
		Half:  math.Mod(r, 1) >= 0.5,
		Empty: maxStars - int(math.Ceil(r)),
		Label: fmt.Sprintf("(%.1f)", r),
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(FullStar, s.Full))
	if s.Half {
		b.WriteString(HalfStar)
	}
	b.WriteString(strings.Repeat(EmptyStar, s.Empty))
	s.Glyphs = b.String()
	return s
}
