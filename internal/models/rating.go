package models

// Rating is one of the five ordered age-appropriateness tiers.
type Rating string

const (
	Rating0  Rating = "0+"
	Rating6  Rating = "6+"
	Rating12 Rating = "12+"
	Rating16 Rating = "16+"
	Rating18 Rating = "18+"
)

// RatingOrder lists tiers from least to most restrictive. Comparisons
// use positions in this slice; "improved" means a strictly lower index.
var RatingOrder = []Rating{Rating0, Rating6, Rating12, Rating16, Rating18}

// Index returns the tier's position in RatingOrder, or -1 when unknown.
func (r Rating) Index() int {
	for i, tier := range RatingOrder {
		if tier == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a known tier.
func (r Rating) Valid() bool {
	return r.Index() >= 0
}

// StricterThan reports whether r is more restrictive than other.
func (r Rating) StricterThan(other Rating) bool {
	return r.Index() > other.Index()
}

// MaxRating returns the more restrictive of the two tiers.
func MaxRating(a, b Rating) Rating {
	if b.StricterThan(a) {
		return b
	}
	return a
}
