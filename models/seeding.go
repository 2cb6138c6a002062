package models

// SeedMethod: способ распределения пар по группам.
type SeedMethod string

const (
	SeedArrival        SeedMethod = "arrival"
	SeedRatingBalanced SeedMethod = "rating_balanced"
	SeedRatingMixed    SeedMethod = "rating_mixed"
	SeedManual         SeedMethod = "manual"
)

func (m SeedMethod) Valid() bool {
	switch m {
	case SeedArrival, SeedRatingBalanced, SeedRatingMixed, SeedManual:
		return true
	}
	return false
}
