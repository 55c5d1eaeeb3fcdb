package insights

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/simbi/simbi-seller/internal/commerce"
)

// MaxSelectedYears bounds how many years a comparison may carry.
const MaxSelectedYears = 4

var (
	// ErrNoYears is returned when a comparison has nothing to compare.
	ErrNoYears = errors.New("insights: no years selected")
	// ErrTooManyYears is returned when the selection exceeds the limit.
	ErrTooManyYears = errors.New("insights: too many years selected")
	// ErrDuplicateYear is returned when a year is selected twice.
	ErrDuplicateYear = errors.New("insights: duplicate year")
	// ErrInvalidMonth is returned for months outside 1..12.
	ErrInvalidMonth = errors.New("insights: month must be between 1 and 12")
)

// AvailableYears lists the distinct order years in loc, newest first.
// Orders with unparseable timestamps are ignored.
func AvailableYears(orders []commerce.Order, loc *time.Location) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, o := range orders {
		ts, ok := commerce.ParseTimestamp(o.CreatedAt, loc)
		if !ok {
			continue
		}
		if _, dup := seen[ts.Year()]; dup {
			continue
		}
		seen[ts.Year()] = struct{}{}
		years = append(years, ts.Year())
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// DefaultSelection picks up to limit of the most recent available years.
// available must already be sorted newest first.
func DefaultSelection(available []int, limit int) []int {
	if limit <= 0 || limit > MaxSelectedYears {
		limit = MaxSelectedYears
	}
	n := min(limit, len(available))
	return append([]int(nil), available[:n]...)
}

// ValidateSelection checks a user supplied year list against limit.
func ValidateSelection(years []int, limit int) error {
	if limit <= 0 || limit > MaxSelectedYears {
		limit = MaxSelectedYears
	}
	if len(years) == 0 {
		return ErrNoYears
	}
	if len(years) > limit {
		return fmt.Errorf("%w: %d > %d", ErrTooManyYears, len(years), limit)
	}
	seen := make(map[int]struct{}, len(years))
	for _, y := range years {
		if _, ok := seen[y]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateYear, y)
		}
		seen[y] = struct{}{}
	}
	return nil
}
