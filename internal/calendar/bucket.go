package calendar

import (
	"slices"
	"time"
)

// WeekIndex returns how many business weeks separate the week containing t
// from the week containing anchor. The anchor's week is 0 and earlier weeks
// are negative. t is read in anchor's location.
func WeekIndex(anchor, t time.Time) int {
	from := WeekStart(anchor)
	to := WeekStart(t.In(anchor.Location()))

	// Calendar days, not elapsed hours, so DST shifts cannot skew the count.
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	days := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).
		Sub(time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)).Hours() / 24

	return int(days) / daysPerWeek
}

// WeekBuckets groups items by their WeekIndex relative to an anchor date.
type WeekBuckets[T any] struct {
	anchor  time.Time
	buckets map[int][]T
}

// BucketByWeek assigns every item to the business week its timestamp falls
// in, counted from the anchor's week. Item order is kept inside a bucket.
func BucketByWeek[T any](anchor time.Time, items []T, at func(T) time.Time) WeekBuckets[T] {
	buckets := make(map[int][]T)
	for _, item := range items {
		idx := WeekIndex(anchor, at(item))
		buckets[idx] = append(buckets[idx], item)
	}
	return WeekBuckets[T]{anchor: anchor, buckets: buckets}
}

// Week returns the items that fell in week idx.
func (b WeekBuckets[T]) Week(idx int) []T {
	return b.buckets[idx]
}

// Range returns the Monday–Sunday bounds of week idx.
func (b WeekBuckets[T]) Range(idx int) WeekRange {
	return ActiveWeekRange(addDays(WeekStart(b.anchor), idx*daysPerWeek))
}

// Indexes returns the non-empty week indexes in ascending order.
func (b WeekBuckets[T]) Indexes() []int {
	idx := make([]int, 0, len(b.buckets))
	for i := range b.buckets {
		idx = append(idx, i)
	}
	slices.Sort(idx)
	return idx
}

// Before returns every item whose week index is lower than idx, oldest week first.
func (b WeekBuckets[T]) Before(idx int) []T {
	var out []T
	for _, i := range b.Indexes() {
		if i >= idx {
			break
		}
		out = append(out, b.buckets[i]...)
	}
	return out
}
