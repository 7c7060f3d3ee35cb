package schedule

import (
	"sort"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// Placement is the visual position computed for one entry: its column and
// the number of columns its overlap cluster occupies.
type Placement struct {
	Column       int
	TotalColumns int
}

// Layout packs temporally overlapping entries into non-overlapping columns
// (greedy interval coloring). Entries sharing a column never overlap in time.
// The assignment depends only on the entries' ids and windows, not on input
// order, so re-rendering the same set always yields the same picture.
func Layout(entries []*model.ScheduleEntry) map[int64]Placement {
	if len(entries) == 0 {
		return map[int64]Placement{}
	}

	sorted := append([]*model.ScheduleEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		// Longer sessions first, so short overlapping ones nest consistently
		if !a.EndTime.Equal(b.EndTime) {
			return a.EndTime.After(b.EndTime)
		}
		return a.ID < b.ID
	})

	columns := make(map[int64]int, len(sorted))
	for i, e := range sorted {
		used := make(map[int]bool)
		for _, prev := range sorted[:i] {
			if prev.Overlaps(e) {
				used[columns[prev.ID]] = true
			}
		}
		col := 0
		for used[col] {
			col++
		}
		columns[e.ID] = col
	}

	out := make(map[int64]Placement, len(sorted))
	for _, e := range sorted {
		maxCol := columns[e.ID]
		for _, other := range sorted {
			if other.ID != e.ID && other.Overlaps(e) && columns[other.ID] > maxCol {
				maxCol = columns[other.ID]
			}
		}
		out[e.ID] = Placement{Column: columns[e.ID], TotalColumns: maxCol + 1}
	}
	return out
}
