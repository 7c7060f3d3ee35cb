package schedule

import (
	"sort"
	"time"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// WeekStart normalizes t to the Monday 00:00 of its week (ISO-style week
// start; for a Sunday that is six days back).
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	daysSinceMonday := int(day.Weekday()) - 1
	if day.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}

	return day.AddDate(0, 0, -daysSinceMonday)
}

// WeekEnd returns the exclusive end of the week starting at weekStart
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 7)
}

// dayOffset maps a weekday to its lane in a Monday-based week:
// Monday 0 .. Saturday 5, Sunday 6.
func dayOffset(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// Project instantiates every recurring template onto the week containing
// weekStart. Output entries are fresh values with absolute timestamps;
// templates are never mutated. Precondition: template weekdays are in 0..6
// (guaranteed by entry validation at create/update time).
func Project(templates []*model.ScheduleEntry, weekStart time.Time) []*model.ScheduleEntry {
	ws := WeekStart(weekStart)

	out := make([]*model.ScheduleEntry, 0, len(templates))
	for _, tpl := range templates {
		if !tpl.IsRecurring() {
			continue
		}
		out = append(out, instantiate(tpl, ws))
	}
	return out
}

// instantiate builds the concrete occurrence of a template for the given week
func instantiate(tpl *model.ScheduleEntry, weekStart time.Time) *model.ScheduleEntry {
	day := weekStart.AddDate(0, 0, dayOffset(tpl.Weekly.Weekday))

	start := time.Date(day.Year(), day.Month(), day.Day(),
		tpl.Weekly.Start.Hour, tpl.Weekly.Start.Minute, 0, 0, weekStart.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(),
		tpl.Weekly.End.Hour, tpl.Weekly.End.Minute, 0, 0, weekStart.Location())

	// A session crossing midnight ends on the next day
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	inst := *tpl
	inst.TeacherIDs = append([]int64(nil), tpl.TeacherIDs...)
	inst.StudentIDs = append([]int64(nil), tpl.StudentIDs...)
	if tpl.Capacity != nil {
		capacity := *tpl.Capacity
		inst.Capacity = &capacity
	}
	templateID := tpl.ID
	inst.TemplateID = &templateID
	inst.StartTime = start
	inst.EndTime = end
	inst.WorkLogID = nil

	return &inst
}

// BuildWeek assembles the full concrete view of one week: projected template
// occurrences plus persisted one-off entries overlapping the week, with work
// log links re-attached. logs should cover at least the week's window.
func BuildWeek(templates, oneOffs []*model.ScheduleEntry, logs []*model.WorkLog, weekStart time.Time) []*model.ScheduleEntry {
	ws := WeekStart(weekStart)
	we := WeekEnd(ws)

	entries := Project(templates, ws)
	for _, e := range oneOffs {
		if e.IsRecurring() {
			continue
		}
		if e.StartTime.Before(we) && e.EndTime.After(ws) {
			copied := *e
			copied.TeacherIDs = append([]int64(nil), e.TeacherIDs...)
			copied.StudentIDs = append([]int64(nil), e.StudentIDs...)
			entries = append(entries, &copied)
		}
	}

	attachWorkLogs(entries, logs)
	sortEntries(entries)
	return entries
}

func sortEntries(entries []*model.ScheduleEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].StartTime.Equal(entries[j].StartTime) {
			return entries[i].StartTime.Before(entries[j].StartTime)
		}
		return entries[i].ID < entries[j].ID
	})
}

// attachWorkLogs restores the entry -> work log back-references. A log links
// a one-off entry directly by id; for a projected occurrence the link holds
// when the log points at the occurrence's template and checked in inside the
// occurrence's window.
func attachWorkLogs(entries []*model.ScheduleEntry, logs []*model.WorkLog) {
	for _, e := range entries {
		for _, l := range logs {
			if l.EntryID == nil {
				continue
			}
			if e.TemplateID != nil {
				if *l.EntryID == *e.TemplateID && e.Contains(l.CheckIn) {
					logID := l.ID
					e.WorkLogID = &logID
					break
				}
				continue
			}
			if *l.EntryID == e.ID {
				logID := l.ID
				e.WorkLogID = &logID
				break
			}
		}
	}
}
