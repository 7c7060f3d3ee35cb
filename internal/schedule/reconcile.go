package schedule

import (
	"time"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// DefaultUnplannedDuration is the provisional length of an entry created from
// a check-in with no matching planned session. Check-out replaces it with the
// actual worked span.
const DefaultUnplannedDuration = time.Hour

// CheckInPlan describes the mutations a check-in requires: always one new
// open log, plus either a link to an existing planned occurrence or one new
// unplanned entry — never both.
type CheckInPlan struct {
	Log *model.WorkLog
	// LinkEntryID is the schedule entry row the log links to (template row of
	// the matched occurrence); zero when a new entry is created instead.
	LinkEntryID int64
	// LinkWindowStart/End carry the matched occurrence's concrete window so
	// the store can assert the occurrence is still unclaimed.
	LinkWindowStart time.Time
	LinkWindowEnd   time.Time
	// Entry is the new unplanned entry to insert; nil when linking.
	Entry *model.ScheduleEntry
}

// PlanCheckIn reconciles a check-in at t against the week's concrete entries.
// A second check-in while a log is open is rejected. weekEntries must be the
// BuildWeek output for the week containing t.
func PlanCheckIn(teacherID int64, t time.Time, weekEntries []*model.ScheduleEntry, openLog *model.WorkLog) (*CheckInPlan, error) {
	if openLog != nil {
		return nil, apperr.Validationf("teacher %d already has an open work log (id %d)", teacherID, openLog.ID)
	}

	plan := &CheckInPlan{
		Log: &model.WorkLog{TeacherID: teacherID, CheckIn: t},
	}

	if match := matchPlannedEntry(teacherID, t, weekEntries); match != nil {
		if match.WorkLogID != nil {
			return nil, apperr.Invariantf("entry %d already linked to work log %d", match.ID, *match.WorkLogID)
		}
		plan.LinkEntryID = linkTargetID(match)
		plan.LinkWindowStart = match.StartTime
		plan.LinkWindowEnd = match.EndTime
		return plan, nil
	}

	plan.Entry = &model.ScheduleEntry{
		TeacherIDs:  []int64{teacherID},
		ClassType:   model.ClassTypeAttendance,
		StartTime:   t,
		EndTime:     t.Add(DefaultUnplannedDuration),
		IsUnplanned: true,
	}
	return plan, nil
}

// matchPlannedEntry finds the planned occurrence a check-in belongs to:
// contains the teacher, not yet linked, window contains t. Earliest start
// wins, then lowest id, so the pick is deterministic.
func matchPlannedEntry(teacherID int64, t time.Time, entries []*model.ScheduleEntry) *model.ScheduleEntry {
	var match *model.ScheduleEntry
	for _, e := range entries {
		if e.IsUnplanned || !e.HasTeacher(teacherID) || e.WorkLogID != nil || !e.Contains(t) {
			continue
		}
		if match == nil || better(e, match) {
			match = e
		}
	}
	return match
}

func better(a, b *model.ScheduleEntry) bool {
	if !a.StartTime.Equal(b.StartTime) {
		return a.StartTime.Before(b.StartTime)
	}
	return linkTargetID(a) < linkTargetID(b)
}

// linkTargetID is the persisted row a concrete entry is linked through: the
// template row for a projected occurrence, the entry row itself otherwise.
func linkTargetID(e *model.ScheduleEntry) int64 {
	if e.TemplateID != nil {
		return *e.TemplateID
	}
	return e.ID
}

// CheckOutPlan describes the mutations a check-out requires: close the log,
// and for an unplanned entry extend its end to the check-out instant.
type CheckOutPlan struct {
	LogID    int64
	CheckOut time.Time
	// EntryID/EntryEnd resize the linked unplanned entry; EntryID is zero for
	// planned entries, whose scheduled window is left untouched.
	EntryID  int64
	EntryEnd time.Time
}

// PlanCheckOut closes an open log at t. entry is the row the log links to
// (nil when the log has no link). Planned windows are never resized; the log
// alone records actual attendance.
func PlanCheckOut(log *model.WorkLog, entry *model.ScheduleEntry, t time.Time) (*CheckOutPlan, error) {
	if log == nil {
		return nil, apperr.NotFoundf("work log")
	}
	if !log.IsOpen() {
		return nil, apperr.Validationf("work log %d is already closed", log.ID)
	}
	if !t.After(log.CheckIn) {
		return nil, apperr.Validationf("check-out must be after check-in")
	}

	plan := &CheckOutPlan{LogID: log.ID, CheckOut: t}
	if entry != nil && entry.IsUnplanned {
		if !t.After(entry.StartTime) {
			return nil, apperr.Validationf("check-out must be after the entry start")
		}
		plan.EntryID = entry.ID
		plan.EntryEnd = t
	}
	return plan, nil
}

// ManualLogPlan describes a manually entered, already-closed log together
// with the unplanned entry mirroring its window.
type ManualLogPlan struct {
	Log   *model.WorkLog
	Entry *model.ScheduleEntry
}

// PlanManualLog validates and builds a manual log entry. It behaves like an
// already-closed check-in/check-out pair.
func PlanManualLog(teacherID int64, checkIn, checkOut time.Time) (*ManualLogPlan, error) {
	if !checkOut.After(checkIn) {
		return nil, apperr.Validationf("check-out must be after check-in")
	}

	out := checkOut
	return &ManualLogPlan{
		Log: &model.WorkLog{
			TeacherID: teacherID,
			CheckIn:   checkIn,
			CheckOut:  &out,
			IsManual:  true,
		},
		Entry: &model.ScheduleEntry{
			TeacherIDs:  []int64{teacherID},
			ClassType:   model.ClassTypeAttendance,
			StartTime:   checkIn,
			EndTime:     checkOut,
			IsUnplanned: true,
		},
	}, nil
}

// ManualLogUpdatePlan describes an edit of an existing log's window and the
// resynchronization of its unplanned entry.
type ManualLogUpdatePlan struct {
	LogID    int64
	CheckIn  time.Time
	CheckOut time.Time
	// EntryID/EntryStart/EntryEnd resync the linked unplanned entry; EntryID
	// is zero when the log links a planned entry.
	EntryID    int64
	EntryStart time.Time
	EntryEnd   time.Time
}

// PlanManualLogUpdate validates and builds an edit of an existing log. The
// linked unplanned entry follows the log's new window; a planned window stays
// as scheduled, consistent with the check-out policy.
func PlanManualLogUpdate(log *model.WorkLog, entry *model.ScheduleEntry, checkIn, checkOut time.Time) (*ManualLogUpdatePlan, error) {
	if log == nil {
		return nil, apperr.NotFoundf("work log")
	}
	if !checkOut.After(checkIn) {
		return nil, apperr.Validationf("check-out must be after check-in")
	}

	plan := &ManualLogUpdatePlan{LogID: log.ID, CheckIn: checkIn, CheckOut: checkOut}
	if entry != nil && entry.IsUnplanned {
		plan.EntryID = entry.ID
		plan.EntryStart = checkIn
		plan.EntryEnd = checkOut
	}
	return plan, nil
}
