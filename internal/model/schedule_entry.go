package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
)

type ClassType string

const (
	ClassTypeGroup    ClassType = "group"
	ClassTypePrivate  ClassType = "private"
	ClassTypeWorkshop ClassType = "workshop"
	// ClassTypeAttendance marks unplanned entries created retroactively from a check-in
	ClassTypeAttendance ClassType = "attendance"
)

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int `json:"hour"`   // 0-23
	Minute int `json:"minute"` // 0-59
}

// Minutes returns the time as minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// WeeklyPattern describes when a recurring entry repeats within a week
type WeeklyPattern struct {
	Weekday time.Weekday `json:"weekday"` // 0 = Sunday, 6 = Saturday
	Start   TimeOfDay    `json:"start"`
	End     TimeOfDay    `json:"end"`
}

// ScheduleEntry is either a recurring template (Weekly != nil, no absolute
// date) or a concrete entry with absolute start/end timestamps. Concrete
// entries are projected from templates week by week, or created by the
// attendance reconciler as unplanned entries.
type ScheduleEntry struct {
	ID          int64          `json:"id"`
	GroupID     uuid.UUID      `json:"group_id"` // groups templates created together; Nil for one-offs
	TeacherIDs  []int64        `json:"teacher_ids"`
	StudentIDs  []int64        `json:"student_ids"`
	ClassType   ClassType      `json:"class_type"`
	Capacity    *int           `json:"capacity"` // nil = unlimited
	Weekly      *WeeklyPattern `json:"weekly"`   // non-nil for recurring templates
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	TemplateID  *int64         `json:"template_id"` // set on instances projected from a template
	WorkLogID   *int64         `json:"work_log_id"` // back-reference, at most one per concrete entry
	IsUnplanned bool           `json:"is_unplanned"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsRecurring checks if the entry is a recurring template
func (e *ScheduleEntry) IsRecurring() bool {
	return e.Weekly != nil
}

// HasTeacher checks if the teacher takes part in this entry
func (e *ScheduleEntry) HasTeacher(teacherID int64) bool {
	for _, id := range e.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

// Contains reports whether t falls inside the concrete window, half-open:
// start <= t < end
func (e *ScheduleEntry) Contains(t time.Time) bool {
	return !t.Before(e.StartTime) && t.Before(e.EndTime)
}

// Overlaps reports whether two concrete windows intersect (half-open intervals)
func (e *ScheduleEntry) Overlaps(other *ScheduleEntry) bool {
	return e.StartTime.Before(other.EndTime) && e.EndTime.After(other.StartTime)
}

// Validate checks the entry's own invariants. Recurring templates are checked
// on their time-of-day fields, concrete entries on their absolute window.
func (e *ScheduleEntry) Validate() error {
	if e.Capacity != nil && *e.Capacity <= 0 {
		return apperr.Validationf("capacity must be positive, got %d", *e.Capacity)
	}
	if !e.IsUnplanned && len(e.TeacherIDs) == 0 {
		return apperr.Validationf("a planned entry requires at least one teacher")
	}
	if e.Weekly != nil {
		return e.Weekly.validate()
	}
	if !e.EndTime.After(e.StartTime) {
		return apperr.Validationf("entry end time must be after start time")
	}
	return nil
}

func (p *WeeklyPattern) validate() error {
	if p.Weekday < time.Sunday || p.Weekday > time.Saturday {
		return apperr.Validationf("weekday must be in 0..6, got %d", int(p.Weekday))
	}
	for _, tod := range []TimeOfDay{p.Start, p.End} {
		if tod.Hour < 0 || tod.Hour > 23 || tod.Minute < 0 || tod.Minute > 59 {
			return apperr.Validationf("invalid time of day %02d:%02d", tod.Hour, tod.Minute)
		}
	}
	// Start == End would be a zero-length session; End < Start is a session
	// crossing midnight and is allowed.
	if p.Start == p.End {
		return apperr.Validationf("template start and end times must differ")
	}
	return nil
}
