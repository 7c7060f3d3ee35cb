package model

import "time"

// WorkLog is a single check-in/check-out attendance record for one teacher.
// An absent CheckOut means the teacher is currently checked in. EntryID links
// the log to the schedule entry attendance was reconciled against: the
// unplanned one-off row, or the template row of the matched planned occurrence.
type WorkLog struct {
	ID        int64      `json:"id"`
	TeacherID int64      `json:"teacher_id"`
	CheckIn   time.Time  `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"` // nil while the log is open
	EntryID   *int64     `json:"entry_id"`
	IsManual  bool       `json:"is_manual"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsOpen checks if the log has not been closed yet
func (l *WorkLog) IsOpen() bool {
	return l.CheckOut == nil
}

// Duration returns the worked time of the log. Open logs are measured
// against now; a negative span is clamped to zero.
func (l *WorkLog) Duration(now time.Time) time.Duration {
	end := now
	if l.CheckOut != nil {
		end = *l.CheckOut
	}
	d := end.Sub(l.CheckIn)
	if d < 0 {
		return 0
	}
	return d
}

// Workload is derived per teacher from work logs and contracted hours.
// It is never stored.
type Workload struct {
	TeacherID       int64   `json:"teacher_id"`
	WorkedHours     float64 `json:"worked_hours"`
	ContractedHours float64 `json:"contracted_hours"`
	OvertimeHours   float64 `json:"overtime_hours"`
	DeficitHours    float64 `json:"deficit_hours"`
}
