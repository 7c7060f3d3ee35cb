package schedule

import (
	"math"
	"time"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// Aggregate derives per-teacher workload from work logs and contracted hours.
// Closed logs count their full span; an open log counts check-in to now.
// Pure function: safe to recompute on every tick against a snapshot.
func Aggregate(teachers []*model.Teacher, logs []*model.WorkLog, now time.Time) []model.Workload {
	workedByTeacher := make(map[int64]time.Duration, len(teachers))
	for _, l := range logs {
		workedByTeacher[l.TeacherID] += l.Duration(now)
	}

	out := make([]model.Workload, 0, len(teachers))
	for _, t := range teachers {
		worked := workedByTeacher[t.ID].Hours()
		out = append(out, model.Workload{
			TeacherID:       t.ID,
			WorkedHours:     worked,
			ContractedHours: t.ContractedHours,
			OvertimeHours:   math.Max(0, worked-t.ContractedHours),
			DeficitHours:    math.Max(0, t.ContractedHours-worked),
		})
	}
	return out
}
