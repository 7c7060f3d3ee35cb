package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// EntryStore is the schedule-entry persistence contract. Get methods return
// nil, nil when the entity does not exist.
type EntryStore interface {
	Create(ctx context.Context, entry *model.ScheduleEntry) error
	GetByID(ctx context.Context, id int64) (*model.ScheduleEntry, error)
	Update(ctx context.Context, entry *model.ScheduleEntry) error
	Delete(ctx context.Context, id int64) error
	DeleteByGroupID(ctx context.Context, groupID uuid.UUID) error
	ListTemplates(ctx context.Context) ([]*model.ScheduleEntry, error)
	ListTemplatesByTeacher(ctx context.Context, teacherID int64) ([]*model.ScheduleEntry, error)
	GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*model.ScheduleEntry, error)
	ListOneOffsBetween(ctx context.Context, from, to time.Time) ([]*model.ScheduleEntry, error)
}

// StudentStore is the student persistence contract
type StudentStore interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id int64) (*model.Student, error)
	List(ctx context.Context) ([]*model.Student, error)
}

// TeacherStore is the teacher persistence contract
type TeacherStore interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id int64) (*model.Teacher, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Teacher, error)
	List(ctx context.Context) ([]*model.Teacher, error)
}

// WorkLogStore is the read side of work-log persistence
type WorkLogStore interface {
	GetByID(ctx context.Context, id int64) (*model.WorkLog, error)
	GetOpenByTeacher(ctx context.Context, teacherID int64) (*model.WorkLog, error)
	ListOpen(ctx context.Context) ([]*model.WorkLog, error)
	List(ctx context.Context) ([]*model.WorkLog, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*model.WorkLog, error)
}

// AttendanceStore applies reconciliation plans atomically: the log mutation
// and its paired entry mutation commit together or not at all
type AttendanceStore interface {
	ApplyCheckIn(ctx context.Context, plan *schedule.CheckInPlan) (*model.WorkLog, *model.ScheduleEntry, error)
	ApplyCheckOut(ctx context.Context, plan *schedule.CheckOutPlan) (*model.WorkLog, *model.ScheduleEntry, error)
	ApplyManualLog(ctx context.Context, plan *schedule.ManualLogPlan) (*model.WorkLog, *model.ScheduleEntry, error)
	ApplyManualLogUpdate(ctx context.Context, plan *schedule.ManualLogUpdatePlan) (*model.WorkLog, *model.ScheduleEntry, error)
}
