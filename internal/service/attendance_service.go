package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// ManualLogInput carries a manually entered, already-closed work log
type ManualLogInput struct {
	TeacherID int64     `validate:"required,gt=0"`
	CheckIn   time.Time `validate:"required"`
	CheckOut  time.Time `validate:"required"`
}

// AttendanceService reconciles check-in/check-out events against the planned
// schedule. Mutations for one teacher are serialized; the reconciliation
// itself is computed by the pure planning functions in internal/schedule and
// applied atomically by the attendance store.
type AttendanceService struct {
	entries  EntryStore
	teachers TeacherStore
	logs     WorkLogStore
	store    AttendanceStore
	validate *validator.Validate
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewAttendanceService(
	entries EntryStore,
	teachers TeacherStore,
	logs WorkLogStore,
	store AttendanceStore,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		entries:  entries,
		teachers: teachers,
		logs:     logs,
		store:    store,
		validate: validator.New(),
		logger:   logger,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// lockTeacher serializes mutating operations per teacher; operations on
// different teachers proceed independently
func (s *AttendanceService) lockTeacher(teacherID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[teacherID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[teacherID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// CheckIn opens a work log for the teacher at t. When a planned session
// containing t exists and is not yet linked, the log links to it; otherwise a
// new unplanned entry is created. A teacher with an open log is rejected.
func (s *AttendanceService) CheckIn(ctx context.Context, teacherID int64, t time.Time) (*model.WorkLog, *model.ScheduleEntry, error) {
	unlock := s.lockTeacher(teacherID)
	defer unlock()

	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return nil, nil, apperr.NotFoundf("teacher %d", teacherID)
	}

	openLog, err := s.logs.GetOpenByTeacher(ctx, teacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get open work log: %w", err)
	}

	weekEntries, err := s.buildWeekEntries(ctx, t)
	if err != nil {
		return nil, nil, err
	}

	plan, err := schedule.PlanCheckIn(teacherID, t, weekEntries, openLog)
	if err != nil {
		return nil, nil, err
	}

	log, entry, err := s.store.ApplyCheckIn(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Teacher checked in",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("work_log_id", log.ID),
		zap.Time("check_in", t),
		zap.Bool("unplanned", entry != nil),
	)

	return log, entry, nil
}

// CheckOut closes the log at t. An unplanned entry is extended to the
// check-out instant; a planned entry keeps its scheduled window.
func (s *AttendanceService) CheckOut(ctx context.Context, logID int64, t time.Time) (*model.WorkLog, *model.ScheduleEntry, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, nil, fmt.Errorf("get work log: %w", err)
	}
	if log == nil {
		return nil, nil, apperr.NotFoundf("work log %d", logID)
	}

	unlock := s.lockTeacher(log.TeacherID)
	defer unlock()

	// re-read under the teacher lock
	log, err = s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, nil, fmt.Errorf("get work log: %w", err)
	}
	if log == nil {
		return nil, nil, apperr.NotFoundf("work log %d", logID)
	}

	entry, err := s.linkedEntry(ctx, log)
	if err != nil {
		return nil, nil, err
	}

	plan, err := schedule.PlanCheckOut(log, entry, t)
	if err != nil {
		return nil, nil, err
	}

	closed, updated, err := s.store.ApplyCheckOut(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Teacher checked out",
		zap.Int64("teacher_id", closed.TeacherID),
		zap.Int64("work_log_id", closed.ID),
		zap.Time("check_out", t),
	)

	return closed, updated, nil
}

// CheckOutTeacher closes the teacher's open log at t
func (s *AttendanceService) CheckOutTeacher(ctx context.Context, teacherID int64, t time.Time) (*model.WorkLog, *model.ScheduleEntry, error) {
	openLog, err := s.logs.GetOpenByTeacher(ctx, teacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get open work log: %w", err)
	}
	if openLog == nil {
		return nil, nil, apperr.Validationf("teacher %d has no open work log", teacherID)
	}

	return s.CheckOut(ctx, openLog.ID, t)
}

// AddManualLog records an already-closed log with its unplanned entry
func (s *AttendanceService) AddManualLog(ctx context.Context, in ManualLogInput) (*model.WorkLog, *model.ScheduleEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, apperr.Validationf("invalid manual log input: %v", err)
	}

	unlock := s.lockTeacher(in.TeacherID)
	defer unlock()

	teacher, err := s.teachers.GetByID(ctx, in.TeacherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get teacher: %w", err)
	}
	if teacher == nil {
		return nil, nil, apperr.NotFoundf("teacher %d", in.TeacherID)
	}

	plan, err := schedule.PlanManualLog(in.TeacherID, in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, nil, err
	}

	log, entry, err := s.store.ApplyManualLog(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Manual work log added",
		zap.Int64("teacher_id", in.TeacherID),
		zap.Int64("work_log_id", log.ID),
	)

	return log, entry, nil
}

// UpdateManualLog rewrites an existing log's window; its unplanned entry
// follows the new window
func (s *AttendanceService) UpdateManualLog(ctx context.Context, logID int64, checkIn, checkOut time.Time) (*model.WorkLog, *model.ScheduleEntry, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, nil, fmt.Errorf("get work log: %w", err)
	}
	if log == nil {
		return nil, nil, apperr.NotFoundf("work log %d", logID)
	}

	unlock := s.lockTeacher(log.TeacherID)
	defer unlock()

	entry, err := s.linkedEntry(ctx, log)
	if err != nil {
		return nil, nil, err
	}

	plan, err := schedule.PlanManualLogUpdate(log, entry, checkIn, checkOut)
	if err != nil {
		return nil, nil, err
	}

	updated, entryUpdated, err := s.store.ApplyManualLogUpdate(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Manual work log updated", zap.Int64("work_log_id", logID))

	return updated, entryUpdated, nil
}

// Workloads derives worked/contracted/overtime/deficit hours per teacher at
// the instant now. Pure aggregation over a snapshot; safe to call on every
// tick.
func (s *AttendanceService) Workloads(ctx context.Context, now time.Time) ([]model.Workload, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	logs, err := s.logs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}

	return schedule.Aggregate(teachers, logs, now), nil
}

// OpenLogs returns all currently open work logs
func (s *AttendanceService) OpenLogs(ctx context.Context) ([]*model.WorkLog, error) {
	return s.logs.ListOpen(ctx)
}

// linkedEntry loads the schedule entry a log links to, nil when unlinked
func (s *AttendanceService) linkedEntry(ctx context.Context, log *model.WorkLog) (*model.ScheduleEntry, error) {
	if log.EntryID == nil {
		return nil, nil
	}
	entry, err := s.entries.GetByID(ctx, *log.EntryID)
	if err != nil {
		return nil, fmt.Errorf("get linked entry: %w", err)
	}
	return entry, nil
}

// buildWeekEntries assembles the concrete entries of the week containing t,
// with work-log links attached
func (s *AttendanceService) buildWeekEntries(ctx context.Context, t time.Time) ([]*model.ScheduleEntry, error) {
	weekStart := schedule.WeekStart(t)
	weekEnd := schedule.WeekEnd(weekStart)

	templates, err := s.entries.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	oneOffs, err := s.entries.ListOneOffsBetween(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("list one-off entries: %w", err)
	}
	logs, err := s.logs.ListBetween(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}

	return schedule.BuildWeek(templates, oneOffs, logs, weekStart), nil
}
