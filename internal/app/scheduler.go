package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/service"
)

// workloadTickInterval is how often workloads are recomputed while teachers
// are checked in
const workloadTickInterval = time.Minute

// Scheduler runs background tasks
type Scheduler struct {
	attendanceService *service.AttendanceService
	logger            *zap.Logger
	stopChan          chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(attendanceService *service.AttendanceService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		attendanceService: attendanceService,
		logger:            logger,
		stopChan:          make(chan struct{}),
	}
}

// Start launches the background tasks
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runWorkloadTask(ctx)
}

// Stop stops the background tasks
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runWorkloadTask periodically recomputes workloads while any log is open
func (s *Scheduler) runWorkloadTask(ctx context.Context) {
	s.snapshotWorkloads(ctx)

	ticker := time.NewTicker(workloadTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.snapshotWorkloads(ctx)
		case <-s.stopChan:
			s.logger.Info("Workload task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Workload task cancelled")
			return
		}
	}
}

// snapshotWorkloads logs the current workload of every teacher with an open
// log. Aggregation is pure and runs against a fresh snapshot on each tick.
func (s *Scheduler) snapshotWorkloads(ctx context.Context) {
	openLogs, err := s.attendanceService.OpenLogs(ctx)
	if err != nil {
		s.logger.Error("Failed to list open work logs", zap.Error(err))
		return
	}
	if len(openLogs) == 0 {
		return
	}

	openByTeacher := make(map[int64]bool, len(openLogs))
	for _, l := range openLogs {
		openByTeacher[l.TeacherID] = true
	}

	workloads, err := s.attendanceService.Workloads(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to aggregate workloads", zap.Error(err))
		return
	}

	for _, w := range workloads {
		if !openByTeacher[w.TeacherID] {
			continue
		}
		s.logger.Info("Workload snapshot",
			zap.Int64("teacher_id", w.TeacherID),
			zap.Float64("worked_hours", w.WorkedHours),
			zap.Float64("contracted_hours", w.ContractedHours),
			zap.Float64("overtime_hours", w.OvertimeHours),
			zap.Float64("deficit_hours", w.DeficitHours),
		)
	}
}
