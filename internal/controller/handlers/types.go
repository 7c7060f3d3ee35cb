package handlers

import (
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/controller/state"
	"github.com/Freeeeeet/classtrack_bot/internal/service"
)

// Handlers bundles the bot command handlers and their dependencies
type Handlers struct {
	teacherService    *service.TeacherService
	scheduleService   *service.ScheduleService
	attendanceService *service.AttendanceService
	stateManager      *state.Manager
	logger            *zap.Logger
}

// NewHandlers creates the command handlers
func NewHandlers(
	teacherService *service.TeacherService,
	scheduleService *service.ScheduleService,
	attendanceService *service.AttendanceService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		teacherService:    teacherService,
		scheduleService:   scheduleService,
		attendanceService: attendanceService,
		stateManager:      stateManager,
		logger:            logger,
	}
}
