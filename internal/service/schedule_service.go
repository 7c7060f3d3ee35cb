package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// TemplateInput carries the fields of a recurring template for create/update
type TemplateInput struct {
	TeacherIDs []int64         `validate:"required,min=1,dive,gt=0"`
	StudentIDs []int64         `validate:"dive,gt=0"`
	ClassType  model.ClassType `validate:"required,oneof=group private workshop"`
	Capacity   *int
	Weekday    time.Weekday `validate:"gte=0,lte=6"`
	Start      model.TimeOfDay
	End        model.TimeOfDay
}

// TemplateGroupInput creates the same class on several weekdays at once,
// sharing one group id
type TemplateGroupInput struct {
	TeacherIDs []int64         `validate:"required,min=1,dive,gt=0"`
	StudentIDs []int64         `validate:"dive,gt=0"`
	ClassType  model.ClassType `validate:"required,oneof=group private workshop"`
	Capacity   *int
	Weekdays   []time.Weekday `validate:"required,min=1,dive,gte=0,lte=6"`
	Start      model.TimeOfDay
	End        model.TimeOfDay
}

// WeekSchedule is one concrete week ready for presentation: projected and
// one-off entries plus their visual column placements
type WeekSchedule struct {
	WeekStart  time.Time
	Entries    []*model.ScheduleEntry
	Placements map[int64]schedule.Placement
}

type ScheduleService struct {
	entries  EntryStore
	teachers TeacherStore
	students StudentStore
	logs     WorkLogStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewScheduleService(entries EntryStore, teachers TeacherStore, students StudentStore, logs WorkLogStore, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		entries:  entries,
		teachers: teachers,
		students: students,
		logs:     logs,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateTemplate creates a recurring template
func (s *ScheduleService) CreateTemplate(ctx context.Context, in TemplateInput) (*model.ScheduleEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validationf("invalid template input: %v", err)
	}
	if err := s.verifyTeachers(ctx, in.TeacherIDs); err != nil {
		return nil, err
	}
	if err := s.verifyStudents(ctx, in.StudentIDs, in.Capacity); err != nil {
		return nil, err
	}

	entry := templateFromInput(in, uuid.New())
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s.logger.Info("Template created",
		zap.Int64("entry_id", entry.ID),
		zap.Int("weekday", int(in.Weekday)),
		zap.Int64s("teacher_ids", in.TeacherIDs),
	)

	return entry, nil
}

// CreateTemplateGroup creates the same template on several weekdays with a
// shared group id
func (s *ScheduleService) CreateTemplateGroup(ctx context.Context, in TemplateGroupInput) (uuid.UUID, []*model.ScheduleEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return uuid.Nil, nil, apperr.Validationf("invalid template group input: %v", err)
	}
	if err := s.verifyTeachers(ctx, in.TeacherIDs); err != nil {
		return uuid.Nil, nil, err
	}
	if err := s.verifyStudents(ctx, in.StudentIDs, in.Capacity); err != nil {
		return uuid.Nil, nil, err
	}

	groupID := uuid.New()
	created := make([]*model.ScheduleEntry, 0, len(in.Weekdays))
	for _, weekday := range in.Weekdays {
		entry := templateFromInput(TemplateInput{
			TeacherIDs: in.TeacherIDs,
			StudentIDs: in.StudentIDs,
			ClassType:  in.ClassType,
			Capacity:   in.Capacity,
			Weekday:    weekday,
			Start:      in.Start,
			End:        in.End,
		}, groupID)
		if err := entry.Validate(); err != nil {
			return uuid.Nil, nil, err
		}
		if err := s.entries.Create(ctx, entry); err != nil {
			return uuid.Nil, nil, fmt.Errorf("create template group: %w", err)
		}
		created = append(created, entry)
	}

	s.logger.Info("Template group created",
		zap.String("group_id", groupID.String()),
		zap.Int("count", len(created)),
	)

	return groupID, created, nil
}

// UpdateTemplate edits a template's pattern and participants. Edits made on a
// displayed week instance must be translated to its template's fields; one-off
// entries are derived and never edited directly.
func (s *ScheduleService) UpdateTemplate(ctx context.Context, id int64, in TemplateInput) (*model.ScheduleEntry, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validationf("invalid template input: %v", err)
	}

	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if entry == nil {
		return nil, apperr.NotFoundf("schedule entry %d", id)
	}
	if !entry.IsRecurring() {
		return nil, apperr.Validationf("entry %d is not a recurring template", id)
	}
	if err := s.verifyTeachers(ctx, in.TeacherIDs); err != nil {
		return nil, err
	}
	if err := s.verifyStudents(ctx, in.StudentIDs, in.Capacity); err != nil {
		return nil, err
	}

	entry.TeacherIDs = in.TeacherIDs
	entry.StudentIDs = in.StudentIDs
	entry.ClassType = in.ClassType
	entry.Capacity = in.Capacity
	entry.Weekly = &model.WeeklyPattern{Weekday: in.Weekday, Start: in.Start, End: in.End}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	s.logger.Info("Template updated", zap.Int64("entry_id", entry.ID))

	return entry, nil
}

// DeleteTemplate deletes a template
func (s *ScheduleService) DeleteTemplate(ctx context.Context, id int64) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Template deleted", zap.Int64("entry_id", id))
	return nil
}

// DeleteTemplateGroup deletes every template sharing the group id
func (s *ScheduleService) DeleteTemplateGroup(ctx context.Context, groupID uuid.UUID) error {
	if err := s.entries.DeleteByGroupID(ctx, groupID); err != nil {
		return err
	}

	s.logger.Info("Template group deleted", zap.String("group_id", groupID.String()))
	return nil
}

// Templates returns all recurring templates
func (s *ScheduleService) Templates(ctx context.Context) ([]*model.ScheduleEntry, error) {
	return s.entries.ListTemplates(ctx)
}

// TemplatesByTeacher returns the teacher's recurring templates
func (s *ScheduleService) TemplatesByTeacher(ctx context.Context, teacherID int64) ([]*model.ScheduleEntry, error) {
	return s.entries.ListTemplatesByTeacher(ctx, teacherID)
}

// Week builds the concrete schedule of the week containing at: projected
// template occurrences, persisted one-off entries, work-log links and column
// placements. The result is a throwaway view, regenerated on every call.
func (s *ScheduleService) Week(ctx context.Context, at time.Time) (*WeekSchedule, error) {
	weekStart := schedule.WeekStart(at)
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

	entries := schedule.BuildWeek(templates, oneOffs, logs, weekStart)

	return &WeekSchedule{
		WeekStart:  weekStart,
		Entries:    entries,
		Placements: schedule.Layout(entries),
	}, nil
}

func (s *ScheduleService) verifyTeachers(ctx context.Context, teacherIDs []int64) error {
	for _, id := range teacherIDs {
		teacher, err := s.teachers.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get teacher: %w", err)
		}
		if teacher == nil {
			return apperr.NotFoundf("teacher %d", id)
		}
	}
	return nil
}

func (s *ScheduleService) verifyStudents(ctx context.Context, studentIDs []int64, capacity *int) error {
	if capacity != nil && len(studentIDs) > *capacity {
		return apperr.Validationf("%d students exceed capacity %d", len(studentIDs), *capacity)
	}
	for _, id := range studentIDs {
		student, err := s.students.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if student == nil {
			return apperr.NotFoundf("student %d", id)
		}
	}
	return nil
}

func templateFromInput(in TemplateInput, groupID uuid.UUID) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		GroupID:    groupID,
		TeacherIDs: in.TeacherIDs,
		StudentIDs: in.StudentIDs,
		ClassType:  in.ClassType,
		Capacity:   in.Capacity,
		Weekly: &model.WeeklyPattern{
			Weekday: in.Weekday,
			Start:   in.Start,
			End:     in.End,
		},
	}
}
