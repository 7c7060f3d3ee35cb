package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

type TeacherService struct {
	teachers TeacherStore
	logger   *zap.Logger
}

func NewTeacherService(teachers TeacherStore, logger *zap.Logger) *TeacherService {
	return &TeacherService{
		teachers: teachers,
		logger:   logger,
	}
}

// Register creates a teacher for the Telegram user unless one already exists
func (s *TeacherService) Register(ctx context.Context, telegramID int64, name string, category model.TeacherCategory, contractedHours float64) (*model.Teacher, error) {
	existing, err := s.teachers.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get teacher by telegram id: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if contractedHours < 0 {
		return nil, apperr.Validationf("contracted hours must be non-negative")
	}

	teacher := &model.Teacher{
		TelegramID:      telegramID,
		Name:            name,
		Category:        category,
		ContractedHours: contractedHours,
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.logger.Info("Teacher registered",
		zap.Int64("teacher_id", teacher.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("name", name),
	)

	return teacher, nil
}

// GetByTelegramID gets a teacher by Telegram ID, nil when unknown
func (s *TeacherService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Teacher, error) {
	return s.teachers.GetByTelegramID(ctx, telegramID)
}

// List gets all teachers
func (s *TeacherService) List(ctx context.Context) ([]*model.Teacher, error) {
	return s.teachers.List(ctx)
}
