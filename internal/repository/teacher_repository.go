package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// TeacherRepository manages teachers in the database
type TeacherRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTeacherRepository creates a new repository
func NewTeacherRepository(pool *pgxpool.Pool, logger *zap.Logger) *TeacherRepository {
	return &TeacherRepository{
		pool:   pool,
		logger: logger,
	}
}

// Create creates a new teacher
func (r *TeacherRepository) Create(ctx context.Context, teacher *model.Teacher) error {
	query := `
		INSERT INTO teachers (telegram_id, name, category, contracted_hours)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		teacher.TelegramID,
		teacher.Name,
		teacher.Category,
		teacher.ContractedHours,
	).Scan(&teacher.ID, &teacher.CreatedAt)

	if err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}

	return nil
}

// GetByID gets a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*model.Teacher, error) {
	query := `
		SELECT id, telegram_id, name, category, contracted_hours, created_at
		FROM teachers
		WHERE id = $1
	`

	teacher := &model.Teacher{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&teacher.ID,
		&teacher.TelegramID,
		&teacher.Name,
		&teacher.Category,
		&teacher.ContractedHours,
		&teacher.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher by id: %w", err)
	}

	return teacher, nil
}

// GetByTelegramID gets a teacher by Telegram ID
func (r *TeacherRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Teacher, error) {
	query := `
		SELECT id, telegram_id, name, category, contracted_hours, created_at
		FROM teachers
		WHERE telegram_id = $1
	`

	teacher := &model.Teacher{}
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&teacher.ID,
		&teacher.TelegramID,
		&teacher.Name,
		&teacher.Category,
		&teacher.ContractedHours,
		&teacher.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher by telegram id: %w", err)
	}

	return teacher, nil
}

// List gets all teachers ordered by name
func (r *TeacherRepository) List(ctx context.Context) ([]*model.Teacher, error) {
	query := `
		SELECT id, telegram_id, name, category, contracted_hours, created_at
		FROM teachers
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		teacher := &model.Teacher{}
		err := rows.Scan(
			&teacher.ID,
			&teacher.TelegramID,
			&teacher.Name,
			&teacher.Category,
			&teacher.ContractedHours,
			&teacher.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, teacher)
	}

	return teachers, nil
}
