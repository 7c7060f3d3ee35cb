package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// StudentRepository manages students in the database
type StudentRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStudentRepository creates a new repository
func NewStudentRepository(pool *pgxpool.Pool, logger *zap.Logger) *StudentRepository {
	return &StudentRepository{
		pool:   pool,
		logger: logger,
	}
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, student.Name).Scan(&student.ID, &student.CreatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

// GetByID gets a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	query := `
		SELECT id, name, created_at
		FROM students
		WHERE id = $1
	`

	student := &model.Student{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&student.ID, &student.Name, &student.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return student, nil
}

// List gets all students ordered by name
func (r *StudentRepository) List(ctx context.Context) ([]*model.Student, error) {
	query := `
		SELECT id, name, created_at
		FROM students
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		student := &model.Student{}
		if err := rows.Scan(&student.ID, &student.Name, &student.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}

	return students, nil
}
