package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

const workLogColumns = `id, teacher_id, check_in, check_out, entry_id, is_manual, created_at`

// WorkLogRepository manages work logs in the database
type WorkLogRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewWorkLogRepository creates a new repository
func NewWorkLogRepository(pool *pgxpool.Pool, logger *zap.Logger) *WorkLogRepository {
	return &WorkLogRepository{
		pool:   pool,
		logger: logger,
	}
}

// insertWorkLog inserts a log through pool or transaction
func insertWorkLog(ctx context.Context, q querier, log *model.WorkLog) error {
	query := `
		INSERT INTO work_logs (teacher_id, check_in, check_out, entry_id, is_manual)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(
		ctx,
		query,
		log.TeacherID,
		log.CheckIn,
		log.CheckOut,
		log.EntryID,
		log.IsManual,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return fmt.Errorf("create work log: %w", err)
	}

	return nil
}

// GetByID gets a work log by ID
func (r *WorkLogRepository) GetByID(ctx context.Context, id int64) (*model.WorkLog, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE id = $1`

	log, err := scanWorkLog(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get work log by id: %w", err)
	}

	return log, nil
}

// GetOpenByTeacher gets the teacher's open log, nil when the teacher is
// not checked in
func (r *WorkLogRepository) GetOpenByTeacher(ctx context.Context, teacherID int64) (*model.WorkLog, error) {
	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE teacher_id = $1 AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`

	log, err := scanWorkLog(r.pool.QueryRow(ctx, query, teacherID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open work log: %w", err)
	}

	return log, nil
}

// ListOpen gets all currently open logs
func (r *WorkLogRepository) ListOpen(ctx context.Context) ([]*model.WorkLog, error) {
	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE check_out IS NULL
		ORDER BY check_in, id
	`

	return r.queryWorkLogs(ctx, query)
}

// List gets all work logs
func (r *WorkLogRepository) List(ctx context.Context) ([]*model.WorkLog, error) {
	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		ORDER BY check_in, id
	`

	return r.queryWorkLogs(ctx, query)
}

// ListByTeacher gets all work logs of a teacher
func (r *WorkLogRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.WorkLog, error) {
	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE teacher_id = $1
		ORDER BY check_in, id
	`

	return r.queryWorkLogs(ctx, query, teacherID)
}

// ListBetween gets logs whose check-in falls in [from, to)
func (r *WorkLogRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*model.WorkLog, error) {
	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE check_in >= $1 AND check_in < $2
		ORDER BY check_in, id
	`

	return r.queryWorkLogs(ctx, query, from, to)
}

func (r *WorkLogRepository) queryWorkLogs(ctx context.Context, query string, args ...any) ([]*model.WorkLog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query work logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.WorkLog
	for rows.Next() {
		log, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

func scanWorkLog(row rowScanner) (*model.WorkLog, error) {
	log := &model.WorkLog{}
	err := row.Scan(
		&log.ID,
		&log.TeacherID,
		&log.CheckIn,
		&log.CheckOut,
		&log.EntryID,
		&log.IsManual,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return log, nil
}
