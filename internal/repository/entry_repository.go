package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const entryColumns = `
	id, group_id, teacher_ids, student_ids, class_type, capacity,
	weekday, start_hour, start_minute, end_hour, end_minute,
	start_time, end_time, template_id, is_unplanned, created_at, updated_at
`

// EntryRepository manages schedule entries: recurring templates and
// persisted one-off (unplanned) entries live in the same table
type EntryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewEntryRepository creates a new repository
func NewEntryRepository(pool *pgxpool.Pool, logger *zap.Logger) *EntryRepository {
	return &EntryRepository{
		pool:   pool,
		logger: logger,
	}
}

// Create creates a new schedule entry (template or one-off)
func (r *EntryRepository) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	return insertEntry(ctx, r.pool, entry)
}

// insertEntry inserts an entry through pool or transaction
func insertEntry(ctx context.Context, q querier, entry *model.ScheduleEntry) error {
	query := `
		INSERT INTO schedule_entries (
			group_id, teacher_ids, student_ids, class_type, capacity,
			weekday, start_hour, start_minute, end_hour, end_minute,
			start_time, end_time, template_id, is_unplanned
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	var (
		groupID   uuid.NullUUID
		weekday   *int
		startHour *int
		startMin  *int
		endHour   *int
		endMin    *int
		startTime *time.Time
		endTime   *time.Time
	)
	if entry.GroupID != uuid.Nil {
		groupID = uuid.NullUUID{UUID: entry.GroupID, Valid: true}
	}
	if entry.Weekly != nil {
		wd := int(entry.Weekly.Weekday)
		weekday = &wd
		startHour = &entry.Weekly.Start.Hour
		startMin = &entry.Weekly.Start.Minute
		endHour = &entry.Weekly.End.Hour
		endMin = &entry.Weekly.End.Minute
	} else {
		startTime = &entry.StartTime
		endTime = &entry.EndTime
	}

	err := q.QueryRow(
		ctx,
		query,
		groupID,
		entry.TeacherIDs,
		entry.StudentIDs,
		entry.ClassType,
		entry.Capacity,
		weekday,
		startHour,
		startMin,
		endHour,
		endMin,
		startTime,
		endTime,
		entry.TemplateID,
		entry.IsUnplanned,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}

	return nil
}

// GetByID gets a schedule entry by ID
func (r *EntryRepository) GetByID(ctx context.Context, id int64) (*model.ScheduleEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM schedule_entries WHERE id = $1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule entry by id: %w", err)
	}

	return entry, nil
}

// Update updates a template's pattern and participants. One-off entries are
// derived data and are only resized through the attendance repository.
func (r *EntryRepository) Update(ctx context.Context, entry *model.ScheduleEntry) error {
	query := `
		UPDATE schedule_entries
		SET teacher_ids = $2, student_ids = $3, class_type = $4, capacity = $5,
		    weekday = $6, start_hour = $7, start_minute = $8, end_hour = $9, end_minute = $10,
		    updated_at = now()
		WHERE id = $1 AND weekday IS NOT NULL
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		entry.ID,
		entry.TeacherIDs,
		entry.StudentIDs,
		entry.ClassType,
		entry.Capacity,
		int(entry.Weekly.Weekday),
		entry.Weekly.Start.Hour,
		entry.Weekly.Start.Minute,
		entry.Weekly.End.Hour,
		entry.Weekly.End.Minute,
	).Scan(&entry.UpdatedAt)

	if err == pgx.ErrNoRows {
		return apperr.NotFoundf("schedule entry %d", entry.ID)
	}
	if err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}

	return nil
}

// Delete deletes a schedule entry
func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("schedule entry %d", id)
	}

	return nil
}

// DeleteByGroupID deletes all templates in a group
func (r *EntryRepository) DeleteByGroupID(ctx context.Context, groupID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedule_entries WHERE group_id = $1`, groupID)
	if err != nil {
		return fmt.Errorf("delete schedule entries by group_id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("schedule entry group %s", groupID)
	}

	return nil
}

// ListTemplates gets all recurring templates
func (r *EntryRepository) ListTemplates(ctx context.Context) ([]*model.ScheduleEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM schedule_entries
		WHERE weekday IS NOT NULL
		ORDER BY weekday, start_hour, start_minute, id
	`

	return r.queryEntries(ctx, query)
}

// ListTemplatesByTeacher gets all recurring templates containing the teacher
func (r *EntryRepository) ListTemplatesByTeacher(ctx context.Context, teacherID int64) ([]*model.ScheduleEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM schedule_entries
		WHERE weekday IS NOT NULL AND teacher_ids @> ARRAY[$1]::bigint[]
		ORDER BY weekday, start_hour, start_minute, id
	`

	return r.queryEntries(ctx, query, teacherID)
}

// GetByGroupID gets all templates sharing a group id
func (r *EntryRepository) GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*model.ScheduleEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM schedule_entries
		WHERE group_id = $1
		ORDER BY weekday, start_hour, start_minute, id
	`

	return r.queryEntries(ctx, query, groupID)
}

// ListOneOffsBetween gets persisted one-off entries overlapping [from, to)
func (r *EntryRepository) ListOneOffsBetween(ctx context.Context, from, to time.Time) ([]*model.ScheduleEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM schedule_entries
		WHERE weekday IS NULL AND start_time < $2 AND end_time > $1
		ORDER BY start_time, id
	`

	return r.queryEntries(ctx, query, from, to)
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*model.ScheduleEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.ScheduleEntry, error) {
	entry := &model.ScheduleEntry{}
	var (
		groupID   uuid.NullUUID
		weekday   *int
		startHour *int
		startMin  *int
		endHour   *int
		endMin    *int
		startTime *time.Time
		endTime   *time.Time
	)

	err := row.Scan(
		&entry.ID,
		&groupID,
		&entry.TeacherIDs,
		&entry.StudentIDs,
		&entry.ClassType,
		&entry.Capacity,
		&weekday,
		&startHour,
		&startMin,
		&endHour,
		&endMin,
		&startTime,
		&endTime,
		&entry.TemplateID,
		&entry.IsUnplanned,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		entry.GroupID = groupID.UUID
	}
	if weekday != nil {
		entry.Weekly = &model.WeeklyPattern{
			Weekday: time.Weekday(*weekday),
			Start:   model.TimeOfDay{Hour: *startHour, Minute: *startMin},
			End:     model.TimeOfDay{Hour: *endHour, Minute: *endMin},
		}
	}
	if startTime != nil {
		entry.StartTime = *startTime
	}
	if endTime != nil {
		entry.EndTime = *endTime
	}

	return entry, nil
}
