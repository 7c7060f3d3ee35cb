package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/repository/base"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// AttendanceRepository applies reconciliation plans atomically: the work log
// mutation and its paired entry mutation always commit together or not at all
type AttendanceRepository struct {
	base   *base.Repository
	logger *zap.Logger
}

// NewAttendanceRepository creates a new repository
func NewAttendanceRepository(pool *pgxpool.Pool, logger *zap.Logger) *AttendanceRepository {
	return &AttendanceRepository{
		base:   base.NewRepository(pool),
		logger: logger,
	}
}

// ApplyCheckIn inserts the plan's open log and either links it to the matched
// occurrence or inserts the plan's new unplanned entry
func (r *AttendanceRepository) ApplyCheckIn(ctx context.Context, plan *schedule.CheckInPlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	err := r.base.WithTx(ctx, func(tx pgx.Tx) error {
		var entryID int64
		if plan.Entry != nil {
			if err := insertEntry(ctx, tx, plan.Entry); err != nil {
				return err
			}
			entryID = plan.Entry.ID
		} else {
			// the matched occurrence must still be unclaimed
			var n int
			err := tx.QueryRow(
				ctx,
				`SELECT count(*) FROM work_logs WHERE entry_id = $1 AND check_in >= $2 AND check_in < $3`,
				plan.LinkEntryID, plan.LinkWindowStart, plan.LinkWindowEnd,
			).Scan(&n)
			if err != nil {
				return fmt.Errorf("check occurrence link: %w", err)
			}
			if n > 0 {
				return apperr.Invariantf("entry %d is already linked to a work log for this occurrence", plan.LinkEntryID)
			}
			entryID = plan.LinkEntryID
		}

		plan.Log.EntryID = &entryID
		return insertWorkLog(ctx, tx, plan.Log)
	})
	if err != nil {
		return nil, nil, err
	}

	if plan.Entry != nil {
		logID := plan.Log.ID
		plan.Entry.WorkLogID = &logID
	}
	return plan.Log, plan.Entry, nil
}

// ApplyCheckOut closes the log and, for an unplanned entry, extends its end
func (r *AttendanceRepository) ApplyCheckOut(ctx context.Context, plan *schedule.CheckOutPlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	var (
		log   *model.WorkLog
		entry *model.ScheduleEntry
	)

	err := r.base.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		log, err = scanWorkLog(tx.QueryRow(
			ctx,
			`UPDATE work_logs SET check_out = $2 WHERE id = $1 AND check_out IS NULL RETURNING `+workLogColumns,
			plan.LogID, plan.CheckOut,
		))
		if err == pgx.ErrNoRows {
			return apperr.NotFoundf("open work log %d", plan.LogID)
		}
		if err != nil {
			return fmt.Errorf("close work log: %w", err)
		}

		if plan.EntryID != 0 {
			entry, err = scanEntry(tx.QueryRow(
				ctx,
				`UPDATE schedule_entries SET end_time = $2, updated_at = now() WHERE id = $1 RETURNING `+entryColumns,
				plan.EntryID, plan.EntryEnd,
			))
			if err == pgx.ErrNoRows {
				return apperr.Invariantf("work log %d links missing entry %d", plan.LogID, plan.EntryID)
			}
			if err != nil {
				return fmt.Errorf("extend unplanned entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return log, entry, nil
}

// ApplyManualLog inserts an already-closed log with its unplanned entry
func (r *AttendanceRepository) ApplyManualLog(ctx context.Context, plan *schedule.ManualLogPlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	err := r.base.WithTx(ctx, func(tx pgx.Tx) error {
		if err := insertEntry(ctx, tx, plan.Entry); err != nil {
			return err
		}
		entryID := plan.Entry.ID
		plan.Log.EntryID = &entryID
		return insertWorkLog(ctx, tx, plan.Log)
	})
	if err != nil {
		return nil, nil, err
	}

	logID := plan.Log.ID
	plan.Entry.WorkLogID = &logID
	return plan.Log, plan.Entry, nil
}

// ApplyManualLogUpdate rewrites the log's window and resyncs its unplanned entry
func (r *AttendanceRepository) ApplyManualLogUpdate(ctx context.Context, plan *schedule.ManualLogUpdatePlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	var (
		log   *model.WorkLog
		entry *model.ScheduleEntry
	)

	err := r.base.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		log, err = scanWorkLog(tx.QueryRow(
			ctx,
			`UPDATE work_logs SET check_in = $2, check_out = $3 WHERE id = $1 RETURNING `+workLogColumns,
			plan.LogID, plan.CheckIn, plan.CheckOut,
		))
		if err == pgx.ErrNoRows {
			return apperr.NotFoundf("work log %d", plan.LogID)
		}
		if err != nil {
			return fmt.Errorf("update work log: %w", err)
		}

		if plan.EntryID != 0 {
			entry, err = scanEntry(tx.QueryRow(
				ctx,
				`UPDATE schedule_entries SET start_time = $2, end_time = $3, updated_at = now() WHERE id = $1 RETURNING `+entryColumns,
				plan.EntryID, plan.EntryStart, plan.EntryEnd,
			))
			if err == pgx.ErrNoRows {
				return apperr.Invariantf("work log %d links missing entry %d", plan.LogID, plan.EntryID)
			}
			if err != nil {
				return fmt.Errorf("resync unplanned entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return log, entry, nil
}
