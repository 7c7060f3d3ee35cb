package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

func newAttendanceFixture() (*AttendanceService, *fakeStores) {
	stores := newFakeStores()
	svc := NewAttendanceService(
		fakeEntryStore{stores},
		stores,
		fakeWorkLogStore{stores},
		fakeAttendanceStore{stores},
		zap.NewNop(),
	)
	return svc, stores
}

// 2025-08-11 is a Monday
var monday = time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC)

func addMondayClass(stores *fakeStores, teacherID int64) *model.ScheduleEntry {
	tpl := &model.ScheduleEntry{
		ID:         stores.id(),
		TeacherIDs: []int64{teacherID},
		ClassType:  model.ClassTypeGroup,
		Weekly: &model.WeeklyPattern{
			Weekday: time.Monday,
			Start:   model.TimeOfDay{Hour: 9},
			End:     model.TimeOfDay{Hour: 11},
		},
	}
	stores.entries[tpl.ID] = tpl
	return tpl
}

func TestAttendanceServiceCheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("links to the running planned class", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana", ContractedHours: 20})
		tpl := addMondayClass(stores, teacher.ID)

		log, entry, err := svc.CheckIn(ctx, teacher.ID, monday.Add(9*time.Hour+15*time.Minute))
		require.NoError(t, err)

		assert.Nil(t, entry, "no unplanned entry when a class matches")
		require.NotNil(t, log.EntryID)
		assert.Equal(t, tpl.ID, *log.EntryID)
		assert.True(t, log.IsOpen())
	})

	t.Run("creates an unplanned entry outside any class", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})
		addMondayClass(stores, teacher.ID)

		at := monday.Add(14 * time.Hour)
		log, entry, err := svc.CheckIn(ctx, teacher.ID, at)
		require.NoError(t, err)

		require.NotNil(t, entry)
		assert.True(t, entry.IsUnplanned)
		assert.Equal(t, at, entry.StartTime)
		assert.Equal(t, at.Add(time.Hour), entry.EndTime)
		require.NotNil(t, log.EntryID)
		assert.Equal(t, entry.ID, *log.EntryID)
		require.NotNil(t, entry.WorkLogID)
		assert.Equal(t, log.ID, *entry.WorkLogID)
	})

	t.Run("rejects a second check-in while a log is open", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		_, _, err := svc.CheckIn(ctx, teacher.ID, monday.Add(9*time.Hour))
		require.NoError(t, err)

		_, _, err = svc.CheckIn(ctx, teacher.ID, monday.Add(10*time.Hour))
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("unknown teacher", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, _, err := svc.CheckIn(ctx, 99, monday.Add(9*time.Hour))
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("a claimed occurrence falls back to an unplanned entry", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})
		addMondayClass(stores, teacher.ID)

		// first attendance claims the occurrence and closes
		_, _, err := svc.CheckIn(ctx, teacher.ID, monday.Add(9*time.Hour))
		require.NoError(t, err)
		_, _, err = svc.CheckOutTeacher(ctx, teacher.ID, monday.Add(9*time.Hour+30*time.Minute))
		require.NoError(t, err)

		// second check-in inside the same occurrence window cannot re-claim it
		_, entry, err := svc.CheckIn(ctx, teacher.ID, monday.Add(10*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.True(t, entry.IsUnplanned)
	})
}

func TestAttendanceServiceCheckOut(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the log and extends the unplanned entry", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		_, entry, err := svc.CheckIn(ctx, teacher.ID, monday.Add(14*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, entry)

		closed, updated, err := svc.CheckOutTeacher(ctx, teacher.ID, monday.Add(17*time.Hour))
		require.NoError(t, err)

		require.NotNil(t, closed.CheckOut)
		assert.Equal(t, monday.Add(17*time.Hour), *closed.CheckOut)
		require.NotNil(t, updated)
		assert.Equal(t, monday.Add(17*time.Hour), updated.EndTime)
	})

	t.Run("planned class keeps its scheduled window", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})
		tpl := addMondayClass(stores, teacher.ID)

		_, _, err := svc.CheckIn(ctx, teacher.ID, monday.Add(9*time.Hour))
		require.NoError(t, err)

		closed, updated, err := svc.CheckOutTeacher(ctx, teacher.ID, monday.Add(12*time.Hour))
		require.NoError(t, err)

		assert.False(t, closed.IsOpen())
		assert.Nil(t, updated, "planned entries are never resized")
		assert.Equal(t, model.TimeOfDay{Hour: 11}, stores.entries[tpl.ID].Weekly.End)
	})

	t.Run("no open log", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		_, _, err := svc.CheckOutTeacher(ctx, teacher.ID, monday.Add(17*time.Hour))
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("check-out before check-in", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		_, _, err := svc.CheckIn(ctx, teacher.ID, monday.Add(14*time.Hour))
		require.NoError(t, err)

		_, _, err = svc.CheckOutTeacher(ctx, teacher.ID, monday.Add(13*time.Hour))
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestAttendanceServiceManualLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a closed log with its mirror entry", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		log, entry, err := svc.AddManualLog(ctx, ManualLogInput{
			TeacherID: teacher.ID,
			CheckIn:   monday.Add(9 * time.Hour),
			CheckOut:  monday.Add(12*time.Hour + 30*time.Minute),
		})
		require.NoError(t, err)

		assert.True(t, log.IsManual)
		assert.False(t, log.IsOpen())
		require.NotNil(t, entry)
		assert.True(t, entry.IsUnplanned)
		assert.Equal(t, log.CheckIn, entry.StartTime)
		assert.Equal(t, *log.CheckOut, entry.EndTime)
	})

	t.Run("rejects an inverted window", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		_, _, err := svc.AddManualLog(ctx, ManualLogInput{
			TeacherID: teacher.ID,
			CheckIn:   monday.Add(12 * time.Hour),
			CheckOut:  monday.Add(9 * time.Hour),
		})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("update moves the log and its entry together", func(t *testing.T) {
		svc, stores := newAttendanceFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		log, entry, err := svc.AddManualLog(ctx, ManualLogInput{
			TeacherID: teacher.ID,
			CheckIn:   monday.Add(9 * time.Hour),
			CheckOut:  monday.Add(11 * time.Hour),
		})
		require.NoError(t, err)

		updated, entryUpdated, err := svc.UpdateManualLog(ctx, log.ID,
			monday.Add(10*time.Hour), monday.Add(13*time.Hour))
		require.NoError(t, err)

		assert.Equal(t, monday.Add(10*time.Hour), updated.CheckIn)
		assert.Equal(t, monday.Add(13*time.Hour), *updated.CheckOut)
		require.NotNil(t, entryUpdated)
		assert.Equal(t, entry.ID, entryUpdated.ID)
		assert.Equal(t, monday.Add(10*time.Hour), entryUpdated.StartTime)
		assert.Equal(t, monday.Add(13*time.Hour), entryUpdated.EndTime)
	})

	t.Run("update of an unknown log", func(t *testing.T) {
		svc, _ := newAttendanceFixture()

		_, _, err := svc.UpdateManualLog(ctx, 42, monday.Add(9*time.Hour), monday.Add(10*time.Hour))
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestAttendanceServiceWorkloads(t *testing.T) {
	ctx := context.Background()

	svc, stores := newAttendanceFixture()
	ana := stores.addTeacher(&model.Teacher{Name: "Ana", ContractedHours: 4})
	marco := stores.addTeacher(&model.Teacher{Name: "Marco", ContractedHours: 1})

	_, _, err := svc.AddManualLog(ctx, ManualLogInput{
		TeacherID: ana.ID,
		CheckIn:   monday.Add(9 * time.Hour),
		CheckOut:  monday.Add(11 * time.Hour),
	})
	require.NoError(t, err)
	_, _, err = svc.AddManualLog(ctx, ManualLogInput{
		TeacherID: marco.ID,
		CheckIn:   monday.Add(9 * time.Hour),
		CheckOut:  monday.Add(12 * time.Hour),
	})
	require.NoError(t, err)

	workloads, err := svc.Workloads(ctx, monday.Add(15*time.Hour))
	require.NoError(t, err)
	require.Len(t, workloads, 2)

	assert.InDelta(t, 2.0, workloads[0].WorkedHours, 1e-9)
	assert.InDelta(t, 2.0, workloads[0].DeficitHours, 1e-9)
	assert.Zero(t, workloads[0].OvertimeHours)

	assert.InDelta(t, 3.0, workloads[1].WorkedHours, 1e-9)
	assert.InDelta(t, 2.0, workloads[1].OvertimeHours, 1e-9)
	assert.Zero(t, workloads[1].DeficitHours)
}
