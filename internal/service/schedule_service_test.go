package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

func newScheduleFixture() (*ScheduleService, *fakeStores) {
	stores := newFakeStores()
	svc := NewScheduleService(
		fakeEntryStore{stores},
		stores,
		fakeStudentStore{stores},
		fakeWorkLogStore{stores},
		zap.NewNop(),
	)
	return svc, stores
}

func templateInput(teacherID int64) TemplateInput {
	return TemplateInput{
		TeacherIDs: []int64{teacherID},
		ClassType:  model.ClassTypeGroup,
		Weekday:    time.Monday,
		Start:      model.TimeOfDay{Hour: 9},
		End:        model.TimeOfDay{Hour: 10, Minute: 30},
	}
}

func TestScheduleServiceCreateTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a recurring template", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		entry, err := svc.CreateTemplate(ctx, templateInput(teacher.ID))
		require.NoError(t, err)

		assert.True(t, entry.IsRecurring())
		assert.NotEqual(t, uuid.Nil, entry.GroupID)
		assert.Equal(t, time.Monday, entry.Weekly.Weekday)
		assert.NotZero(t, entry.ID)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		svc, _ := newScheduleFixture()

		_, err := svc.CreateTemplate(ctx, templateInput(42))
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("invalid class type", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		in := templateInput(teacher.ID)
		in.ClassType = "yoga"
		_, err := svc.CreateTemplate(ctx, in)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("no teachers", func(t *testing.T) {
		svc, _ := newScheduleFixture()

		in := templateInput(1)
		in.TeacherIDs = nil
		_, err := svc.CreateTemplate(ctx, in)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("equal start and end", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		in := templateInput(teacher.ID)
		in.End = in.Start
		_, err := svc.CreateTemplate(ctx, in)
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		in := templateInput(teacher.ID)
		in.StudentIDs = []int64{77}
		_, err := svc.CreateTemplate(ctx, in)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("students above capacity", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})
		s1 := stores.addStudent(&model.Student{Name: "Bo"})
		s2 := stores.addStudent(&model.Student{Name: "Cy"})

		capacity := 1
		in := templateInput(teacher.ID)
		in.Capacity = &capacity
		in.StudentIDs = []int64{s1.ID, s2.ID}
		_, err := svc.CreateTemplate(ctx, in)
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestScheduleServiceCreateTemplateGroup(t *testing.T) {
	ctx := context.Background()

	svc, stores := newScheduleFixture()
	teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

	groupID, created, err := svc.CreateTemplateGroup(ctx, TemplateGroupInput{
		TeacherIDs: []int64{teacher.ID},
		ClassType:  model.ClassTypeGroup,
		Weekdays:   []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Start:      model.TimeOfDay{Hour: 9},
		End:        model.TimeOfDay{Hour: 10, Minute: 30},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	for _, e := range created {
		assert.Equal(t, groupID, e.GroupID)
	}
	assert.Equal(t, time.Monday, created[0].Weekly.Weekday)
	assert.Equal(t, time.Wednesday, created[1].Weekly.Weekday)
	assert.Equal(t, time.Friday, created[2].Weekly.Weekday)

	t.Run("delete by group removes all of them", func(t *testing.T) {
		require.NoError(t, svc.DeleteTemplateGroup(ctx, groupID))

		templates, err := svc.Templates(ctx)
		require.NoError(t, err)
		assert.Empty(t, templates)
	})
}

func TestScheduleServiceUpdateTemplate(t *testing.T) {
	ctx := context.Background()

	t.Run("updates pattern and participants", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})
		other := stores.addTeacher(&model.Teacher{Name: "Marco"})

		entry, err := svc.CreateTemplate(ctx, templateInput(teacher.ID))
		require.NoError(t, err)

		in := templateInput(other.ID)
		in.Weekday = time.Thursday
		updated, err := svc.UpdateTemplate(ctx, entry.ID, in)
		require.NoError(t, err)

		assert.Equal(t, time.Thursday, updated.Weekly.Weekday)
		assert.Equal(t, []int64{other.ID}, updated.TeacherIDs)
	})

	t.Run("unknown entry", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		_, err := svc.UpdateTemplate(ctx, 42, templateInput(teacher.ID))
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("one-off entries cannot be edited", func(t *testing.T) {
		svc, stores := newScheduleFixture()
		teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

		oneOff := &model.ScheduleEntry{
			ID:          stores.id(),
			TeacherIDs:  []int64{teacher.ID},
			ClassType:   model.ClassTypeAttendance,
			StartTime:   monday.Add(9 * time.Hour),
			EndTime:     monday.Add(10 * time.Hour),
			IsUnplanned: true,
		}
		stores.entries[oneOff.ID] = oneOff

		_, err := svc.UpdateTemplate(ctx, oneOff.ID, templateInput(teacher.ID))
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestScheduleServiceWeek(t *testing.T) {
	ctx := context.Background()

	svc, stores := newScheduleFixture()
	teacher := stores.addTeacher(&model.Teacher{Name: "Ana"})

	// two classes deliberately overlapping on Monday morning
	mondayIn := templateInput(teacher.ID)
	first, err := svc.CreateTemplate(ctx, mondayIn)
	require.NoError(t, err)

	mondayIn.Start = model.TimeOfDay{Hour: 9, Minute: 30}
	mondayIn.End = model.TimeOfDay{Hour: 11}
	second, err := svc.CreateTemplate(ctx, mondayIn)
	require.NoError(t, err)

	// an unplanned entry later the same day
	oneOff := &model.ScheduleEntry{
		ID:          stores.id(),
		TeacherIDs:  []int64{teacher.ID},
		ClassType:   model.ClassTypeAttendance,
		StartTime:   monday.Add(14 * time.Hour),
		EndTime:     monday.Add(15 * time.Hour),
		IsUnplanned: true,
	}
	stores.entries[oneOff.ID] = oneOff

	week, err := svc.Week(ctx, monday.Add(48*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, monday, week.WeekStart)
	require.Len(t, week.Entries, 3)
	require.Len(t, week.Placements, 3)

	assert.Equal(t, 2, week.Placements[first.ID].TotalColumns)
	assert.Equal(t, 2, week.Placements[second.ID].TotalColumns)
	assert.NotEqual(t, week.Placements[first.ID].Column, week.Placements[second.ID].Column)
	assert.Equal(t, 1, week.Placements[oneOff.ID].TotalColumns)

	// projected occurrences land on the week's Monday with absolute timestamps
	assert.Equal(t, monday.Add(9*time.Hour), week.Entries[0].StartTime)
	require.NotNil(t, week.Entries[0].TemplateID)
	assert.Equal(t, first.ID, *week.Entries[0].TemplateID)
}
