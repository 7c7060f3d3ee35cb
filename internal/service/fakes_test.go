package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// fakeStores is an in-memory implementation of every store interface the
// services depend on. Apply* mirrors the transactional semantics of the real
// attendance repository without a database.
type fakeStores struct {
	teachers map[int64]*model.Teacher
	students map[int64]*model.Student
	entries  map[int64]*model.ScheduleEntry
	logs     map[int64]*model.WorkLog
	nextID   int64
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		teachers: make(map[int64]*model.Teacher),
		students: make(map[int64]*model.Student),
		entries:  make(map[int64]*model.ScheduleEntry),
		logs:     make(map[int64]*model.WorkLog),
		nextID:   1,
	}
}

func (f *fakeStores) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStores) addTeacher(teacher *model.Teacher) *model.Teacher {
	if teacher.ID == 0 {
		teacher.ID = f.id()
	}
	f.teachers[teacher.ID] = teacher
	return teacher
}

func (f *fakeStores) addStudent(student *model.Student) *model.Student {
	if student.ID == 0 {
		student.ID = f.id()
	}
	f.students[student.ID] = student
	return student
}

// TeacherStore

func (f *fakeStores) Create(ctx context.Context, teacher *model.Teacher) error {
	f.addTeacher(teacher)
	return nil
}

func (f *fakeStores) GetByID(ctx context.Context, id int64) (*model.Teacher, error) {
	return f.teachers[id], nil
}

func (f *fakeStores) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Teacher, error) {
	for _, t := range f.teachers {
		if t.TelegramID == telegramID {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeStores) List(ctx context.Context) ([]*model.Teacher, error) {
	var out []*model.Teacher
	for id := int64(1); id < f.nextID; id++ {
		if t, ok := f.teachers[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// fakeEntryStore implements EntryStore over the shared state; split off so
// the Get/Create method sets don't collide with the teacher store's.
type fakeEntryStore struct{ *fakeStores }

func (f fakeEntryStore) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	entry.ID = f.id()
	f.entries[entry.ID] = entry
	return nil
}

func (f fakeEntryStore) GetByID(ctx context.Context, id int64) (*model.ScheduleEntry, error) {
	return f.entries[id], nil
}

func (f fakeEntryStore) Update(ctx context.Context, entry *model.ScheduleEntry) error {
	if _, ok := f.entries[entry.ID]; !ok {
		return apperr.NotFoundf("schedule entry %d", entry.ID)
	}
	f.entries[entry.ID] = entry
	return nil
}

func (f fakeEntryStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.entries[id]; !ok {
		return apperr.NotFoundf("schedule entry %d", id)
	}
	delete(f.entries, id)
	return nil
}

func (f fakeEntryStore) DeleteByGroupID(ctx context.Context, groupID uuid.UUID) error {
	deleted := false
	for id, e := range f.entries {
		if e.GroupID == groupID {
			delete(f.entries, id)
			deleted = true
		}
	}
	if !deleted {
		return apperr.NotFoundf("schedule entry group %s", groupID)
	}
	return nil
}

func (f fakeEntryStore) ListTemplates(ctx context.Context) ([]*model.ScheduleEntry, error) {
	var out []*model.ScheduleEntry
	for id := int64(1); id < f.nextID; id++ {
		if e, ok := f.entries[id]; ok && e.IsRecurring() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeEntryStore) ListTemplatesByTeacher(ctx context.Context, teacherID int64) ([]*model.ScheduleEntry, error) {
	templates, _ := f.ListTemplates(ctx)
	var out []*model.ScheduleEntry
	for _, e := range templates {
		if e.HasTeacher(teacherID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeEntryStore) GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*model.ScheduleEntry, error) {
	var out []*model.ScheduleEntry
	for id := int64(1); id < f.nextID; id++ {
		if e, ok := f.entries[id]; ok && e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeEntryStore) ListOneOffsBetween(ctx context.Context, from, to time.Time) ([]*model.ScheduleEntry, error) {
	var out []*model.ScheduleEntry
	for id := int64(1); id < f.nextID; id++ {
		e, ok := f.entries[id]
		if !ok || e.IsRecurring() {
			continue
		}
		if e.StartTime.Before(to) && e.EndTime.After(from) {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeStudentStore implements StudentStore over the shared state.
type fakeStudentStore struct{ *fakeStores }

func (f fakeStudentStore) Create(ctx context.Context, student *model.Student) error {
	f.addStudent(student)
	return nil
}

func (f fakeStudentStore) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return f.students[id], nil
}

func (f fakeStudentStore) List(ctx context.Context) ([]*model.Student, error) {
	var out []*model.Student
	for id := int64(1); id < f.nextID; id++ {
		if s, ok := f.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// fakeWorkLogStore implements WorkLogStore over the shared state.
type fakeWorkLogStore struct{ *fakeStores }

func (f fakeWorkLogStore) GetByID(ctx context.Context, id int64) (*model.WorkLog, error) {
	return f.logs[id], nil
}

func (f fakeWorkLogStore) GetOpenByTeacher(ctx context.Context, teacherID int64) (*model.WorkLog, error) {
	for id := int64(1); id < f.nextID; id++ {
		if l, ok := f.logs[id]; ok && l.TeacherID == teacherID && l.IsOpen() {
			return l, nil
		}
	}
	return nil, nil
}

func (f fakeWorkLogStore) ListOpen(ctx context.Context) ([]*model.WorkLog, error) {
	var out []*model.WorkLog
	for id := int64(1); id < f.nextID; id++ {
		if l, ok := f.logs[id]; ok && l.IsOpen() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f fakeWorkLogStore) List(ctx context.Context) ([]*model.WorkLog, error) {
	var out []*model.WorkLog
	for id := int64(1); id < f.nextID; id++ {
		if l, ok := f.logs[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f fakeWorkLogStore) ListBetween(ctx context.Context, from, to time.Time) ([]*model.WorkLog, error) {
	var out []*model.WorkLog
	for id := int64(1); id < f.nextID; id++ {
		l, ok := f.logs[id]
		if !ok {
			continue
		}
		if !l.CheckIn.Before(from) && l.CheckIn.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeAttendanceStore implements AttendanceStore over the shared state.
type fakeAttendanceStore struct{ *fakeStores }

func (f fakeAttendanceStore) ApplyCheckIn(ctx context.Context, plan *schedule.CheckInPlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	if plan.Entry != nil {
		plan.Entry.ID = f.id()
		f.entries[plan.Entry.ID] = plan.Entry
		entryID := plan.Entry.ID
		plan.Log.EntryID = &entryID
	} else {
		for _, l := range f.logs {
			if l.EntryID != nil && *l.EntryID == plan.LinkEntryID &&
				!l.CheckIn.Before(plan.LinkWindowStart) && l.CheckIn.Before(plan.LinkWindowEnd) {
				return nil, nil, apperr.Invariantf("entry %d already linked within window", plan.LinkEntryID)
			}
		}
		entryID := plan.LinkEntryID
		plan.Log.EntryID = &entryID
	}

	plan.Log.ID = f.id()
	f.logs[plan.Log.ID] = plan.Log
	if plan.Entry != nil {
		logID := plan.Log.ID
		plan.Entry.WorkLogID = &logID
	}
	return plan.Log, plan.Entry, nil
}

func (f fakeAttendanceStore) ApplyCheckOut(ctx context.Context, plan *schedule.CheckOutPlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	log, ok := f.logs[plan.LogID]
	if !ok || !log.IsOpen() {
		return nil, nil, apperr.NotFoundf("open work log %d", plan.LogID)
	}
	out := plan.CheckOut
	log.CheckOut = &out

	var entry *model.ScheduleEntry
	if plan.EntryID != 0 {
		entry = f.entries[plan.EntryID]
		if entry != nil {
			entry.EndTime = plan.EntryEnd
		}
	}
	return log, entry, nil
}

func (f fakeAttendanceStore) ApplyManualLog(ctx context.Context, plan *schedule.ManualLogPlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	plan.Entry.ID = f.id()
	f.entries[plan.Entry.ID] = plan.Entry
	entryID := plan.Entry.ID
	plan.Log.EntryID = &entryID
	plan.Log.ID = f.id()
	f.logs[plan.Log.ID] = plan.Log
	logID := plan.Log.ID
	plan.Entry.WorkLogID = &logID
	return plan.Log, plan.Entry, nil
}

func (f fakeAttendanceStore) ApplyManualLogUpdate(ctx context.Context, plan *schedule.ManualLogUpdatePlan) (*model.WorkLog, *model.ScheduleEntry, error) {
	log, ok := f.logs[plan.LogID]
	if !ok {
		return nil, nil, apperr.NotFoundf("work log %d", plan.LogID)
	}
	log.CheckIn = plan.CheckIn
	out := plan.CheckOut
	log.CheckOut = &out

	var entry *model.ScheduleEntry
	if plan.EntryID != 0 {
		entry = f.entries[plan.EntryID]
		if entry != nil {
			entry.StartTime = plan.EntryStart
			entry.EndTime = plan.EntryEnd
		}
	}
	return log, entry, nil
}
