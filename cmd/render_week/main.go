package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/render"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// Renders a sample week to week_schedule.png for eyeballing layout changes.
func main() {
	weekStart := schedule.WeekStart(time.Now())

	templates := []*model.ScheduleEntry{
		{
			ID:         1,
			TeacherIDs: []int64{1},
			ClassType:  model.ClassTypeGroup,
			Capacity:   intPtr(12),
			Weekly: &model.WeeklyPattern{
				Weekday: time.Monday,
				Start:   model.TimeOfDay{Hour: 9, Minute: 0},
				End:     model.TimeOfDay{Hour: 10, Minute: 30},
			},
		},
		{
			ID:         2,
			TeacherIDs: []int64{2},
			ClassType:  model.ClassTypePrivate,
			Weekly: &model.WeeklyPattern{
				Weekday: time.Monday,
				Start:   model.TimeOfDay{Hour: 9, Minute: 30},
				End:     model.TimeOfDay{Hour: 11, Minute: 0},
			},
		},
		{
			ID:         3,
			TeacherIDs: []int64{1, 2},
			ClassType:  model.ClassTypeWorkshop,
			Weekly: &model.WeeklyPattern{
				Weekday: time.Wednesday,
				Start:   model.TimeOfDay{Hour: 15, Minute: 0},
				End:     model.TimeOfDay{Hour: 17, Minute: 0},
			},
		},
		{
			ID:         4,
			TeacherIDs: []int64{2},
			ClassType:  model.ClassTypeGroup,
			Weekly: &model.WeeklyPattern{
				Weekday: time.Friday,
				Start:   model.TimeOfDay{Hour: 18, Minute: 0},
				End:     model.TimeOfDay{Hour: 19, Minute: 30},
			},
		},
	}

	// an unplanned attendance entry, as /checkin with no class creates
	oneOffs := []*model.ScheduleEntry{
		{
			ID:          100,
			TeacherIDs:  []int64{1},
			ClassType:   model.ClassTypeAttendance,
			StartTime:   weekStart.AddDate(0, 0, 1).Add(12 * time.Hour),
			EndTime:     weekStart.AddDate(0, 0, 1).Add(13 * time.Hour),
			IsUnplanned: true,
		},
	}

	entries := schedule.BuildWeek(templates, oneOffs, nil, weekStart)

	png, err := render.Render(render.WeekView{
		WeekStart:  weekStart,
		Entries:    entries,
		Placements: schedule.Layout(entries),
		TeacherNames: map[int64]string{
			1: "Ana",
			2: "Marco",
		},
		Now: time.Now(),
	})
	if err != nil {
		fmt.Printf("Failed to render image: %v\n", err)
		os.Exit(1)
	}

	filename := "week_schedule.png"
	if err := os.WriteFile(filename, png, 0644); err != nil {
		fmt.Printf("Failed to write file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Image saved to %s\n", filename)
	fmt.Printf("📅 Week of %s\n", weekStart.Format("02.01.2006"))
	fmt.Printf("📊 Entries: %d\n", len(entries))
}

func intPtr(i int) *int {
	return &i
}
