package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/schedule"
)

// Canvas geometry
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 120
	dayPaddingX     = 8
	columnGap       = 2.0
	minEntryHeight  = 8.0
	totalDaysInWeek = 7
	hourPaddingTop  = 2
	hourPaddingBot  = 2
	defaultMinHour  = 8
	defaultMaxHour  = 20
)

// Color scheme
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}
	entryTextColor   = color.RGBA{20, 24, 28, 230}
	legendTextColor  = color.RGBA{90, 95, 100, 220}

	classTypeColors = map[model.ClassType]color.RGBA{
		model.ClassTypeGroup:      {133, 193, 85, 220},
		model.ClassTypePrivate:    {121, 168, 218, 220},
		model.ClassTypeWorkshop:   {240, 180, 100, 220},
		model.ClassTypeAttendance: {200, 160, 200, 220},
	}
	defaultEntryColor = color.RGBA{220, 220, 220, 200}
)

// WeekView is everything the renderer needs for one week
type WeekView struct {
	WeekStart    time.Time
	Entries      []*model.ScheduleEntry
	Placements   map[int64]schedule.Placement
	TeacherNames map[int64]string
	Now          time.Time
}

type hourRange struct {
	start int
	end   int
	total int
}

// Render draws the week grid as a PNG. Overlapping entries are packed into
// the columns computed by the layout engine, so they never cover each other.
func Render(view WeekView) ([]byte, error) {
	weekStart := schedule.WeekStart(view.WeekStart)
	today := normalizeToDay(view.Now)

	entriesByDay := groupEntriesByDay(view.Entries)
	hours := calculateHourRange(view.Entries)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, weekStart)
	drawHourLabels(dc, hours, cellHeight)

	currentDate := weekStart
	for dayIndex := 0; dayIndex < totalDaysInWeek; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, isSameDay(currentDate, today))
		drawDayHeader(dc, currentDate, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)

		for _, entry := range entriesByDay[dayKey(currentDate)] {
			drawEntry(dc, entry, view, x, dayWidth, hours, cellHeight)
		}

		currentDate = currentDate.AddDate(0, 0, 1)
	}

	drawCurrentTimeLine(dc, view.Now, weekStart, hours, cellHeight, dayWidth)
	drawLegend(dc)

	return encodeImage(dc)
}

func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func isSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func groupEntriesByDay(entries []*model.ScheduleEntry) map[string][]*model.ScheduleEntry {
	byDay := make(map[string][]*model.ScheduleEntry)
	for _, e := range entries {
		key := dayKey(e.StartTime)
		byDay[key] = append(byDay[key], e)
	}
	return byDay
}

func calculateHourRange(entries []*model.ScheduleEntry) hourRange {
	minHour := 24
	maxHour := 0

	for _, e := range entries {
		startH := e.StartTime.Hour()
		endH := e.EndTime.Hour()
		if e.EndTime.Minute() > 0 {
			endH++
		}
		// midnight-crossing entries keep the grid full-height
		if e.EndTime.Day() != e.StartTime.Day() {
			endH = 23
		}
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := minHour - hourPaddingTop
	endHour := maxHour + hourPaddingBot
	if startHour < 0 {
		startHour = 0
	}
	if endHour > 23 {
		endHour = 23
	}

	return hourRange{start: startHour, end: endHour, total: endHour - startHour + 1}
}

func drawHeader(dc *gg.Context, weekStart time.Time) {
	weekEnd := weekStart.AddDate(0, 0, 6)
	title := fmt.Sprintf("%s — %s", weekStart.Format("Jan 2"), weekEnd.Format("Jan 2, 2006"))

	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(imageWidth)/2-w/2, float64(headerHeight)/4+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx < hours.total; hIdx++ {
		actualHour := hours.start + hIdx
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		label := fmt.Sprintf("%02d:00", actualHour)
		dc.DrawStringAnchored(label, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	if isToday {
		dc.SetColor(todayBgColor)
	} else if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("Mon"), x+float64(dayWidth)/2, y-28, 0.5, 0.5)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y-12, 0.5, 0.5)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawEntry(dc *gg.Context, entry *model.ScheduleEntry, view WeekView, dayX float64, dayWidth int, hours hourRange, cellHeight float64) {
	startHour := float64(entry.StartTime.Hour()) + float64(entry.StartTime.Minute())/60.0
	endHour := float64(entry.EndTime.Hour()) + float64(entry.EndTime.Minute())/60.0
	if entry.EndTime.Day() != entry.StartTime.Day() {
		endHour = float64(hours.end) + 1 // clip at the bottom of the lane
	}

	entryY := float64(headerHeight) + (startHour-float64(hours.start))*cellHeight
	entryHeight := (endHour - startHour) * cellHeight
	if entryHeight < minEntryHeight {
		entryHeight = minEntryHeight
	}

	placement, ok := view.Placements[entry.ID]
	if !ok {
		placement = schedule.Placement{Column: 0, TotalColumns: 1}
	}

	laneWidth := float64(dayWidth) - float64(dayPaddingX*2)
	colWidth := laneWidth / float64(placement.TotalColumns)
	entryX := dayX + float64(dayPaddingX) + float64(placement.Column)*colWidth

	fill, ok := classTypeColors[entry.ClassType]
	if !ok {
		fill = defaultEntryColor
	}
	dc.SetColor(fill)
	dc.DrawRoundedRectangle(entryX+columnGap/2, entryY, colWidth-columnGap, entryHeight, 4)
	dc.Fill()

	label := fmt.Sprintf("%s-%s", entry.StartTime.Format("15:04"), entry.EndTime.Format("15:04"))
	dc.SetColor(entryTextColor)
	dc.DrawStringAnchored(label, entryX+colWidth/2, entryY+10, 0.5, 0.5)

	if name := teacherLabel(entry, view.TeacherNames); name != "" && entryHeight > 26 {
		dc.DrawStringAnchored(name, entryX+colWidth/2, entryY+24, 0.5, 0.5)
	}
}

func teacherLabel(entry *model.ScheduleEntry, names map[int64]string) string {
	if len(entry.TeacherIDs) == 0 {
		return ""
	}
	name := names[entry.TeacherIDs[0]]
	if len(entry.TeacherIDs) > 1 {
		name += " +"
	}
	return name
}

func drawCurrentTimeLine(dc *gg.Context, now, weekStart time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	today := normalizeToDay(now)
	dayIndex := -1
	currentDate := weekStart
	for i := 0; i < totalDaysInWeek; i++ {
		if isSameDay(currentDate, today) {
			dayIndex = i
			break
		}
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	if dayIndex < 0 {
		return
	}

	nowHour := float64(now.Hour()) + float64(now.Minute())/60.0
	if nowHour < float64(hours.start) || nowHour > float64(hours.end)+1 {
		return
	}

	x := float64(leftLabelsWidth + dayIndex*dayWidth)
	y := float64(headerHeight) + (nowHour-float64(hours.start))*cellHeight

	dc.SetLineWidth(2)
	dc.SetColor(currentTimeColor)
	dc.DrawLine(x, y, x+float64(dayWidth), y)
	dc.Stroke()
}

func drawLegend(dc *gg.Context) {
	x := float64(imageWidth - legendWidth + 10)
	y := float64(headerHeight + 10)

	dc.SetColor(legendTextColor)
	dc.DrawString("Classes", x, y)
	y += 20

	for _, ct := range []model.ClassType{
		model.ClassTypeGroup,
		model.ClassTypePrivate,
		model.ClassTypeWorkshop,
		model.ClassTypeAttendance,
	} {
		dc.SetColor(classTypeColors[ct])
		dc.DrawRectangle(x, y-8, 12, 12)
		dc.Fill()
		dc.SetColor(legendTextColor)
		dc.DrawString(string(ct), x+18, y+2)
		y += 20
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week image: %w", err)
	}
	return buf.Bytes(), nil
}
