package handlers

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/controller/state"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
	"github.com/Freeeeeet/classtrack_bot/internal/render"
	"github.com/Freeeeeet/classtrack_bot/internal/service"
)

// HandleWeek handles the /week command and sends the current week as an image
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	week, err := h.scheduleService.Week(ctx, time.Now())
	if err != nil {
		h.logger.Error("Failed to build week schedule", zap.Error(err))
		h.replyError(ctx, b, chatID, err)
		return
	}

	if len(week.Entries) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📅 Nothing scheduled this week.",
		})
		return
	}

	teachers, err := h.teacherService.List(ctx)
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}
	names := make(map[int64]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}

	png, err := render.Render(render.WeekView{
		WeekStart:    week.WeekStart,
		Entries:      week.Entries,
		Placements:   week.Placements,
		TeacherNames: names,
		Now:          time.Now(),
	})
	if err != nil {
		h.logger.Error("Failed to render week image", zap.Error(err))
		h.replyError(ctx, b, chatID, err)
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "week.png",
			Data:     bytes.NewReader(png),
		},
		Caption: fmt.Sprintf("📅 Week of %s", week.WeekStart.Format("02.01.2006")),
	})
	if err != nil {
		h.logger.Error("Failed to send week image", zap.Error(err))
	}
}

// HandleMyClasses handles the /myclasses command
func (h *Handlers) HandleMyClasses(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	teacher := h.requireTeacher(ctx, b, update)
	if teacher == nil {
		return
	}

	templates, err := h.scheduleService.TemplatesByTeacher(ctx, teacher.ID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	if len(templates) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "📅 You have no recurring classes yet. Use /addclass to add one.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📅 Your recurring classes:\n\n")
	for _, tpl := range templates {
		sb.WriteString(fmt.Sprintf("• %s %02d:%02d-%02d:%02d %s\n",
			tpl.Weekly.Weekday.String()[:3],
			tpl.Weekly.Start.Hour, tpl.Weekly.Start.Minute,
			tpl.Weekly.End.Hour, tpl.Weekly.End.Minute,
			tpl.ClassType,
		))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}

// HandleAddClassStart starts the add-class dialog
func (h *Handlers) HandleAddClassStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if h.requireTeacher(ctx, b, update) == nil {
		return
	}

	h.stateManager.SetState(update.Message.From.ID, state.StateAddClassSpec)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "📝 Send the class as:\n" +
			"mon,wed 09:00-10:30 group\n\n" +
			"Days: mon tue wed thu fri sat sun\n" +
			"Types: group, private, workshop\n" +
			"Optional capacity at the end: mon 18:00-19:00 group 12\n\n" +
			"/cancel to abort.",
	})
}

var addClassSpecRe = regexp.MustCompile(`^([a-z,]+) (\d{1,2}:\d{2})-(\d{1,2}:\d{2}) (group|private|workshop)(?: (\d+))?$`)

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// processAddClassSpec parses the class line and creates the templates
func (h *Handlers) processAddClassSpec(ctx context.Context, b *bot.Bot, update *models.Update) {
	teacher := h.requireTeacher(ctx, b, update)
	if teacher == nil {
		return
	}

	chatID := update.Message.Chat.ID
	m := addClassSpecRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(update.Message.Text)))
	if m == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Expected format: mon,wed 09:00-10:30 group",
		})
		return
	}

	var weekdays []time.Weekday
	for _, name := range strings.Split(m[1], ",") {
		day, ok := weekdayNames[name]
		if !ok {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   fmt.Sprintf("❌ Unknown day %q. Use mon..sun.", name),
			})
			return
		}
		weekdays = append(weekdays, day)
	}

	start, err1 := parseTimeOfDay(m[2])
	end, err2 := parseTimeOfDay(m[3])
	if err1 != nil || err2 != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not parse the time range.",
		})
		return
	}

	var capacity *int
	if m[5] != "" {
		c, err := strconv.Atoi(m[5])
		if err != nil || c <= 0 {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Capacity must be a positive number.",
			})
			return
		}
		capacity = &c
	}

	_, created, err := h.scheduleService.CreateTemplateGroup(ctx, service.TemplateGroupInput{
		TeacherIDs: []int64{teacher.ID},
		ClassType:  model.ClassType(m[4]),
		Capacity:   capacity,
		Weekdays:   weekdays,
		Start:      start,
		End:        end,
	})
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.stateManager.ClearState(update.Message.From.ID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("✅ Added %d recurring class(es).", len(created)),
	})
}

func parseTimeOfDay(s string) (model.TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.TimeOfDay{}, err
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.TimeOfDay{}, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return model.TimeOfDay{}, fmt.Errorf("time of day out of range: %s", s)
	}
	return model.TimeOfDay{Hour: hour, Minute: minute}, nil
}
