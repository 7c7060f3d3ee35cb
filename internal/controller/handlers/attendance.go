package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/apperr"
	"github.com/Freeeeeet/classtrack_bot/internal/controller/state"
	"github.com/Freeeeeet/classtrack_bot/internal/service"
)

// HandleCheckIn handles the /checkin command
func (h *Handlers) HandleCheckIn(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	teacher := h.requireTeacher(ctx, b, update)
	if teacher == nil {
		return
	}

	now := time.Now()
	log, entry, err := h.attendanceService.CheckIn(ctx, teacher.ID, now)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	text := fmt.Sprintf("✅ Checked in at %s.", log.CheckIn.Format("15:04"))
	if entry != nil {
		text += "\n📝 No planned class right now, created an attendance entry."
	} else {
		text += "\n🔗 Linked to your planned class."
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

// HandleCheckOut handles the /checkout command
func (h *Handlers) HandleCheckOut(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	teacher := h.requireTeacher(ctx, b, update)
	if teacher == nil {
		return
	}

	now := time.Now()
	log, _, err := h.attendanceService.CheckOutTeacher(ctx, teacher.ID, now)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	worked := log.Duration(now)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("✅ Checked out at %s. Worked %s.",
			log.CheckOut.Format("15:04"), formatDuration(worked)),
	})
}

// HandleWorkload handles the /workload command
func (h *Handlers) HandleWorkload(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	workloads, err := h.attendanceService.Workloads(ctx, time.Now())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}

	teachers, err := h.teacherService.List(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return
	}
	names := make(map[int64]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}

	var sb strings.Builder
	sb.WriteString("📊 Weekly workload:\n\n")
	for _, w := range workloads {
		sb.WriteString(fmt.Sprintf("%s: %.1fh of %.1fh", names[w.TeacherID], w.WorkedHours, w.ContractedHours))
		if w.OvertimeHours > 0 {
			sb.WriteString(fmt.Sprintf(" (overtime %.1fh)", w.OvertimeHours))
		} else if w.DeficitHours > 0 {
			sb.WriteString(fmt.Sprintf(" (deficit %.1fh)", w.DeficitHours))
		}
		sb.WriteString("\n")
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}

// HandleAddLogStart starts the manual work log dialog
func (h *Handlers) HandleAddLogStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	if h.requireTeacher(ctx, b, update) == nil {
		return
	}

	h.stateManager.SetState(update.Message.From.ID, state.StateAddLogSpec)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: "🕐 Send the finished log as:\n" +
			"2025-08-11 09:00-12:30\n\n" +
			"/cancel to abort.",
	})
}

var addLogSpecRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}) (\d{1,2}:\d{2})-(\d{1,2}:\d{2})$`)

// processAddLogSpec parses the manual log line and records it
func (h *Handlers) processAddLogSpec(ctx context.Context, b *bot.Bot, update *models.Update) {
	teacher := h.requireTeacher(ctx, b, update)
	if teacher == nil {
		return
	}

	chatID := update.Message.Chat.ID
	m := addLogSpecRe.FindStringSubmatch(strings.TrimSpace(update.Message.Text))
	if m == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Expected format: 2025-08-11 09:00-12:30",
		})
		return
	}

	checkIn, err1 := time.ParseInLocation("2006-01-02 15:04", m[1]+" "+m[2], time.Local)
	checkOut, err2 := time.ParseInLocation("2006-01-02 15:04", m[1]+" "+m[3], time.Local)
	if err1 != nil || err2 != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not parse that date and time.",
		})
		return
	}

	_, _, err := h.attendanceService.AddManualLog(ctx, service.ManualLogInput{
		TeacherID: teacher.ID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	if err != nil {
		h.replyError(ctx, b, chatID, err)
		return
	}

	h.stateManager.ClearState(update.Message.From.ID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✅ Work log recorded.",
	})
}

// requireTeacher resolves the sender to a registered teacher or replies with
// a hint to run /start
func (h *Handlers) requireTeacher(ctx context.Context, b *bot.Bot, update *models.Update) *teacherRef {
	if update.Message.From == nil {
		return nil
	}

	teacher, err := h.teacherService.GetByTelegramID(ctx, update.Message.From.ID)
	if err != nil {
		h.logger.Error("Failed to resolve teacher", zap.Error(err))
		h.replyError(ctx, b, update.Message.Chat.ID, err)
		return nil
	}
	if teacher == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ You are not registered yet. Send /start first.",
		})
		return nil
	}

	return &teacherRef{ID: teacher.ID, Name: teacher.Name}
}

type teacherRef struct {
	ID   int64
	Name string
}

// replyError turns service errors into user-facing messages
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	text := "❌ Something went wrong. Please try again later."
	if apperr.IsValidation(err) || apperr.IsNotFound(err) {
		text = "❌ " + err.Error()
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}
