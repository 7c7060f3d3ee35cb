package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/controller/state"
	"github.com/Freeeeeet/classtrack_bot/internal/model"
)

// HandleStart handles the /start command
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user := update.Message.From

	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}

	teacher, err := h.teacherService.Register(ctx, user.ID, name, model.TeacherCategoryAuxiliar, 0)
	if err != nil {
		h.logger.Error("Failed to register teacher", zap.Error(err))
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Registration failed. Please try again later.",
		})
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Hi, %s!\n\n"+
			"This bot tracks the weekly class schedule and teacher attendance.\n\n"+
			"Commands:\n"+
			"/week - This week's schedule as an image\n"+
			"/checkin - Check in now\n"+
			"/checkout - Check out now\n"+
			"/workload - Worked vs contracted hours\n"+
			"/myclasses - My recurring classes\n"+
			"/addclass - Add a recurring class\n"+
			"/addlog - Add a work log manually\n"+
			"/help - Help",
		teacher.Name,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcomeText,
	})
}

// HandleHelp handles the /help command
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Commands:\n\n" +
		"/week - Schedule of the current week\n" +
		"/checkin - Open a work log; links to your planned class when one is running\n" +
		"/checkout - Close your open work log\n" +
		"/workload - Worked, contracted, overtime and deficit hours\n" +
		"/myclasses - Your recurring classes\n" +
		"/addclass - Add a recurring class (dialog)\n" +
		"/addlog - Add an already-finished work log (dialog)\n" +
		"/cancel - Cancel the current dialog"

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}

// HandleCancel handles the /cancel command and aborts the current dialog
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID

	if h.stateManager.GetState(telegramID) == state.StateNone {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "❌ Nothing to cancel.",
		})
		return
	}

	h.stateManager.ClearState(telegramID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "✅ Dialog cancelled.",
	})
}

// HandleTextMessage routes free-form text to the active dialog
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID

	switch h.stateManager.GetState(telegramID) {
	case state.StateAddClassSpec:
		h.processAddClassSpec(ctx, b, update)
	case state.StateAddLogSpec:
		h.processAddLogSpec(ctx, b, update)
	}
}
