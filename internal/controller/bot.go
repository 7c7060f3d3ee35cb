package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/classtrack_bot/internal/controller/handlers"
	"github.com/Freeeeeet/classtrack_bot/internal/controller/state"
	"github.com/Freeeeeet/classtrack_bot/internal/service"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	teacherService *service.TeacherService,
	scheduleService *service.ScheduleService,
	attendanceService *service.AttendanceService,
	logger *zap.Logger,
) *BotController {
	stateManager := state.NewManager()

	cmdHandlers := handlers.NewHandlers(
		teacherService,
		scheduleService,
		attendanceService,
		stateManager,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers registers all command handlers
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, c.handlers.HandleWeek)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/checkin", bot.MatchTypeExact, c.handlers.HandleCheckIn)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/checkout", bot.MatchTypeExact, c.handlers.HandleCheckOut)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/workload", bot.MatchTypeExact, c.handlers.HandleWorkload)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myclasses", bot.MatchTypeExact, c.handlers.HandleMyClasses)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addclass", bot.MatchTypeExact, c.handlers.HandleAddClassStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addlog", bot.MatchTypeExact, c.handlers.HandleAddLogStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// free-form text feeds the dialog state machine
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	return c.setCommands(ctx)
}

// setCommands installs the bot command menu
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "week", Description: "📅 This week's schedule"},
		{Command: "checkin", Description: "🟢 Check in"},
		{Command: "checkout", Description: "🔴 Check out"},
		{Command: "workload", Description: "📊 Worked vs contracted hours"},
		{Command: "myclasses", Description: "📚 My recurring classes"},
		{Command: "addclass", Description: "➕ Add a recurring class"},
		{Command: "addlog", Description: "🕐 Add a work log manually"},
		{Command: "cancel", Description: "❌ Cancel the current dialog"},
		{Command: "help", Description: "❓ Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start runs the bot until ctx is cancelled
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
