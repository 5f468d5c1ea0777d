// Package telegram hosts the Telegram client, update routing, and failure
// classification.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tg_shift_bot/internal/command"
	"tg_shift_bot/internal/config"
	"tg_shift_bot/internal/logging"
)

// botAPI is what the client needs from the underlying bot library: the
// outbound capability plus the long-polling loop.
type botAPI interface {
	command.Client
	Start(ctx context.Context)
}

var (
	defaultAllowedUpdates = bot.AllowedUpdates{
		"message",
		"edited_message",
		"callback_query",
		"inline_query",
		"chosen_inline_result",
	}

	createBot = func(token string, options ...bot.Option) (botAPI, error) {
		return bot.New(token, options...)
	}

	// cooldownSleep pauses the transport after a network failure; swapped in tests.
	cooldownSleep = time.Sleep
)

// Client wraps the Telegram bot instance, the update router, and logging.
type Client struct {
	api    botAPI
	router *Router
	logger *logrus.Entry
}

// NewClient initializes the Telegram bot with long polling wired to the
// given router.
func NewClient(cfg config.Config, router *Router, logger *logrus.Entry) (*Client, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	if router == nil {
		return nil, errors.New("router is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	c := &Client{
		router: router,
		logger: logger,
	}

	tgBot, err := createBot(cfg.TelegramToken,
		bot.WithAllowedUpdates(defaultAllowedUpdates),
		bot.WithDefaultHandler(c.handleUpdate),
		bot.WithErrorsHandler(c.handlePollError),
	)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot client: %w", err)
	}

	c.api = tgBot
	return c, nil
}

// API exposes the outbound capability with error mapping applied, for the
// webhook adapter and anything else that sends on this bot's behalf.
func (c *Client) API() command.Client {
	return WrapClient(c.api)
}

// Start begins receiving updates via long polling until the context is canceled.
func (c *Client) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger.WithFields(logging.Fields{
		"event":           "telegram_listen",
		"allowed_updates": defaultAllowedUpdates,
	}).Info("starting telegram long polling")

	c.api.Start(ctx)

	c.logger.WithField("event", "telegram_stopped").Info("telegram polling stopped")
}

func (c *Client) handleUpdate(ctx context.Context, _ *bot.Bot, upd *models.Update) {
	if upd == nil {
		return
	}

	if err := c.router.Route(ctx, c.API(), upd); err != nil {
		ReportFailure(c.logger, err)
	}
}

func (c *Client) handlePollError(err error) {
	if err == nil {
		return
	}

	ReportFailure(c.logger, mapError(err))
}

// ReportFailure logs a classified failure and, for transport-level errors,
// pauses the caller for the fixed cooldown before it resumes accepting
// updates.
func ReportFailure(logger *logrus.Entry, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = logging.Logger()
	}

	msg, cooldown := Classify(err)
	logger.WithFields(logging.Fields{
		"event":    "update_error",
		"cooldown": cooldown,
	}).Error(msg)

	if cooldown {
		cooldownSleep(TransportCooldown)
	}
}
