// Package command implements the bot's command registry and the canned
// command handlers it dispatches to.
package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tg_shift_bot/internal/logging"
)

// Registered command tokens. Matching is exact and case-sensitive.
const (
	CmdInlineKeyboard = "/inline_keyboard"
	CmdKeyboard       = "/keyboard"
	CmdRemove         = "/remove"
	CmdPhoto          = "/photo"
	CmdRequest        = "/request"
	CmdInlineMode     = "/inline_mode"
	CmdThrow          = "/throw"
	CmdOpenDay        = "/open_day"
	CmdCloseDay       = "/close_day"
)

const (
	inlineKeyboardPrompt = "Pick a button:"
	keyboardPrompt       = "Custom keyboard enabled."
	removeConfirmText    = "Custom keyboard removed."
	requestPrompt        = "Share your location or contact:"
	inlineModePrompt     = "Try the inline mode:"
	inlineModeQuery      = "shift"
	usageHeader          = "Available commands:"
)

// ErrProbe is the deliberate failure raised by /throw to exercise the error
// path end to end. It must never be caught below the transport adapter.
var ErrProbe = errors.New("diagnostic probe: index 1 out of range")

// typingDelay is the simulated latency before /inline_keyboard replies.
// Package var so tests can shorten it.
var typingDelay = 1 * time.Second

// Handlers owns the static content every command handler needs.
type Handlers struct {
	photoPath string
	logger    *logrus.Entry
}

// NewHandlers constructs the handler set. photoPath points at the static
// image sent by /photo.
func NewHandlers(photoPath string, logger *logrus.Entry) *Handlers {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Handlers{
		photoPath: photoPath,
		logger:    logger,
	}
}

// Registry builds the immutable default registry: every command in its fixed
// registration order, with the usage handler as fallback.
func (h *Handlers) Registry() *Registry {
	reg := NewRegistry(nil)

	entries := []struct {
		token   string
		handler HandlerFunc
	}{
		{CmdInlineKeyboard, h.InlineKeyboard},
		{CmdKeyboard, h.Keyboard},
		{CmdRemove, h.Remove},
		{CmdPhoto, h.Photo},
		{CmdRequest, h.Request},
		{CmdInlineMode, h.InlineMode},
		{CmdThrow, h.Throw},
		{CmdOpenDay, h.OpenDay},
		{CmdCloseDay, h.CloseDay},
	}

	for _, e := range entries {
		if err := reg.Register(e.token, e.handler); err != nil {
			// Tokens above are compile-time constants; a duplicate is a
			// programming error, not a runtime condition.
			panic(err)
		}
	}

	reg.SetFallback(h.Usage(reg))
	return reg
}

// InlineKeyboard shows a typing indicator, waits the simulated latency, then
// sends a 2x2 grid of callback-data buttons.
func (h *Handlers) InlineKeyboard(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	if _, err := client.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: msg.Chat.ID,
		Action: models.ChatActionTyping,
	}); err != nil {
		return nil, err
	}

	if err := wait(ctx, typingDelay); err != nil {
		return nil, err
	}

	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "1.1", CallbackData: "button 1.1"},
				{Text: "1.2", CallbackData: "button 1.2"},
			},
			{
				{Text: "2.1", CallbackData: "button 2.1"},
				{Text: "2.2", CallbackData: "button 2.2"},
			},
		},
	}

	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        inlineKeyboardPrompt,
		ReplyMarkup: markup,
	})
}

// Keyboard sends a prompt with a 2x2 auto-resized reply keyboard.
func (h *Handlers) Keyboard(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	markup := &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: "Button 1"},
				{Text: "Button 2"},
			},
			{
				{Text: "Button 3"},
				{Text: "Button 4"},
			},
		},
		ResizeKeyboard: true,
	}

	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        keyboardPrompt,
		ReplyMarkup: markup,
	})
}

// Remove confirms and removes any active custom keyboard.
func (h *Handlers) Remove(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        removeConfirmText,
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
}

// Request sends a reply keyboard asking for the user's live location and
// contact card.
func (h *Handlers) Request(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	markup := &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: "Share location", RequestLocation: true},
				{Text: "Share contact", RequestContact: true},
			},
		},
		ResizeKeyboard: true,
	}

	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        requestPrompt,
		ReplyMarkup: markup,
	})
}

// InlineMode sends a single button that switches the user to an inline query
// in the current chat.
func (h *Handlers) InlineMode(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Switch to inline mode", SwitchInlineQueryCurrentChat: inlineModeQuery},
			},
		},
	}

	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        inlineModePrompt,
		ReplyMarkup: markup,
	})
}

// Throw fails deliberately so the transport error path stays verifiable.
func (h *Handlers) Throw(context.Context, Client, *models.Message) (*models.Message, error) {
	return nil, ErrProbe
}

// Usage returns the fallback handler: a help text listing every registered
// command, removing any active custom keyboard.
func (h *Handlers) Usage(reg *Registry) HandlerFunc {
	return func(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
		var b strings.Builder
		b.WriteString(usageHeader)
		for _, token := range reg.Tokens() {
			b.WriteString("\n")
			b.WriteString(token)
		}

		return client.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      msg.Chat.ID,
			Text:        b.String(),
			ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
		})
	}
}

// wait blocks for the given duration or until the context is canceled.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
