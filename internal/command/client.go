package command

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Client is the outbound bot capability required by command handlers.
// *bot.Bot satisfies it directly; tests substitute fakes.
type Client interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	AnswerInlineQuery(ctx context.Context, params *bot.AnswerInlineQueryParams) (bool, error)
}

// HandlerFunc processes one command-bearing message and returns the final
// sent message, used only for logging. Failures propagate to the transport
// adapter; handlers never swallow them.
type HandlerFunc func(ctx context.Context, client Client, msg *models.Message) (*models.Message, error)
