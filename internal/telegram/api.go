package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"tg_shift_bot/internal/command"
)

// mappingClient decorates a command.Client so every failure leaving it is
// already classified into the local error taxonomy.
type mappingClient struct {
	next command.Client
}

// WrapClient returns a client whose errors are mapped for Classify.
func WrapClient(next command.Client) command.Client {
	return mappingClient{next: next}
}

func (m mappingClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	sent, err := m.next.SendMessage(ctx, params)
	return sent, mapError(err)
}

func (m mappingClient) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	sent, err := m.next.SendPhoto(ctx, params)
	return sent, mapError(err)
}

func (m mappingClient) SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error) {
	ok, err := m.next.SendChatAction(ctx, params)
	return ok, mapError(err)
}

func (m mappingClient) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	ok, err := m.next.AnswerCallbackQuery(ctx, params)
	return ok, mapError(err)
}

func (m mappingClient) AnswerInlineQuery(ctx context.Context, params *bot.AnswerInlineQueryParams) (bool, error) {
	ok, err := m.next.AnswerInlineQuery(ctx, params)
	return ok, mapError(err)
}
