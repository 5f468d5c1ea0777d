package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"tg_shift_bot/internal/command"
	"tg_shift_bot/internal/logging"
)

const (
	updateTypeMessage       = "message"
	updateTypeEditedMessage = "edited_message"
	updateTypeCallbackQuery = "callback_query"
	updateTypeInlineQuery   = "inline_query"
	updateTypeChosenResult  = "chosen_inline_result"
	updateTypeUnknown       = "unknown"
)

const (
	inlineResultID    = "1"
	inlineResultTitle = "Shift bot"
	inlineResultText  = "Hello from the shift bot inline mode."
)

// Router classifies an inbound update by its populated payload variant and
// delegates to exactly one branch. It holds no mutable state beyond the
// read-only registry, so concurrent routing needs no synchronization.
type Router struct {
	reg    *command.Registry
	logger *logrus.Entry
}

// NewRouter constructs a router over the given command registry.
func NewRouter(reg *command.Registry, logger *logrus.Entry) *Router {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Router{
		reg:    reg,
		logger: logger,
	}
}

// Route dispatches one update. The variants are checked in a fixed priority
// order; the first populated one wins. Unknown shapes are logged and dropped,
// never failed. Branch failures propagate to the transport adapter, which
// owns classification and cooldown.
func (r *Router) Route(ctx context.Context, client command.Client, upd *models.Update) error {
	if upd == nil {
		return nil
	}

	entry := r.logger.WithFields(logging.Fields{
		"update_id":      upd.ID,
		"update_type":    updateType(upd),
		"correlation_id": ksuid.New().String(),
	})

	switch {
	case upd.Message != nil:
		return r.dispatchMessage(ctx, client, upd.Message, entry)
	case upd.EditedMessage != nil:
		// Edits are handled exactly like new messages; there is no diffing.
		return r.dispatchMessage(ctx, client, upd.EditedMessage, entry)
	case upd.CallbackQuery != nil:
		return r.handleCallback(ctx, client, upd.CallbackQuery, entry)
	case upd.InlineQuery != nil:
		return r.handleInlineQuery(ctx, client, upd.InlineQuery, entry)
	case upd.ChosenInlineResult != nil:
		return r.handleChosenResult(ctx, client, upd.ChosenInlineResult, entry)
	default:
		entry.WithField("event", "update_unrouted").Info("ignoring update of unknown shape")
		return nil
	}
}

func (r *Router) dispatchMessage(ctx context.Context, client command.Client, msg *models.Message, entry *logrus.Entry) error {
	sent, err := r.reg.Dispatch(ctx, client, msg)
	if err != nil {
		return err
	}

	if sent != nil {
		entry.WithFields(logging.Fields{
			"event":           "command_handled",
			"chat_id":         sent.Chat.ID,
			"sent_message_id": sent.ID,
		}).Info("command reply sent")
	}

	return nil
}

// handleCallback acknowledges the query, then posts the derived text to the
// originating chat. The two sends are independent; a failed post after a
// successful acknowledgement is observable partial completion and propagates
// as-is.
func (r *Router) handleCallback(ctx context.Context, client command.Client, q *models.CallbackQuery, entry *logrus.Entry) error {
	text := "Selected: " + q.Data

	if _, err := client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		Text:            text,
	}); err != nil {
		return err
	}

	chatID := callbackChatID(q)
	if chatID == 0 {
		// Origin message is gone or inaccessible; reply to the user directly.
		chatID = q.From.ID
	}

	sent, err := client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return err
	}

	entry.WithFields(logging.Fields{
		"event":             "callback_handled",
		"callback_query_id": q.ID,
		"sent_message_id":   sent.ID,
	}).Info("callback query answered")

	return nil
}

// handleInlineQuery answers with a fixed single-result list. The query text
// is logged, not used for filtering; this is a demonstration stub.
func (r *Router) handleInlineQuery(ctx context.Context, client command.Client, q *models.InlineQuery, entry *logrus.Entry) error {
	results := []models.InlineQueryResult{
		&models.InlineQueryResultArticle{
			ID:    inlineResultID,
			Title: inlineResultTitle,
			InputMessageContent: &models.InputTextMessageContent{
				MessageText: inlineResultText,
			},
		},
	}

	if _, err := client.AnswerInlineQuery(ctx, &bot.AnswerInlineQueryParams{
		InlineQueryID: q.ID,
		Results:       results,
		CacheTime:     0,
		IsPersonal:    true,
	}); err != nil {
		return err
	}

	entry.WithFields(logging.Fields{
		"event":           "inline_query_handled",
		"inline_query_id": q.ID,
		"query":           q.Query,
	}).Info("inline query answered")

	return nil
}

func (r *Router) handleChosenResult(ctx context.Context, client command.Client, res *models.ChosenInlineResult, entry *logrus.Entry) error {
	if res.From.ID == 0 {
		entry.WithField("event", "chosen_result_orphan").Warn("chosen inline result without a sender")
		return nil
	}

	sent, err := client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: res.From.ID,
		Text:   "You chose result: " + res.ResultID,
	})
	if err != nil {
		return err
	}

	entry.WithFields(logging.Fields{
		"event":            "chosen_result_handled",
		"chosen_result_id": res.ResultID,
		"sent_message_id":  sent.ID,
	}).Info("chosen inline result confirmed")

	return nil
}

func updateType(upd *models.Update) string {
	switch {
	case upd.Message != nil:
		return updateTypeMessage
	case upd.EditedMessage != nil:
		return updateTypeEditedMessage
	case upd.CallbackQuery != nil:
		return updateTypeCallbackQuery
	case upd.InlineQuery != nil:
		return updateTypeInlineQuery
	case upd.ChosenInlineResult != nil:
		return updateTypeChosenResult
	default:
		return updateTypeUnknown
	}
}

func callbackChatID(q *models.CallbackQuery) int64 {
	switch q.Message.Type {
	case models.MaybeInaccessibleMessageTypeMessage:
		if q.Message.Message == nil {
			return 0
		}
		return q.Message.Message.Chat.ID
	case models.MaybeInaccessibleMessageTypeInaccessibleMessage:
		if q.Message.InaccessibleMessage == nil {
			return 0
		}
		return q.Message.InaccessibleMessage.Chat.ID
	default:
		return 0
	}
}
