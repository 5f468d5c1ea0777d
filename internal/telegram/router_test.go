package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"tg_shift_bot/internal/command"
)

type fakeAPI struct {
	messages        []*bot.SendMessageParams
	actions         []*bot.SendChatActionParams
	callbackAnswers []*bot.AnswerCallbackQueryParams
	inlineAnswers   []*bot.AnswerInlineQueryParams

	sendErr     error
	answerErr   error
	startedWith context.Context

	nextID int
}

func (f *fakeAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.messages = append(f.messages, params)
	f.nextID++
	id, _ := params.ChatID.(int64)
	return &models.Message{ID: f.nextID, Chat: models.Chat{ID: id}}, nil
}

func (f *fakeAPI) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.nextID++
	id, _ := params.ChatID.(int64)
	return &models.Message{ID: f.nextID, Chat: models.Chat{ID: id}}, nil
}

func (f *fakeAPI) SendChatAction(_ context.Context, params *bot.SendChatActionParams) (bool, error) {
	f.actions = append(f.actions, params)
	return true, nil
}

func (f *fakeAPI) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	if f.answerErr != nil {
		return false, f.answerErr
	}
	f.callbackAnswers = append(f.callbackAnswers, params)
	return true, nil
}

func (f *fakeAPI) AnswerInlineQuery(_ context.Context, params *bot.AnswerInlineQueryParams) (bool, error) {
	if f.answerErr != nil {
		return false, f.answerErr
	}
	f.inlineAnswers = append(f.inlineAnswers, params)
	return true, nil
}

func (f *fakeAPI) Start(ctx context.Context) {
	f.startedWith = ctx
}

func testRouter(t *testing.T) (*Router, *command.Registry, *logtest.Hook) {
	t.Helper()
	hookLogger, hook := logtest.NewNullLogger()
	reg := command.NewRegistry(nil)
	return NewRouter(reg, logrus.NewEntry(hookLogger)), reg, hook
}

func registerEcho(t *testing.T, reg *command.Registry, token string, called *string) {
	t.Helper()
	err := reg.Register(token, func(ctx context.Context, client command.Client, msg *models.Message) (*models.Message, error) {
		*called = token
		return client.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: "ok"})
	})
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
}

func TestRoutePriorityOrder(t *testing.T) {
	router, reg, _ := testRouter(t)

	var called string
	registerEcho(t, reg, "/hello", &called)

	client := &fakeAPI{}
	// Both variants populated should never happen; the message branch wins
	// because it is checked first.
	upd := &models.Update{
		Message:       &models.Message{Chat: models.Chat{ID: 9}, Text: "/hello"},
		CallbackQuery: &models.CallbackQuery{ID: "cb-1", Data: "x"},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if called != "/hello" {
		t.Fatalf("expected the message branch to win, handler called: %q", called)
	}
	if len(client.callbackAnswers) != 0 {
		t.Fatalf("expected the callback branch to be skipped, got %d answers", len(client.callbackAnswers))
	}
}

func TestRouteEditedMessageDispatchesLikeNew(t *testing.T) {
	router, reg, _ := testRouter(t)

	var called string
	registerEcho(t, reg, "/hello", &called)

	upd := &models.Update{
		EditedMessage: &models.Message{Chat: models.Chat{ID: 9}, Text: "/hello again"},
	}

	if err := router.Route(context.Background(), &fakeAPI{}, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != "/hello" {
		t.Fatalf("expected edited message to dispatch the command, called: %q", called)
	}
}

func TestRouteLogsReceiptAfterDispatch(t *testing.T) {
	router, reg, hook := testRouter(t)

	var called string
	registerEcho(t, reg, "/hello", &called)

	upd := &models.Update{Message: &models.Message{Chat: models.Chat{ID: 9}, Text: "/hello"}}
	if err := router.Route(context.Background(), &fakeAPI{}, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["event"] != "command_handled" {
		t.Fatalf("expected command_handled entry, got %+v", entry)
	}
	if entry.Data["sent_message_id"] != 1 {
		t.Fatalf("expected sent message id in log, got %v", entry.Data["sent_message_id"])
	}
	if corr, ok := entry.Data["correlation_id"].(string); !ok || corr == "" {
		t.Fatalf("expected a correlation id on the entry, got %v", entry.Data["correlation_id"])
	}
}

func TestRoutePropagatesDispatchFailure(t *testing.T) {
	router, reg, _ := testRouter(t)

	wantErr := errors.New("handler blew up")
	if err := reg.Register("/boom", func(context.Context, command.Client, *models.Message) (*models.Message, error) {
		return nil, wantErr
	}); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	upd := &models.Update{Message: &models.Message{Chat: models.Chat{ID: 9}, Text: "/boom"}}
	if err := router.Route(context.Background(), &fakeAPI{}, upd); !errors.Is(err, wantErr) {
		t.Fatalf("expected dispatch failure to propagate, got %v", err)
	}
}

func TestRouteCallbackAcknowledgesThenReplies(t *testing.T) {
	router, _, _ := testRouter(t)
	client := &fakeAPI{}

	upd := &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-7",
			From: models.User{ID: 55},
			Data: "button 1.1",
			Message: models.MaybeInaccessibleMessage{
				Type:    models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{Chat: models.Chat{ID: 22}},
			},
		},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.callbackAnswers) != 1 || client.callbackAnswers[0].CallbackQueryID != "cb-7" {
		t.Fatalf("expected the callback query to be acknowledged, got %+v", client.callbackAnswers)
	}
	if client.callbackAnswers[0].Text != "Selected: button 1.1" {
		t.Fatalf("expected derived answer text, got %q", client.callbackAnswers[0].Text)
	}

	if len(client.messages) != 1 {
		t.Fatalf("expected one chat message, got %d", len(client.messages))
	}
	if client.messages[0].ChatID != int64(22) {
		t.Fatalf("expected reply to originating chat 22, got %v", client.messages[0].ChatID)
	}
	if client.messages[0].Text != "Selected: button 1.1" {
		t.Fatalf("expected the same text in the chat message, got %q", client.messages[0].Text)
	}
}

func TestRouteCallbackFallsBackToUserChat(t *testing.T) {
	router, _, _ := testRouter(t)
	client := &fakeAPI{}

	upd := &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-8",
			From: models.User{ID: 55},
			Data: "x",
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeInaccessibleMessage,
			},
		},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.messages[0].ChatID != int64(55) {
		t.Fatalf("expected reply to fall back to user id 55, got %v", client.messages[0].ChatID)
	}
}

func TestRouteCallbackPartialCompletionPropagates(t *testing.T) {
	router, _, _ := testRouter(t)

	wantErr := errors.New("send refused")
	client := &fakeAPI{sendErr: wantErr}

	upd := &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-9",
			From: models.User{ID: 55},
			Data: "x",
		},
	}

	if err := router.Route(context.Background(), client, upd); !errors.Is(err, wantErr) {
		t.Fatalf("expected send failure to propagate, got %v", err)
	}

	// Acknowledge happened before the failed send: partial completion is
	// observable, not rolled back.
	if len(client.callbackAnswers) != 1 {
		t.Fatalf("expected the acknowledgement to have been sent, got %d", len(client.callbackAnswers))
	}
}

func TestRouteInlineQueryAnswersSingleResult(t *testing.T) {
	router, _, hook := testRouter(t)
	client := &fakeAPI{}

	upd := &models.Update{
		InlineQuery: &models.InlineQuery{ID: "iq-1", Query: "anything at all"},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.inlineAnswers) != 1 {
		t.Fatalf("expected one inline answer, got %d", len(client.inlineAnswers))
	}

	answer := client.inlineAnswers[0]
	if answer.InlineQueryID != "iq-1" || !answer.IsPersonal || answer.CacheTime != 0 {
		t.Fatalf("expected personal zero-cache answer, got %+v", answer)
	}
	if len(answer.Results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(answer.Results))
	}
	if _, ok := answer.Results[0].(*models.InlineQueryResultArticle); !ok {
		t.Fatalf("expected an article result, got %T", answer.Results[0])
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["query"] != "anything at all" {
		t.Fatalf("expected the query text to be logged, got %+v", entry)
	}
}

func TestRouteChosenResultEchoesToUser(t *testing.T) {
	router, _, _ := testRouter(t)
	client := &fakeAPI{}

	upd := &models.Update{
		ChosenInlineResult: &models.ChosenInlineResult{
			ResultID: "1",
			From:     models.User{ID: 77},
		},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.messages[0].ChatID != int64(77) {
		t.Fatalf("expected confirmation to user 77, got %v", client.messages[0].ChatID)
	}
	if client.messages[0].Text != "You chose result: 1" {
		t.Fatalf("expected the chosen result id echoed, got %q", client.messages[0].Text)
	}
}

func TestRouteChosenResultWithoutSenderIsDropped(t *testing.T) {
	router, _, hook := testRouter(t)
	client := &fakeAPI{}

	upd := &models.Update{
		ChosenInlineResult: &models.ChosenInlineResult{ResultID: "1"},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.messages) != 0 {
		t.Fatalf("expected no confirmation without a sender id, got %d messages", len(client.messages))
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Data["event"] != "chosen_result_orphan" {
		t.Fatalf("expected chosen_result_orphan entry, got %+v", entry)
	}
}

func TestRouteUnknownShapeIsLoggedAndDropped(t *testing.T) {
	router, _, hook := testRouter(t)
	client := &fakeAPI{}

	if err := router.Route(context.Background(), client, &models.Update{}); err != nil {
		t.Fatalf("expected unknown update to never fail, got %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["event"] != "update_unrouted" {
		t.Fatalf("expected update_unrouted entry, got %+v", entry)
	}
	if entry.Data["update_type"] != updateTypeUnknown {
		t.Fatalf("expected unknown update type tag, got %v", entry.Data["update_type"])
	}

	if len(client.messages) != 0 || len(client.callbackAnswers) != 0 || len(client.inlineAnswers) != 0 {
		t.Fatalf("expected no outbound calls for unknown updates")
	}
}

func TestRouteMessageWithoutTextIsNoOp(t *testing.T) {
	router, _, hook := testRouter(t)
	client := &fakeAPI{}

	upd := &models.Update{
		Message: &models.Message{
			Chat:  models.Chat{ID: 9},
			Photo: []models.PhotoSize{{FileID: "abc"}},
		},
	}

	if err := router.Route(context.Background(), client, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.messages) != 0 {
		t.Fatalf("expected no outbound send for text-less message")
	}
	for _, entry := range hook.AllEntries() {
		if entry.Data["event"] == "command_handled" {
			t.Fatalf("expected no command_handled entry for text-less message")
		}
	}
}

func TestRouteNilUpdate(t *testing.T) {
	router, _, _ := testRouter(t)
	if err := router.Route(context.Background(), &fakeAPI{}, nil); err != nil {
		t.Fatalf("expected nil update to be a no-op, got %v", err)
	}
}
