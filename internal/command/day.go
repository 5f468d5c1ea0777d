package command

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Operator handles that get the short personalized greeting instead of the
// full opening checklist.
var operatorHandles = map[string]bool{
	"lesenokkk7": true,
	"UtkirHawk":  true,
}

const openDayReport = `Shift opening checklist

Cash desk
- count the float and sign the cash sheet
- confirm yesterday's Z-report is filed
- check the terminal has paper and connects

Sales floor
- lights, music, climate on
- fresh stock to the front, expired items off the shelf
- price tags match the register

Deliveries
- check the overnight delivery log
- confirm courier slots for the day
- flag shortages to the group chat before 10:00

Reporting
- post the opening photo to the group chat
- mark the shift as open in the timesheet
- note anything unusual here in a reply

Have a good shift.`

const closeDayText = "Shift closed. Count the till, file the Z-report, and post the closing photo. See you tomorrow."

// OpenDay greets allow-listed operator channels by name; everyone else gets
// the full opening checklist. Both replies drop any active custom keyboard.
func (h *Handlers) OpenDay(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	text := openDayReport
	if handle := senderChatUsername(msg); operatorHandles[handle] {
		text = fmt.Sprintf("Good morning, @%s! The day is open.", handle)
	}

	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        text,
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
}

// CloseDay sends the static closing text and drops any active custom
// keyboard. Unlike OpenDay there is no per-operator variant.
func (h *Handlers) CloseDay(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	return client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        closeDayText,
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
}

func senderChatUsername(msg *models.Message) string {
	if msg == nil || msg.SenderChat == nil {
		return ""
	}
	return msg.SenderChat.Username
}
