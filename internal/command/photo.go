package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const photoCaption = "Today's photo"

// Photo shows an upload indicator, opens the configured image, and sends it
// with a caption. The file is released on every exit path, including
// cancellation mid-send.
func (h *Handlers) Photo(ctx context.Context, client Client, msg *models.Message) (*models.Message, error) {
	if _, err := client.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: msg.Chat.ID,
		Action: models.ChatActionUploadPhoto,
	}); err != nil {
		return nil, err
	}

	file, err := os.Open(h.photoPath)
	if err != nil {
		return nil, fmt.Errorf("open photo %s: %w", h.photoPath, err)
	}
	defer file.Close()

	return client.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: msg.Chat.ID,
		Photo: &models.InputFileUpload{
			Filename: filepath.Base(h.photoPath),
			Data:     file,
		},
		Caption: photoCaption,
	})
}
