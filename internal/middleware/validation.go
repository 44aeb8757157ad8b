package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/telegram-copilot/briefing-api/internal/model"
)

// ValidateChats rejects structurally invalid chat batches before any cache or
// model work begins.
func ValidateChats(chats []model.ChatContext) error {
	if len(chats) == 0 {
		return errors.New("no chats provided")
	}
	for _, chat := range chats {
		if !utf8.ValidString(chat.ChatTitle) {
			return errors.New("chat title must be valid UTF-8")
		}
	}
	return nil
}

// ValidateMessages rejects empty or malformed message lists.
func ValidateMessages(messages []model.ChatMessage) error {
	if len(messages) == 0 {
		return errors.New("no messages provided")
	}
	for _, msg := range messages {
		if !utf8.ValidString(msg.Text) {
			return errors.New("message text must be valid UTF-8")
		}
	}
	return nil
}
