package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/telegram-copilot/briefing-api/internal/model"
)

func TestValidateChats(t *testing.T) {
	assert.EqualError(t, ValidateChats(nil), "no chats provided")
	assert.EqualError(t, ValidateChats([]model.ChatContext{}), "no chats provided")

	assert.NoError(t, ValidateChats([]model.ChatContext{{ChatID: 1, ChatTitle: "ok"}}))

	assert.Error(t, ValidateChats([]model.ChatContext{{ChatID: 1, ChatTitle: string([]byte{0xff, 0xfe})}}))
}

func TestValidateMessages(t *testing.T) {
	assert.EqualError(t, ValidateMessages(nil), "no messages provided")

	assert.NoError(t, ValidateMessages([]model.ChatMessage{{ID: 1, Text: "hello"}}))

	assert.Error(t, ValidateMessages([]model.ChatMessage{{ID: 1, Text: string([]byte{0xff})}}))
}
