package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/telegram-copilot/briefing-api/internal/model"
)

func TestFanOut_PreservesInputOrder(t *testing.T) {
	chats := []model.ChatContext{
		{ChatID: 10}, {ChatID: 20}, {ChatID: 30}, {ChatID: 40},
	}

	// Later chats finish first; slot assignment must still follow input order.
	results := fanOut(context.Background(), chats, func(ctx context.Context, chat model.ChatContext, idx int) int64 {
		time.Sleep(time.Duration(len(chats)-idx) * 5 * time.Millisecond)
		return chat.ChatID
	})

	assert.Equal(t, []int64{10, 20, 30, 40}, results)
}

func TestFanOut_EmptyInput(t *testing.T) {
	results := fanOut(context.Background(), nil, func(ctx context.Context, chat model.ChatContext, idx int) int {
		return idx
	})
	assert.Empty(t, results)
}
