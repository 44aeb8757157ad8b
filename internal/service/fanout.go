// Package service provides generation logic for briefings, summaries and
// drafts.
package service

import (
	"context"
	"sync"

	"github.com/telegram-copilot/briefing-api/internal/model"
)

// fanOut runs fn concurrently for every chat and returns results in input
// order: result[i] corresponds to chats[i] regardless of completion order.
// Each goroutine owns its slot exclusively, so no locking is needed. fn must
// not fail; per-chat failures are folded into fallback values by the caller.
func fanOut[T any](ctx context.Context, chats []model.ChatContext, fn func(ctx context.Context, chat model.ChatContext, idx int) T) []T {
	results := make([]T, len(chats))

	var wg sync.WaitGroup
	for i, chat := range chats {
		wg.Add(1)
		go func(i int, chat model.ChatContext) {
			defer wg.Done()
			results[i] = fn(ctx, chat, i)
		}(i, chat)
	}
	wg.Wait()

	return results
}
