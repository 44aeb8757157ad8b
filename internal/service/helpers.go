package service

import (
	"time"
	"unicode/utf8"

	"github.com/telegram-copilot/briefing-api/internal/llm"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/prompt"
)

// previewLength caps the last-message preview in v2 briefing items.
const previewLength = 300

func collectChatIDs(chats []model.ChatContext) []int64 {
	ids := make([]int64, len(chats))
	for i, c := range chats {
		ids[i] = c.ChatID
	}
	return ids
}

// toLines sanitizes and windows the trailing n messages for prompt rendering.
func toLines(messages []model.ChatMessage, n int) []prompt.Line {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}

	lines := make([]prompt.Line, len(messages))
	for i, m := range messages {
		lines[i] = prompt.Line{
			Sender:   llm.Sanitize(m.SenderName),
			Text:     llm.Sanitize(m.Text),
			Outgoing: m.IsOutgoing,
		}
	}
	return lines
}

// normalizePriority maps model output to a known priority tag, defaulting to
// fyi for anything unrecognized.
func normalizePriority(raw string) model.Priority {
	switch model.Priority(raw) {
	case model.PriorityUrgent:
		return model.PriorityUrgent
	case model.PriorityNeedsReply:
		return model.PriorityNeedsReply
	default:
		return model.PriorityFYI
	}
}

func displayName(title string) string {
	if title == "" {
		return "Unknown"
	}
	return title
}

func lastMessageDate(chat model.ChatContext) int64 {
	if last := chat.LastMessage(); last != nil {
		return last.Date
	}
	return 0
}

// lastMessagePreview returns the first 300 characters of the newest message,
// or nil for an empty chat. The preview is client-facing display text, not
// prompt input, so it stays unsanitized.
func lastMessagePreview(chat model.ChatContext) *string {
	last := chat.LastMessage()
	if last == nil {
		return nil
	}

	text := last.Text
	if utf8.RuneCountInString(text) > previewLength {
		runes := []rune(text)
		text = string(runes[:previewLength]) + "..."
	}
	return &text
}

// lastMessageRFC3339 returns the newest message timestamp as RFC3339, or nil
// for an empty chat.
func lastMessageRFC3339(chat model.ChatContext) *string {
	last := chat.LastMessage()
	if last == nil {
		return nil
	}

	formatted := time.Unix(last.Date, 0).UTC().Format(time.RFC3339)
	return &formatted
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
