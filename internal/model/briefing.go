// Package model defines data structures for the briefing backend.
package model

import "strings"

// Priority classifies how a chat requires attention.
type Priority string

const (
	PriorityUrgent     Priority = "urgent"
	PriorityNeedsReply Priority = "needs_reply"
	PriorityFYI        Priority = "fyi"
)

// Rank orders priorities for sorting: urgent first, then needs_reply, then fyi.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityNeedsReply:
		return 1
	default:
		return 2
	}
}

// ChatType is the normalized chat classification.
type ChatType string

const (
	ChatTypeDM      ChatType = "dm"
	ChatTypeGroup   ChatType = "group"
	ChatTypeChannel ChatType = "channel"
)

// NormalizeChatType maps raw source-system chat type tags to dm/group/channel.
// Unrecognized tags default to dm.
func NormalizeChatType(raw string) ChatType {
	switch strings.ToLower(raw) {
	case "private", "dm", "user":
		return ChatTypeDM
	case "group", "supergroup", "megagroup":
		return ChatTypeGroup
	case "channel", "broadcast":
		return ChatTypeChannel
	default:
		return ChatTypeDM
	}
}

// ChatMessage is a single message within a chat, immutable once received.
type ChatMessage struct {
	ID         int64  `json:"id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	Date       int64  `json:"date"`
	IsOutgoing bool   `json:"is_outgoing"`
}

// ChatContext is a chat with its recent messages and optional pre-computed
// signals. Signals default to zero values when the caller omits them.
type ChatContext struct {
	ChatID    int64         `json:"chat_id"`
	ChatTitle string        `json:"chat_title"`
	ChatType  string        `json:"chat_type"`
	Messages  []ChatMessage `json:"messages"`

	UnreadCount            int     `json:"unread_count,omitempty"`
	LastMessageIsOutgoing  bool    `json:"last_message_is_outgoing,omitempty"`
	HasUnansweredQuestion  bool    `json:"has_unanswered_question,omitempty"`
	HoursSinceLastActivity float64 `json:"hours_since_last_activity,omitempty"`
	IsPrivateChat          bool    `json:"is_private_chat,omitempty"`
}

// UnreadCountTrailing counts the run of inbound messages at the tail of the
// chat. Only messages newer than the user's last outgoing message count as
// unread.
func (c *ChatContext) UnreadCountTrailing() int {
	count := 0
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsOutgoing {
			break
		}
		count++
	}
	return count
}

// LastMessage returns the newest message, or nil for an empty chat.
func (c *ChatContext) LastMessage() *ChatMessage {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// BriefingRequest is the request for the legacy briefing endpoint.
type BriefingRequest struct {
	Chats      []ChatContext `json:"chats"`
	Regenerate bool          `json:"regenerate"`
}

// ChatBriefing is a per-chat briefing in the legacy category format.
type ChatBriefing struct {
	ChatID          int64    `json:"chat_id"`
	ChatTitle       string   `json:"chat_title"`
	Category        Priority `json:"category"`
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	SuggestedAction *string  `json:"suggested_action"`
	UnreadCount     int      `json:"unread_count"`
	LastMessageDate int64    `json:"last_message_date"`
}

// BriefingResponse is the legacy briefing response.
type BriefingResponse struct {
	Briefings   []ChatBriefing `json:"briefings"`
	GeneratedAt int64          `json:"generated_at"`
	Cached      bool           `json:"cached"`
}

// BriefingV2Request is the request for the v2 priority-partitioned briefing.
type BriefingV2Request struct {
	Chats        []ChatContext `json:"chats"`
	ForceRefresh bool          `json:"force_refresh"`
}

// ResponseItem is a chat requiring a response in the v2 briefing.
type ResponseItem struct {
	ID              int      `json:"id"`
	ChatID          int64    `json:"chat_id"`
	ChatName        string   `json:"chat_name"`
	ChatType        ChatType `json:"chat_type"`
	UnreadCount     int      `json:"unread_count"`
	LastMessage     *string  `json:"last_message"`
	LastMessageDate *string  `json:"last_message_date"`
	Priority        Priority `json:"priority"`
	Summary         string   `json:"summary"`
	SuggestedReply  *string  `json:"suggested_reply"`
}

// FYIItem is an informational chat in the v2 briefing.
type FYIItem struct {
	ID              int      `json:"id"`
	ChatID          int64    `json:"chat_id"`
	ChatName        string   `json:"chat_name"`
	ChatType        ChatType `json:"chat_type"`
	UnreadCount     int      `json:"unread_count"`
	LastMessage     *string  `json:"last_message"`
	LastMessageDate *string  `json:"last_message_date"`
	Priority        Priority `json:"priority"`
	Summary         string   `json:"summary"`
}

// BriefingStats holds aggregate statistics for a v2 briefing.
type BriefingStats struct {
	NeedsResponseCount int `json:"needs_response_count"`
	FYICount           int `json:"fyi_count"`
	TotalUnread        int `json:"total_unread"`
}

// BriefingV2Response is the priority-partitioned briefing response.
type BriefingV2Response struct {
	NeedsResponse []ResponseItem `json:"needs_response"`
	FYISummaries  []FYIItem      `json:"fyi_summaries"`
	Stats         BriefingStats  `json:"stats"`
	GeneratedAt   string         `json:"generated_at"`
	Cached        bool           `json:"cached"`
	CacheAge      *string        `json:"cache_age"`
}
