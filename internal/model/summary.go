package model

// Sentiment classifies the overall tone of a conversation.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SummaryRequest is the request for a single-chat summary.
type SummaryRequest struct {
	ChatID    int64         `json:"chat_id"`
	Messages  []ChatMessage `json:"messages"`
	MaxLength int           `json:"max_length"`
}

// SummaryResponse is the single-chat summary response.
type SummaryResponse struct {
	ChatID      int64  `json:"chat_id"`
	Summary     string `json:"summary"`
	GeneratedAt int64  `json:"generated_at"`
	Cached      bool   `json:"cached"`
}

// BatchSummaryRequest is the request for detailed summaries of multiple chats.
type BatchSummaryRequest struct {
	Chats      []ChatContext `json:"chats"`
	Regenerate bool          `json:"regenerate"`
}

// ChatSummaryResult is the detailed summary for one chat.
type ChatSummaryResult struct {
	ChatID          int64     `json:"chat_id"`
	ChatTitle       string    `json:"chat_title"`
	ChatType        ChatType  `json:"chat_type"`
	Summary         string    `json:"summary"`
	KeyPoints       []string  `json:"key_points"`
	ActionItems     []string  `json:"action_items"`
	Sentiment       Sentiment `json:"sentiment"`
	NeedsResponse   bool      `json:"needs_response"`
	MessageCount    int       `json:"message_count"`
	LastMessageDate int64     `json:"last_message_date"`
}

// BatchSummaryResponse is the batch summary response.
type BatchSummaryResponse struct {
	Summaries   []ChatSummaryResult `json:"summaries"`
	TotalCount  int                 `json:"total_count"`
	GeneratedAt int64               `json:"generated_at"`
	Cached      bool                `json:"cached"`
}
