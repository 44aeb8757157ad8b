package model

// DraftRequest is the request for an AI draft reply.
type DraftRequest struct {
	ChatID    int64         `json:"chat_id"`
	ChatTitle string        `json:"chat_title"`
	Messages  []ChatMessage `json:"messages"`
}

// DraftResponse is the draft reply response.
type DraftResponse struct {
	Draft  string `json:"draft"`
	ChatID int64  `json:"chat_id"`
}
