package models

// ChatRequest is an inbound chatbot message
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// ChatWebhookPayload is what gets forwarded to the automation platform
type ChatWebhookPayload struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Timestamp      string `json:"timestamp"`
	Source         string `json:"source"`
}

// ChatResponse is the relayed reply
type ChatResponse struct {
	Reply          string         `json:"reply"`
	ConversationID string         `json:"conversationId"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}
