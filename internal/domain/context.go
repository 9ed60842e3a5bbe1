package domain

import "time"

// ChatMessage is one turn of a resolver-backed conversation.
type ChatMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ConversationContext is the per-conversation state remembered between turns.
// It is keyed by an opaque context id and evicted after sitting idle longer
// than the context TTL.
type ConversationContext struct {
	MatchedMarket *MarketRecord `json:"matchedMarket,omitempty"`
	Analysis      string        `json:"analysis,omitempty"`
	Messages      []ChatMessage `json:"messages,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
