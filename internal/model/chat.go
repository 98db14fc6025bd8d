package model

import "time"

// ChatSession is one support chatbot conversation.
type ChatSession struct {
	Base
	LastIntent    string     `json:"last_intent" db:"last_intent"`
	FallbackCount int        `json:"fallback_count" db:"fallback_count"`
	MessageCount  int        `json:"message_count" db:"message_count"`
	HandedOff     bool       `json:"handed_off" db:"handed_off"`
	HandedOffAt   *time.Time `json:"handed_off_at,omitempty" db:"handed_off_at"`
	LastMessage   string     `json:"last_message" db:"last_message"`
}

// ChatReply is the response of POST /api/chatbot/messages.
type ChatReply struct {
	SessionID    string   `json:"session_id"`
	Reply        string   `json:"reply"`
	Intent       string   `json:"intent"`
	QuickReplies []string `json:"quick_replies"`
	HandoffURL   *string  `json:"handoff_url,omitempty"`
}
