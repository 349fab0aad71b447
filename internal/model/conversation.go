// Package model defines data structures for the FinSight client.
package model

import (
	"time"
)

// Session represents one persisted conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	s.Messages = CloneMessages(s.Messages)
	return s
}

// LastAnswer returns the answer of the most recent agent message that carries one.
func (s Session) LastAnswer() *AnswerData {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		msg := s.Messages[i]
		if msg.Role == RoleAgent && msg.Answer != nil {
			return msg.Answer
		}
	}
	return nil
}

// SessionSummary is the sidebar view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	Date         string    `json:"date"`
	MessageCount int       `json:"messageCount"`
	Active       bool      `json:"active"`
}

// ListSessionsResponse is the response for listing sessions.
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
	ActiveID string           `json:"activeId,omitempty"`
}
