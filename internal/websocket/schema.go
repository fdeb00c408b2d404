// Package websocket defines the wire schema of the admin live results feed.
package websocket

import "github.com/quizbd/exam-portal/internal/model"

// Event names sent over the feed.
type Event string

const (
	EventResult Event = "result"
	EventPong   Event = "pong"
	EventError  Event = "error"
)

// ResultEvent wraps one freshly appended StudentResult.
type ResultEvent struct {
	Event  Event               `json:"event"`
	Result model.StudentResult `json:"result"`
}

// PongEvent answers a client ping.
type PongEvent struct {
	Event Event `json:"event"`
}

// ErrorEvent reports a feed-side failure before the connection closes.
type ErrorEvent struct {
	Event   Event  `json:"event"`
	Message string `json:"message"`
}
