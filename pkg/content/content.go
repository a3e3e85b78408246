// Package content defines the data shown on the wall and the adapters that
// deliver it: live tweet feeds, tweet archives for history replay, and
// agenda and vote sources polled by scheduled providers.
package content

import (
	"context"
	"time"
)

// Tweet is one social post. Tweets are identified by ID.
type Tweet struct {
	ID        string    `json:"id" bson:"_id"`
	Author    string    `json:"author" bson:"author"`
	Text      string    `json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Session is one agenda entry.
type Session struct {
	ID      string    `json:"id" yaml:"id"`
	Title   string    `json:"title" yaml:"title"`
	Speaker string    `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Room    string    `json:"room,omitempty" yaml:"room,omitempty"`
	Start   time.Time `json:"start" yaml:"start"`
	End     time.Time `json:"end" yaml:"end"`
}

// Running reports whether the session is in progress at now.
func (s Session) Running(now time.Time) bool {
	return !now.Before(s.Start) && now.Before(s.End)
}

// VoteResult is the audience rating of a session.
type VoteResult struct {
	SessionID string  `json:"session_id"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Votes     int     `json:"votes"`
}

// Feed pushes live tweets to subscribers. Callbacks run on a goroutine
// owned by the feed and must not block for long.
type Feed interface {
	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn func(Tweet)) (cancel func())
}

// Publisher injects tweets into a feed.
type Publisher interface {
	Publish(ctx context.Context, t Tweet) error
}

// Archive stores tweets for history replay at startup.
type Archive interface {
	// Recent returns up to limit tweets, oldest first.
	Recent(ctx context.Context, limit int) ([]Tweet, error)
	Store(ctx context.Context, t Tweet) error
}

// SessionSource loads the agenda.
type SessionSource interface {
	Sessions(ctx context.Context) ([]Session, error)
}

// VoteSource loads the current ratings.
type VoteSource interface {
	Votes(ctx context.Context) ([]VoteResult, error)
}
