// Package surface defines the boundary between presentation steps and
// whatever renders them.
//
// A step describes what to show as a Scene and hands it to a Surface. Show
// replaces the visible scene at once; Transition animates towards a scene
// and calls done once the animation has finished, usually from another
// goroutine. Steps that wait for a transition pass their proceed signal as
// done.
package surface

import (
	"time"

	"github.com/matzehuels/tweetwall/pkg/layout"
)

// Kind names the kind of content a scene shows.
type Kind string

const (
	KindTweets    Kind = "tweets"
	KindWordCloud Kind = "wordcloud"
	KindAgenda    Kind = "agenda"
	KindVotes     Kind = "votes"
	KindTitle     Kind = "title"
)

// Scene is one screenful of content.
type Scene struct {
	Kind  Kind   `json:"kind"`
	Step  string `json:"step,omitempty"`
	Title string `json:"title,omitempty"`

	// Lines are rendered top to bottom.
	Lines []string `json:"lines,omitempty"`

	// Words are rendered at their bounds on a canvas centred on the origin.
	Words []layout.Placement `json:"words,omitempty"`
}

// Surface renders scenes. Implementations must be safe for calls from the
// rendering executor and done may be called from any goroutine.
type Surface interface {
	// Size returns the drawable canvas size.
	Size() (w, h float64)

	// Show replaces the visible scene.
	Show(s Scene)

	// Transition animates to s over d and then calls done exactly once.
	Transition(s Scene, d time.Duration, done func())

	// Clear blanks the surface.
	Clear()
}
