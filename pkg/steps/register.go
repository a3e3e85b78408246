package steps

import (
	"github.com/matzehuels/tweetwall/pkg/provider"
	"github.com/matzehuels/tweetwall/pkg/scheduler"
)

// Types lists the built-in step types.
func Types() []scheduler.StepType {
	return []scheduler.StepType{
		{
			ID:          "tweets",
			Description: "most recent tweets",
			Requires:    []provider.Kind{provider.KindTweets},
			New:         newTweets,
		},
		{
			ID:          "wordcloud",
			Description: "word cloud of the most frequent words",
			Requires:    []provider.Kind{provider.KindWords},
			New:         newWordCloud,
		},
		{
			ID:          "agenda",
			Description: "current and upcoming sessions",
			Requires:    []provider.Kind{provider.KindAgenda},
			New:         newAgenda,
		},
		{
			ID:          "votes",
			Description: "audience ratings",
			Requires:    []provider.Kind{provider.KindVotes},
			New:         newVotes,
		},
		{
			ID:          "pause",
			Description: "title card",
			New:         newPause,
		},
	}
}

// Register adds the built-in step types to reg.
func Register(reg *scheduler.Registry) error {
	for _, t := range Types() {
		if err := reg.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in step types.
func NewRegistry() *scheduler.Registry {
	reg := scheduler.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}
