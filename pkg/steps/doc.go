// Package steps implements the presentation steps of the wall.
//
// Every step type is registered with a [scheduler.Registry] by [Register]:
//
//	tweets     the most recent tweets, animated in
//	wordcloud  the most frequent words, laid out by the layout engine
//	agenda     current and upcoming sessions
//	votes      audience ratings
//	pause      a title card
//
// All steps share the configuration keys handled by [Base]: min_duration,
// ui_thread, animation, skip_if and requires.
package steps
