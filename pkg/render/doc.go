// Package render turns wall state into files a person can look at.
//
// Two kinds of output are supported:
//
//   - Dependency diagrams: [ToDOT] describes which providers each configured
//     step reads from, and [RenderSVG] lays the DOT source out in-process
//     with Graphviz (via [github.com/goccy/go-graphviz]).
//   - Scene snapshots: [SceneSVG] draws one [surface.Scene] the way a
//     headless run saw it, using the word-cloud renderer of the layout
//     package for word scenes and a plain text card for everything else.
//
// Both are used by the tweetwall CLI ("graph" and "render" commands).
package render
