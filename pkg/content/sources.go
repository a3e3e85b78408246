package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// JSONFetcher fetches and decodes a JSON document. It is satisfied by
// *httputil.Client.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, namespace, url string, refresh bool, v any) error
}

// SessionFile reads the agenda from a YAML or JSON file. The file is re-read
// on every call so edits show up on the next refresh.
type SessionFile struct {
	Path string
}

// Sessions loads and sorts the sessions by start time.
func (f SessionFile) Sessions(context.Context) ([]Session, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Sessions []Session `json:"sessions" yaml:"sessions"`
	}
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	sortSessions(doc.Sessions)
	return doc.Sessions, nil
}

// HTTPSessions loads the agenda from a JSON endpoint returning a session array.
type HTTPSessions struct {
	URL     string
	Fetcher JSONFetcher
}

// Sessions fetches the agenda, bypassing the response cache.
func (s HTTPSessions) Sessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := s.Fetcher.FetchJSON(ctx, "agenda", s.URL, true, &sessions); err != nil {
		return nil, err
	}
	sortSessions(sessions)
	return sessions, nil
}

// HTTPVotes loads ratings from a JSON endpoint returning a result array.
type HTTPVotes struct {
	URL     string
	Fetcher JSONFetcher
}

// Votes fetches the current ratings.
func (s HTTPVotes) Votes(ctx context.Context) ([]VoteResult, error) {
	var results []VoteResult
	if err := s.Fetcher.FetchJSON(ctx, "votes", s.URL, true, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// StaticVotes serves a fixed result set.
type StaticVotes []VoteResult

// Votes returns a copy of the results.
func (s StaticVotes) Votes(context.Context) ([]VoteResult, error) {
	return slices.Clone(s), nil
}

func sortSessions(s []Session) {
	slices.SortStableFunc(s, func(a, b Session) int {
		return a.Start.Compare(b.Start)
	})
}

var (
	_ SessionSource = SessionFile{}
	_ SessionSource = HTTPSessions{}
	_ VoteSource    = HTTPVotes{}
	_ VoteSource    = StaticVotes{}
)
