package model

import "strings"

// Article is one news piece from the clipping feed. Treated as immutable
// input throughout the pipeline.
type Article struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Channels  string `json:"channels"`
	ViewURL   string `json:"view_url"`
	SourceURL string `json:"source_url"`
}

// Empty reports whether the article has no analyzable text.
func (a Article) Empty() bool {
	return strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Body) == ""
}

// Text returns the title and body joined for matching.
func (a Article) Text() string {
	return a.Title + " " + a.Body
}

// Record is one wide output row: an article plus its per-brand outcomes,
// keyed by canonical brand name. Only brands that passed the channel
// pre-filter are present.
type Record struct {
	ArticleID string                          `json:"article_id"`
	ViewURL   string                          `json:"view_url"`
	SourceURL string                          `json:"source_url"`
	Title     string                          `json:"title"`
	Results   map[string]ClassificationResult `json:"results"`
}
