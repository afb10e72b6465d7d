// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Rating is user feedback on a proposal.
type Rating int

const (
	RatingDown Rating = -1
	RatingNone Rating = 0
	RatingUp   Rating = 1
)

// Valid reports whether r is one of the defined ratings.
func (r Rating) Valid() bool {
	return r == RatingDown || r == RatingNone || r == RatingUp
}

// Proposal is a generated research proposal. It is created once per
// generation request; only Rating changes afterwards.
type Proposal struct {
	// ID is assigned by the store on insert.
	ID int64 `json:"id" yaml:"id"`

	// Username identifies the owner.
	Username string `json:"username" yaml:"username"`

	// Topic is the search topic the source documents were fetched for.
	Topic string `json:"topic" yaml:"topic"`

	// Keywords is exactly the list passed to the generator that produced RawText.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// RawText is the generator output before formatting.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// FormattedText is RawText after the proposal formatter.
	FormattedText string `json:"formatted_text" yaml:"formatted_text"`

	// Rating is nil until the user leaves feedback.
	Rating *Rating `json:"rating,omitempty" yaml:"rating,omitempty"`

	// CreatedAt is set by the store.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Settings holds the runtime search parameters shared by the background
// refresh loop and the chat router.
type Settings struct {
	// Topic is the arXiv search topic.
	Topic string `json:"topic" yaml:"topic"`

	// MaxResults bounds the number of fetched documents (1..100).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
