// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/research-agent/pkg/types"
)

// InsertProposal stores p for p.Username and returns the new id.
func (s *Store) InsertProposal(ctx context.Context, p types.Proposal) (int64, error) {
	uid, err := s.userID(ctx, p.Username)
	if err != nil {
		return 0, err
	}

	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	kwJSON, err := json.Marshal(keywords)
	if err != nil {
		return 0, fmt.Errorf("encoding keywords: %w", err)
	}

	res, err := s.exec(ctx, sq.Insert("proposals").
		Columns("user_id", "topic", "keywords", "proposal_text", "formatted_text", "created_at").
		Values(uid, p.Topic, string(kwJSON), p.RawText, p.FormattedText, s.timestamp()))
	if err != nil {
		return 0, fmt.Errorf("inserting proposal: %w", err)
	}
	return res.LastInsertId()
}

// RateProposal records rating on a proposal owned by username. Feedback
// text is optional.
func (s *Store) RateProposal(ctx context.Context, id int64, username string, rating types.Rating, feedback string) error {
	if !rating.Valid() || rating == types.RatingNone {
		return fmt.Errorf("invalid rating %d", rating)
	}

	update := sq.Update("proposals").
		Set("rating", int(rating)).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("user_id = (SELECT id FROM users WHERE username = ?)", username))
	if feedback != "" {
		update = update.Set("feedback", feedback)
	}

	res, err := s.exec(ctx, update)
	if err != nil {
		return fmt.Errorf("rating proposal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rating proposal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("proposal %d: %w", id, ErrNotFound)
	}
	return nil
}

// LatestProposal returns the most recent proposal for username.
func (s *Store) LatestProposal(ctx context.Context, username string) (types.Proposal, error) {
	row, err := s.queryRow(ctx, sq.Select(
		"p.id", "u.username", "p.topic", "p.keywords", "p.proposal_text",
		"p.formatted_text", "p.rating", "p.created_at").
		From("proposals p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"u.username": username}).
		OrderBy("p.id DESC").
		Limit(1))
	if err != nil {
		return types.Proposal{}, err
	}

	var (
		p       types.Proposal
		kwJSON  string
		rating  sql.NullInt64
		created string
	)
	if err := row.Scan(&p.ID, &p.Username, &p.Topic, &kwJSON, &p.RawText, &p.FormattedText, &rating, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Proposal{}, ErrNotFound
		}
		return types.Proposal{}, fmt.Errorf("reading proposal: %w", err)
	}
	if err := json.Unmarshal([]byte(kwJSON), &p.Keywords); err != nil {
		return types.Proposal{}, fmt.Errorf("decoding keywords: %w", err)
	}
	if rating.Valid {
		r := types.Rating(rating.Int64)
		p.Rating = &r
	}
	p.CreatedAt = parseTime(created)
	return p, nil
}
