// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/research-agent/pkg/types"
)

// ChatMessage is one line of a user's chat history.
type ChatMessage struct {
	Message   string    `json:"message"`
	FromUser  bool      `json:"from_user"`
	CreatedAt time.Time `json:"created_at"`
}

// AppendChat records a chat line for username.
func (s *Store) AppendChat(ctx context.Context, username, message string, fromUser bool) error {
	uid, err := s.userID(ctx, username)
	if err != nil {
		return err
	}
	if _, err := s.exec(ctx, sq.Insert("chat_history").
		Columns("user_id", "message", "is_user", "created_at").
		Values(uid, message, fromUser, s.timestamp())); err != nil {
		return fmt.Errorf("appending chat: %w", err)
	}
	return nil
}

// ChatHistory returns up to limit of the most recent chat lines for
// username, oldest first. limit <= 0 returns everything.
func (s *Store) ChatHistory(ctx context.Context, username string, limit int) ([]ChatMessage, error) {
	q := sq.Select("c.message", "c.is_user", "c.created_at").
		From("chat_history c").
		Join("users u ON u.id = c.user_id").
		Where(sq.Eq{"u.username": username}).
		OrderBy("c.id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var (
			m       ChatMessage
			created string
		)
		if err := rows.Scan(&m.Message, &m.FromUser, &created); err != nil {
			return nil, fmt.Errorf("scanning chat history: %w", err)
		}
		m.CreatedAt = parseTime(created)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// LogAgentAction appends an entry to the agent activity log.
func (s *Store) LogAgentAction(ctx context.Context, agent, action, data string) error {
	if _, err := s.exec(ctx, sq.Insert("agent_logs").
		Columns("agent_name", "action_type", "data", "created_at").
		Values(agent, action, data, s.timestamp())); err != nil {
		return fmt.Errorf("logging agent action: %w", err)
	}
	return nil
}

// AgentAction is one agent_logs row.
type AgentAction struct {
	Agent     string    `json:"agent"`
	Action    string    `json:"action"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentAgentActions returns the newest limit entries, newest first.
func (s *Store) RecentAgentActions(ctx context.Context, limit int) ([]AgentAction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.query(ctx, sq.Select("agent_name", "action_type", "data", "created_at").
		From("agent_logs").
		OrderBy("id DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, fmt.Errorf("querying agent logs: %w", err)
	}
	defer rows.Close()

	var out []AgentAction
	for rows.Next() {
		var (
			a       AgentAction
			created string
		)
		if err := rows.Scan(&a.Agent, &a.Action, &a.Data, &created); err != nil {
			return nil, fmt.Errorf("scanning agent logs: %w", err)
		}
		a.CreatedAt = parseTime(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CachePapers replaces the cached batch for topic with docs.
func (s *Store) CachePapers(ctx context.Context, topic string, docs []types.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Delete("paper_cache").Where(sq.Eq{"topic": topic}).ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing paper cache: %w", err)
	}

	if len(docs) > 0 {
		now := s.timestamp()
		insert := sq.Insert("paper_cache").
			Columns("topic", "title", "summary", "published", "link", "fetched_at")
		for _, d := range docs {
			published := ""
			if !d.Published.IsZero() {
				published = d.Published.UTC().Format(timeLayout)
			}
			insert = insert.Values(topic, d.Title, d.Summary, published, d.Link, now)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("building query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("caching papers: %w", err)
		}
	}

	return tx.Commit()
}

// CachedPapers returns the cached batch for topic in fetch order.
func (s *Store) CachedPapers(ctx context.Context, topic string) ([]types.Document, error) {
	rows, err := s.query(ctx, sq.Select("title", "summary", "published", "link").
		From("paper_cache").
		Where(sq.Eq{"topic": topic}).
		OrderBy("id ASC"))
	if err != nil {
		return nil, fmt.Errorf("querying paper cache: %w", err)
	}
	defer rows.Close()

	docs := []types.Document{}
	for rows.Next() {
		var (
			d         types.Document
			published string
		)
		if err := rows.Scan(&d.Title, &d.Summary, &published, &d.Link); err != nil {
			return nil, fmt.Errorf("scanning paper cache: %w", err)
		}
		d.Published = parseTime(published)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
