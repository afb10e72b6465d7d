// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate turns a keyword list into a research proposal by calling a
// text-generation backend. The backend's reply may arrive in one of three
// shapes; Normalize folds them into plain text so no caller ever inspects
// the raw shape.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/pdiddy/research-agent/internal/logging"
)

// proposalPromptTmpl is the instruction sent to the backend for each
// generation request.
var proposalPromptTmpl = template.Must(template.New("proposal").Parse(`You are an AI research assistant. Generate a detailed research proposal using these keywords:

Keywords: {{.Keywords}}

Write a concise but informative research proposal incorporating these keywords.`))

// Message is a single chat message exchanged with a backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Kind tags the shape of a backend Response.
type Kind int

const (
	// KindNone is the zero value; a Response of this kind carries no payload.
	KindNone Kind = iota
	// KindText is a bare string reply.
	KindText
	// KindMessage is a single message object.
	KindMessage
	// KindMessages is a list of message objects.
	KindMessages
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMessage:
		return "message"
	case KindMessages:
		return "messages"
	default:
		return "none"
	}
}

// Response is the reply of a Backend. Exactly one payload field is
// meaningful, selected by Kind.
type Response struct {
	Kind     Kind
	Text     string
	Message  Message
	Messages []Message
}

// TextResponse wraps a bare string reply.
func TextResponse(s string) Response { return Response{Kind: KindText, Text: s} }

// MessageResponse wraps a single message reply.
func MessageResponse(m Message) Response { return Response{Kind: KindMessage, Message: m} }

// MessagesResponse wraps a list of message replies.
func MessagesResponse(ms []Message) Response { return Response{Kind: KindMessages, Messages: ms} }

// errEmptyResponse is returned by Normalize when the response carries no text.
var errEmptyResponse = errors.New("empty response from backend")

// Normalize returns the text carried by r, trimmed. For KindMessages the
// first message is used. An empty or untagged response is an error.
func Normalize(r Response) (string, error) {
	var text string
	switch r.Kind {
	case KindText:
		text = r.Text
	case KindMessage:
		text = r.Message.Content
	case KindMessages:
		if len(r.Messages) == 0 {
			return "", errEmptyResponse
		}
		text = r.Messages[0].Content
	default:
		return "", fmt.Errorf("unexpected response shape %q", r.Kind)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// Backend is a text-generation service.
type Backend interface {
	Complete(ctx context.Context, messages []Message) (Response, error)
}

// GenerationError reports why a proposal could not be generated. It is
// always recoverable; callers show a fallback message.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ReasonNoKeywords is the GenerationError reason for an empty keyword list.
const ReasonNoKeywords = "no keywords provided"

// Generator builds the proposal prompt and normalizes the backend reply.
// It performs no retries.
type Generator struct {
	backend Backend
	log     *slog.Logger
}

// New returns a Generator over backend.
func New(backend Backend, log *slog.Logger) *Generator {
	return &Generator{backend: backend, log: logging.OrDiscard(log)}
}

// Generate returns proposal text for keywords. Every failure is a
// *GenerationError; an empty keyword list fails without calling the backend.
func (g *Generator) Generate(ctx context.Context, keywords []string) (string, error) {
	if len(keywords) == 0 {
		return "", &GenerationError{Reason: ReasonNoKeywords}
	}

	prompt, err := RenderPrompt(keywords)
	if err != nil {
		return "", &GenerationError{Reason: "rendering prompt", Err: err}
	}

	g.log.Debug("generating proposal", "keywords", strings.Join(keywords, ","))
	resp, err := g.backend.Complete(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		g.log.Warn("backend call failed", "error", err)
		return "", &GenerationError{Reason: "backend call failed", Err: err}
	}

	text, err := Normalize(resp)
	if err != nil {
		g.log.Warn("unusable backend response", "kind", resp.Kind.String(), "error", err)
		return "", &GenerationError{Reason: "unusable response", Err: err}
	}
	return text, nil
}

// RenderPrompt executes the proposal template with the comma-joined keywords.
func RenderPrompt(keywords []string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Keywords string }{Keywords: strings.Join(keywords, ", ")}
	if err := proposalPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
