// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls and returns a canned response.
type fakeBackend struct {
	resp  Response
	err   error
	calls int
	got   []Message
}

func (f *fakeBackend) Complete(_ context.Context, messages []Message) (Response, error) {
	f.calls++
	f.got = messages
	return f.resp, f.err
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		resp    Response
		want    string
		wantErr bool
	}{
		{"bare text", TextResponse("  hello  "), "hello", false},
		{"single message", MessageResponse(Message{Role: "assistant", Content: "proposal"}), "proposal", false},
		{"message list uses first", MessagesResponse([]Message{{Content: "first"}, {Content: "second"}}), "first", false},
		{"empty list", MessagesResponse(nil), "", true},
		{"blank text", TextResponse(" \n "), "", true},
		{"untagged", Response{}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.resp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	got, err := RenderPrompt([]string{"quantum", "computing"})
	require.NoError(t, err)
	assert.Contains(t, got, "Keywords: quantum, computing\n")
	assert.Contains(t, got, "You are an AI research assistant.")
	assert.Contains(t, got, "Write a concise but informative research proposal incorporating these keywords.")
}

func TestGenerate_NoKeywords(t *testing.T) {
	fb := &fakeBackend{resp: TextResponse("unused")}
	g := New(fb, nil)

	for _, kws := range [][]string{nil, {}} {
		_, err := g.Generate(context.Background(), kws)
		var gerr *GenerationError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, ReasonNoKeywords, gerr.Reason)
	}
	assert.Equal(t, 0, fb.calls, "backend must not be called without keywords")
}

func TestGenerate_AllShapesAgree(t *testing.T) {
	shapes := []Response{
		TextResponse("P"),
		MessageResponse(Message{Role: "assistant", Content: "P"}),
		MessagesResponse([]Message{{Role: "assistant", Content: "P"}}),
	}
	for _, shape := range shapes {
		t.Run(shape.Kind.String(), func(t *testing.T) {
			fb := &fakeBackend{resp: shape}
			got, err := New(fb, nil).Generate(context.Background(), []string{"quantum", "computing"})
			require.NoError(t, err)
			assert.Equal(t, "P", got)
			require.Len(t, fb.got, 1)
			assert.Equal(t, "user", fb.got[0].Role)
			assert.Contains(t, fb.got[0].Content, "quantum, computing")
		})
	}
}

func TestGenerate_BackendError(t *testing.T) {
	cause := errors.New("connection refused")
	fb := &fakeBackend{err: cause}

	_, err := New(fb, nil).Generate(context.Background(), []string{"quantum"})
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, fb.calls, "no retries")
}

func TestGenerate_EmptyResponse(t *testing.T) {
	fb := &fakeBackend{resp: MessagesResponse([]Message{})}

	_, err := New(fb, nil).Generate(context.Background(), []string{"quantum"})
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "unusable response", gerr.Reason)
}
