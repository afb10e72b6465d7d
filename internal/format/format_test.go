// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposal_Canonical(t *testing.T) {
	raw := "**Title:** Quantum Leap\n**Methodology:**\n1. **Step**: Do X"
	want := "# 💡 Innovation Proposal: Quantum Leap\n---\n\n## 🧪 Methodology\n1️⃣ **Step**: Do X"
	assert.Equal(t, want, Proposal(raw))
}

func TestProposal_Empty(t *testing.T) {
	assert.Equal(t, "", Proposal(""))
	assert.Equal(t, "", Proposal("\n \n\t\n"))
}

func TestProposal_Lines(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain line becomes bullet", "Some text", "- Some text"},
		{"existing dash bullet not doubled", "- already", "- already"},
		{"existing star bullet normalised", "* starred", "- starred"},
		{"unicode bullet normalised", "• dot", "- dot"},
		{"unknown section has no marker", "**Budget:**", "\n## Budget"},
		{"known section", "**Impact:**", "\n## 🌍 Impact"},
		{"text after header kept", "**Introduction:** Qubits matter.", "\n## 📚 Introduction\n- Qubits matter."},
		{"numbered without label", "2. second item", "2️⃣ second item"},
		{"numbered nine", "9. last keycap", "9️⃣ last keycap"},
		{"numbered ten falls back", "10. tenth", "10. tenth"},
		{"numbered label colon inside bold", "3. **Scope:** wide", "3️⃣ **Scope**: wide"},
		{"surrounding whitespace trimmed", "   padded   ", "- padded"},
		{"bold without colon is plain", "**Note** careful", "- **Note** careful"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Proposal(tt.raw))
		})
	}
}

func TestProposal_OrderAndBlankLines(t *testing.T) {
	raw := "first\n\n\nsecond\n   \nthird"
	assert.Equal(t, "- first\n- second\n- third", Proposal(raw))
}

func TestProposal_AllSectionsHaveMarkers(t *testing.T) {
	for name, marker := range sectionMarkers {
		if name == "Title" {
			continue
		}
		got := Proposal("**" + name + ":**")
		assert.Equal(t, "\n## "+marker+" "+name, got)
	}
}

func TestProposal_Idempotent(t *testing.T) {
	// Already-formatted bullets stay stable on a second pass.
	once := Proposal("alpha\nbeta")
	assert.Equal(t, once, Proposal(once))
}

func TestReport(t *testing.T) {
	got := Report("AI", []string{"quantum", "computing"}, "Body text")
	want := "# Research Proposal: AI\n\n## Extracted Keywords:\n- quantum\n- computing\n\n## Proposal:\nBody text"
	assert.Equal(t, want, got)
}

func TestReport_NoKeywords(t *testing.T) {
	got := Report("AI", nil, "Body")
	assert.True(t, strings.HasPrefix(got, "# Research Proposal: AI\n\n## Extracted Keywords:\n\n\n## Proposal:\n"))
}
