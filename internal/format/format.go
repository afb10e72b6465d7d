// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders generated proposal text as decorated Markdown and
// builds the exported proposal report.
package format

import (
	"regexp"
	"strings"
)

// sectionMarkers maps recognised section names to their heading marker.
var sectionMarkers = map[string]string{
	"Title":               "💡",
	"Introduction":        "📚",
	"Research Objectives": "🎯",
	"Research Questions":  "❓",
	"Methodology":         "🧪",
	"Expected Outcomes":   "🚀",
	"Impact":              "🌍",
	"Timeline":            "⏳",
	"Personnel":           "👥",
	"Resources":           "🧰",
	"Conclusion":          "🔚",
}

// ordinalMarkers holds the keycap markers for 1 through 9.
var ordinalMarkers = map[string]string{
	"1": "1️⃣", "2": "2️⃣", "3": "3️⃣", "4": "4️⃣", "5": "5️⃣",
	"6": "6️⃣", "7": "7️⃣", "8": "8️⃣", "9": "9️⃣",
}

var (
	// sectionPattern matches "**Name:**" at the start of a line.
	sectionPattern = regexp.MustCompile(`^\*\*(.+?):\*\*\s*(.*)$`)

	// numberedPattern matches "N. text", "N. **Label**: text" and
	// "N. **Label:** text".
	numberedPattern = regexp.MustCompile(`^(\d+)\.\s*(?:\*\*([^*]+?)\*\*:|\*\*([^*]+?):\*\*)?\s*(.+)$`)

	// bulletPattern matches a line that already carries a bullet.
	bulletPattern = regexp.MustCompile(`^[-*•]\s+`)
)

// Proposal decorates raw generator output. It never fails: lines that match
// no rule become plain bullets. Blank lines are dropped and order is kept.
func Proposal(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, formatLine(line)...)
	}
	return strings.Join(out, "\n")
}

func formatLine(line string) []string {
	if m := sectionPattern.FindStringSubmatch(line); m != nil {
		name, rest := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if name == "Title" {
			return []string{"# " + sectionMarkers["Title"] + " Innovation Proposal: " + rest, "---"}
		}
		heading := "\n## " + name
		if marker, ok := sectionMarkers[name]; ok {
			heading = "\n## " + marker + " " + name
		}
		if rest == "" {
			return []string{heading}
		}
		return []string{heading, bullet(rest)}
	}

	if m := numberedPattern.FindStringSubmatch(line); m != nil {
		num, text := m[1], m[4]
		marker, ok := ordinalMarkers[num]
		if !ok {
			marker = num + "."
		}
		label := m[2]
		if label == "" {
			label = m[3]
		}
		if label != "" {
			return []string{marker + " **" + strings.TrimSpace(label) + "**: " + text}
		}
		return []string{marker + " " + text}
	}

	return []string{bullet(line)}
}

func bullet(line string) string {
	return "- " + bulletPattern.ReplaceAllString(line, "")
}

// Report builds the Markdown export for a proposal.
func Report(topic string, keywords []string, proposal string) string {
	var b strings.Builder
	b.WriteString("# Research Proposal: " + topic + "\n\n")
	b.WriteString("## Extracted Keywords:\n")
	for i, kw := range keywords {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + kw)
	}
	b.WriteString("\n\n## Proposal:\n")
	b.WriteString(proposal)
	return b.String()
}
