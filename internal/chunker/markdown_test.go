package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMarkdownSplit_HeadingSections(t *testing.T) {
	c := New()

	doc := `# Installation

Run the installer and follow the prompts to complete the setup process.

# Configuration

Edit the configuration file before starting the service for the first time.
`

	chunks := c.Chunk(doc, "guide.md")
	if len(chunks) != 2 {
		t.Fatalf("Chunk() = %d chunks, want 2", len(chunks))
	}

	if !strings.HasPrefix(chunks[0].Text, "Installation") {
		t.Errorf("chunk 0 = %q, want Installation section first", chunks[0].Text)
	}
	if !strings.HasPrefix(chunks[1].Text, "Configuration") {
		t.Errorf("chunk 1 = %q, want Configuration section second", chunks[1].Text)
	}
}

func TestMarkdownSplit_OversizedSection(t *testing.T) {
	c := New()

	var b strings.Builder
	b.WriteString("# Long Section\n\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "Detail sentence number %d about this very long topic. ", i)
	}

	chunks := c.Chunk(b.String(), "long.md")
	if len(chunks) < 2 {
		t.Fatalf("Chunk() = %d chunks, want oversized section re-split", len(chunks))
	}
	for _, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk.Text); n > maxChunkSize {
			t.Errorf("chunk %d has %d runes, exceeds max %d", chunk.Index, n, maxChunkSize)
		}
	}
}

func TestMarkdownSplit_Table(t *testing.T) {
	c := New()

	doc := `# Limits

| Resource | Limit | Notes |
|----------|-------|-------|
| Requests | 30 per minute | per user account |
| Upload size | 10 megabytes | per single document |
`

	chunks := c.Chunk(doc, "limits.md")
	if len(chunks) == 0 {
		t.Fatal("Chunk() returned no chunks for markdown table")
	}

	joined := ""
	for _, chunk := range chunks {
		joined += chunk.Text + "\n"
	}
	if !strings.Contains(joined, "Requests | 30 per minute") {
		t.Errorf("table row content missing from chunks: %q", joined)
	}
}

func TestMarkdownSplit_NoHeadings(t *testing.T) {
	c := New()

	doc := "Plain markdown paragraph without any heading at all, still long enough to keep."
	chunks := c.Chunk(doc, "plain.md")
	if len(chunks) != 1 {
		t.Fatalf("Chunk() = %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Plain markdown paragraph") {
		t.Errorf("chunk 0 = %q, content missing", chunks[0].Text)
	}
}
