package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunk_EmptyInput(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		hint string
	}{
		{name: "empty string", text: "", hint: "doc.txt"},
		{name: "whitespace only", text: "   \n\t  \n", hint: "doc.txt"},
		{name: "empty markdown", text: "", hint: "notes.md"},
		{name: "empty csv", text: "\n\n", hint: "data.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Chunk(tt.text, tt.hint); len(got) != 0 {
				t.Errorf("Chunk() = %d chunks, want 0", len(got))
			}
		})
	}
}

func TestChunk_SizeBounds(t *testing.T) {
	c := New()

	// Enough prose to force multiple chunks.
	var prose strings.Builder
	for i := 0; i < 200; i++ {
		fmt.Fprintf(&prose, "Sentence number %d carries some modest amount of information. ", i)
	}

	// One unbroken run several times the budget, the minified-file /
	// wide-CSV-cell shape that must be hard-split by every strategy.
	oversized := strings.Repeat("x", maxChunkSize*4+137)

	var code strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&code, "func handler%d() {\n\tprocess(%d)\n\treturn\n}\n\n", i, i)
	}
	code.WriteString(oversized + "\nvar short = 1\n")

	var tab strings.Builder
	tab.WriteString("id,name,value\n")
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&tab, "%d,item-%d,%d\n", i, i, i*10)
	}
	tab.WriteString("999," + oversized + ",1\n")

	md := "# Title\n\n" + oversized + "\n\n## Next\n\nSome closing prose for the second section.\n"

	tests := []struct {
		name string
		text string
		hint string
	}{
		{name: "prose", text: prose.String(), hint: "document.txt"},
		{name: "prose oversized run", text: oversized + " A short closing sentence follows it.", hint: "document.txt"},
		{name: "code oversized line", text: code.String(), hint: "bundle.js"},
		{name: "tabular oversized row", text: tab.String(), hint: "data.csv"},
		{name: "markdown oversized section", text: md, hint: "notes.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := c.Chunk(tt.text, tt.hint)
			if len(chunks) < 2 {
				t.Fatalf("Chunk() = %d chunks, want at least 2", len(chunks))
			}

			for _, chunk := range chunks {
				n := utf8.RuneCountInString(chunk.Text)
				if n > maxChunkSize+overlapSize {
					t.Errorf("chunk %d has %d runes, exceeds max+overlap %d", chunk.Index, n, maxChunkSize+overlapSize)
				}
				if n < minChunkSize {
					t.Errorf("chunk %d has %d runes, below min %d", chunk.Index, n, minChunkSize)
				}
			}
		})
	}
}

func TestChunk_OversizedLineNotCarriedAsOverlap(t *testing.T) {
	c := New()

	long := strings.Repeat("y", maxChunkSize*5)
	chunks := c.Chunk(long+"\nvar trailing = 1\nvar another = 2\n", "bundle.js")
	if len(chunks) < 2 {
		t.Fatalf("Chunk() = %d chunks, want at least 2", len(chunks))
	}

	// The hard-split pieces must not be re-copied into later chunks; total
	// content stays close to the input size rather than doubling.
	total := 0
	for _, chunk := range chunks {
		n := utf8.RuneCountInString(chunk.Text)
		if n > maxChunkSize+overlapSize {
			t.Errorf("chunk %d has %d runes, exceeds max+overlap %d", chunk.Index, n, maxChunkSize+overlapSize)
		}
		total += n
	}
	if inputLen := utf8.RuneCountInString(long); total < inputLen {
		t.Errorf("total chunk runes = %d, content was lost from %d input runes", total, inputLen)
	} else if total > inputLen+maxChunkSize {
		t.Errorf("total chunk runes = %d, oversized line re-copied as overlap", total)
	}
}

func TestChunk_IndexesAreSequential(t *testing.T) {
	c := New()

	var b strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "Another sentence with filler content number %d goes here. ", i)
	}

	chunks := c.Chunk(b.String(), "doc.txt")
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk at position %d has Index %d", i, chunk.Index)
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := New()

	var b strings.Builder
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "Deterministic content sentence %d for repeated runs. ", i)
	}
	text := b.String()

	first := c.Chunk(text, "doc.txt")
	for run := 0; run < 3; run++ {
		got := c.Chunk(text, "doc.txt")
		if len(got) != len(first) {
			t.Fatalf("run %d: %d chunks, want %d", run, len(got), len(first))
		}
		for i := range got {
			if got[i] != first[i] {
				t.Errorf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestChunk_OversizedSingleToken(t *testing.T) {
	c := New()

	// One unbroken token several times the chunk budget. Must be hard-split,
	// never dropped and never emitted over budget.
	token := strings.Repeat("x", maxChunkSize*3+100)

	chunks := c.Chunk(token, "blob.txt")
	if len(chunks) == 0 {
		t.Fatal("Chunk() returned no chunks for oversized token")
	}

	total := 0
	for _, chunk := range chunks {
		n := utf8.RuneCountInString(chunk.Text)
		if n > maxChunkSize {
			t.Errorf("chunk %d has %d runes, exceeds max %d", chunk.Index, n, maxChunkSize)
		}
		total += n
	}
	if total < maxChunkSize*3 {
		t.Errorf("total chunk runes = %d, content was lost", total)
	}
}

func TestChunk_SentenceOverlap(t *testing.T) {
	c := New()

	var b strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "Overlap probe sentence number %03d sits right here. ", i)
	}

	chunks := c.Chunk(b.String(), "doc.txt")
	if len(chunks) < 2 {
		t.Fatalf("Chunk() = %d chunks, want at least 2", len(chunks))
	}

	// Each chunk after the first should start with material from the tail of
	// its predecessor.
	for i := 1; i < len(chunks); i++ {
		firstSentence := chunks[i].Text
		if idx := strings.Index(firstSentence, ". "); idx > 0 {
			firstSentence = firstSentence[:idx+1]
		}
		if !strings.Contains(chunks[i-1].Text, firstSentence) {
			t.Errorf("chunk %d does not begin with overlap from chunk %d", i, i-1)
		}
	}
}

func TestChunk_CodeStrategy(t *testing.T) {
	c := New()

	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "func handler%d() {\n\tprocess(%d)\n\treturn\n}\n\n", i, i)
	}

	chunks := c.Chunk(b.String(), "server.go")
	if len(chunks) < 2 {
		t.Fatalf("Chunk() = %d chunks, want at least 2", len(chunks))
	}

	for _, chunk := range chunks {
		if utf8.RuneCountInString(chunk.Text) > maxChunkSize+overlapSize {
			t.Errorf("chunk %d exceeds line-split tolerance", chunk.Index)
		}
	}

	// Line overlap: the first line of each subsequent chunk should appear in
	// the previous chunk.
	for i := 1; i < len(chunks); i++ {
		firstLine := strings.SplitN(chunks[i].Text, "\n", 2)[0]
		if strings.TrimSpace(firstLine) == "" {
			continue
		}
		if !strings.Contains(chunks[i-1].Text, firstLine) {
			t.Errorf("chunk %d first line %q not carried from chunk %d", i, firstLine, i-1)
		}
	}
}

func TestChunk_TabularHeaderRepeated(t *testing.T) {
	c := New()

	header := "id,name,value,description"
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&b, "%d,item-%d,%d,a moderately long description cell for row %d\n", i, i, i*10, i)
	}

	chunks := c.Chunk(b.String(), "data.csv")
	if len(chunks) < 2 {
		t.Fatalf("Chunk() = %d chunks, want at least 2", len(chunks))
	}

	for _, chunk := range chunks {
		if !strings.HasPrefix(chunk.Text, header+"\n") {
			t.Errorf("chunk %d does not start with the header row", chunk.Index)
		}
	}
}

func TestChunk_TabularHeaderOnly(t *testing.T) {
	c := New()

	if got := c.Chunk("id,name,value\n", "data.csv"); len(got) != 0 {
		t.Errorf("Chunk() = %d chunks for header-only table, want 0", len(got))
	}
}

func TestChunk_TinyFragmentsDiscarded(t *testing.T) {
	c := New()

	// Sentences below the informative minimum should not survive as chunks.
	chunks := c.Chunk("Ok. No. Yes.", "doc.txt")
	for _, chunk := range chunks {
		if utf8.RuneCountInString(strings.TrimSpace(chunk.Text)) < minChunkSize {
			t.Errorf("chunk %q below minimum informative length", chunk.Text)
		}
	}
}

func TestSentenceSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "simple sentences", text: "First sentence here. Second sentence here. Third one.", want: 3},
		{name: "question and exclamation", text: "Really? Yes! Definitely.", want: 3},
		{name: "paragraph break", text: "First paragraph line\n\nSecond paragraph line", want: 2},
		{name: "no terminal punctuation", text: "a single trailing fragment", want: 1},
		{name: "decimal not split midnumber", text: "The value is 3.14 exactly. Next sentence.", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sentenceSplit(tt.text)
			if len(got) != tt.want {
				t.Errorf("sentenceSplit() = %d sentences %v, want %d", len(got), got, tt.want)
			}
		})
	}
}
