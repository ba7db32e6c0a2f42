package chunker

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// maxChunkSize is measured in runes (not bytes) for consistency with
	// embedding token estimation.
	maxChunkSize = 1000
	overlapSize  = 200
	minChunkSize = 15

	overlapLines = 3
	overlapRows  = 2
)

// Chunk represents a bounded contiguous span of a document's text, the unit
// of embedding and retrieval. Index is the ordinal position within the
// document and must be preserved when reconstructing document context.
type Chunk struct {
	Index int
	Text  string
}

// Chunker splits raw document text into overlapping, bounded-size segments.
// The strategy is selected by filename extension: code-like files use
// line-oriented splitting, tabular files split by row with the header
// repeated, markdown uses heading-aware AST splitting, and everything else
// uses sentence-oriented splitting.
//
// Chunking is deterministic: the same text and filename always produce the
// same chunk sequence. No I/O, no randomness.
type Chunker struct {
	md *markdownSplitter
}

// New creates a new Chunker.
func New() *Chunker {
	return &Chunker{md: newMarkdownSplitter()}
}

var codeExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".jsx": {}, ".tsx": {},
	".java": {}, ".c": {}, ".h": {}, ".cpp": {}, ".cc": {}, ".cs": {},
	".rs": {}, ".rb": {}, ".php": {}, ".sh": {}, ".sql": {}, ".swift": {},
	".kt": {}, ".scala": {},
}

var tabularExtensions = map[string]struct{}{
	".csv": {}, ".tsv": {}, ".xlsx": {},
}

var markdownExtensions = map[string]struct{}{
	".md": {}, ".markdown": {},
}

// Chunk splits text into chunks using the strategy selected by filenameHint.
// Empty or whitespace-only text yields zero chunks; chunks below the minimum
// informative length are discarded.
func (c *Chunker) Chunk(text, filenameHint string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(filenameHint))

	var pieces []string
	switch {
	case isCodeExtension(ext):
		pieces = splitLines(text)
	case isTabularExtension(ext):
		pieces = splitRows(text)
	case isMarkdownExtension(ext):
		pieces = c.md.split(text)
	default:
		pieces = splitSentences(text)
	}

	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		if utf8.RuneCountInString(strings.TrimSpace(piece)) < minChunkSize {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: piece})
	}
	return chunks
}

func isCodeExtension(ext string) bool {
	_, ok := codeExtensions[ext]
	return ok
}

func isTabularExtension(ext string) bool {
	_, ok := tabularExtensions[ext]
	return ok
}

func isMarkdownExtension(ext string) bool {
	_, ok := markdownExtensions[ext]
	return ok
}

// splitSentences splits prose into sentence-oriented chunks of at most
// maxChunkSize runes, carrying a trailing overlap of roughly overlapSize
// runes into the next chunk to preserve cross-boundary context.
func splitSentences(text string) []string {
	sentences := sentenceSplit(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))

		// Carry trailing sentences totalling up to overlapSize runes into
		// the next chunk.
		var overlap []string
		overlapLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			l := utf8.RuneCountInString(current[i])
			if overlapLen+l > overlapSize {
				break
			}
			overlap = append([]string{current[i]}, overlap...)
			overlapLen += l
		}
		current = overlap
		currentLen = overlapLen
	}

	for _, sentence := range sentences {
		l := utf8.RuneCountInString(sentence)

		// A single sentence longer than the budget gets hard-split.
		if l > maxChunkSize {
			flush()
			current = nil
			currentLen = 0
			runes := []rune(sentence)
			for len(runes) > maxChunkSize {
				chunks = append(chunks, strings.TrimSpace(string(runes[:maxChunkSize])))
				runes = runes[maxChunkSize:]
			}
			current = []string{string(runes)}
			currentLen = len(runes)
			continue
		}

		if currentLen > 0 && currentLen+l > maxChunkSize {
			flush()
		}
		current = append(current, sentence)
		currentLen += l
	}
	if currentLen > 0 {
		last := strings.TrimSpace(strings.Join(current, " "))
		// Don't emit a chunk that is purely the overlap of the previous one.
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], last) {
			chunks = append(chunks, last)
		}
	}
	return chunks
}

// sentenceSplit breaks text into sentences on terminal punctuation followed
// by whitespace, treating newlines as soft boundaries.
func sentenceSplit(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)

		boundary := false
		switch r {
		case '.', '!', '?':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				boundary = true
			}
		case '\n':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				boundary = true
			}
		}

		if boundary {
			s := strings.TrimSpace(b.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// splitLines splits code-like text into line-oriented chunks, preferring to
// break at blank lines or unindented lines so blocks stay intact. The last
// overlapLines lines of each chunk are carried into the next, capped at
// overlapSize runes so a long line never re-inflates the following chunk.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.TrimRight(strings.Join(current, "\n"), "\n"))

		var overlap []string
		overlapLen := 0
		for i := len(current) - 1; i >= 0 && len(overlap) < overlapLines; i-- {
			l := utf8.RuneCountInString(current[i]) + 1
			if overlapLen+l > overlapSize {
				break
			}
			overlap = append([]string{current[i]}, overlap...)
			overlapLen += l
		}
		current = overlap
		currentLen = overlapLen
	}

	for _, line := range lines {
		lineLen := utf8.RuneCountInString(line) + 1

		// A single line longer than the budget (minified bundles, long
		// string literals) gets hard-split and excluded from overlap carry.
		if lineLen > maxChunkSize {
			flush()
			current = nil
			currentLen = 0
			runes := []rune(line)
			for len(runes) > maxChunkSize {
				chunks = append(chunks, string(runes[:maxChunkSize]))
				runes = runes[maxChunkSize:]
			}
			if len(runes) > 0 {
				current = []string{string(runes)}
				currentLen = len(runes) + 1
			}
			continue
		}

		if currentLen > 0 && currentLen+lineLen > maxChunkSize {
			// Prefer breaking at a block boundary; break anyway once the
			// chunk is past the budget plus overlap tolerance.
			if isBlockBoundary(line) || currentLen+lineLen > maxChunkSize+overlapSize {
				flush()
			}
		}

		current = append(current, line)
		currentLen += lineLen
	}
	if len(current) > 0 {
		last := strings.TrimRight(strings.Join(current, "\n"), "\n")
		if strings.TrimSpace(last) != "" {
			if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], last) {
				chunks = append(chunks, last)
			}
		}
	}
	return chunks
}

// isBlockBoundary reports whether a line is a reasonable place to start a new
// chunk: blank, or a new top-level (unindented) line.
func isBlockBoundary(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	return !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t")
}

// splitRows splits tabular text by row, repeating the header row in every
// chunk so each chunk remains interpretable on its own. Tabular text with
// only a header row yields zero chunks. The last overlapRows data rows are
// carried into the next chunk, capped at overlapSize runes.
func splitRows(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	var header string
	var rows []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header == "" {
			header = line
			continue
		}
		rows = append(rows, line)
	}
	if header == "" || len(rows) == 0 {
		return nil
	}

	headerLen := utf8.RuneCountInString(header) + 1

	// A header that alone exceeds the budget cannot be repeated per chunk;
	// fall back to prose splitting, which hard-splits long runs.
	if headerLen > maxChunkSize {
		return splitSentences(text)
	}

	// A single row must leave room for the repeated header.
	rowBudget := maxChunkSize - headerLen
	if rowBudget < minChunkSize {
		rowBudget = minChunkSize
	}

	var chunks []string
	var current []string
	currentLen := headerLen

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, header+"\n"+strings.Join(current, "\n"))

		var overlap []string
		overlapLen := 0
		for i := len(current) - 1; i >= 0 && len(overlap) < overlapRows; i-- {
			l := utf8.RuneCountInString(current[i]) + 1
			if overlapLen+l > overlapSize {
				break
			}
			overlap = append([]string{current[i]}, overlap...)
			overlapLen += l
		}
		current = overlap
		currentLen = headerLen + overlapLen
	}

	for _, row := range rows {
		rowLen := utf8.RuneCountInString(row) + 1

		// An oversized row (wide CSV cell) gets hard-split; every piece
		// still carries the header, and none of them joins the overlap.
		if rowLen > rowBudget {
			flush()
			current = nil
			currentLen = headerLen
			runes := []rune(row)
			for len(runes) > rowBudget {
				chunks = append(chunks, header+"\n"+string(runes[:rowBudget]))
				runes = runes[rowBudget:]
			}
			if len(runes) > 0 {
				current = []string{string(runes)}
				currentLen = headerLen + len(runes) + 1
			}
			continue
		}

		if len(current) > 0 && currentLen+rowLen > maxChunkSize {
			flush()
		}
		current = append(current, row)
		currentLen += rowLen
	}
	if len(current) > 0 {
		last := header + "\n" + strings.Join(current, "\n")
		if len(chunks) == 0 || chunks[len(chunks)-1] != last {
			chunks = append(chunks, last)
		}
	}
	return chunks
}
