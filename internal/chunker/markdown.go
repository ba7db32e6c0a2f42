package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownSplitter splits markdown into heading-delimited sections using the
// goldmark AST, then applies the prose size constraints to each section.
type markdownSplitter struct {
	parser goldmark.Markdown
}

func newMarkdownSplitter() *markdownSplitter {
	return &markdownSplitter{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// split returns one piece per heading-delimited section, with oversized
// sections re-split on sentence boundaries. Each piece begins with its
// heading text so the section remains interpretable on its own.
func (m *markdownSplitter) split(content string) []string {
	source := []byte(content)
	reader := text.NewReader(source)
	doc := m.parser.Parser().Parse(reader)

	sections := collectSections(doc, source)
	if len(sections) == 0 {
		return splitSentences(content)
	}

	var pieces []string
	for _, section := range sections {
		body := strings.TrimSpace(section.body)
		if body == "" && section.heading == "" {
			continue
		}

		full := body
		if section.heading != "" {
			if full == "" {
				full = section.heading
			} else {
				full = section.heading + "\n" + full
			}
		}

		pieces = append(pieces, splitSentences(full)...)
	}
	return pieces
}

type mdSection struct {
	heading string
	body    string
}

// collectSections walks the AST and gathers text grouped by heading.
func collectSections(doc ast.Node, source []byte) []mdSection {
	var sections []mdSection
	current := &mdSection{}

	flush := func() {
		if current.heading != "" || strings.TrimSpace(current.body) != "" {
			sections = append(sections, *current)
		}
		current = &mdSection{}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			flush()
			current.heading = nodeText(node, source)
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			current.body += string(node.Segment.Value(source))
			return ast.WalkContinue, nil

		case *ast.String:
			current.body += string(node.Value)
			return ast.WalkContinue, nil

		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				current.body += string(line.Value(source))
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				current.body += string(line.Value(source))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem:
			if len(current.body) > 0 && !strings.HasSuffix(current.body, "\n") {
				current.body += "\n"
			}
			return ast.WalkContinue, nil

		default:
			// Table extension nodes: extract rows with pipe separators.
			kindName := n.Kind().String()
			if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
				if len(current.body) > 0 && !strings.HasSuffix(current.body, "\n") {
					current.body += "\n"
				}
				current.body += tableRowText(n, source) + "\n"
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		}
	})

	flush()
	return sections
}

// nodeText extracts the plain text content of a node and its children.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// tableRowText extracts text from a table row, joining cells with pipes.
func tableRowText(row ast.Node, source []byte) string {
	var b strings.Builder
	cellCount := 0

	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(node.Kind().String(), "TableCell") {
			if cellCount > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(nodeText(node, source))
			cellCount++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return b.String()
}
