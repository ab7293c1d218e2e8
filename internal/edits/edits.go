// Package edits applies edit batches to in-memory document text. A host
// editor would apply the batches itself; the CLI, the MCP server and the
// tests use this implementation.
package edits

import (
	"fmt"
	"sort"

	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/types"
)

type span struct {
	start, end int
	newText    string
}

// Apply returns doc's text with all edits applied. Edits are applied from
// the back of the document forward so earlier offsets stay valid. The batch
// is atomic: any overlapping pair fails the whole application.
func Apply(doc *types.Document, edits []types.TextEdit) (string, error) {
	spans := make([]span, 0, len(edits))
	for _, e := range edits {
		start := doc.OffsetAt(e.Range.Start)
		end := doc.OffsetAt(e.Range.End)
		if start > end {
			start, end = end, start
		}
		spans = append(spans, span{start: start, end: end, newText: e.NewText})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start > spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	for i := 1; i < len(spans); i++ {
		// spans[i-1] starts at or after spans[i]; they overlap when the
		// earlier one ends past the later one's start.
		if spans[i].end > spans[i-1].start {
			return "", errors.NewEditError(doc.URI,
				fmt.Errorf("overlapping edits at offsets %d and %d", spans[i].start, spans[i-1].start))
		}
	}

	text := doc.Text
	for _, s := range spans {
		text = text[:s.start] + s.newText + text[s.end:]
	}
	return text, nil
}

// ApplyWorkspace applies a whole edit batch against the given open
// documents and returns the new text per URI. Documents named by the batch
// but not present in docs fail the application; nothing partial is returned.
func ApplyWorkspace(we *types.WorkspaceEdit, docs map[string]*types.Document) (map[string]string, error) {
	out := make(map[string]string, len(we.Changes))
	for uri, list := range we.Changes {
		doc, ok := docs[uri]
		if !ok {
			return nil, errors.NewEditError(uri, fmt.Errorf("document not open"))
		}
		text, err := Apply(doc, list)
		if err != nil {
			return nil, err
		}
		out[uri] = text
	}
	return out, nil
}
