// Package extract turns the visible text of a document snapshot into a
// typing target.
package extract

import (
	"errors"
	"strings"
	"unicode"

	"github.com/verte-zerg/pagetype/internal/document"
)

// ErrNoContent is returned when a snapshot yields no typeable text.
var ErrNoContent = errors.New("no valid text found on this page")

// Source exposes the visible textual elements of a snapshot.
type Source interface {
	VisibleTextualElements() []document.TextElement
}

// Extract joins the visible textual elements of src and normalizes the result
// down to the allowed character set.
func Extract(src Source) (string, error) {
	elements := src.VisibleTextualElements()
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		if text := strings.TrimSpace(el.Text); text != "" {
			parts = append(parts, text)
		}
	}
	text := collapseSpace(strings.Join(parts, " "))
	text = strings.Map(keepAllowed, text)
	text = strings.TrimSpace(collapseSpace(text))
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// collapseSpace replaces every whitespace run with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func keepAllowed(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case unicode.IsSpace(r):
		return r
	case strings.ContainsRune(".,!?'-", r):
		return r
	default:
		return -1
	}
}
