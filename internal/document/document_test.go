package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(elements []TextElement) []string {
	out := make([]string, len(elements))
	for i, el := range elements {
		out[i] = el.Text
	}
	return out
}

func TestVisibleTextualElementsSkipsHidden(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<html><head><title>Title</title></head><body>
		<p>Hello <b>World</b>!!!</p>
		<p style="display: none">SECRET</p>
	</body></html>`))
	require.NoError(t, err)

	got := doc.VisibleTextualElements()
	require.Len(t, got, 1)
	assert.Equal(t, "Hello World!!!", got[0].Text)
	assert.Equal(t, 0, got[0].Order)
}

func TestVisibleTextualElementsVisibilityRules(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<body>
		<h1>Heading</h1>
		<div hidden><p>attr hidden</p></div>
		<div style="color: red; visibility:hidden !important">
			<p>invisible</p>
			<p style="visibility: visible">reshown</p>
		</div>
		<div style="display:none"><p style="display:block">still gone</p></div>
		<span>not textual</span>
		<p>   </p>
		<script>var p = "<p>nope</p>";</script>
		<article><p>nested</p></article>
	</body>`))
	require.NoError(t, err)

	got := doc.VisibleTextualElements()
	assert.Equal(t, []string{"Heading", "reshown", "nested", "nested"}, texts(got))
	for i, el := range got {
		assert.Equal(t, i, el.Order)
	}
}

func TestTextContentIncludesHiddenDescendants(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<p>a<span style="display:none">b</span>c</p>`))
	require.NoError(t, err)

	got := doc.VisibleTextualElements()
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].Text)
}

func TestVisible(t *testing.T) {
	assert.True(t, (&Node{Tag: "p", Children: []*Node{{Text: "x"}}}).Visible())
	assert.False(t, (&Node{Tag: "p"}).Visible())
	assert.False(t, (&Node{Tag: "p", Attrs: map[string]string{"style": "display:none"}, Children: []*Node{{Text: "x"}}}).Visible())
	assert.False(t, (&Node{Tag: "p", Attrs: map[string]string{"style": "visibility:hidden"}, Children: []*Node{{Text: "x"}}}).Visible())
	assert.True(t, (&Node{Tag: "p", Attrs: map[string]string{"style": "display:none;display:block"}, Children: []*Node{{Text: "x"}}}).Visible())
}

func TestFromTextSplitsParagraphs(t *testing.T) {
	doc := FromText("first line\nstill first\r\n\r\n\n\nsecond\n\n  \n")
	assert.Equal(t, []string{"first line\nstill first", "second"}, texts(doc.VisibleTextualElements()))
}

func TestLoadPicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "page.HTML")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<p>markup <i>here</i></p>"), 0o644))
	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("<p>literal</p>"), 0o644))

	doc, err := Load(htmlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"markup here"}, texts(doc.VisibleTextualElements()))

	doc, err = Load(txtPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"<p>literal</p>"}, texts(doc.VisibleTextualElements()))

	_, err = Load(filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}
