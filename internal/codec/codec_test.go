package codec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docprint/internal/doc"
	"docprint/internal/printer"
)

const groupJSON = `{"type":"group","contents":["foo",{"type":"line"},"bar"]}`

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":       FormatJSON,
		"dir/b.YAML":   FormatYAML,
		"c.yml":        FormatYAML,
		"d.msgpack":    FormatMsgPack,
		"nested/e.mpk": FormatMsgPack,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("notes.txt")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.False(t, IsDocFile("notes.txt"))
	assert.True(t, IsDocFile("x.json"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" YML ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecode_JSONGroup(t *testing.T) {
	got, err := Decode([]byte(groupJSON), FormatJSON, DecodeOptions{})
	require.NoError(t, err)

	want := doc.Group(doc.Concat{doc.Text("foo"), doc.Line, doc.Text("bar")})
	assert.Equal(t, want, got)
}

func TestDecode_HardLineBreaksEnclosingGroup(t *testing.T) {
	src := `{"type":"group","contents":[
		"a",
		{"type":"line","hard":true},
		{"type":"if-break","breakContents":"BROKEN","flatContents":"FLAT"}
	]}`
	d, err := Decode([]byte(src), FormatJSON, DecodeOptions{})
	require.NoError(t, err)

	res, err := printer.Print(d, printer.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "a\nBROKEN", res.Formatted)
}

func TestDecode_YAMLMatchesJSON(t *testing.T) {
	src := `
type: group
contents:
  - foo
  - type: line
  - bar
`
	fromYAML, err := Decode([]byte(src), FormatYAML, DecodeOptions{})
	require.NoError(t, err)
	fromJSON, err := Decode([]byte(groupJSON), FormatJSON, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)
}

func TestDecode_AllKinds(t *testing.T) {
	src := `[
		{"type":"cursor"},
		{"type":"trim"},
		{"type":"break-parent"},
		{"type":"line-suffix-boundary"},
		{"type":"line","soft":true},
		{"type":"line","hard":true},
		{"type":"line","hard":true,"literal":true},
		{"type":"indent","contents":"a"},
		{"type":"align","n":2,"contents":"b"},
		{"type":"align","n":-1,"contents":"c"},
		{"type":"align","n":"> ","contents":"d"},
		{"type":"align","n":{"type":"root"},"contents":"e"},
		{"type":"align","n":{"type":"dedent-to-root"},"contents":"f"},
		{"type":"group","id":"g1","break":true,"contents":"g"},
		{"type":"fill","parts":["h",{"type":"line"},"i"]},
		{"type":"if-break","breakContents":"j","flatContents":"k","groupId":"g1"},
		{"type":"indent-if-break","contents":"l","groupId":"g1","negate":true},
		{"type":"line-suffix","contents":"m"},
		{"type":"label","label":"member-chain","contents":"n"}
	]`
	got, err := Decode([]byte(src), FormatJSON, DecodeOptions{Validate: true})
	require.NoError(t, err)

	want := doc.Concat{
		doc.Cursor,
		doc.Trim,
		doc.BreakParent,
		doc.LineSuffixBoundary,
		doc.SoftLine,
		doc.HardLineWithoutBreakParent,
		doc.LiteralLineWithoutBreakParent,
		doc.Indent(doc.Text("a")),
		doc.Align(2, doc.Text("b")),
		doc.Dedent(doc.Text("c")),
		doc.AlignString("> ", doc.Text("d")),
		doc.MarkAsRoot(doc.Text("e")),
		doc.DedentToRoot(doc.Text("f")),
		doc.Group(doc.Text("g"), doc.WithID("g1"), doc.ShouldBreak(true)),
		doc.Fill(doc.Text("h"), doc.Line, doc.Text("i")),
		doc.IfBreakFor("g1", doc.Text("j"), doc.Text("k")),
		doc.IndentIfBreak("g1", doc.Text("l"), true),
		doc.LineSuffix(doc.Text("m")),
		doc.Label("member-chain", doc.Text("n")),
	}
	assert.Equal(t, want, got)
}

func TestDecode_PropagatedBreakIsNotAuthored(t *testing.T) {
	got, err := Decode([]byte(`{"type":"group","break":"propagated","contents":"x"}`), FormatJSON, DecodeOptions{})
	require.NoError(t, err)
	g, ok := got.(*doc.GroupDoc)
	require.True(t, ok)
	assert.False(t, g.Break)
}

func TestDecode_ConditionalGroupSharesFirstState(t *testing.T) {
	got, err := Decode([]byte(`{"type":"group","expandedStates":[{"type":"indent","contents":"a"},"b"]}`), FormatJSON, DecodeOptions{})
	require.NoError(t, err)
	g, ok := got.(*doc.GroupDoc)
	require.True(t, ok)
	require.Len(t, g.ExpandedStates, 2)
	assert.True(t, g.Contents == g.ExpandedStates[0], "contents must be the first state itself")
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`["a",{"type":"frobnicate"}]`), FormatJSON, DecodeOptions{})
	require.Error(t, err)

	var invalid *doc.InvalidDocError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "frobnicate", invalid.Type)
	assert.ErrorIs(t, err, doc.ErrInvalidDoc)
	assert.Contains(t, err.Error(), "/1")
	assert.Contains(t, err.Error(), `unexpected doc.type "frobnicate"`)
}

func TestDecode_NonDocValue(t *testing.T) {
	_, err := Decode([]byte(`{"type":"indent","contents":42}`), FormatJSON, DecodeOptions{})
	var invalid *doc.InvalidDocError
	require.True(t, errors.As(err, &invalid))
	assert.NotNil(t, invalid.Value)
}

func TestDecode_FieldTypeMismatch(t *testing.T) {
	_, err := Decode([]byte(`{"type":"line","soft":"yes"}`), FormatJSON, DecodeOptions{})
	assert.ErrorIs(t, err, doc.ErrInvalidDoc)
	assert.Contains(t, err.Error(), "soft")
}

func TestDecode_SchemaViolation(t *testing.T) {
	_, err := Decode([]byte(`{"type":"indent"}`), FormatJSON, DecodeOptions{Validate: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	var serr *SchemaError
	require.True(t, errors.As(err, &serr))
	assert.NotEmpty(t, serr.Violations)
}

func TestDecode_Query(t *testing.T) {
	src := `{"meta":{"name":"sample"},"docs":[["first"],["second",{"type":"line"},"x"]]}`
	got, err := Decode([]byte(src), FormatJSON, DecodeOptions{Query: ".docs[1]", Validate: true})
	require.NoError(t, err)
	assert.Equal(t, doc.Concat{doc.Text("second"), doc.Line, doc.Text("x")}, got)

	_, err = Decode([]byte(src), FormatJSON, DecodeOptions{Query: ".docs[]"})
	assert.ErrorContains(t, err, "2 results")
}

func TestQuery_NoEnvironment(t *testing.T) {
	t.Setenv("DOCPRINT_SECRET", "leak")
	got, err := Query(context.Background(), map[string]any{}, `$ENV.DOCPRINT_SECRET`)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecode_NormalizeText(t *testing.T) {
	src := "\"e\u0301\""
	got, err := Decode([]byte(src), FormatJSON, DecodeOptions{NormalizeText: true})
	require.NoError(t, err)
	assert.Equal(t, doc.Text("\u00e9"), got)

	raw, err := Decode([]byte(src), FormatJSON, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, doc.Text("e\u0301"), raw)
}

func TestEncode_RoundTripAllFormats(t *testing.T) {
	id := doc.GroupID("outer")
	tree := doc.Concat{
		doc.Group(doc.Concat{
			doc.Text("call("),
			doc.Indent(doc.Concat{doc.SoftLine, doc.Fill(doc.Text("a"), doc.Line, doc.Text("b"))}),
			doc.SoftLine,
			doc.Text(")"),
		}, doc.WithID(id)),
		doc.IfBreakFor(id, doc.Text(","), nil),
		doc.IndentIfBreak(id, doc.Text("tail"), false),
		doc.Align(-1, doc.Text("d")),
		doc.AlignString("\t", doc.Text("s")),
		doc.MarkAsRoot(doc.LiteralLine),
		doc.LineSuffix(doc.Text(" // c")),
		doc.Label("l", doc.Cursor),
		doc.Group(doc.Text("x"), doc.ShouldBreak(true)),
	}

	for _, f := range []Format{FormatJSON, FormatYAML, FormatMsgPack} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Encode(tree, f)
			require.NoError(t, err)

			got, err := Decode(data, f, DecodeOptions{Validate: true})
			require.NoError(t, err)
			assert.Equal(t, tree, got)
		})
	}
}

func TestEncode_ConditionalGroupWritesStatesOnly(t *testing.T) {
	v, err := EncodeValue(doc.ConditionalGroup([]doc.Doc{doc.Text("a"), doc.Text("b")}))
	require.NoError(t, err)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, obj, "contents")
	assert.Equal(t, []any{"a", "b"}, obj["expandedStates"])
}

func TestEncode_InvalidDoc(t *testing.T) {
	_, err := Encode(doc.Concat{doc.Text("a"), nil}, FormatJSON)
	assert.ErrorIs(t, err, doc.ErrInvalidDoc)
}
