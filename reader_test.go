package corevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderBasicForms(t *testing.T) {
	vm := NewVM(nil)
	cases := map[string]string{
		"42":          "42",
		"-7":          "-7",
		"3.5":         "3.5",
		`"hello"`:     `"hello"`,
		"foo":         "foo",
		"(1 2 3)":     "(1 2 3)",
		"(1 . 2)":     "(1 . 2)",
		"'foo":     "'foo",
		"`foo":     "`foo",
		",foo":     ",foo",
		",@foo":    ",@foo",
		"#(1 2 3)": "#(1 2 3)",
		"0x1F":     "31",
	}
	for src, want := range cases {
		r := vm.NewReader(src, "")
		form, ok, err := r.ReadOne()
		require.NoError(t, err, "src=%q", src)
		require.True(t, ok, "src=%q", src)
		assert.Equal(t, want, Print(form), "src=%q", src)
	}
}

func TestReaderUTF8Symbols(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("café", "")
	form, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindSymbol, form.Kind())
	assert.Equal(t, "café", SymbolName(form))
}

func TestReaderUnbalancedBracketsFail(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("(1 2 3", "")
	_, _, err := r.ReadOne()
	require.Error(t, err)
}

func TestReaderMismatchedClosersFail(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("(1 2]", "")
	_, _, err := r.ReadOne()
	require.Error(t, err)
}

func TestReaderMalformedHexNumberFails(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("0x", "")
	_, _, err := r.ReadOne()
	require.Error(t, err)
}

func TestReaderInvalidEscapeFails(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader(`"bad \q escape"`, "")
	_, _, err := r.ReadOne()
	require.Error(t, err)
}

func TestReaderUnterminatedStringFails(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader(`"unterminated`, "")
	_, _, err := r.ReadOne()
	require.Error(t, err)
}

func TestReaderColonPathDesugars(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("a:b:c", "")
	form, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "(get a 'b 'c)", Print(form))
}

func TestReaderTopLevelColonConsq(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader(": a b", "")
	form, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "(consq a b)", Print(form))
}

func TestReaderStringInterpolationDesugars(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader(`"hello \(name)!"`, "")
	form, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `(concat "hello " (evalq name) "!")`, Print(form))
}

func TestReaderDictLiteral(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("##((a . 1) (b . 2))", "")
	form, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindDictionary, form.Kind())
}

func TestReaderRoundTripPreservesManyForms(t *testing.T) {
	vm := NewVM(nil)
	srcs := []string{
		"(define (f x) (+ x 1))",
		"(let ((a 1) (b 2)) (+ a b))",
		"#(1 2 (3 4))",
		"(1 . (2 . (3 . ())))",
	}
	for _, src := range srcs {
		r := vm.NewReader(src, "")
		form, ok, err := r.ReadOne()
		require.NoError(t, err)
		require.True(t, ok)
		printed := Print(form)

		r2 := vm.NewReader(printed, "")
		form2, ok2, err2 := r2.ReadOne()
		require.NoError(t, err2)
		require.True(t, ok2)
		assert.Equal(t, printed, Print(form2))
	}
}

func TestReaderSourceMappingTracksLine(t *testing.T) {
	vm := NewVM(nil)
	r := vm.NewReader("(a)\n(b)\n(c)", "file.lsp")
	forms, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, forms, 3)

	m1 := Mapping(forms[0])
	m2 := Mapping(forms[1])
	m3 := Mapping(forms[2])
	require.NotNil(t, m1)
	require.NotNil(t, m2)
	require.NotNil(t, m3)
	assert.Equal(t, 1, MappingLine(m1))
	assert.Equal(t, 2, MappingLine(m2))
	assert.Equal(t, 3, MappingLine(m3))
}
