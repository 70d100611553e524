package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	tok := NewTokenizer(src)
	var out []Token
	for {
		tk, err := tok.Next()
		require.NoError(t, err)
		if tk.Type == TokEOF {
			return out
		}
		out = append(out, tk)
	}
}

func TestTokenizer_NumbersWordsSpecials(t *testing.T) {
	toks := tokenize(t, ": double dup 2 * ;")
	require.Len(t, toks, 6)
	assert.Equal(t, TokSpecial, toks[0].Type)
	assert.Equal(t, ":", toks[0].Text)
	assert.Equal(t, TokWord, toks[1].Type)
	assert.Equal(t, "double", toks[1].Text)
	assert.Equal(t, TokNumber, toks[3].Type)
	assert.Equal(t, TokSpecial, toks[5].Type)
	assert.Equal(t, ";", toks[5].Text)
}

func TestTokenizer_Number(t *testing.T) {
	toks := tokenize(t, "-3.5 42")
	require.Len(t, toks, 2)
	assert.Equal(t, TokNumber, toks[0].Type)
	assert.Equal(t, float32(-3.5), toks[0].Num)
	assert.Equal(t, TokNumber, toks[1].Type)
	assert.Equal(t, float32(42), toks[1].Num)
}

func TestTokenizer_StringWithEscapes(t *testing.T) {
	toks := tokenize(t, `"hello\nworld"`)
	require.Len(t, toks, 1)
	assert.Equal(t, TokString, toks[0].Type)
	assert.Equal(t, "hello\nworld", toks[0].Text)
}

func TestTokenizer_UnterminatedStringErrors(t *testing.T) {
	tok := NewTokenizer(`"oops`)
	_, err := tok.Next()
	require.Error(t, err)
	var vmErr *VmError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, ErrSyntax, vmErr.Kind)
}

func TestTokenizer_LineComment(t *testing.T) {
	toks := tokenize(t, "1 // this is ignored\n2")
	require.Len(t, toks, 2)
	assert.Equal(t, float32(1), toks[0].Num)
	assert.Equal(t, float32(2), toks[1].Num)
}

func TestTokenizer_RefSigil(t *testing.T) {
	toks := tokenize(t, "'double")
	require.Len(t, toks, 1)
	assert.Equal(t, TokRefSigil, toks[0].Type)
	assert.Equal(t, "double", toks[0].Text)
}

func TestTokenizer_PushBack(t *testing.T) {
	tok := NewTokenizer("a b")
	first, err := tok.Next()
	require.NoError(t, err)
	tok.PushBack(first)
	again, err := tok.Next()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
