package digest_test

import (
	"testing"

	"github.com/jhlagado/tacit/internal/digest"
	"github.com/stretchr/testify/require"
)

func Test_Digest_InternIsIdempotent(t *testing.T) {
	var d digest.Digest

	a, err := d.Intern("dup")
	require.NoError(t, err)
	b, err := d.Intern("swap")
	require.NoError(t, err)
	c, err := d.Intern("dup")
	require.NoError(t, err)

	require.Equal(t, a, c, "interning the same string twice yields the same address")
	require.NotEqual(t, a, b)
	require.Equal(t, "dup", d.Get(a))
	require.Equal(t, "swap", d.Get(b))
}

func Test_Digest_LookupMiss(t *testing.T) {
	var d digest.Digest
	_, ok := d.Lookup("nope")
	require.False(t, ok)
	require.Equal(t, "", d.Get(42))
}
