package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionary_DefineLookup(t *testing.T) {
	d := NewDictionary()
	ref, err := CreateBuiltinRef(OpAdd)
	require.NoError(t, err)
	d.Define("+", 0, ref)

	e := d.Lookup("+")
	require.NotNil(t, e)
	assert.Equal(t, "+", e.name)
	assert.False(t, e.Immediate())

	assert.Nil(t, d.Lookup("-"))
}

func TestDictionary_ShadowingFindsMostRecent(t *testing.T) {
	d := NewDictionary()
	c1, _ := CreateBuiltinRef(OpAdd)
	c2, _ := CreateBuiltinRef(OpSub)
	d.Define("x", 0, c1)
	d.Define("x", 1, c2)

	e := d.Lookup("x")
	require.NotNil(t, e)
	assert.Equal(t, c2, e.payload)
}

func TestDictionary_MarkForget(t *testing.T) {
	d := NewDictionary()
	c1, _ := CreateBuiltinRef(OpAdd)
	d.Define("a", 0, c1)
	mark := d.Mark()

	c2, _ := CreateBuiltinRef(OpSub)
	d.Define("b", 1, c2)
	require.NotNil(t, d.Lookup("b"))

	d.Forget(mark)
	assert.Nil(t, d.Lookup("b"))
	assert.NotNil(t, d.Lookup("a"))
}

func TestDictionary_HideUnhide(t *testing.T) {
	d := NewDictionary()
	c, _ := CreateBuiltinRef(OpAdd)
	d.Define("loop", 0, c)

	d.HideHead()
	assert.Nil(t, d.Lookup("loop"))

	d.UnhideHead()
	assert.NotNil(t, d.Lookup("loop"))
}

func TestDictEntry_ImmediateReadsMetaBit(t *testing.T) {
	payload, err := Tagged(TagCode, 1, 7)
	require.NoError(t, err)
	d := NewDictionary()
	e := d.Define("test", 0, payload)
	assert.True(t, e.Immediate())

	info := e.Info()
	assert.Equal(t, "test", info.Name)
	assert.True(t, info.Immediate)
	assert.False(t, info.Hidden)
}
