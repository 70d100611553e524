package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLength_RejectsNonList(t *testing.T) {
	_, ok := listLength(NumberCell(3))
	assert.False(t, ok)
}

func TestElemCellAddr_FlatList(t *testing.T) {
	vm, _ := runSrc(t, "( 10 20 30 )")
	header, err := vm.pop()
	require.NoError(t, err)
	r, headerAddr, hv, err := vm.resolveListTarget(header)
	require.NoError(t, err)
	s, ok := listLength(hv)
	require.True(t, ok)
	require.EqualValues(t, 3, s)

	want := []float32{10, 20, 30}
	for i, w := range want {
		addr, ok, err := elemCellAddr(r, headerAddr, uint32(i))
		require.NoError(t, err)
		require.True(t, ok, "index %d should resolve", i)
		c, err := r.load(addr)
		require.NoError(t, err)
		assert.Equal(t, w, c.AsFloat(), "index %d", i)
	}

	_, ok, err = elemCellAddr(r, headerAddr, 3)
	require.NoError(t, err)
	assert.False(t, ok, "index past the end should be out of range")
}

func TestElemCellAddr_SkipsNestedList(t *testing.T) {
	vm, _ := runSrc(t, "( 1 ( 2 3 ) 4 )")
	header, err := vm.pop()
	require.NoError(t, err)
	r, headerAddr, hv, err := vm.resolveListTarget(header)
	require.NoError(t, err)
	s, _ := listLength(hv)
	require.EqualValues(t, 5, s)

	addr0, ok, err := elemCellAddr(r, headerAddr, 0)
	require.NoError(t, err)
	require.True(t, ok)
	c0, err := r.load(addr0)
	require.NoError(t, err)
	assert.Equal(t, float32(1), c0.AsFloat())

	addr1, ok, err := elemCellAddr(r, headerAddr, 1)
	require.NoError(t, err)
	require.True(t, ok)
	c1, err := r.load(addr1)
	require.NoError(t, err)
	nestedLen, isList := listLength(c1)
	require.True(t, isList)
	assert.EqualValues(t, 2, nestedLen)

	addr2, ok, err := elemCellAddr(r, headerAddr, 2)
	require.NoError(t, err)
	require.True(t, ok)
	c2, err := r.load(addr2)
	require.NoError(t, err)
	assert.Equal(t, float32(4), c2.AsFloat())
}

func TestOpFind_LocatesValueByKey(t *testing.T) {
	vm, _ := runSrc(t, `( "a" 1 "b" 2 "c" 3 ) "b" find fetch`)
	assert.Equal(t, float32(2), stackTop(t, vm).AsFloat())
}

func TestOpFind_MissingKeyYieldsNil(t *testing.T) {
	vm, _ := runSrc(t, `( "a" 1 "b" 2 ) "z" find`)
	assert.True(t, stackTop(t, vm).IsNil())
}

func TestOpSelect_WalksBracketPath(t *testing.T) {
	vm, _ := runSrc(t, "( ( 1 2 ) ( 3 4 ) ) ( 1 0 ) select fetch")
	assert.Equal(t, float32(3), stackTop(t, vm).AsFloat())
}

func TestOpSelect_OutOfRangeYieldsNil(t *testing.T) {
	vm, _ := runSrc(t, "( 1 2 ) ( 9 ) select")
	assert.True(t, stackTop(t, vm).IsNil())
}

func TestOpStore_RefusesToOverwriteCompound(t *testing.T) {
	vm, _ := runSrc(t, "( ( 1 2 ) 3 ) 0 elem 99 swap store")
	assert.True(t, stackTop(t, vm).IsNil())
}

func TestOpStore_OverwritesScalarThroughRef(t *testing.T) {
	vm, _ := runSrc(t, "( 10 20 ) 1 elem dup 99 swap store drop fetch")
	assert.Equal(t, float32(99), stackTop(t, vm).AsFloat())
}
