package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagged_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		tag   Tag
		meta  uint8
		value int32
	}{
		{TagString, 0, 0},
		{TagCode, 1, 0x7FFF},
		{TagList, 0, 5},
		{TagRef, 0, 0xFFFF},
		{TagLocal, 0, 3},
		{TagSentinel, 0, -1},
		{TagSentinel, 0, 1},
	} {
		c, err := Tagged(tc.tag, tc.meta, tc.value)
		require.NoError(t, err)
		gotTag, gotMeta, gotValue := c.Untag()
		assert.Equal(t, tc.tag, gotTag)
		assert.Equal(t, tc.meta, gotMeta)
		assert.Equal(t, tc.value, gotValue)
	}
}

func TestTagged_RejectsNumber(t *testing.T) {
	_, err := Tagged(TagNumber, 0, 0)
	require.Error(t, err)
	var vmErr *VmError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, ErrType, vmErr.Kind)
}

func TestTagged_RejectsOutOfRangeValue(t *testing.T) {
	_, err := Tagged(TagList, 0, 0x10000)
	require.Error(t, err)

	_, err = Tagged(TagSentinel, 0, 40000)
	require.Error(t, err)
}

func TestCell_IsNumberForPlainFloats(t *testing.T) {
	c := NumberCell(3.5)
	assert.True(t, c.IsNumber())
	assert.Equal(t, float32(3.5), c.AsFloat())
	assert.False(t, c.IsList())
}

func TestCell_SentinelsAreDistinct(t *testing.T) {
	assert.True(t, NilValue.IsNil())
	assert.False(t, NilValue.IsDefault())
	assert.True(t, DefaultValue.IsDefault())
	assert.False(t, DefaultValue.IsNil())
	assert.NotEqual(t, NilValue, DefaultValue)
}

func TestCell_Truthy(t *testing.T) {
	assert.False(t, NumberCell(0).Truthy())
	assert.True(t, NumberCell(1).Truthy())
	assert.True(t, NumberCell(-1).Truthy())
	assert.False(t, NilValue.Truthy())
}

func TestCreateBuiltinRef(t *testing.T) {
	c, err := CreateBuiltinRef(OpAdd)
	require.NoError(t, err)
	assert.True(t, c.IsCode())
	_, _, v := c.Untag()
	assert.Equal(t, int32(OpAdd), v)

	_, err = CreateBuiltinRef(Op(MinUserOpcode))
	assert.Error(t, err)
}

func TestCreateCodeRef_LowAndHighAddresses(t *testing.T) {
	low, err := CreateCodeRef(10)
	require.NoError(t, err)
	_, _, v := low.Untag()
	assert.Equal(t, int32(10), v)

	high, err := CreateCodeRef(500)
	require.NoError(t, err)
	_, _, raw := high.Untag()
	assert.Equal(t, uint32(500), DecodeX1516(uint16(raw)))
}
