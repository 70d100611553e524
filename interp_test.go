package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallFrame_SavesAndExitRestoresRegisters(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	vm.IP = 42
	vm.BP = 7
	savedRSP := vm.RSP

	require.NoError(t, vm.callFrame(100))
	assert.EqualValues(t, 100, vm.IP)
	assert.EqualValues(t, savedRSP+2, vm.BP, "BP becomes the post-push RSP")
	assert.EqualValues(t, savedRSP+2, vm.RSP)

	require.NoError(t, opExit(vm))
	assert.EqualValues(t, 42, vm.IP)
	assert.EqualValues(t, 7, vm.BP)
	assert.EqualValues(t, savedRSP, vm.RSP)
}

func TestCallFrame_LocalsLiveAboveBP(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	require.NoError(t, vm.callFrame(0))
	base := vm.BP
	require.NoError(t, vm.pushr(NumberCell(11)))
	require.NoError(t, vm.pushr(NumberCell(22)))
	assert.EqualValues(t, base+2, vm.RSP)

	require.NoError(t, opExit(vm))
	assert.EqualValues(t, base-2, vm.RSP, "exit discards both locals and the frame header")
}

func TestRunImmediate_RestoresRegistersOnError(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	savedIP, savedBP, savedRSP := vm.IP, vm.BP, vm.RSP

	badOp, tagErr := Tagged(TagCode, 0, int32(OpDrop))
	require.NoError(t, tagErr)
	err = vm.runImmediate(badOp)
	require.Error(t, err, "Drop on an empty stack should underflow")

	assert.Equal(t, savedIP, vm.IP)
	assert.Equal(t, savedBP, vm.BP)
	assert.Equal(t, savedRSP, vm.RSP)
}

func TestRunImmediate_RunsBuiltinAndRestoresFrame(t *testing.T) {
	vm, err := New()
	require.NoError(t, err)
	require.NoError(t, vm.push(NumberCell(3)))
	require.NoError(t, vm.push(NumberCell(4)))
	savedIP, savedBP, savedRSP := vm.IP, vm.BP, vm.RSP

	addOp, tagErr := Tagged(TagCode, 0, int32(OpAdd))
	require.NoError(t, tagErr)
	require.NoError(t, vm.runImmediate(addOp))

	assert.Equal(t, savedIP, vm.IP)
	assert.Equal(t, savedBP, vm.BP)
	assert.Equal(t, savedRSP, vm.RSP)
	assert.Equal(t, float32(7), stackTop(t, vm).AsFloat())
}

func TestOpLiteralCell_PushesRawTaggedValue(t *testing.T) {
	vm, _ := runSrc(t, "'swap")
	assert.Equal(t, TagCode, stackTop(t, vm).Tag())
}
