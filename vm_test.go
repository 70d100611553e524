package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestVM builds a VM with output captured in a buffer, the harness every
// end-to-end test in this file shares.
func newTestVM(t *testing.T) (*VM, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	vm, err := New(WithOutput(&out))
	require.NoError(t, err)
	return vm, &out
}

// runSrc compiles and runs src against a fresh VM, failing the test on any
// compile or run error, and returns the VM for stack/output inspection.
func runSrc(t *testing.T, src string) (*VM, *bytes.Buffer) {
	t.Helper()
	vm, out := newTestVM(t)
	require.NoError(t, vm.Compile(src), "compile: %s", src)
	require.NoError(t, vm.Run(), "run: %s", src)
	return vm, out
}

func stackTop(t *testing.T, vm *VM) Cell {
	t.Helper()
	require.Greater(t, vm.SP, uint32(0), "stack is empty")
	c, err := vm.Seg.Stack.Load(uint(vm.SP - 1))
	require.NoError(t, err)
	return Cell(c)
}

func TestVM_Arithmetic(t *testing.T) {
	vm, _ := runSrc(t, "2 3 + 4 *")
	assert.Equal(t, float32(20), stackTop(t, vm).AsFloat())
}

func TestVM_Comparison(t *testing.T) {
	vm, _ := runSrc(t, "3 5 <")
	assert.Equal(t, float32(1), stackTop(t, vm).AsFloat())

	vm, _ = runSrc(t, "5 3 <")
	assert.Equal(t, float32(0), stackTop(t, vm).AsFloat())
}

func TestVM_StackShuffle(t *testing.T) {
	vm, _ := runSrc(t, "1 2 swap")
	require.EqualValues(t, 2, vm.SP)
	b, _ := vm.Seg.Stack.Load(0)
	a, _ := vm.Seg.Stack.Load(1)
	assert.Equal(t, float32(2), Cell(b).AsFloat())
	assert.Equal(t, float32(1), Cell(a).AsFloat())

	vm, _ = runSrc(t, "1 2 3 rot")
	v0, _ := vm.Seg.Stack.Load(0)
	v1, _ := vm.Seg.Stack.Load(1)
	v2, _ := vm.Seg.Stack.Load(2)
	assert.Equal(t, float32(2), Cell(v0).AsFloat())
	assert.Equal(t, float32(3), Cell(v1).AsFloat())
	assert.Equal(t, float32(1), Cell(v2).AsFloat())
}

func TestVM_DefineAndCallWord(t *testing.T) {
	vm, _ := runSrc(t, ": double dup + ; 21 double")
	assert.Equal(t, float32(42), stackTop(t, vm).AsFloat())
}

func TestVM_Recurse(t *testing.T) {
	src := `
	: countdown
		dup 0 = if drop 0 else dup 1 - recurse swap drop ; ;
	5 countdown
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(0), stackTop(t, vm).AsFloat())
}

func TestVM_IfElse(t *testing.T) {
	vm, _ := runSrc(t, ": sign dup 0 < if drop -1 else 1 ; ; -5 sign")
	assert.Equal(t, float32(-1), stackTop(t, vm).AsFloat())

	vm, _ = runSrc(t, ": sign dup 0 < if drop -1 else 1 ; ; 5 sign")
	assert.Equal(t, float32(1), stackTop(t, vm).AsFloat())
}

func classifySrc(call string) string {
	return `
	: classify
		case
			1 of 100 ;
			2 of 200 ;
			DEFAULT of 999 ;
		;
	;
	` + call
}

func TestVM_CaseDefault(t *testing.T) {
	vm, _ := runSrc(t, classifySrc("5 classify"))
	assert.Equal(t, float32(999), stackTop(t, vm).AsFloat())

	vm, _ = runSrc(t, classifySrc("2 classify"))
	assert.Equal(t, float32(200), stackTop(t, vm).AsFloat())

	vm, _ = runSrc(t, classifySrc("1 classify"))
	assert.Equal(t, float32(100), stackTop(t, vm).AsFloat())
}

func TestVM_MatchWith(t *testing.T) {
	src := `
	: signOf
		match
			dup 0 < with drop -1 ;
			dup 0 > with drop 1 ;
			drop 0
		;
	;
	-7 signOf
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(-1), stackTop(t, vm).AsFloat())

	src2 := `
	: signOf
		match
			dup 0 < with drop -1 ;
			dup 0 > with drop 1 ;
			drop 0
		;
	;
	7 signOf
	`
	vm, _ = runSrc(t, src2)
	assert.Equal(t, float32(1), stackTop(t, vm).AsFloat())

	src3 := `
	: signOf
		match
			dup 0 < with drop -1 ;
			dup 0 > with drop 1 ;
			drop 0
		;
	;
	0 signOf
	`
	vm, _ = runSrc(t, src3)
	assert.Equal(t, float32(0), stackTop(t, vm).AsFloat())
}

func TestVM_WhenDo(t *testing.T) {
	vm, _ := runSrc(t, ": maybe when dup 0 > do 1 + ; ; 5 maybe")
	assert.Equal(t, float32(6), stackTop(t, vm).AsFloat())

	vm, _ = runSrc(t, ": maybe when dup 0 > do 1 + ; ; -5 maybe")
	assert.Equal(t, float32(-5), stackTop(t, vm).AsFloat())
}

func TestVM_LocalsVarAndArrow(t *testing.T) {
	src := `
	: addTwo
		var a
		0 var b
		a -> a
		10 -> b
		a b +
	;
	5 addTwo
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(15), stackTop(t, vm).AsFloat())
}

func TestVM_GlobalDefineAndUse(t *testing.T) {
	src := `
	0 global counter
	: bump counter fetch 1 + 'counter store drop ;
	bump bump bump
	counter fetch
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(3), stackTop(t, vm).AsFloat())
}

func TestVM_ListLengthAndElem(t *testing.T) {
	vm, _ := runSrc(t, "( 10 20 30 ) length")
	assert.Equal(t, float32(3), stackTop(t, vm).AsFloat())

	vm, _ = runSrc(t, "( 10 20 30 ) 1 elem fetch")
	assert.Equal(t, float32(20), stackTop(t, vm).AsFloat())
}

func TestVM_ListOutOfRangeYieldsNil(t *testing.T) {
	vm, _ := runSrc(t, "( 10 20 ) 9 elem")
	assert.True(t, stackTop(t, vm).IsNil())
}

func TestVM_PrintWritesValue(t *testing.T) {
	_, out := runSrc(t, `"hi" print`)
	assert.Equal(t, "hi", out.String())
}

func TestVM_DivideByZeroDoesNotPanic(t *testing.T) {
	vm, _ := newTestVM(t)
	require.NoError(t, vm.Compile("1 0 /"))
	require.NoError(t, vm.Run())
	got := stackTop(t, vm).AsFloat()
	assert.True(t, got > 0 || got < 0 || got != got, "expected +Inf/-Inf/NaN, got %v", got)
}

func TestVM_StackUnderflowIsReportedAsError(t *testing.T) {
	vm, _ := newTestVM(t)
	require.NoError(t, vm.Compile("+"))
	err := vm.Run()
	require.Error(t, err)
	var vmErr *VmError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, ErrUnderflow, vmErr.Kind)
}

func TestVM_UnclosedDefinitionIsUnclosedError(t *testing.T) {
	vm, _ := newTestVM(t)
	err := vm.Compile(": broken dup +")
	require.Error(t, err)
	var vmErr *VmError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, ErrUnclosed, vmErr.Kind)
}

func TestVM_UnknownWordIsSyntaxError(t *testing.T) {
	vm, _ := newTestVM(t)
	err := vm.Compile("frobnicate")
	require.Error(t, err)
	var vmErr *VmError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, ErrSyntax, vmErr.Kind)
}

// padPastX1516Boundary writes throwaway word definitions ahead of src, so
// the words src defines compile to CODE addresses well past MinUserOpcode
// and are reached only after many earlier X1516 calls and definitions.
func padPastX1516Boundary(src string) string {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, ": filler%d 1 ;\n", i)
	}
	b.WriteString(src)
	return b.String()
}

func TestVM_CallAcrossX1516Boundary(t *testing.T) {
	vm, _ := runSrc(t, padPastX1516Boundary(": answer 42 ;\nanswer\n"))
	assert.Greater(t, vm.CP, uint32(MinUserOpcode))
	assert.Equal(t, float32(42), stackTop(t, vm).AsFloat())
}

func TestVM_RecurseAcrossX1516Boundary(t *testing.T) {
	src := padPastX1516Boundary(
		": fact dup 0 = if drop 1 else dup 1 - recurse swap * ; ;\n5 fact\n",
	)
	vm, _ := runSrc(t, src)
	assert.Greater(t, vm.CP, uint32(MinUserOpcode))
	assert.Equal(t, float32(120), stackTop(t, vm).AsFloat())
}
