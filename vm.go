package main

import (
	"io"

	"github.com/jhlagado/tacit/internal/digest"
)

// VM bundles everything a Tacit program needs to compile and run: the five
// memory segments, the register file, the dictionary, the string digest and
// the compile-time closer stack. One VM is one isolated interpreter; nothing
// here is safe to share across goroutines, matching §5's single-threaded
// scheduling model.
type VM struct {
	Seg Segments

	IP uint32 // byte offset into CODE
	SP uint32 // cell offset, one past top of STACK
	RSP uint32 // cell offset, one past top of RSTACK
	BP uint32 // cell base of the current activation frame in RSTACK
	GP uint32 // next free cell in DATA

	listDepth int

	running  bool
	halted   error

	dict *Dictionary
	strs digest.Digest

	closers []closerFrame

	CP       uint32 // next free byte in CODE
	BCP      uint32 // base of the current compile region
	preserve bool   // suppress implicit reset on error (REPL mode)

	// Active-definition state (§3 "Active-definition state").
	defActive   bool
	defBranchAt uint32
	defMark     DictMark
	defHeadCell uint32
	defName     string

	defReserveEmitted bool
	defReserveAt      uint32
	defLocalCount     uint16

	Out io.Writer

	logfn     func(mess string, args ...interface{})
	ioClosers []io.Closer
}

// Close releases any closer registered via an output option (mirrors the
// teacher's own output-closer bookkeeping, kept separate from the
// compile-time closer stack above).
func (vm *VM) Close() error {
	var first error
	for _, c := range vm.ioClosers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (vm *VM) logf(format string, args ...interface{}) {
	if vm.logfn != nil {
		vm.logfn(format, args...)
	}
}

// newVM constructs a bare VM with an empty dictionary and no options
// applied; New in api.go applies the option defaults and is the public
// constructor most callers should use instead.
func newVM() *VM {
	vm := &VM{dict: NewDictionary()}
	return vm
}

// --- operand stack --------------------------------------------------------

func (vm *VM) push(c Cell) error {
	if err := vm.Seg.Stack.Stor(uint(vm.SP), uint32(c)); err != nil {
		return newErr(ErrBounds, "push", "stack overflow: %v", err)
	}
	vm.SP++
	return nil
}

func (vm *VM) pop() (Cell, error) {
	if vm.SP == 0 {
		return 0, newErr(ErrUnderflow, "pop", "stack underflow")
	}
	vm.SP--
	v, err := vm.Seg.Stack.Load(uint(vm.SP))
	if err != nil {
		return 0, err
	}
	return Cell(v), nil
}

func (vm *VM) peek() (Cell, error) {
	if vm.SP == 0 {
		return 0, newErr(ErrUnderflow, "peek", "stack underflow")
	}
	v, err := vm.Seg.Stack.Load(uint(vm.SP - 1))
	if err != nil {
		return 0, err
	}
	return Cell(v), nil
}

func (vm *VM) peekAt(depth uint32) (Cell, error) {
	if vm.SP <= depth {
		return 0, newErr(ErrUnderflow, "peek", "stack underflow")
	}
	v, err := vm.Seg.Stack.Load(uint(vm.SP - 1 - depth))
	if err != nil {
		return 0, err
	}
	return Cell(v), nil
}

// --- return stack ----------------------------------------------------------

func (vm *VM) pushr(c Cell) error {
	if err := vm.Seg.RStack.Stor(uint(vm.RSP), uint32(c)); err != nil {
		return newErr(ErrBounds, "pushr", "return stack overflow: %v", err)
	}
	vm.RSP++
	return nil
}

func (vm *VM) popr() (Cell, error) {
	if vm.RSP == 0 {
		return 0, newErr(ErrUnderflow, "popr", "return stack underflow")
	}
	vm.RSP--
	v, err := vm.Seg.RStack.Load(uint(vm.RSP))
	if err != nil {
		return 0, err
	}
	return Cell(v), nil
}

// --- CODE fetch helpers used by the interpreter and immediate window ------

func (vm *VM) fetch8() (byte, error) {
	b, err := vm.Seg.Code.Load8(uint(vm.IP))
	if err != nil {
		return 0, newErr(ErrBounds, "fetch", "%v", err)
	}
	vm.IP++
	return b, nil
}

func (vm *VM) fetch16() (uint16, error) {
	v, err := vm.Seg.Code.Load16(uint(vm.IP))
	if err != nil {
		return 0, newErr(ErrBounds, "fetch", "%v", err)
	}
	vm.IP += 2
	return v, nil
}

// LoadCell and StoreCell dereference a REF through the VM's segments.
func (vm *VM) LoadCell(r Ref) (Cell, error)        { return vm.Seg.LoadCell(r) }
func (vm *VM) StoreCell(r Ref, v Cell) error       { return vm.Seg.StoreCell(r, v) }

func (vm *VM) fetchF32() (float32, error) {
	bits, err := vm.Seg.Code.LoadF32(uint(vm.IP))
	if err != nil {
		return 0, newErr(ErrBounds, "fetch", "%v", err)
	}
	vm.IP += 4
	return Float32FromBits(bits), nil
}
