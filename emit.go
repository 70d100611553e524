package main

// emitOp appends an opcode: one byte if op < MinUserOpcode, else the
// two-byte X1516 form (§4.6).
func (vm *VM) emitOp(op Op) error {
	if op < MinUserOpcode {
		return vm.emitByte(byte(op))
	}
	enc, err := EncodeX1516(uint32(op))
	if err != nil {
		return err
	}
	return vm.emitU16(enc)
}

// emitCall appends a direct call to a compiled code address in the X1516
// two-byte form. An address below MinUserOpcode is written as a single
// byte, which the interpreter runs as that builtin opcode; compileColon
// places every word body at or above MinUserOpcode.
func (vm *VM) emitCall(addr uint32) error {
	if addr < MinUserOpcode {
		return vm.emitByte(byte(addr))
	}
	enc, err := EncodeX1516(addr)
	if err != nil {
		return err
	}
	return vm.emitU16(enc)
}

func (vm *VM) emitByte(b byte) error {
	if err := vm.Seg.Code.Stor(uint(vm.CP), b); err != nil {
		return newErr(ErrBounds, "emit", "%v", err)
	}
	vm.CP++
	return nil
}

func (vm *VM) emitU16(v uint16) error {
	if err := vm.Seg.Code.Stor16(uint(vm.CP), v); err != nil {
		return newErr(ErrBounds, "emit", "%v", err)
	}
	vm.CP += 2
	return nil
}

func (vm *VM) emitI16(v int16) error { return vm.emitU16(uint16(v)) }

func (vm *VM) emitF32(f float32) error {
	if err := vm.Seg.Code.StorF32(uint(vm.CP), Float32Bits(f)); err != nil {
		return newErr(ErrBounds, "emit", "%v", err)
	}
	vm.CP += 4
	return nil
}

// patchU16 overwrites a previously-emitted placeholder in place.
func (vm *VM) patchU16(at uint32, v uint16) error {
	if err := vm.Seg.Code.Stor16(uint(at), v); err != nil {
		return newErr(ErrBounds, "patch", "%v", err)
	}
	return nil
}

// patchRelBranch patches the u16 branch offset at 'at' so that, once read
// at runtime (which advances IP past the operand), execution lands at
// target.
func (vm *VM) patchRelBranch(at uint32, target uint32) error {
	rel := int32(target) - int32(at+2)
	return vm.patchU16(at, uint16(int16(rel)))
}

// align rounds CP up to the next CodeAlignBytes boundary, emitting pad
// bytes as needed, so a subsequent code address can be X1516-encoded.
func (vm *VM) align() error {
	for vm.CP%CodeAlignBytes != 0 {
		if err := vm.emitByte(0); err != nil {
			return err
		}
	}
	return nil
}
