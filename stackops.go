package main

func init() {
	registerOp(OpDup, func(vm *VM) error {
		c, err := vm.peek()
		if err != nil {
			return err
		}
		return vm.push(c)
	})
	registerOp(OpDrop, func(vm *VM) error {
		c, err := vm.pop()
		if err != nil {
			return err
		}
		// A LIST header takes its payload cells with it.
		if s, isList := listLength(c); isList {
			if vm.SP < s {
				return newErr(ErrUnderflow, "drop", "stack underflow")
			}
			vm.SP -= s
		}
		return nil
	})
	registerOp(OpSwap, func(vm *VM) error {
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(b); err != nil {
			return err
		}
		return vm.push(a)
	})
	registerOp(OpOver, func(vm *VM) error {
		a, err := vm.peekAt(1)
		if err != nil {
			return err
		}
		return vm.push(a)
	})
	registerOp(OpRot, func(vm *VM) error {
		c, err := vm.pop()
		if err != nil {
			return err
		}
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(b); err != nil {
			return err
		}
		if err := vm.push(c); err != nil {
			return err
		}
		return vm.push(a)
	})
	registerOp(OpRevRot, func(vm *VM) error {
		c, err := vm.pop()
		if err != nil {
			return err
		}
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(c); err != nil {
			return err
		}
		if err := vm.push(a); err != nil {
			return err
		}
		return vm.push(b)
	})
	registerOp(OpNip, func(vm *VM) error {
		b, err := vm.pop()
		if err != nil {
			return err
		}
		if _, err := vm.pop(); err != nil {
			return err
		}
		return vm.push(b)
	})
	registerOp(OpTuck, func(vm *VM) error {
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if err := vm.push(b); err != nil {
			return err
		}
		if err := vm.push(a); err != nil {
			return err
		}
		return vm.push(b)
	})

	registerOp(OpReserve, opReserve)
	registerOp(OpInitVar, opInitVar)
	registerOp(OpVarRef, opVarRef)
	registerOp(OpGlobalRef, opGlobalRef)
	registerOp(OpInitGlobal, opInitGlobal)

	registerOp(OpPrint, opPrint)
	registerOp(OpType, opType)
}

// opReserve advances RSP by n cells at function entry, making locals
// [BP, BP+n) addressable (§4.8 "Locals").
func opReserve(vm *VM) error {
	n, err := vm.fetch16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < n; i++ {
		if err := vm.pushr(0); err != nil {
			return err
		}
	}
	return nil
}

// opInitVar stores TOS into local slot i, relative to BP.
func opInitVar(vm *VM) error {
	slot, err := vm.fetch16()
	if err != nil {
		return err
	}
	v, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.Seg.RStack.Stor(uint(vm.BP+uint32(slot)), uint32(v))
}

// opVarRef pushes a REF to local slot i.
func opVarRef(vm *VM) error {
	slot, err := vm.fetch16()
	if err != nil {
		return err
	}
	c, err := packRef(SegRStack, vm.BP+uint32(slot))
	if err != nil {
		return err
	}
	return vm.push(c)
}

// opGlobalRef pushes a REF to global cell offset.
func opGlobalRef(vm *VM) error {
	offset, err := vm.fetch16()
	if err != nil {
		return err
	}
	c, err := packRef(SegData, uint32(offset))
	if err != nil {
		return err
	}
	return vm.push(c)
}

// opInitGlobal stores TOS into the global cell at offset.
func opInitGlobal(vm *VM) error {
	offset, err := vm.fetch16()
	if err != nil {
		return err
	}
	v, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.Seg.Data.Stor(uint(offset), uint32(v))
}

func opPrint(vm *VM) error {
	c, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.writeValue(c)
}

func opType(vm *VM) error {
	c, err := vm.peek()
	if err != nil {
		return err
	}
	if _, err := vm.Out.Write([]byte(c.Tag().String())); err != nil {
		return err
	}
	if f, ok := vm.Out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
