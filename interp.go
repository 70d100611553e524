package main

// run drives the fetch/decode/dispatch loop (§4.8) until Abort or an error
// halts it. The interpreter never yields and never shares vm with another
// goroutine, matching the single-threaded scheduling model of §5.
func (vm *VM) run() error {
	vm.running = true
	for vm.running {
		if err := vm.step(); err != nil {
			vm.running = false
			vm.halted = err
			return err
		}
	}
	return nil
}

// step executes exactly one instruction: a builtin opcode byte, or a
// two-byte user-word direct call encoded in X1516 form.
func (vm *VM) step() error {
	at := vm.IP
	low, err := vm.fetch8()
	if err != nil {
		return err
	}
	vm.logf("%04x: %02x", at, low)
	if !IsX1516(low) {
		op := Op(low)
		h := opTable[op]
		if h == nil {
			return newErr(ErrInvalidOpcode, "", "opcode %d has no handler", op)
		}
		return h(vm)
	}
	high, err := vm.fetch8()
	if err != nil {
		return err
	}
	enc := uint16(low) | uint16(high)<<8
	target := DecodeX1516(enc)
	return vm.callFrame(target)
}

// callFrame implements the four-step frame protocol of §4.8 for a direct
// user-word call: save IP and BP on RSTACK, set BP to the current RSP, and
// jump.
func (vm *VM) callFrame(target uint32) error {
	ipCell, err := Tagged(TagCode, 0, int32(vm.IP))
	if err != nil {
		return err
	}
	if err := vm.pushr(ipCell); err != nil {
		return err
	}
	bpCell, err := Tagged(TagLocal, 0, int32(vm.BP))
	if err != nil {
		return err
	}
	if err := vm.pushr(bpCell); err != nil {
		return err
	}
	vm.BP = vm.RSP
	vm.IP = target
	return nil
}

// evalRef executes a CODE-tagged reference, whether it names a builtin or a
// user word, the shared machinery behind the `Eval` opcode and the parser's
// immediate-execution window.
func (vm *VM) evalRef(c Cell) error {
	if c.Tag() != TagCode {
		return newErr(ErrType, "eval", "expected CODE, got %s", c.Tag())
	}
	_, _, value := c.Untag()
	if value < MinUserOpcode {
		h := opTable[Op(value)]
		if h == nil {
			return newErr(ErrInvalidOpcode, "eval", "opcode %d has no handler", value)
		}
		return h(vm)
	}
	enc := uint16(value)
	target := DecodeX1516(enc)
	return vm.callFrame(target)
}

// runImmediate implements the "immediate execution window" of §4.8: it runs
// c to completion at parse time, isolated from the outer parse state, by
// saving and restoring every register the body could disturb.
func (vm *VM) runImmediate(c Cell) error {
	savedIP, savedBP, savedRSP := vm.IP, vm.BP, vm.RSP
	savedRunning := vm.running

	if err := vm.evalRef(c); err != nil {
		vm.IP, vm.BP, vm.RSP = savedIP, savedBP, savedRSP
		return err
	}
	if c.Tag() == TagCode {
		if _, _, value := c.Untag(); value >= MinUserOpcode {
			targetRSP := savedRSP
			vm.running = true
			for vm.running && vm.RSP > targetRSP {
				if err := vm.step(); err != nil {
					vm.IP, vm.BP, vm.RSP = savedIP, savedBP, savedRSP
					vm.running = savedRunning
					return err
				}
			}
		}
	}
	vm.IP, vm.BP, vm.RSP = savedIP, savedBP, savedRSP
	vm.running = savedRunning
	return nil
}

// --- builtin handlers for the control-flow core (§4.9) --------------------

func opLiteralNumber(vm *VM) error {
	f, err := vm.fetchF32()
	if err != nil {
		return err
	}
	return vm.push(NumberCell(f))
}

func opLiteralString(vm *VM) error {
	addr, err := vm.fetch16()
	if err != nil {
		return err
	}
	c, err := Tagged(TagString, 0, int32(addr))
	if err != nil {
		return err
	}
	return vm.push(c)
}

// opLiteralCell pushes a raw tagged cell exactly as emitted, unlike
// LiteralNumber which always re-tags its operand as NUMBER; it backs `'name`
// reference literals whose payload is already a CODE/REF/LOCAL tagged cell.
func opLiteralCell(vm *VM) error {
	bits, err := vm.Seg.Code.LoadF32(uint(vm.IP))
	if err != nil {
		return newErr(ErrBounds, "fetch", "%v", err)
	}
	vm.IP += 4
	return vm.push(Cell(bits))
}

func opBranch(vm *VM) error {
	off, err := vm.fetch16()
	if err != nil {
		return err
	}
	vm.IP = uint32(int32(vm.IP) + int32(int16(off)))
	return nil
}

func opIfFalseBranch(vm *VM) error {
	off, err := vm.fetch16()
	if err != nil {
		return err
	}
	c, err := vm.pop()
	if err != nil {
		return err
	}
	if !c.Truthy() {
		vm.IP = uint32(int32(vm.IP) + int32(int16(off)))
	}
	return nil
}

func opCall(vm *VM) error {
	target, err := vm.fetch16()
	if err != nil {
		return err
	}
	return vm.callFrame(uint32(target))
}

func opExit(vm *VM) error {
	vm.RSP = vm.BP // discard locals reserved by this frame
	bpCell, err := vm.popr()
	if err != nil {
		return err
	}
	_, _, bp := bpCell.Untag()
	ipCell, err := vm.popr()
	if err != nil {
		return err
	}
	_, _, ip := ipCell.Untag()
	vm.BP = uint32(bp)
	vm.IP = uint32(ip)
	return nil
}

func opEval(vm *VM) error {
	c, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.evalRef(c)
}

func opAbort(vm *VM) error {
	vm.running = false
	return nil
}
