package main

func init() {
	registerOp(OpExitConstructor, opExitConstructor)
	registerOp(OpDispatch, opDispatch)
	registerOp(OpExitDispatch, opExitDispatch)
}

// opExitConstructor implements §4.11's constructor epilogue: the locals
// reserved since entry become the capsule's fields, the first aligned
// address at or after the current IP (where the dispatch body compiled
// after this instruction starts) becomes the dispatch entrypoint, and the
// resulting LIST header is left live on RSTACK with a REF to it pushed as
// the capsule handle.
func opExitConstructor(vm *VM) error {
	entry := (vm.IP + CodeAlignBytes - 1) &^ (CodeAlignBytes - 1)
	entryCell, err := CreateCodeRef(entry)
	if err != nil {
		return err
	}
	if err := vm.pushr(entryCell); err != nil {
		return err
	}

	s := vm.RSP - vm.BP // locals + the entry cell just pushed
	header, err := Tagged(TagList, 0, int32(s))
	if err != nil {
		return err
	}
	if err := vm.pushr(header); err != nil {
		return err
	}
	headerAddr := vm.RSP - 1

	handle, err := packRef(SegRStack, headerAddr)
	if err != nil {
		return err
	}
	if err := vm.push(handle); err != nil {
		return err
	}

	savedBPRaw, err := vm.Seg.RStack.Load(uint(vm.BP - 1))
	if err != nil {
		return err
	}
	savedIPRaw, err := vm.Seg.RStack.Load(uint(vm.BP - 2))
	if err != nil {
		return err
	}
	_, _, bp := Cell(savedBPRaw).Untag()
	_, _, ip := Cell(savedIPRaw).Untag()
	vm.BP = uint32(bp)
	vm.IP = uint32(ip)
	return nil
}

// opDispatch consumes a capsule REF, validates its slot 0 is CODE, and
// jumps into the dispatch body with BP set to the capsule's own payload so
// the capsule's locals are addressable exactly like a regular frame's.
func opDispatch(vm *VM) error {
	recv, err := vm.pop()
	if err != nil {
		return err
	}
	if !recv.IsRef() {
		return newErr(ErrType, "dispatch", "expected REF receiver, got %s", recv.Tag())
	}
	_, _, raw := recv.Untag()
	ref := UnpackRef(uint16(raw))

	header, err := vm.LoadCell(ref)
	if err != nil {
		return err
	}
	if !header.IsList() {
		return newErr(ErrType, "dispatch", "receiver does not address a LIST")
	}
	s, _ := listLength(header)
	if s == 0 {
		return newErr(ErrInvariant, "dispatch", "capsule has no dispatch slot")
	}

	entryCell, err := vm.LoadCell(Ref{Seg: ref.Seg, Offset: ref.Offset - 1})
	if err != nil {
		return err
	}
	if !entryCell.IsCode() {
		return newErr(ErrType, "dispatch", "capsule slot 0 is not CODE")
	}
	payloadBase := ref.Offset - s

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

	vm.BP = payloadBase
	_, _, target := entryCell.Untag()
	if uint32(target) < MinUserOpcode {
		vm.IP = uint32(target)
	} else {
		vm.IP = DecodeX1516(uint16(target))
	}
	return nil
}

// opExitDispatch restores the caller's IP and BP by popping them the same
// way opExit does, but skips opExit's "RSP = BP" step so the capsule's own
// payload below them stays live on RSTACK for future dispatch calls
// (§4.11). The pair was pushed as the two topmost RSTACK cells by
// opDispatch and nothing the dispatch body does can leave anything above
// them unbalanced, so a plain LIFO pop finds them regardless of where on
// RSTACK this particular capsule happens to sit.
func opExitDispatch(vm *VM) error {
	bpCell, err := vm.popr()
	if err != nil {
		return err
	}
	ipCell, err := vm.popr()
	if err != nil {
		return err
	}
	_, _, bp := bpCell.Untag()
	_, _, ip := ipCell.Untag()
	vm.BP = uint32(bp)
	vm.IP = uint32(ip)
	return nil
}
