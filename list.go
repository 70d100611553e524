package main

func init() {
	registerOp(OpOpenList, opOpenList)
	registerOp(OpCloseList, opCloseList)
	registerOp(OpLength, opLength)
	registerOp(OpSize, opSize)
	registerOp(OpSlot, opSlot)
	registerOp(OpElem, opElem)
	registerOp(OpFetch, opFetch)
	registerOp(OpStore, opStore)
	registerOp(OpFind, opFind)
	registerOp(OpSelect, opSelect)
}

// opOpenList begins a LIST construction: push a zero-length placeholder
// header and remember its STACK address on RSTACK so the matching
// CloseList can find it regardless of how many cells get pushed in between
// (§4.10 "Construction").
func opOpenList(vm *VM) error {
	vm.listDepth++
	headerAddr := vm.SP
	header, err := Tagged(TagList, 0, 0)
	if err != nil {
		return err
	}
	if err := vm.push(header); err != nil {
		return err
	}
	marker, err := Tagged(TagLocal, 0, int32(headerAddr))
	if err != nil {
		return err
	}
	return vm.pushr(marker)
}

// opCloseList finalises the innermost open LIST: patches its header with
// the payload size, and, if this is the outermost list in the current
// construction, reverses the whole span so the header ends on top of
// stack. Nested lists are left exactly as their own CloseList laid them
// out, since their payload is already contiguous with a trailing header.
func opCloseList(vm *VM) error {
	marker, err := vm.popr()
	if err != nil {
		return err
	}
	_, _, headerAddrVal := marker.Untag()
	headerAddr := uint32(headerAddrVal)

	s := vm.SP - headerAddr - 1
	header, err := Tagged(TagList, 0, int32(s))
	if err != nil {
		return err
	}
	if err := vm.Seg.Stack.Stor(uint(headerAddr), uint32(header)); err != nil {
		return err
	}

	outermost := vm.listDepth == 1
	vm.listDepth--
	if outermost {
		return vm.reverseStackSpan(headerAddr, s+1)
	}
	return nil
}

// reverseStackSpan reverses n cells on STACK starting at addr, in place.
func (vm *VM) reverseStackSpan(addr, n uint32) error {
	buf := make([]uint32, n)
	if err := vm.Seg.Stack.LoadInto(uint(addr), buf); err != nil {
		return err
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return vm.Seg.Stack.Stor(uint(addr), buf...)
}

// listLength reads a LIST header's slot count.
func listLength(header Cell) (uint32, bool) {
	if header.Tag() != TagList {
		return 0, false
	}
	_, _, v := header.Untag()
	return uint32(v), true
}

// elemCellAddr walks i logical elements down from a header at headerAddr
// (in store), skipping s_child+1 cells for every compound slot encountered,
// per §4.10 "Length and traversal". It returns the cell address of element
// i's own header/value cell, or ok=false if i is out of range.
func elemCellAddr(store *segReader, headerAddr uint32, i uint32) (uint32, bool, error) {
	cursor := headerAddr - 1
	for n := uint32(0); n < i; n++ {
		v, err := store.load(cursor)
		if err != nil {
			return 0, false, err
		}
		if s, isList := listLength(v); isList {
			if cursor < s+1 {
				return 0, false, nil
			}
			cursor -= s + 1
		} else {
			if cursor == 0 {
				return 0, false, nil
			}
			cursor--
		}
	}
	return cursor, true, nil
}

// segReader abstracts over direct-on-STACK access and REF-mediated access
// into another segment, so Elem/Fetch/Store share one traversal routine
// regardless of where the LIST physically lives.
type segReader struct {
	vm  *VM
	seg SegID
}

func (r *segReader) load(addr uint32) (Cell, error) {
	v, err := r.vm.LoadCell(Ref{Seg: r.seg, Offset: addr})
	return v, err
}

func (r *segReader) store(addr uint32, v Cell) error {
	return r.vm.StoreCell(Ref{Seg: r.seg, Offset: addr}, v)
}

// resolveListTarget takes a value the caller has just popped, which must
// name a LIST: either it is the LIST's own header from the top of stack, or
// a REF pointing at a header in some segment. It returns a reader over the right segment plus the
// header's cell address.
func (vm *VM) resolveListTarget(v Cell) (*segReader, uint32, Cell, error) {
	switch {
	case v.IsList():
		// v was already popped off STACK by the caller, so the header's own
		// former address is the current SP, not SP-1.
		return &segReader{vm: vm, seg: SegStack}, vm.SP, v, nil
	case v.IsRef():
		_, _, raw := v.Untag()
		ref := UnpackRef(uint16(raw))
		r := &segReader{vm: vm, seg: ref.Seg}
		header, err := r.load(ref.Offset)
		if err != nil {
			return nil, 0, 0, err
		}
		if !header.IsList() {
			return nil, 0, 0, newErr(ErrType, "list", "REF does not address a LIST")
		}
		return r, ref.Offset, header, nil
	default:
		return nil, 0, 0, newErr(ErrType, "list", "expected LIST or REF, got %s", v.Tag())
	}
}

func opLength(vm *VM) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	_, headerAddr, header, err := vm.resolveListTarget(v)
	_ = headerAddr
	if err != nil {
		return err
	}
	s, _ := listLength(header)
	return vm.push(NumberCell(float32(s)))
}

// opSize reports the total cell count of a LIST including its header.
func opSize(vm *VM) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	_, _, header, err := vm.resolveListTarget(v)
	if err != nil {
		return err
	}
	s, _ := listLength(header)
	return vm.push(NumberCell(float32(s + 1)))
}

// opSlot pushes the raw cell value at logical index i without following a
// nested compound's own structure.
func opSlot(vm *VM) error {
	return elemLike(vm, false)
}

// opElem pushes a REF to element i's cell (compound or scalar).
func opElem(vm *VM) error {
	return elemLike(vm, true)
}

func elemLike(vm *VM, asRef bool) error {
	idxC, err := vm.pop()
	if err != nil {
		return err
	}
	v, err := vm.pop()
	if err != nil {
		return err
	}
	r, headerAddr, header, err := vm.resolveListTarget(v)
	if err != nil {
		return err
	}
	s, _ := listLength(header)
	if !idxC.IsNumber() {
		return vm.push(NilValue)
	}
	i := uint32(idxC.AsFloat())
	if i >= s {
		return vm.push(NilValue)
	}
	addr, ok, err := elemCellAddr(r, headerAddr, i)
	if err != nil {
		return err
	}
	if !ok {
		return vm.push(NilValue)
	}
	if asRef {
		c, err := packRef(r.seg, addr)
		if err != nil {
			return err
		}
		return vm.push(c)
	}
	c, err := r.load(addr)
	if err != nil {
		return err
	}
	return vm.push(c)
}

// opFetch dereferences a REF, or passes a non-REF value through unchanged.
func opFetch(vm *VM) error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	if !v.IsRef() {
		return vm.push(v)
	}
	_, _, raw := v.Untag()
	ref := UnpackRef(uint16(raw))
	c, err := vm.LoadCell(ref)
	if err != nil {
		return err
	}
	return vm.push(c)
}

// opStore writes through a REF, refusing to overwrite a compound slot in
// place (§4.10 "Refusal rules").
func opStore(vm *VM) error {
	refC, err := vm.pop()
	if err != nil {
		return err
	}
	val, err := vm.pop()
	if err != nil {
		return err
	}
	if !refC.IsRef() {
		return newErr(ErrType, "store", "expected REF, got %s", refC.Tag())
	}
	_, _, raw := refC.Untag()
	ref := UnpackRef(uint16(raw))
	cur, err := vm.LoadCell(ref)
	if err != nil {
		return err
	}
	if cur.IsList() {
		return vm.push(NilValue)
	}
	if err := vm.StoreCell(ref, val); err != nil {
		return err
	}
	return vm.push(val)
}

// opFind looks a key up inside an alist-shaped LIST of [key value key value
// ...] pairs, returning a REF to the matching value or NIL.
func opFind(vm *VM) error {
	key, err := vm.pop()
	if err != nil {
		return err
	}
	v, err := vm.pop()
	if err != nil {
		return err
	}
	r, headerAddr, header, err := vm.resolveListTarget(v)
	if err != nil {
		return err
	}
	s, _ := listLength(header)
	for i := uint32(0); i+1 < s; i += 2 {
		kAddr, ok, err := elemCellAddr(r, headerAddr, i)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		k, err := r.load(kAddr)
		if err != nil {
			return err
		}
		if k == key {
			vAddr, ok, err := elemCellAddr(r, headerAddr, i+1)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			c, err := packRef(r.seg, vAddr)
			if err != nil {
				return err
			}
			return vm.push(c)
		}
	}
	return vm.push(NilValue)
}

// opSelect walks a bracket path (a LIST of indices/keys) against a target,
// yielding a REF into the nested structure (§4.10 "Bracket paths").
func opSelect(vm *VM) error {
	pathV, err := vm.pop()
	if err != nil {
		return err
	}
	pr, pHeaderAddr, pHeader, err := vm.resolveListTarget(pathV)
	if err != nil {
		return err
	}
	steps, _ := listLength(pHeader)
	// A path LIST given by value sits on STACK above the target; step past
	// its payload so the next pop yields the target.
	if pathV.IsList() {
		if vm.SP < steps {
			return newErr(ErrUnderflow, "select", "stack underflow")
		}
		vm.SP -= steps
	}
	target, err := vm.pop()
	if err != nil {
		return err
	}

	cur := target
	for i := uint32(0); i < steps; i++ {
		addr, ok, err := elemCellAddr(pr, pHeaderAddr, i)
		if err != nil {
			return err
		}
		if !ok {
			return vm.push(NilValue)
		}
		step, err := pr.load(addr)
		if err != nil {
			return err
		}
		r, headerAddr, header, err := vm.resolveListTarget(cur)
		if err != nil {
			return vm.push(NilValue)
		}
		s, _ := listLength(header)
		if !step.IsNumber() {
			return vm.push(NilValue)
		}
		idx := uint32(step.AsFloat())
		if idx >= s {
			return vm.push(NilValue)
		}
		elemAddr, ok, err := elemCellAddr(r, headerAddr, idx)
		if err != nil {
			return err
		}
		if !ok {
			return vm.push(NilValue)
		}
		if i == steps-1 {
			c, err := packRef(r.seg, elemAddr)
			if err != nil {
				return err
			}
			return vm.push(c)
		}
		// Continuing past this step: re-enter the loop with a REF to the
		// nested element rather than its raw value, since resolveListTarget's
		// LIST branch only works for a value just popped off the real stack
		// top, which an internal element read is not.
		cur, err = packRef(r.seg, elemAddr)
		if err != nil {
			return err
		}
	}
	return vm.push(NilValue)
}
