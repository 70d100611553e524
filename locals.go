package main

func init() {
	registerImmediate("var", (*Parser).compileVar)
	registerImmediate("global", (*Parser).compileGlobal)
	registerImmediate("->", (*Parser).compileArrow)
	registerImmediate("+>", (*Parser).compilePlusArrow)
}

// ensureReserveEmitted emits the function's Reserve instruction the first
// time a local is declared, deferring the slot count (patched at `;`) until
// the whole body has been scanned (§4.7.6).
func (p *Parser) ensureReserveEmitted() error {
	if p.vm.defReserveEmitted {
		return nil
	}
	if err := p.vm.emitOp(OpReserve); err != nil {
		return err
	}
	p.vm.defReserveAt = p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	p.vm.defReserveEmitted = true
	return nil
}

func (p *Parser) compileVar() error {
	if !p.vm.defActive {
		return newErr(ErrSyntax, "var", "var is only valid inside a definition")
	}
	nameTok, err := p.tok.Next()
	if err != nil {
		return err
	}
	if nameTok.Type != TokWord {
		return newErr(ErrSyntax, "var", "expected a local name")
	}
	if err := p.ensureReserveEmitted(); err != nil {
		return err
	}
	slot := p.vm.defLocalCount
	p.vm.defLocalCount++

	payload, err := Tagged(TagLocal, 0, int32(slot))
	if err != nil {
		return err
	}
	nameAddr, err := p.vm.intern(nameTok.Text)
	if err != nil {
		return err
	}
	p.vm.dict.Define(nameTok.Text, nameAddr, payload)

	if err := p.vm.emitOp(OpInitVar); err != nil {
		return err
	}
	return p.vm.emitU16(slot)
}

func (p *Parser) compileGlobal() error {
	if p.vm.defActive {
		return newErr(ErrSyntax, "global", "global is only valid at top level")
	}
	nameTok, err := p.tok.Next()
	if err != nil {
		return err
	}
	if nameTok.Type != TokWord {
		return newErr(ErrSyntax, "global", "expected a global name")
	}
	offset := p.vm.GP
	p.vm.GP++

	payload, err := packRef(SegData, offset)
	if err != nil {
		return err
	}
	nameAddr, err := p.vm.intern(nameTok.Text)
	if err != nil {
		return err
	}
	p.vm.dict.Define(nameTok.Text, nameAddr, payload)

	if err := p.vm.emitOp(OpInitGlobal); err != nil {
		return err
	}
	return p.vm.emitU16(uint16(offset))
}

// compileArrow implements `-> name` and its bracket-path nested-update
// form (§4.7.6).
func (p *Parser) compileArrow() error {
	return p.compileStoreInto(false)
}

func (p *Parser) compilePlusArrow() error {
	return p.compileStoreInto(true)
}

func (p *Parser) compileStoreInto(addMode bool) error {
	nameTok, err := p.tok.Next()
	if err != nil {
		return err
	}
	if nameTok.Type != TokWord {
		return newErr(ErrSyntax, "->", "expected a variable name")
	}
	e := p.vm.dict.Lookup(nameTok.Text)
	if e == nil {
		return newErr(ErrSyntax, "->", "unknown name %q", nameTok.Text)
	}
	if addMode && e.payload.Tag() != TagLocal {
		return newErr(ErrSyntax, "+>", "+> only applies to locals")
	}

	peek, err := p.tok.Next()
	if err != nil {
		return err
	}
	hasPath := peek.Type == TokSpecial && peek.Text == "["
	if !hasPath {
		p.tok.PushBack(peek)
	}

	if err := p.emitRefPush(e); err != nil {
		return err
	}

	if hasPath {
		if err := p.compileBracketPath(); err != nil {
			return err
		}
		if err := p.vm.emitOp(OpSelect); err != nil {
			return err
		}
	}

	if addMode {
		if err := p.vm.emitOp(OpFetch); err != nil {
			return err
		}
		if err := p.vm.emitOp(OpSwap); err != nil {
			return err
		}
		if err := p.vm.emitOp(OpAdd); err != nil {
			return err
		}
		if err := p.emitRefPush(e); err != nil {
			return err
		}
	}
	return p.vm.emitOp(OpStore)
}

// emitRefPush pushes a REF to e's slot: VarRef for locals, GlobalRef for
// globals.
func (p *Parser) emitRefPush(e *DictEntry) error {
	switch e.payload.Tag() {
	case TagLocal:
		_, _, slot := e.payload.Untag()
		if err := p.vm.emitOp(OpVarRef); err != nil {
			return err
		}
		return p.vm.emitU16(uint16(slot))
	case TagRef:
		_, _, raw := e.payload.Untag()
		ref := UnpackRef(uint16(raw))
		if err := p.vm.emitOp(OpGlobalRef); err != nil {
			return err
		}
		return p.vm.emitU16(uint16(ref.Offset))
	default:
		return newErr(ErrType, "->", "%q is not a storable location", e.name)
	}
}

// compileBracketPath compiles `[ i j k ]` into code that builds a LIST of
// indices/keys on the data stack, consumed by Select (§4.10 "Bracket
// paths").
func (p *Parser) compileBracketPath() error {
	if err := p.vm.emitOp(OpOpenList); err != nil {
		return err
	}
	for {
		tok, err := p.tok.Next()
		if err != nil {
			return err
		}
		if tok.Type == TokSpecial && tok.Text == "]" {
			break
		}
		if tok.Type == TokEOF {
			return newErr(ErrUnclosed, "[", "bracket path never closed")
		}
		if err := p.compileToken(tok); err != nil {
			return err
		}
	}
	return p.vm.emitOp(OpCloseList)
}
