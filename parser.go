package main

// closerKind names the shape of a pending structured-control construct
// on the compile-time closer stack (§4.7 "Closer protocol").
type closerKind uint8

const (
	EndDefinition closerKind = iota
	EndIf
	EndCase
	EndOf
	EndMatch
	EndWith
	EndWhen
	EndDo
	EndCapsule
)

func (k closerKind) String() string {
	switch k {
	case EndDefinition:
		return "EndDefinition"
	case EndIf:
		return "EndIf"
	case EndCase:
		return "EndCase"
	case EndOf:
		return "EndOf"
	case EndMatch:
		return "EndMatch"
	case EndWith:
		return "EndWith"
	case EndWhen:
		return "EndWhen"
	case EndDo:
		return "EndDo"
	case EndCapsule:
		return "EndCapsule"
	default:
		return "EndCloser?"
	}
}

// closerFrame is one entry on VM.closers: a dedicated compile-time stack
// kept separate from the runtime data stack (REDESIGN FLAGS resolution in
// SPEC_FULL.md §5, item 1), instead of pushing CODE-tagged opcode references onto
// the operand stack the way the source material describes.
type closerFrame struct {
	kind    closerKind
	patchAt uint32   // pending branch placeholder to patch on close
	exits   []uint32 // collected exit-branch placeholders (case/match)
	mark    DictMark // dictionary checkpoint to forget back to
	savedSP uint32   // caller-stack depth to restore to (case discriminant)
}

func (vm *VM) pushCloser(f closerFrame) { vm.closers = append(vm.closers, f) }

func (vm *VM) topCloser() (closerFrame, bool) {
	if len(vm.closers) == 0 {
		return closerFrame{}, false
	}
	return vm.closers[len(vm.closers)-1], true
}

func (vm *VM) popCloser() (closerFrame, error) {
	n := len(vm.closers)
	if n == 0 {
		return closerFrame{}, newErr(ErrSyntax, ";", "no open construct to close")
	}
	f := vm.closers[n-1]
	vm.closers = vm.closers[:n-1]
	return f, nil
}

// Parser drives the token-at-a-time compile loop of §4.7. It owns the
// tokenizer; all compiled state (CP, dictionary, closers) lives on the VM
// so immediate handlers can run nested immediate-execution windows without
// a separate parser instance.
type Parser struct {
	vm  *VM
	tok *Tokenizer
}

func NewParser(vm *VM, src string) *Parser {
	return &Parser{vm: vm, tok: NewTokenizer(src)}
}

// immediateHandlers maps a recognized keyword to its compile-time action.
// Populated by control.go/locals.go/capsuledef.go/parser.go's own init.
var immediateHandlers = map[string]func(p *Parser) error{}

func registerImmediate(name string, h func(p *Parser) error) {
	if _, exists := immediateHandlers[name]; exists {
		panic("duplicate immediate registration: " + name)
	}
	immediateHandlers[name] = h
}

func init() {
	registerImmediate(":", (*Parser).compileColon)
	registerImmediate(";", (*Parser).compileSemi)
	registerImmediate("recurse", (*Parser).compileRecurse)
}

// Compile runs the compile loop to EOF, emitting a final Abort (§4.7).
func (p *Parser) Compile() error {
	for {
		tok, err := p.tok.Next()
		if err != nil {
			return err
		}
		if tok.Type == TokEOF {
			break
		}
		if err := p.compileToken(tok); err != nil {
			return err
		}
	}
	if len(p.vm.closers) != 0 {
		top, _ := p.vm.topCloser()
		return newErr(ErrUnclosed, "eof", "construct %s was never closed", top.kind)
	}
	return p.vm.emitOp(OpAbort)
}

func (p *Parser) compileToken(tok Token) error {
	switch tok.Type {
	case TokNumber:
		if err := p.vm.emitOp(OpLiteralNumber); err != nil {
			return err
		}
		return p.vm.emitF32(tok.Num)

	case TokString:
		addr, err := p.vm.intern(tok.Text)
		if err != nil {
			return err
		}
		if err := p.vm.emitOp(OpLiteralString); err != nil {
			return err
		}
		return p.vm.emitU16(addr)

	case TokRefSigil:
		return p.compileRefSigil(tok.Text)

	case TokSpecial, TokWord:
		return p.compileWord(tok.Text)
	}
	return newErr(ErrSyntax, "compile", "unexpected token %v", tok)
}

func (p *Parser) compileWord(name string) error {
	if h, ok := immediateHandlers[name]; ok {
		return h(p)
	}
	if e := p.vm.dict.Lookup(name); e != nil {
		return p.compileCallToPayload(e.payload)
	}
	if f, ok := parseNumber(name); ok {
		if err := p.vm.emitOp(OpLiteralNumber); err != nil {
			return err
		}
		return p.vm.emitF32(f)
	}
	return newErr(ErrSyntax, "compile", "unknown word %q", name)
}

// compileCallToPayload emits the correct instruction(s) for invoking a
// dictionary entry's payload, which may be a builtin, a user-word address,
// a global REF, or a LOCAL slot.
func (p *Parser) compileCallToPayload(payload Cell) error {
	switch payload.Tag() {
	case TagCode:
		_, _, v := payload.Untag()
		if uint32(v) < MinUserOpcode {
			return p.vm.emitOp(Op(v))
		}
		return p.vm.emitCall(DecodeX1516(uint16(v)))
	case TagRef:
		if err := p.vm.emitOp(OpGlobalRef); err != nil {
			return err
		}
		_, _, raw := payload.Untag()
		ref := UnpackRef(uint16(raw))
		if err := p.vm.emitU16(uint16(ref.Offset)); err != nil {
			return err
		}
		return p.vm.emitOp(OpFetch)
	case TagLocal:
		if err := p.vm.emitOp(OpVarRef); err != nil {
			return err
		}
		_, _, slot := payload.Untag()
		if err := p.vm.emitU16(uint16(slot)); err != nil {
			return err
		}
		return p.vm.emitOp(OpFetch)
	default:
		return newErr(ErrType, "compile", "dictionary payload has unexpected tag %s", payload.Tag())
	}
}

// compileRefSigil compiles 'name into a direct reference push without the
// implicit Fetch a plain word call would add.
func (p *Parser) compileRefSigil(name string) error {
	e := p.vm.dict.Lookup(name)
	if e == nil {
		return newErr(ErrSyntax, "ref", "unknown word %q", name)
	}
	switch e.payload.Tag() {
	case TagCode:
		_, _, v := e.payload.Untag()
		c, err := Tagged(TagCode, 0, v)
		if err != nil {
			return err
		}
		if err := p.vm.emitOp(OpLiteralCell); err != nil {
			return err
		}
		return p.emitLiteralCell(c)
	case TagRef:
		if err := p.vm.emitOp(OpGlobalRef); err != nil {
			return err
		}
		_, _, raw := e.payload.Untag()
		ref := UnpackRef(uint16(raw))
		return p.vm.emitU16(uint16(ref.Offset))
	case TagLocal:
		if err := p.vm.emitOp(OpVarRef); err != nil {
			return err
		}
		_, _, slot := e.payload.Untag()
		return p.vm.emitU16(uint16(slot))
	default:
		return newErr(ErrType, "ref", "word %q has no addressable payload", name)
	}
}

// emitLiteralCell emits a tagged cell as a 4-byte immediate the same way
// LiteralNumber does, since the wire encoding of any Cell is just its raw
// 32-bit pattern regardless of tag.
func (p *Parser) emitLiteralCell(c Cell) error {
	if err := p.vm.Seg.Code.StorF32(uint(p.vm.CP), uint32(c)); err != nil {
		return newErr(ErrBounds, "emit", "%v", err)
	}
	p.vm.CP += 4
	return nil
}

// --- `:` / `;` / recurse ---------------------------------------------------

func (p *Parser) compileColon() error {
	if p.vm.defActive {
		return newErr(ErrSyntax, ":", "definitions cannot nest")
	}
	nameTok, err := p.tok.Next()
	if err != nil {
		return err
	}
	if nameTok.Type != TokWord && nameTok.Type != TokNumber {
		return newErr(ErrSyntax, ":", "expected a word name")
	}
	name := nameTok.Text

	if err := p.vm.emitOp(OpBranch); err != nil {
		return err
	}
	branchAt := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	if err := p.vm.align(); err != nil {
		return err
	}
	// CODE values below MinUserOpcode decode as builtin opcodes, so a word
	// body never starts there.
	for p.vm.CP < MinUserOpcode {
		if err := p.vm.emitByte(0); err != nil {
			return err
		}
	}

	bodyAddr := p.vm.CP
	codeRef, err := CreateCodeRef(bodyAddr)
	if err != nil {
		return err
	}
	nameAddr, err := p.vm.intern(name)
	if err != nil {
		return err
	}
	entry := p.vm.dict.Define(name, nameAddr, codeRef)
	p.vm.dict.HideHead()
	mark := p.vm.dict.Mark()

	p.vm.defActive = true
	p.vm.defBranchAt = branchAt
	p.vm.defMark = mark
	p.vm.defHeadCell = bodyAddr
	p.vm.defName = name
	p.vm.defReserveEmitted = false
	p.vm.defLocalCount = 0
	_ = entry

	p.vm.pushCloser(closerFrame{kind: EndDefinition})
	return nil
}

func (p *Parser) compileSemi() error {
	f, err := p.vm.popCloser()
	if err != nil {
		return err
	}
	switch f.kind {
	case EndDefinition:
		return p.closeDefinition()
	case EndIf:
		return p.vm.patchRelBranch(f.patchAt, p.vm.CP)
	case EndCase:
		return p.closeCase(f)
	case EndOf:
		return p.closeOf(f)
	case EndMatch:
		return p.closeMatch(f)
	case EndWith:
		return p.closeWith(f)
	case EndWhen:
		return p.closeWhen(f)
	case EndDo:
		return p.closeDo(f)
	case EndCapsule:
		return p.closeCapsule()
	default:
		return newErr(ErrSyntax, ";", "cannot close %s with a bare ;", f.kind)
	}
}

func (p *Parser) closeDefinition() error {
	if !p.vm.defActive {
		return newErr(ErrSyntax, ";", "no active definition")
	}
	if p.vm.defReserveEmitted {
		if err := p.vm.patchU16(p.vm.defReserveAt, p.vm.defLocalCount); err != nil {
			return err
		}
	}
	if err := p.vm.emitOp(OpExit); err != nil {
		return err
	}
	if err := p.vm.patchRelBranch(p.vm.defBranchAt, p.vm.CP); err != nil {
		return err
	}
	p.vm.dict.Forget(p.vm.defMark)
	if p.vm.dict.Head() != p.vm.defMark.head {
		return newErr(ErrInvariant, ";", "dictionary head changed across definition body")
	}
	p.vm.dict.UnhideHead()
	p.vm.defActive = false
	return nil
}

func (p *Parser) compileRecurse() error {
	if !p.vm.defActive {
		return newErr(ErrSyntax, "recurse", "recurse outside a definition")
	}
	return p.vm.emitCall(p.vm.defHeadCell)
}
