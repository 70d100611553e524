package main

func init() {
	registerImmediate("if", (*Parser).compileIf)
	registerImmediate("else", (*Parser).compileElse)
	registerImmediate("case", (*Parser).compileCase)
	registerImmediate("of", (*Parser).compileOf)
	registerImmediate("DEFAULT", (*Parser).compileDefault)
	registerImmediate("NIL", (*Parser).compileNil)
	registerImmediate("match", (*Parser).compileMatch)
	registerImmediate("with", (*Parser).compileWith)
	registerImmediate("when", (*Parser).compileWhen)
	registerImmediate("do", (*Parser).compileDo)
}

// --- if / else ---------------------------------------------------------

func (p *Parser) compileIf() error {
	if err := p.vm.emitOp(OpIfFalseBranch); err != nil {
		return err
	}
	at := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	p.vm.pushCloser(closerFrame{kind: EndIf, patchAt: at})
	return nil
}

func (p *Parser) compileElse() error {
	f, err := p.vm.popCloser()
	if err != nil {
		return err
	}
	if f.kind != EndIf {
		return newErr(ErrSyntax, "else", "else without a matching if")
	}
	if err := p.vm.emitOp(OpBranch); err != nil {
		return err
	}
	at2 := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	if err := p.vm.patchRelBranch(f.patchAt, p.vm.CP); err != nil {
		return err
	}
	p.vm.pushCloser(closerFrame{kind: EndIf, patchAt: at2})
	return nil
}

// --- case / of / DEFAULT -------------------------------------------------

func (p *Parser) compileCase() error {
	p.vm.pushCloser(closerFrame{kind: EndCase, savedSP: p.vm.SP})
	return nil
}

func (p *Parser) compileOf() error {
	top, ok := p.vm.topCloser()
	if !ok || (top.kind != EndCase && top.kind != EndOf) {
		return newErr(ErrSyntax, "of", "of without an open case")
	}
	if err := p.vm.emitOp(OpOver); err != nil {
		return err
	}
	if err := p.vm.emitOp(OpEqual); err != nil {
		return err
	}
	if err := p.vm.emitOp(OpIfFalseBranch); err != nil {
		return err
	}
	skipAt := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	if err := p.vm.emitOp(OpDrop); err != nil {
		return err
	}
	p.vm.pushCloser(closerFrame{kind: EndOf, patchAt: skipAt})
	return nil
}

func (p *Parser) compileDefault() error {
	if err := p.vm.emitOp(OpLiteralCell); err != nil {
		return err
	}
	return (&Parser{vm: p.vm}).emitLiteralCell(DefaultValue)
}

func (p *Parser) compileNil() error {
	if err := p.vm.emitOp(OpLiteralCell); err != nil {
		return err
	}
	return (&Parser{vm: p.vm}).emitLiteralCell(NilValue)
}

// closeCase emits the leftover-discriminant Drop that only the no-match
// fallthrough path reaches, then patches every matched arm's exit branch to
// land just past it: a matched `of` already dropped the discriminant itself
// (see compileOf), so its exit must skip this Drop rather than run into it,
// the same way nested Forth IF/ELSE/THEN only reaches CASE's trailing DROP
// down the unmatched-ELSE chain.
func (p *Parser) closeCase(f closerFrame) error {
	if err := p.vm.emitOp(OpDrop); err != nil {
		return err
	}
	for _, at := range f.exits {
		if err := p.vm.patchRelBranch(at, p.vm.CP); err != nil {
			return err
		}
	}
	return nil
}

// closeOf is reached when `;` pops an EndOf closer: emit the branch to the
// case's shared exit, patch the guard's skip target to right here (the
// start of the next `of` test), and record the exit for the enclosing
// EndCase to patch once the whole case closes.
func (p *Parser) closeOf(f closerFrame) error {
	if err := p.vm.emitOp(OpBranch); err != nil {
		return err
	}
	exitAt := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	if err := p.vm.patchRelBranch(f.patchAt, p.vm.CP); err != nil {
		return err
	}
	n := len(p.vm.closers)
	if n == 0 || p.vm.closers[n-1].kind != EndCase {
		return newErr(ErrSyntax, ";", "of clause outside a case")
	}
	p.vm.closers[n-1].exits = append(p.vm.closers[n-1].exits, exitAt)
	return nil
}

// --- match / with ---------------------------------------------------------

func (p *Parser) compileMatch() error {
	p.vm.pushCloser(closerFrame{kind: EndMatch, savedSP: p.vm.SP})
	return nil
}

func (p *Parser) compileWith() error {
	top, ok := p.vm.topCloser()
	if !ok || (top.kind != EndMatch && top.kind != EndWith) {
		return newErr(ErrSyntax, "with", "with without an open match")
	}
	if err := p.vm.emitOp(OpIfFalseBranch); err != nil {
		return err
	}
	skipAt := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	p.vm.pushCloser(closerFrame{kind: EndWith, patchAt: skipAt})
	return nil
}

// closeWith mirrors closeOf without the discriminant comparison: `match`'s
// guard expressions leave their own boolean on the stack before `with`.
func (p *Parser) closeWith(f closerFrame) error {
	if err := p.vm.emitOp(OpBranch); err != nil {
		return err
	}
	exitAt := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	if err := p.vm.patchRelBranch(f.patchAt, p.vm.CP); err != nil {
		return err
	}
	n := len(p.vm.closers)
	if n == 0 || p.vm.closers[n-1].kind != EndMatch {
		return newErr(ErrSyntax, ";", "with clause outside a match")
	}
	p.vm.closers[n-1].exits = append(p.vm.closers[n-1].exits, exitAt)
	return nil
}

func (p *Parser) closeMatch(f closerFrame) error {
	for _, at := range f.exits {
		if err := p.vm.patchRelBranch(at, p.vm.CP); err != nil {
			return err
		}
	}
	return nil
}

// --- when / do --------------------------------------------------------

func (p *Parser) compileWhen() error {
	p.vm.pushCloser(closerFrame{kind: EndWhen})
	return nil
}

func (p *Parser) compileDo() error {
	top, ok := p.vm.topCloser()
	if !ok || top.kind != EndWhen {
		return newErr(ErrSyntax, "do", "do without a matching when")
	}
	if err := p.vm.emitOp(OpIfFalseBranch); err != nil {
		return err
	}
	at := p.vm.CP
	if err := p.vm.emitU16(0); err != nil {
		return err
	}
	f, _ := p.vm.popCloser()
	f.kind = EndDo
	f.patchAt = at
	p.vm.pushCloser(f)
	return nil
}

func (p *Parser) closeWhen(f closerFrame) error {
	return newErr(ErrSyntax, ";", "when without a matching do")
}

func (p *Parser) closeDo(f closerFrame) error {
	return p.vm.patchRelBranch(f.patchAt, p.vm.CP)
}
