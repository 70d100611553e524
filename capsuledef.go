package main

func init() {
	registerImmediate("capsule", (*Parser).compileCapsule)
}

// compileCapsule converts the enclosing `:` definition into a capsule
// constructor: the current closer must still be EndDefinition (capsule can
// only open right after `:`'s own bookkeeping, before any other immediate
// has swapped it out), swapped for EndCapsule, then ExitConstructor is
// emitted in place of what would otherwise be the colon-definition's own
// Exit (§4.7.7).
func (p *Parser) compileCapsule() error {
	top, ok := p.vm.topCloser()
	if !ok || top.kind != EndDefinition {
		return newErr(ErrSyntax, "capsule", "capsule must open a definition body")
	}
	if _, err := p.vm.popCloser(); err != nil {
		return err
	}
	if err := p.vm.emitOp(OpExitConstructor); err != nil {
		return err
	}
	// The dispatch body that follows starts on an aligned address, the
	// entry opExitConstructor records for it.
	if err := p.vm.align(); err != nil {
		return err
	}
	p.vm.pushCloser(closerFrame{kind: EndCapsule})
	return nil
}

// closeCapsule finalises a capsule's dispatch body: emit ExitDispatch in
// place of the Exit a plain definition would use, then run the same
// branch-patch/forget/unhide bookkeeping as closeDefinition.
func (p *Parser) closeCapsule() error {
	if p.vm.defReserveEmitted {
		if err := p.vm.patchU16(p.vm.defReserveAt, p.vm.defLocalCount); err != nil {
			return err
		}
	}
	if err := p.vm.emitOp(OpExitDispatch); err != nil {
		return err
	}
	if err := p.vm.patchRelBranch(p.vm.defBranchAt, p.vm.CP); err != nil {
		return err
	}
	p.vm.dict.Forget(p.vm.defMark)
	if p.vm.dict.Head() != p.vm.defMark.head {
		return newErr(ErrInvariant, ";", "dictionary head changed across capsule body")
	}
	p.vm.dict.UnhideHead()
	p.vm.defActive = false
	return nil
}
