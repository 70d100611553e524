package main

// intern interns s into the VM's string digest, returning the 16-bit
// address a STRING-tagged cell carries (§4.3). Re-interning the same string
// is idempotent. internal/digest is itself the STRING segment's backing
// store: Tacit never needs byte-range access into interned text, only
// whole-string lookup by address, so the digest's own string slice serves
// that role directly instead of mirroring bytes into a separate byte-paged
// segment.
func (vm *VM) intern(s string) (uint16, error) {
	addr, err := vm.strs.Intern(s)
	if err != nil {
		return 0, newErr(ErrBounds, "intern", "%v", err)
	}
	return addr, nil
}

// getString resolves a STRING-tagged cell's address back to Go text.
func (vm *VM) getString(addr uint16) string {
	return vm.strs.Get(addr)
}
