// Package digest implements Tacit's string interning table: strings are
// appended once to a backing store and referred to afterwards by a compact
// 16-bit address, the same way the teacher VM's dictionary interns word
// names into a side table instead of repeating bytes inline.
package digest

import "fmt"

// MaxAddr is the largest address a Digest can hand out, matching the 16-bit
// unsigned value field carried by a STRING-tagged cell.
const MaxAddr = 0xFFFF

// Digest interns strings to small integer addresses and supports reverse
// lookup. The zero value is ready to use.
type Digest struct {
	strs []string
	ids  map[string]uint16
}

// ErrFull indicates the digest has handed out its maximum address.
type ErrFull struct{}

func (ErrFull) Error() string { return "string digest exhausted its address space" }

// Intern returns s's address, assigning a new one the first time s is seen.
// Interning is idempotent: the same string always yields the same address
// within one Digest's lifetime.
func (d *Digest) Intern(s string) (uint16, error) {
	if id, ok := d.ids[s]; ok {
		return id, nil
	}
	if len(d.strs) >= MaxAddr {
		return 0, ErrFull{}
	}
	id := uint16(len(d.strs)) + 1 // 0 is reserved to mean "no string"
	if d.ids == nil {
		d.ids = make(map[string]uint16)
	}
	d.strs = append(d.strs, s)
	d.ids[s] = id
	return id, nil
}

// Lookup returns the address for s without interning it, or (0, false) if s
// has never been interned.
func (d *Digest) Lookup(s string) (uint16, bool) {
	id, ok := d.ids[s]
	return id, ok
}

// Get resolves an address back to its string, or "" if addr is unknown.
func (d *Digest) Get(addr uint16) string {
	if i := int(addr) - 1; i >= 0 && i < len(d.strs) {
		return d.strs[i]
	}
	return ""
}

// Len returns the number of distinct interned strings.
func (d *Digest) Len() int { return len(d.strs) }

func (d *Digest) String() string {
	return fmt.Sprintf("digest(%d strings)", len(d.strs))
}
