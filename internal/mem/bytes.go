package mem

import "encoding/binary"

// DefaultBytesPageSize provides a default for Bytes.PageSize.
const DefaultBytesPageSize = 1024

// Bytes implements a byte-oriented paged memory, used for segments that are
// addressed and grown at byte granularity (code, interned strings). Pages may
// not necessarily be the same size, but usually are in practice.
type Bytes struct {
	PagedCore
	pages [][]byte
}

// Size returns an address one position higher than the last position in the
// last page allocated so far.
func (m *Bytes) Size() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load8 returns a single byte from the given address.
func (m *Bytes) Load8(addr uint) (byte, error) {
	if err := m.checkLimit(addr, "load"); err != nil {
		return 0, err
	}
	if m.PageSize == 0 || len(m.pages) == 0 {
		return 0, nil
	}
	pageID := m.findPage(addr)
	base, page := m.bases[pageID], m.pages[pageID]
	if i := int(addr) - int(base); 0 <= i && i < len(page) {
		return page[i], nil
	}
	return 0, nil
}

// LoadInto reads len(buf) bytes from memory starting at addr.
func (m *Bytes) LoadInto(addr uint, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	end := addr + uint(len(buf))
	if err := m.checkLimit(end, "load"); err != nil {
		return err
	}
	for pageID := m.findPage(addr); addr < end && pageID < len(m.bases); pageID++ {
		base := m.bases[pageID]
		if base > end {
			break
		}
		if skip := int(base) - int(addr); skip > 0 {
			if skip >= len(buf) {
				break
			}
			addr += uint(skip)
			for i := range buf[:skip] {
				buf[i] = 0
			}
			buf = buf[skip:]
		}
		page := m.pages[pageID]
		if skip := int(addr) - int(base); skip > 0 {
			if skip >= len(page) {
				continue
			}
			base += uint(skip)
			page = page[skip:]
		}
		n := copy(buf, page)
		buf = buf[n:]
		addr += uint(n)
	}
	for i := range buf {
		buf[i] = 0
	}
	return nil
}

// Load16 reads a little-endian u16 at addr.
func (m *Bytes) Load16(addr uint) (uint16, error) {
	var b [2]byte
	if err := m.LoadInto(addr, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// LoadF32 reads a little-endian IEEE-754 32-bit float bit pattern at addr.
func (m *Bytes) LoadF32(addr uint) (uint32, error) {
	var b [4]byte
	if err := m.LoadInto(addr, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Stor writes bytes at addr, allocating pages if necessary.
func (m *Bytes) Stor(addr uint, values ...byte) error {
	end := addr + uint(len(values))
	if err := m.checkLimit(end, "stor"); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultBytesPageSize
	}
	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			base += skip
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}
	return nil
}

// Stor16 writes a little-endian u16 at addr.
func (m *Bytes) Stor16(addr uint, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return m.Stor(addr, b[:]...)
}

// StorF32 writes a little-endian IEEE-754 32-bit float bit pattern at addr.
func (m *Bytes) StorF32(addr uint, bits uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], bits)
	return m.Stor(addr, b[:]...)
}

func (m *Bytes) allocPage(pageID int, addr uint) (base, size uint, page []byte) {
	base, size, isNew := m.PagedCore.allocPage(pageID, addr)
	if isNew {
		page = make([]byte, size)
		if pageID == len(m.bases) {
			m.pages = append(m.pages, page)
		} else {
			m.pages = append(m.pages, nil)
			copy(m.pages[pageID+1:], m.pages[pageID:])
			m.pages[pageID] = page
		}
	} else {
		page = m.pages[pageID]
	}
	return base, size, page
}
