package main

import (
	"math"

	"github.com/jhlagado/tacit/internal/mem"
)

// SegID names one of Tacit's five memory segments (§4.2).
type SegID uint8

const (
	SegCode SegID = iota
	SegStack
	SegRStack
	SegData
	SegString
)

func (s SegID) String() string {
	switch s {
	case SegCode:
		return "CODE"
	case SegStack:
		return "STACK"
	case SegRStack:
		return "RSTACK"
	case SegData:
		return "DATA"
	case SegString:
		return "STRING"
	default:
		return "SEG?"
	}
}

// Segments owns the five backing stores the VM operates over: CODE and
// STRING are byte-addressed (internal/mem.Bytes), STACK/RSTACK/DATA are
// cell-addressed (internal/mem.Cells), mirroring the split the teacher VM
// never needed (it only ever had one flat int store) but which Tacit's
// mixed byte/cell addressing requires.
type Segments struct {
	Code   mem.Bytes
	Stack  mem.Cells
	RStack mem.Cells
	Data   mem.Cells
	String mem.Bytes
}

// --- X1516 code-address encoding -------------------------------------

// CodeAlignShift/CodeAlignBytes/CodeMaxByteAddress fix Open Question 2
// (§5 of SPEC_FULL.md): code addresses are 2-byte aligned, so the 15
// payload bits of an X1516 encoding address up to CodeMaxByteAddress.
const (
	CodeAlignShift     = 1
	CodeAlignBytes     = 1 << CodeAlignShift
	CodeMaxByteAddress = ((1 << 15) - 1) << CodeAlignShift
)

// EncodeX1516 packs a byte address into the X1516 scheme: the address must
// be a multiple of CodeAlignBytes and fit in 15 bits once shifted down. The
// 15-bit payload splits across two bytes low byte first: the low byte
// carries bit 7 set plus the low 7 payload bits, the high byte carries the
// remaining 8 payload bits, so the low byte's bit 7 distinguishes a two-byte
// payload from a single raw builtin opcode (<128) when the two share a byte
// stream.
func EncodeX1516(addr uint32) (uint16, error) {
	if addr > CodeMaxByteAddress {
		return 0, newErr(ErrBounds, "", "code address %d exceeds X1516 range %d", addr, CodeMaxByteAddress)
	}
	if addr&(CodeAlignBytes-1) != 0 {
		return 0, newErr(ErrInvariant, "", "code address %d is not %d-byte aligned", addr, CodeAlignBytes)
	}
	val := addr >> CodeAlignShift
	low := byte(0x80 | (val & 0x7F))
	high := byte((val >> 7) & 0xFF)
	return uint16(low) | uint16(high)<<8, nil
}

// DecodeX1516 reverses EncodeX1516, returning the original byte address.
func DecodeX1516(enc uint16) uint32 {
	low := byte(enc)
	high := byte(enc >> 8)
	val := uint32(low&0x7F) | uint32(high)<<7
	return val << CodeAlignShift
}

// IsX1516 reports whether the low byte of enc signals a two-byte address
// payload (bit 7 set) as opposed to a single-byte builtin opcode (<128).
func IsX1516(low byte) bool {
	return low&0x80 != 0
}

// --- REF packing --------------------------------------------------------

// refSegBits/refOffsetBits implement the REDESIGN FLAGS resolution: a REF's
// 16-bit value field packs a 2-bit segment selector and a 14-bit cell
// offset, instead of treating the value as a single flat address.
const (
	refSegBits    = 2
	refOffsetBits = 14
	refOffsetMask = (1 << refOffsetBits) - 1
	RefMaxOffset  = refOffsetMask
)

// Ref is the decoded form of a REF-tagged Cell: which segment it points
// into, and the cell offset within that segment.
type Ref struct {
	Seg    SegID
	Offset uint32
}

// refSegCode maps the 2-bit wire selector to/from a SegID. REF only ever
// targets STACK, RSTACK or DATA (CODE and STRING are addressed by CODE and
// STRING cells respectively, never by REF).
var refSegOf = [4]SegID{SegStack, SegRStack, SegData, SegData}

func refSegCode(seg SegID) (uint16, error) {
	switch seg {
	case SegStack:
		return 0, nil
	case SegRStack:
		return 1, nil
	case SegData:
		return 2, nil
	default:
		return 0, newErr(ErrType, "", "segment %s cannot be referenced by REF", seg)
	}
}

// Pack encodes r into the 16-bit value field of a REF-tagged Cell.
func (r Ref) Pack() (uint16, error) {
	if r.Offset > RefMaxOffset {
		return 0, newErr(ErrBounds, "", "cell offset %d exceeds REF range %d", r.Offset, RefMaxOffset)
	}
	segCode, err := refSegCode(r.Seg)
	if err != nil {
		return 0, err
	}
	return segCode<<refOffsetBits | uint16(r.Offset), nil
}

// UnpackRef decodes a REF's 16-bit value field back into a Ref.
func UnpackRef(raw uint16) Ref {
	segCode := raw >> refOffsetBits
	return Ref{Seg: refSegOf[segCode&0x3], Offset: uint32(raw & refOffsetMask)}
}

// packRef builds a REF-tagged Cell directly from a segment and offset.
func packRef(seg SegID, offset uint32) (Cell, error) {
	raw, err := Ref{Seg: seg, Offset: offset}.Pack()
	if err != nil {
		return 0, err
	}
	return Tagged(TagRef, 0, int32(raw))
}

// --- float bit-pattern helpers -------------------------------------------

// Float32Bits and Float32FromBits convert between a float32 and its raw
// IEEE-754 bit pattern, the representation NUMBER cells are stored as.
func Float32Bits(f float32) uint32     { return math.Float32bits(f) }
func Float32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }

// cellStore resolves a SegID to the Segments struct's matching cell store,
// for subsystems (REF dereference, capsule field access) that need generic
// cell-addressed access without a segment-specific type switch.
func (s *Segments) cellStore(seg SegID) (*mem.Cells, error) {
	switch seg {
	case SegStack:
		return &s.Stack, nil
	case SegRStack:
		return &s.RStack, nil
	case SegData:
		return &s.Data, nil
	default:
		return nil, newErr(ErrType, "", "segment %s is not cell-addressed", seg)
	}
}

// LoadCell dereferences a REF, reading the cell it points to.
func (s *Segments) LoadCell(r Ref) (Cell, error) {
	store, err := s.cellStore(r.Seg)
	if err != nil {
		return 0, err
	}
	v, err := store.Load(uint(r.Offset))
	if err != nil {
		return 0, err
	}
	return Cell(v), nil
}

// StoreCell writes through a REF.
func (s *Segments) StoreCell(r Ref, v Cell) error {
	store, err := s.cellStore(r.Seg)
	if err != nil {
		return err
	}
	return store.Stor(uint(r.Offset), uint32(v))
}
