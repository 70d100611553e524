package main

import (
	"fmt"
	"io"
)

// vmDumper renders a disasm-lite view of a VM's dictionary, stack and code
// segment, the text dump the `--dump` CLI flag prints, grounded on the
// teacher's own dumpStack/dumpMem split.
type vmDumper struct {
	vm  *VM
	out io.Writer
}

func (d vmDumper) dump() {
	fmt.Fprintf(d.out, "# Tacit VM Dump\n")
	d.dumpDict()
	d.dumpStack()
	d.dumpCode()
}

func (d vmDumper) dumpDict() {
	fmt.Fprintf(d.out, "# Dictionary\n")
	var entries []*DictEntry
	for e := d.vm.dict.Head(); e != nil; e = e.prev {
		entries = append(entries, e)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		info := e.Info()
		vis := ""
		if info.Hidden {
			vis = " (hidden)"
		}
		imm := ""
		if info.Immediate {
			imm = " immediate"
		}
		fmt.Fprintf(d.out, "  %-16s %-8s%s%s\n", e.name, info.Payload.Tag(), imm, vis)
	}
}

func (d vmDumper) dumpStack() {
	fmt.Fprintf(d.out, "# Stack (SP=%d)\n", d.vm.SP)
	for i := uint32(0); i < d.vm.SP; i++ {
		v, err := d.vm.Seg.Stack.Load(uint(i))
		if err != nil {
			fmt.Fprintf(d.out, "  [%d] <error: %v>\n", i, err)
			continue
		}
		fmt.Fprintf(d.out, "  [%d] %s\n", i, d.describe(Cell(v)))
	}
}

func (d vmDumper) dumpCode() {
	fmt.Fprintf(d.out, "# Code (CP=%d)\n", d.vm.CP)
	for addr := uint32(0); addr < d.vm.CP; {
		low, err := d.vm.Seg.Code.Load8(uint(addr))
		if err != nil {
			break
		}
		if !IsX1516(low) {
			fmt.Fprintf(d.out, "  %5d: %s\n", addr, Op(low))
			addr++
			continue
		}
		high, err := d.vm.Seg.Code.Load8(uint(addr + 1))
		if err != nil {
			break
		}
		enc := uint16(low) | uint16(high)<<8
		target := DecodeX1516(enc)
		fmt.Fprintf(d.out, "  %5d: call %s\n", addr, d.nameForAddr(target))
		addr += 2
	}
}

func (d vmDumper) nameForAddr(addr uint32) string {
	for e := d.vm.dict.Head(); e != nil; e = e.prev {
		if e.payload.Tag() != TagCode {
			continue
		}
		_, _, v := e.payload.Untag()
		if uint32(v) < MinUserOpcode {
			continue
		}
		if DecodeX1516(uint16(v)) == addr {
			return e.name
		}
	}
	return fmt.Sprintf("0x%04x", addr)
}

func (d vmDumper) describe(c Cell) string {
	switch {
	case c.IsNumber():
		return fmt.Sprintf("NUMBER %s", formatFloat(c.AsFloat()))
	case c.Tag() == TagString:
		_, _, addr := c.Untag()
		return fmt.Sprintf("STRING %q", d.vm.getString(uint16(addr)))
	case c.IsList():
		_, _, s := c.Untag()
		return fmt.Sprintf("LIST(%d)", s)
	case c.IsRef():
		_, _, raw := c.Untag()
		ref := UnpackRef(uint16(raw))
		return fmt.Sprintf("REF(%s+%d)", ref.Seg, ref.Offset)
	case c.IsCode():
		_, _, v := c.Untag()
		if uint32(v) < MinUserOpcode {
			return fmt.Sprintf("CODE builtin:%s", Op(v))
		}
		return fmt.Sprintf("CODE addr:%s", d.nameForAddr(DecodeX1516(uint16(v))))
	case c.IsNil():
		return "NIL"
	case c.IsDefault():
		return "DEFAULT"
	default:
		return fmt.Sprintf("%s", c.Tag())
	}
}
