package main

import (
	"fmt"
	"strconv"

	"github.com/jhlagado/tacit/internal/flushio"
	"github.com/jhlagado/tacit/internal/runeio"
)

// writeValue formats c for the `print` builtin and writes it through the
// same flushable, ANSI-safe writer stack the teacher VM used for its
// echo/key console builtins.
func (vm *VM) writeValue(c Cell) error {
	wf := flushio.NewWriteFlusher(vm.Out)
	defer wf.Flush()

	var s string
	switch {
	case c.IsNumber():
		s = formatFloat(c.AsFloat())
	case c.Tag() == TagString:
		_, _, addr := c.Untag()
		s = vm.strs.Get(uint16(addr))
	case c.IsNil():
		s = "nil"
	case c.IsDefault():
		s = "default"
	default:
		s = fmt.Sprintf("<%s>", c.Tag())
	}
	_, err := runeio.WriteANSIString(wf, s)
	return err
}

func formatFloat(f float32) string {
	if f == float32(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
