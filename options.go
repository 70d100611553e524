package main

import (
	"io"

	"github.com/jhlagado/tacit/internal/flushio"
)

// WithOutput directs `print`/`type` output to w.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithMemLimit bounds every segment's allocator the same way, matching the
// teacher's single flat withMemLimit but applied across Tacit's five
// segments.
func WithMemLimit(limit uint) VMOption { return withMemLimit(limit) }

// WithLogf installs a diagnostic sink for --trace-style output; nil leaves
// tracing disabled.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }

type noption struct{}

func (noption) apply(vm *VM) {}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) { vm.logfn = logfn }

type outputOption struct{ io.Writer }

func withOutput(w io.Writer) outputOption { return outputOption{w} }

func (o outputOption) apply(vm *VM) {
	vm.Out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.ioClosers = append(vm.ioClosers, cl)
	}
}

type memLimitOption uint

func withMemLimit(limit uint) memLimitOption { return memLimitOption(limit) }

func (lim memLimitOption) apply(vm *VM) {
	l := uint(lim)
	vm.Seg.Code.Limit = l
	vm.Seg.Stack.Limit = l
	vm.Seg.RStack.Limit = l
	vm.Seg.Data.Limit = l
	vm.Seg.String.Limit = l
}
