package main

import (
	"errors"
	"io"
	"io/ioutil"

	"github.com/jhlagado/tacit/internal/panicerr"
)

// New constructs a VM with its functional-option defaults applied, the
// same pattern the teacher's api.go used for its own single-package VM.
func New(opts ...VMOption) (*VM, error) {
	vm := newVM()
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	if err := vm.bootstrapBuiltins(); err != nil {
		return nil, err
	}
	return vm, nil
}

// Compile compiles src into vm's CODE segment without running it, leaving
// vm ready for Run.
func (vm *VM) Compile(src string) error {
	return NewParser(vm, src).Compile()
}

// Run executes from the current IP (0 on a fresh VM; after a run that
// reached Abort, the first byte the next Compile emits) until Abort or an
// error, recovering any panic the
// same way the teacher's Run did so a bug in a builtin handler surfaces as
// an error instead of crashing the process.
func (vm *VM) Run() error {
	err := panicerr.Recover("VM", func() error {
		return vm.run()
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withOutput(ioutil.Discard),
)

func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}
