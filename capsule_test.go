package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const counterSrc = `
: counter
	0 var n
	capsule
	case
		"inc" of 1 +> n ;
		"get" of n ;
		DEFAULT of 0 ;
	;
;
`

func TestCapsule_DispatchMutatesOwnLocal(t *testing.T) {
	src := counterSrc + `
	counter
	dup "inc" swap dispatch drop
	dup "inc" swap dispatch drop
	"get" swap dispatch
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(2), stackTop(t, vm).AsFloat())
}

func TestCapsule_TwoInstancesKeepSeparateState(t *testing.T) {
	src := counterSrc + `
	counter
	dup "inc" swap dispatch drop
	dup "inc" swap dispatch drop
	counter
	dup "inc" swap dispatch drop
	"get" swap dispatch
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(1), stackTop(t, vm).AsFloat())
}

// Constructs a first capsule, then a second one on top of it on RSTACK
// before dispatching back into the first — the scenario that broke a prior
// header-offset-based restore of Dispatch's saved IP/BP, since the first
// capsule is no longer the topmost thing on RSTACK when it is dispatched.
func TestCapsule_DispatchAfterLaterConstructionStillRestoresCaller(t *testing.T) {
	src := counterSrc + `
	counter
	counter
	drop
	dup "inc" swap dispatch drop
	"get" swap dispatch
	`
	vm, _ := runSrc(t, src)
	assert.Equal(t, float32(1), stackTop(t, vm).AsFloat())
}
