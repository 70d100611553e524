package main

func init() {
	registerOp(OpAdd, binaryNumOp(func(a, b float32) float32 { return a + b }))
	registerOp(OpSub, binaryNumOp(func(a, b float32) float32 { return a - b }))
	registerOp(OpMul, binaryNumOp(func(a, b float32) float32 { return a * b }))
	registerOp(OpDiv, binaryNumOp(func(a, b float32) float32 { return a / b }))
	registerOp(OpMod, binaryNumOp(func(a, b float32) float32 {
		if b == 0 {
			return 0
		}
		q := float32(int32(a / b))
		return a - q*b
	}))
	registerOp(OpNeg, opNeg)

	registerOp(OpEqual, opEqual)
	registerOp(OpNotEqual, compareOp(func(a, b float32) bool { return a != b }))
	registerOp(OpLessThan, compareOp(func(a, b float32) bool { return a < b }))
	registerOp(OpLessEqual, compareOp(func(a, b float32) bool { return a <= b }))
	registerOp(OpGreaterThan, compareOp(func(a, b float32) bool { return a > b }))
	registerOp(OpGreaterEqual, compareOp(func(a, b float32) bool { return a >= b }))
	registerOp(OpAnd, compareOp(func(a, b float32) bool { return a != 0 && b != 0 }))
	registerOp(OpOr, compareOp(func(a, b float32) bool { return a != 0 || b != 0 }))
	registerOp(OpNot, opNot)
}

// popNumber pops TOS and requires it to carry the NUMBER tag; every
// arithmetic and comparison builtin shares this contract (§4.9).
func (vm *VM) popNumber(op string) (float32, error) {
	c, err := vm.pop()
	if err != nil {
		return 0, err
	}
	if !c.IsNumber() {
		return 0, newErr(ErrType, op, "expected NUMBER, got %s", c.Tag())
	}
	return c.AsFloat(), nil
}

func binaryNumOp(f func(a, b float32) float32) opHandler {
	return func(vm *VM) error {
		b, err := vm.popNumber("arith")
		if err != nil {
			return err
		}
		a, err := vm.popNumber("arith")
		if err != nil {
			return err
		}
		return vm.push(NumberCell(f(a, b)))
	}
}

func compareOp(f func(a, b float32) bool) opHandler {
	return func(vm *VM) error {
		b, err := vm.popNumber("compare")
		if err != nil {
			return err
		}
		a, err := vm.popNumber("compare")
		if err != nil {
			return err
		}
		var r float32
		if f(a, b) {
			r = 1
		}
		return vm.push(NumberCell(r))
	}
}

func opNeg(vm *VM) error {
	a, err := vm.popNumber("neg")
	if err != nil {
		return err
	}
	return vm.push(NumberCell(-a))
}

// opEqual implements Equal's `case`/`of` guard contract: a DEFAULT sentinel
// on either side of the comparison always matches, so `DEFAULT of ... ;`
// reaches its body regardless of the discriminant.
func opEqual(vm *VM) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	equal := a == b
	if a.IsNumber() && b.IsNumber() {
		equal = a.AsFloat() == b.AsFloat()
	}
	var r float32
	if a.IsDefault() || b.IsDefault() || equal {
		r = 1
	}
	return vm.push(NumberCell(r))
}

func opNot(vm *VM) error {
	c, err := vm.pop()
	if err != nil {
		return err
	}
	var r float32
	if !c.Truthy() {
		r = 1
	}
	return vm.push(NumberCell(r))
}
