/*
Package main implements Tacit, a concatenative, stack-based language whose
values are NaN-boxed 32-bit cells and whose compiler and interpreter share one
code segment with no separate bytecode format.

Tacit postfix words operate on an operand stack; compound values (LIST) live
stack-natively, in reverse layout, with their header on top so that `length`
and `drop` never need to walk the payload. A word's body compiles directly to
the CODE segment: builtins are single opcode bytes, user words compile to a
two-byte X1516-encoded call address, and there is no runtime dictionary
lookup once compilation is done.

Section 1: tagged.go defines the Cell encoding and its seven tags.

Section 2: segment.go, vm.go and ops.go define the five memory segments, the
VM's register file, and the opcode table the interpreter dispatches through.

Section 3: token.go, emit.go and parser.go implement the tokenizer and the
single-pass compiler, including the compile-time closer stack that backs
`if`/`case`/`match`/`when`/`do`/capsule nesting (§6 of the language spec).

Section 4: list.go and capsule.go implement the stack-native LIST layout and
the capsule/dispatch calling convention built on top of it.

Section 5: dict.go is the append-only word dictionary; locals.go and
capsuledef.go compile `var`/`global`/`->` and `capsule` against it.
*/
package main
