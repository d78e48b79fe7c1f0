// Package instr defines the VM's instruction set: a small, closed opcode
// table grouped by category (arithmetic, comparison, control flow, IPC).
package instr

import "lam/value"

// Opcode tags an Instruction's kind.
type Opcode byte

const (
	OpMove Opcode = iota
	OpAdd

	OpAllocate

	OpIsLt
	OpIsGe
	OpIsEq
	OpIsNe
	OpIsInteger
	OpJmp

	OpCall
	OpRet

	OpSpawn
	OpSend
	OpWait
)

func (op Opcode) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpAdd:
		return "add"
	case OpAllocate:
		return "alloc"
	case OpIsLt:
		return "is_lt"
	case OpIsGe:
		return "is_ge"
	case OpIsEq:
		return "is_eq"
	case OpIsNe:
		return "is_ne"
	case OpIsInteger:
		return "is_int"
	case OpJmp:
		return "jmp"
	case OpCall:
		return "call"
	case OpRet:
		return "ret"
	case OpSpawn:
		return "spawn"
	case OpSend:
		return "send"
	case OpWait:
		return "wait"
	default:
		return "unknown"
	}
}

// RegKind selects which register bank/view an Operand addresses.
type RegKind byte

const (
	RegX RegKind = iota
	RegY
	RegI
	RegFcalls
	RegCP
	RegHtop
	RegE
	RegFP
)

// Operand is a register reference: Kind plus an index (meaningful only for
// RegX and RegY).
type Operand struct {
	Kind  RegKind
	Index int
}

// X builds an X(i) operand.
func X(i int) Operand { return Operand{Kind: RegX, Index: i} }

// Y builds a Y(i) operand.
func Y(i int) Operand { return Operand{Kind: RegY, Index: i} }

func (o Operand) String() string {
	switch o.Kind {
	case RegX:
		return opString("x", o.Index)
	case RegY:
		return opString("y", o.Index)
	case RegI:
		return "I"
	case RegFcalls:
		return "fcalls"
	case RegCP:
		return "CP"
	case RegHtop:
		return "Htop"
	case RegE:
		return "E"
	case RegFP:
		return "FP"
	default:
		return "?"
	}
}

func opString(name string, idx int) string {
	return name + "(" + itoa(idx) + ")"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Instruction is a single bytecode instruction. Only the fields relevant to
// Op are meaningful; a flat struct plus tag beats a sum-via-interface here
// because every instruction is cheap to copy and the set is small and
// closed.
type Instruction struct {
	Op Opcode

	// Move
	Dest Operand
	Src  value.Value

	// Add / comparisons
	ArgA Operand
	ArgB Operand
	Ret  Operand

	// Allocate
	N int

	// IsLt/IsGe/IsEq/IsNe/IsInteger/Jmp/Call: resolved absolute instruction
	// index. Labels are absolute jump targets, not relative offsets.
	Label int

	// Spawn
	Child []Instruction
}

// Move builds a Move{Dest, Src} instruction.
func Move(dest Operand, src value.Value) Instruction {
	return Instruction{Op: OpMove, Dest: dest, Src: src}
}

// Add builds an Add{ArgA, ArgB, Ret} instruction.
func Add(a, b, ret Operand) Instruction {
	return Instruction{Op: OpAdd, ArgA: a, ArgB: b, Ret: ret}
}

// Allocate builds an Allocate{N} instruction.
func Allocate(n int) Instruction {
	return Instruction{Op: OpAllocate, N: n}
}

// Comparison builds one of IsLt/IsGe/IsEq/IsNe.
func Comparison(op Opcode, label int, a, b Operand) Instruction {
	return Instruction{Op: op, Label: label, ArgA: a, ArgB: b}
}

// IsInteger builds an IsInteger{Label, ArgA} instruction.
func IsInteger(label int, arg Operand) Instruction {
	return Instruction{Op: OpIsInteger, Label: label, ArgA: arg}
}

// Jmp builds a Jmp{Label} instruction.
func Jmp(label int) Instruction {
	return Instruction{Op: OpJmp, Label: label}
}

// Call builds a Call{Label} instruction.
func Call(label int) Instruction {
	return Instruction{Op: OpCall, Label: label}
}

// Ret builds a Ret instruction.
func Ret() Instruction { return Instruction{Op: OpRet} }

// Spawn builds a Spawn{Child} instruction.
func Spawn(child []Instruction) Instruction {
	return Instruction{Op: OpSpawn, Child: child}
}

// Send builds a Send instruction.
func Send() Instruction { return Instruction{Op: OpSend} }

// Wait builds a Wait instruction.
func Wait() Instruction { return Instruction{Op: OpWait} }

// String renders an Instruction in a compact debugging form such as
// "move x(0), 5" (labels already resolved to absolute indices, not names).
// This is not the `{...}.` list syntax asm.Parse accepts.
func (in Instruction) String() string {
	switch in.Op {
	case OpMove:
		return "move " + in.Dest.String() + ", " + in.Src.String()
	case OpAdd:
		return "add " + in.ArgA.String() + ", " + in.ArgB.String() + ", " + in.Ret.String()
	case OpAllocate:
		return "alloc " + itoa(in.N)
	case OpIsLt, OpIsGe, OpIsEq, OpIsNe:
		return in.Op.String() + " " + itoa(in.Label) + ", " + in.ArgA.String() + ", " + in.ArgB.String()
	case OpIsInteger:
		return "is_int " + itoa(in.Label) + ", " + in.ArgA.String()
	case OpJmp:
		return "jmp " + itoa(in.Label)
	case OpCall:
		return "call " + itoa(in.Label)
	case OpRet:
		return "ret"
	case OpSpawn:
		return "spawn <" + itoa(len(in.Child)) + " instrs>"
	case OpSend:
		return "send"
	case OpWait:
		return "wait"
	default:
		return "?"
	}
}
