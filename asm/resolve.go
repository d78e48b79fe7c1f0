package asm

import (
	"fmt"

	"lam/instr"
	"lam/value"
)

// resolveProgram performs two-pass label resolution: a first pass collects
// every `{label, N}` pseudo-instruction's target (the index of the next
// real instruction), then a second pass converts every remaining line into
// an instr.Instruction, resolving each label reference by table lookup
// into an absolute instruction index.
func resolveProgram(lines []item) ([]instr.Instruction, error) {
	type label struct {
		name uint64
		idx  int
	}
	var labels []label
	var real []item
	for _, line := range lines {
		tag, list, err := line.head()
		if err != nil {
			return nil, err
		}
		if tag == "label" {
			if len(list) != 2 {
				return nil, fmt.Errorf("asm: {label, N} takes exactly one argument")
			}
			n, err := list[1].expectNum()
			if err != nil {
				return nil, err
			}
			labels = append(labels, label{name: n, idx: len(real)})
			continue
		}
		real = append(real, line)
	}

	lookup := func(n uint64) (int, error) {
		for _, l := range labels {
			if l.name == n {
				return l.idx, nil
			}
		}
		return 0, fmt.Errorf("asm: undefined label %d", n)
	}

	out := make([]instr.Instruction, len(real))
	for i, line := range real {
		in, err := convertInstruction(line, lookup)
		if err != nil {
			return nil, err
		}
		out[i] = in
	}
	return out, nil
}

type labelLookup func(uint64) (int, error)

func convertInstruction(line item, lookup labelLookup) (instr.Instruction, error) {
	tag, list, err := line.head()
	if err != nil {
		return instr.Instruction{}, err
	}
	args := list[1:]

	switch tag {
	case "move":
		if len(args) != 2 {
			return instr.Instruction{}, fmt.Errorf("asm: move takes 2 arguments")
		}
		dest, err := convertReg(args[0])
		if err != nil {
			return instr.Instruction{}, err
		}
		src, err := convertValue(args[1])
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Move(dest, src), nil

	case "add":
		if len(args) != 3 {
			return instr.Instruction{}, fmt.Errorf("asm: add takes 3 arguments")
		}
		a, err := convertReg(args[0])
		if err != nil {
			return instr.Instruction{}, err
		}
		b, err := convertReg(args[1])
		if err != nil {
			return instr.Instruction{}, err
		}
		ret, err := convertReg(args[2])
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Add(a, b, ret), nil

	case "alloc":
		if len(args) != 1 {
			return instr.Instruction{}, fmt.Errorf("asm: alloc takes 1 argument")
		}
		n, err := args[0].expectNum()
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Allocate(int(n)), nil

	case "is_lt", "is_ge", "is_eq", "is_ne":
		if len(args) != 3 {
			return instr.Instruction{}, fmt.Errorf("asm: %s takes 3 arguments", tag)
		}
		lbl, err := convertLabelRef(args[0], lookup)
		if err != nil {
			return instr.Instruction{}, err
		}
		a, err := convertReg(args[1])
		if err != nil {
			return instr.Instruction{}, err
		}
		b, err := convertReg(args[2])
		if err != nil {
			return instr.Instruction{}, err
		}
		op := map[string]instr.Opcode{
			"is_lt": instr.OpIsLt,
			"is_ge": instr.OpIsGe,
			"is_eq": instr.OpIsEq,
			"is_ne": instr.OpIsNe,
		}[tag]
		return instr.Comparison(op, lbl, a, b), nil

	case "is_int":
		if len(args) != 2 {
			return instr.Instruction{}, fmt.Errorf("asm: is_int takes 2 arguments")
		}
		lbl, err := convertLabelRef(args[0], lookup)
		if err != nil {
			return instr.Instruction{}, err
		}
		arg, err := convertReg(args[1])
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.IsInteger(lbl, arg), nil

	case "jmp":
		if len(args) != 1 {
			return instr.Instruction{}, fmt.Errorf("asm: jmp takes 1 argument")
		}
		lbl, err := convertLabelRef(args[0], lookup)
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Jmp(lbl), nil

	case "ret":
		if len(args) != 0 {
			return instr.Instruction{}, fmt.Errorf("asm: ret takes no arguments")
		}
		return instr.Ret(), nil

	case "call":
		if len(args) != 1 {
			return instr.Instruction{}, fmt.Errorf("asm: call takes 1 argument")
		}
		lbl, err := convertLabelRef(args[0], lookup)
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Call(lbl), nil

	case "spawn":
		if len(args) != 1 {
			return instr.Instruction{}, fmt.Errorf("asm: spawn takes 1 argument")
		}
		childLines, err := args[0].expectList()
		if err != nil {
			return instr.Instruction{}, err
		}
		child, err := resolveProgram(childLines)
		if err != nil {
			return instr.Instruction{}, err
		}
		return instr.Spawn(child), nil

	case "send":
		if len(args) != 0 {
			return instr.Instruction{}, fmt.Errorf("asm: send takes no arguments")
		}
		return instr.Send(), nil

	case "wait":
		if len(args) != 0 {
			return instr.Instruction{}, fmt.Errorf("asm: wait takes no arguments")
		}
		return instr.Wait(), nil

	default:
		return instr.Instruction{}, fmt.Errorf("asm: unknown instruction %q", tag)
	}
}

// convertLabelRef reads a bare label number, as used by every control-flow
// instruction's Label argument, and resolves it through lookup. The
// grammar passes the label name as a plain number item, not a nested list.
func convertLabelRef(it item, lookup labelLookup) (int, error) {
	n, err := it.expectNum()
	if err != nil {
		return 0, fmt.Errorf("asm: label reference: %w", err)
	}
	idx, err := lookup(n)
	if err != nil {
		return 0, err
	}
	return idx, nil
}

func convertReg(it item) (instr.Operand, error) {
	tag, list, err := it.head()
	if err != nil {
		return instr.Operand{}, fmt.Errorf("asm: register: %w", err)
	}
	args := list[1:]
	switch tag {
	case "x":
		n, err := expectSingleNum(args)
		if err != nil {
			return instr.Operand{}, err
		}
		return instr.X(int(n)), nil
	case "y":
		n, err := expectSingleNum(args)
		if err != nil {
			return instr.Operand{}, err
		}
		return instr.Y(int(n)), nil
	case "Htop":
		return instr.Operand{Kind: instr.RegHtop}, nil
	case "E":
		return instr.Operand{Kind: instr.RegE}, nil
	case "I":
		return instr.Operand{Kind: instr.RegI}, nil
	case "FP":
		return instr.Operand{Kind: instr.RegFP}, nil
	case "CP":
		return instr.Operand{Kind: instr.RegCP}, nil
	case "fcalls":
		return instr.Operand{Kind: instr.RegFcalls}, nil
	default:
		return instr.Operand{}, fmt.Errorf("asm: unknown register %q", tag)
	}
}

func expectSingleNum(args []item) (uint64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("asm: expected exactly one numeric argument")
	}
	return args[0].expectNum()
}

// convertValue converts a literal operand of a move instruction: a bare
// number (Small), a bare atom (Atom), or a tagged list ({nil} or
// {pid, S, N}).
func convertValue(it item) (value.Value, error) {
	if it.isNum {
		return value.NewSmall(uint32(it.num)), nil
	}
	if it.isAtom {
		return value.NewAtom(it.atom), nil
	}
	tag, list, err := it.head()
	if err != nil {
		return value.Value{}, err
	}
	args := list[1:]
	switch tag {
	case "nil":
		if len(args) != 0 {
			return value.Value{}, fmt.Errorf("asm: {nil} takes no arguments")
		}
		return value.Nil, nil
	case "pid":
		if len(args) != 2 {
			return value.Value{}, fmt.Errorf("asm: {pid, S, N} takes 2 arguments")
		}
		s, err := args[0].expectNum()
		if err != nil {
			return value.Value{}, err
		}
		n, err := args[1].expectNum()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewPid(value.PID{Scheduler: int(s), Sequence: int(n)}), nil
	default:
		return value.Value{}, fmt.Errorf("asm: unknown value literal %q", tag)
	}
}
