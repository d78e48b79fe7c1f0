package asm

import "fmt"

// item is the generic parsed shape of one `{...}` list element — a
// number, an atom, or a nested list — before it is converted into an
// instr.Instruction or instr.Operand.
type item struct {
	num    uint64
	atom   string
	list   []item
	isNum  bool
	isAtom bool
	isList bool
}

func numItem(n uint64) item  { return item{num: n, isNum: true} }
func atomItem(a string) item { return item{atom: a, isAtom: true} }
func listItem(l []item) item { return item{list: l, isList: true} }

func (it item) expectNum() (uint64, error) {
	if !it.isNum {
		return 0, fmt.Errorf("asm: expected a number, got %s", it.describe())
	}
	return it.num, nil
}

func (it item) expectAtom() (string, error) {
	if !it.isAtom {
		return "", fmt.Errorf("asm: expected an atom, got %s", it.describe())
	}
	return it.atom, nil
}

func (it item) expectList() ([]item, error) {
	if !it.isList {
		return nil, fmt.Errorf("asm: expected a list, got %s", it.describe())
	}
	return it.list, nil
}

func (it item) describe() string {
	switch {
	case it.isNum:
		return fmt.Sprintf("number %d", it.num)
	case it.isAtom:
		return fmt.Sprintf("atom %q", it.atom)
	case it.isList:
		return "list"
	default:
		return "nothing"
	}
}

// head returns the first element of a list item as an atom, the
// dispatching tag every instruction/register/value list leads with.
func (it item) head() (string, []item, error) {
	list, err := it.expectList()
	if err != nil {
		return "", nil, err
	}
	if len(list) == 0 {
		return "", nil, fmt.Errorf("asm: empty list")
	}
	tag, err := list[0].expectAtom()
	if err != nil {
		return "", nil, fmt.Errorf("asm: list must start with an atom tag: %w", err)
	}
	return tag, list, nil
}
