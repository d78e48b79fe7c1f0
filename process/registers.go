// Package process implements the per-process interpreter loop: the
// register access contract binding a shared X-register bank to a
// process's own Stack, PCB, and Mailbox, and the instruction dispatch
// itself.
package process

import (
	"fmt"
	"sync"

	"lam/value"
)

// NumXRegisters is the size of the shared X-register bank.
const NumXRegisters = 1024

// RegisterBank is the X-register array shared by every process on one VM.
// The mutual-exclusion granularity is the whole array, held only for the
// duration of a single register read or write, never across an
// instruction boundary. A sharded-by-index lock would preserve the same
// observable semantics; this implementation does not bother, because 1024
// uncontended single-word critical sections are already cheap.
type RegisterBank struct {
	mu   sync.Mutex
	regs [NumXRegisters]value.Value
}

// NewRegisterBank creates a bank with every register initialized to Nil.
func NewRegisterBank() *RegisterBank {
	b := &RegisterBank{}
	for i := range b.regs {
		b.regs[i] = value.Nil
	}
	return b
}

// Get reads X(i). It returns an error for i out of range rather than
// panicking directly so callers can attach process/IP context before
// treating it as a fatal condition.
func (b *RegisterBank) Get(i int) (value.Value, error) {
	if i < 0 || i >= NumXRegisters {
		return value.Value{}, fmt.Errorf("%w: X(%d)", ErrRegisterOutOfRange, i)
	}
	b.mu.Lock()
	v := b.regs[i]
	b.mu.Unlock()
	return v, nil
}

// Put writes X(i).
func (b *RegisterBank) Put(i int, v value.Value) error {
	if i < 0 || i >= NumXRegisters {
		return fmt.Errorf("%w: X(%d)", ErrRegisterOutOfRange, i)
	}
	b.mu.Lock()
	b.regs[i] = v
	b.mu.Unlock()
	return nil
}
