package process

import (
	"errors"
	"fmt"

	"lam/instr"
)

// Sentinel errors for program errors: bad register indices, reserved or
// read-only registers, opcodes the dispatch loop does not know.
var (
	ErrRegisterOutOfRange = errors.New("register index out of range")
	ErrReservedRegister   = errors.New("register is reserved and not implemented")
	ErrWriteReadOnly      = errors.New("register is read-only")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrWaitUnimplemented  = errors.New("wait is reserved and not yet implemented")
)

// RuntimeError wraps a sentinel with the process/instruction context it
// occurred in, implementing Unwrap so callers can still errors.Is against
// the sentinel. It is always fatal to the process that raised it.
type RuntimeError struct {
	Err error
	Op  instr.Opcode
	IP  int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("process: ip=%d op=%s: %s", e.IP, e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func fail(op instr.Opcode, ip int, err error) *RuntimeError {
	return &RuntimeError{Err: err, Op: op, IP: ip}
}
