// Package stack implements a process's Y-register bank and call-frame
// stack: a base-pointer-addressed window per call frame, reserved and
// released in fixed-size slabs on call/return.
package stack

import (
	"errors"
	"fmt"

	"lam/instr"
	"lam/value"
)

// ErrNotStackRegister is returned by Get/Put for a register that is not
// addressable through the stack (anything other than Y or CP).
var ErrNotStackRegister = errors.New("stack: register is not a stack register")

// ErrYOutOfRange is returned by Get/Put for a Y index outside the current
// frame's allocated window.
var ErrYOutOfRange = errors.New("stack: Y register out of range")

// calleeSlots is the number of Y-slots an allocate_call reserves for a
// callee.
const calleeSlots = 256

// CallFrame is one entry in the call stack: where to resume on Ret, and
// where this frame's Y-window begins in the shared y_regs vector.
type CallFrame struct {
	ReturnIP int
	BasePtr  int
}

// Stack is a single process's Y-register vector plus its non-empty
// call-frame stack. It is not safe for concurrent use; the owning Process
// serializes access to it under its own lock.
type Stack struct {
	yRegs  []value.Value
	frames []CallFrame
}

// New creates a Stack with a single root call frame (return_ip and
// base_pointer both 0), matching a freshly spawned process's initial state.
func New() *Stack {
	return &Stack{
		frames: []CallFrame{{ReturnIP: 0, BasePtr: 0}},
	}
}

// Allocate extends y_regs by n Nils.
func (s *Stack) Allocate(n int) {
	for i := 0; i < n; i++ {
		s.yRegs = append(s.yRegs, value.Nil)
	}
}

// Deallocate shrinks y_regs by n. It panics if fewer than n slots exist,
// since that can only mean a corrupt frame/operand mismatch.
func (s *Stack) Deallocate(n int) {
	if len(s.yRegs) < n {
		panic(fmt.Errorf("stack: deallocate(%d): only %d slots present", n, len(s.yRegs)))
	}
	s.yRegs = s.yRegs[:len(s.yRegs)-n]
}

func (s *Stack) currentFrame() *CallFrame {
	return &s.frames[len(s.frames)-1]
}

// yIndex translates a Y(i) operand into an absolute y_regs index relative
// to the current frame's base pointer.
func (s *Stack) yIndex(i int) int {
	return s.currentFrame().BasePtr + i
}

// Get reads a stack-addressable register: Y(i) or CP. Any other operand is
// rejected — the Process dispatches X/I/fcalls itself and never calls this.
func (s *Stack) Get(reg instr.Operand) (value.Value, error) {
	switch reg.Kind {
	case instr.RegY:
		idx := s.yIndex(reg.Index)
		if idx < 0 || idx >= len(s.yRegs) {
			return value.Value{}, fmt.Errorf("%w: Y(%d) with %d slots", ErrYOutOfRange, reg.Index, len(s.yRegs)-s.currentFrame().BasePtr)
		}
		return s.yRegs[idx], nil
	case instr.RegCP:
		return value.NewIC(uint(s.currentFrame().ReturnIP)), nil
	default:
		return value.Value{}, fmt.Errorf("%w: %s", ErrNotStackRegister, reg)
	}
}

// Put writes a stack-addressable register: Y(i) or CP.
func (s *Stack) Put(reg instr.Operand, v value.Value) error {
	switch reg.Kind {
	case instr.RegY:
		idx := s.yIndex(reg.Index)
		if idx < 0 || idx >= len(s.yRegs) {
			return fmt.Errorf("%w: Y(%d) with %d slots", ErrYOutOfRange, reg.Index, len(s.yRegs)-s.currentFrame().BasePtr)
		}
		s.yRegs[idx] = v
		return nil
	case instr.RegCP:
		s.currentFrame().ReturnIP = int(v.IC)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNotStackRegister, reg)
	}
}

// AllocateCall pushes a new call frame whose base pointer is the current
// top of y_regs, then reserves calleeSlots fresh Y-slots for the callee.
func (s *Stack) AllocateCall(returnIP int) {
	frame := CallFrame{ReturnIP: returnIP, BasePtr: len(s.yRegs)}
	s.frames = append(s.frames, frame)
	s.Allocate(calleeSlots)
}

// CP returns the IP to resume at on return from the current frame.
func (s *Stack) CP() int {
	return s.currentFrame().ReturnIP
}

// Ret pops the current call frame. It reports true when the process has no
// more frames left (it has returned past its root frame and is finished);
// otherwise it releases the callee's Y-slots and returns false.
func (s *Stack) Ret() bool {
	s.frames = s.frames[:len(s.frames)-1]
	if len(s.frames) == 0 {
		return true
	}
	s.Deallocate(calleeSlots)
	return false
}

// Depth returns the number of live call frames, for diagnostics.
func (s *Stack) Depth() int {
	return len(s.frames)
}
