package process

import (
	"sync"

	"lam/instr"
	"lam/mailbox"
	"lam/pcb"
	"lam/scheduler"
	"lam/stack"
	"lam/value"
	"lam/vmcmd"
)

// Process binds one instruction vector to its own Stack, PCB, and Mailbox,
// plus a reference to the X-register bank shared across the whole VM, and
// the channel it reports Spawn/Send commands to. One lock covers the
// Stack, PCB, and Mailbox together: the owning scheduler holds it for the
// whole of Run, and the VM listener briefly acquires it to deliver mail.
type Process struct {
	mu sync.Mutex

	instrs []instr.Instruction

	stack   *stack.Stack
	pcb     *pcb.PCB
	mailbox *mailbox.Mailbox
	regs    *RegisterBank

	out chan<- vmcmd.Command
}

// New creates a freshly spawned process. It starts Runnable with a full
// reduction quantum of pcb.NumFcalls.
func New(id value.PID, instrs []instr.Instruction, regs *RegisterBank, out chan<- vmcmd.Command) *Process {
	return NewWithQuantum(id, instrs, regs, out, pcb.NumFcalls)
}

// NewWithQuantum creates a freshly spawned process like New, but with a
// caller-supplied reduction quantum instead of pcb.NumFcalls.
func NewWithQuantum(id value.PID, instrs []instr.Instruction, regs *RegisterBank, out chan<- vmcmd.Command, quantum int) *Process {
	return &Process{
		instrs:  instrs,
		stack:   stack.New(),
		pcb:     pcb.NewWithQuantum(id, quantum),
		mailbox: mailbox.New(),
		regs:    regs,
		out:     out,
	}
}

// PCB exposes the process control block, used by a scheduler to inspect
// and transition state, and to thread this process through its ready
// queue's intrusive next-pointer list.
func (p *Process) PCB() *pcb.PCB { return p.pcb }

// Deliver appends msg to the process's mailbox under the process lock, so
// the VM listener can deliver mail while the process is between (or in the
// middle of) scheduling turns.
func (p *Process) Deliver(msg value.Value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mailbox.AddMsg(msg)
}

// Messages returns a snapshot of the mailbox in arrival order.
func (p *Process) Messages() []value.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mailbox.Messages()
}

// ID returns this process's identity.
func (p *Process) ID() value.PID { return p.pcb.ID() }

// IDString renders this process's identity for logging, satisfying
// scheduler.Runnable without that package needing to know about value.PID.
func (p *Process) IDString() string { return p.pcb.ID().String() }

// IsRunnable reports whether the PCB is in the Runnable state, satisfying
// scheduler.Runnable.
func (p *Process) IsRunnable() bool { return p.pcb.State() == pcb.StateRunnable }

// Next returns the intrusive ready-queue link, delegating to the PCB,
// which is the link's actual owner.
func (p *Process) Next() scheduler.Runnable {
	n := p.pcb.Next()
	if n == nil {
		return nil
	}
	return n.(scheduler.Runnable)
}

// SetNext sets the intrusive ready-queue link, delegating to the PCB. n is
// always another *Process in production, which satisfies both
// scheduler.Runnable and pcb.Linker.
func (p *Process) SetNext(n scheduler.Runnable) {
	if n == nil {
		p.pcb.ClearNext()
		return
	}
	p.pcb.SetNext(n.(pcb.Linker))
}

// get reads any readable register: X (shared bank), I and fcalls
// (read-only PCB views), or Y/CP (delegated to the Stack). Htop, E, and FP
// are reserved and fail loudly.
func (p *Process) get(op instr.Opcode, reg instr.Operand) value.Value {
	switch reg.Kind {
	case instr.RegX:
		v, err := p.regs.Get(reg.Index)
		if err != nil {
			panic(fail(op, p.pcb.GetIP(), err))
		}
		return v
	case instr.RegI:
		return value.NewIC(uint(p.pcb.GetIP()))
	case instr.RegFcalls:
		return value.NewSmall(uint32(p.pcb.GetFcalls()))
	case instr.RegY, instr.RegCP:
		v, err := p.stack.Get(reg)
		if err != nil {
			panic(fail(op, p.pcb.GetIP(), err))
		}
		return v
	default:
		panic(fail(op, p.pcb.GetIP(), ErrReservedRegister))
	}
}

// put writes any writable register. Writes to I or fcalls are a
// programming error and fail loudly.
func (p *Process) put(op instr.Opcode, reg instr.Operand, v value.Value) {
	switch reg.Kind {
	case instr.RegX:
		if err := p.regs.Put(reg.Index, v); err != nil {
			panic(fail(op, p.pcb.GetIP(), err))
		}
	case instr.RegI, instr.RegFcalls:
		panic(fail(op, p.pcb.GetIP(), ErrWriteReadOnly))
	case instr.RegY, instr.RegCP:
		if err := p.stack.Put(reg, v); err != nil {
			panic(fail(op, p.pcb.GetIP(), err))
		}
	default:
		panic(fail(op, p.pcb.GetIP(), ErrReservedRegister))
	}
}

// comparison reads both operands as Small and, if op holds, jumps to the
// absolute instruction index lbl.
func (p *Process) comparison(code instr.Opcode, a, b instr.Operand, lbl int, test func(x, y uint32) bool) {
	x := p.get(code, a).ExpectSmall()
	y := p.get(code, b).ExpectSmall()
	if test(x, y) {
		p.pcb.SetIP(lbl)
	}
}

// Run executes this process until it finishes, its quantum expires, or an
// unrecoverable program error panics out of the call (the owning scheduler
// is responsible for recovering that panic; see scheduler.Scheduler.Run).
// It returns true exactly when the process has finished: either its last
// frame returned, or its instruction pointer ran past the end of instrs.
func (p *Process) Run() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pcb.SetRunning()
	for p.pcb.GetIP() < len(p.instrs) {
		in := p.instrs[p.pcb.GetIP()]
		p.pcb.IncIP()

		switch in.Op {
		case instr.OpMove:
			p.put(in.Op, in.Dest, in.Src)

		case instr.OpAdd:
			a := p.get(in.Op, in.ArgA).ExpectSmall()
			b := p.get(in.Op, in.ArgB).ExpectSmall()
			p.put(in.Op, in.Ret, value.NewSmall(a+b))

		case instr.OpAllocate:
			p.stack.Allocate(in.N)

		case instr.OpIsLt:
			p.comparison(in.Op, in.ArgA, in.ArgB, in.Label, func(a, b uint32) bool { return a < b })
		case instr.OpIsGe:
			p.comparison(in.Op, in.ArgA, in.ArgB, in.Label, func(a, b uint32) bool { return a >= b })
		case instr.OpIsEq:
			p.comparison(in.Op, in.ArgA, in.ArgB, in.Label, func(a, b uint32) bool { return a == b })
		case instr.OpIsNe:
			p.comparison(in.Op, in.ArgA, in.ArgB, in.Label, func(a, b uint32) bool { return a != b })

		case instr.OpIsInteger:
			if p.get(in.Op, in.ArgA).IsSmall() {
				p.pcb.SetIP(in.Label)
			}

		case instr.OpJmp:
			p.pcb.SetIP(in.Label)

		case instr.OpCall:
			p.stack.AllocateCall(p.pcb.GetIP())
			p.pcb.SetIP(in.Label)
			if p.pcb.DecFcalls() {
				return false
			}

		case instr.OpRet:
			returnIP := p.stack.CP()
			finished := p.stack.Ret()
			if finished {
				p.pcb.SetExiting()
				return true
			}
			p.pcb.SetIP(returnIP)

		case instr.OpSpawn:
			p.out <- vmcmd.Spawn{Instrs: in.Child}

		case instr.OpSend:
			// Emitting blocks once the VM's command buffer fills, and the
			// process lock is held for the whole quantum. A program that
			// sends to its own PID more times than the buffer holds
			// without an intervening Call deadlocks against its own
			// delivery. Accepted limitation, same class as a divergent
			// program monopolizing its scheduler.
			pid := p.get(in.Op, instr.X(0)).ExpectPid()
			msg := p.get(in.Op, instr.X(1))
			p.out <- vmcmd.SendToProc{Pid: pid, Msg: msg}

		case instr.OpWait:
			panic(fail(in.Op, p.pcb.GetIP()-1, ErrWaitUnimplemented))

		default:
			panic(fail(in.Op, p.pcb.GetIP()-1, ErrUnknownOpcode))
		}
	}
	p.pcb.SetExiting()
	return true
}
