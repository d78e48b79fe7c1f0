// Package vmcmd defines the commands a running process can emit toward the
// VM's listener (spawn a child, send a message, and — for symmetry with the
// VM's own public API — request a kill). It is a leaf package so both
// process (the emitter) and vm (the consumer) can depend on it without a
// cycle.
package vmcmd

import (
	"lam/instr"
	"lam/value"
)

// Command is implemented by every command a process or an embedder can
// submit to a VM's listener.
type Command interface {
	isCommand()
}

// Spawn asks the VM to create and schedule a new process running instrs.
type Spawn struct {
	Instrs []instr.Instruction
}

func (Spawn) isCommand() {}

// SendToProc asks the VM to deliver Msg to the mailbox of the process
// identified by Pid.
type SendToProc struct {
	Pid value.PID
	Msg value.Value
}

func (SendToProc) isCommand() {}

// Kill asks the VM to broadcast a graceful shutdown to every scheduler and
// exit its listener right after the broadcast; each scheduler drains its
// ready queue before exiting.
type Kill struct{}

func (Kill) isCommand() {}
