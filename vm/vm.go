// Package vm implements the top-level orchestrator: it owns the shared
// X-register bank, starts a pool of schedulers (one per OS thread), and
// runs a listener goroutine that routes Spawn/SendToProc/Kill commands
// between embedders, running processes, and the scheduler pool.
package vm

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"lam/instr"
	"lam/process"
	"lam/scheduler"
	"lam/value"
	"lam/vmcmd"
)

// Router decides which scheduler a newly spawned process is routed to,
// given the VM-wide spawn sequence number (0, 1, 2, ...) and the size of
// the scheduler pool. It is called with the mutex held that protects
// VM.nextSeq, so it must not call back into the VM.
type Router func(seq, numSchedulers int) int

// Scheduler0Router routes every spawn to scheduler 0, the default and the
// only policy the original core shipped with.
func Scheduler0Router(seq, numSchedulers int) int { return 0 }

// RoundRobinRouter cycles spawns across the scheduler pool in sequence
// order.
func RoundRobinRouter(seq, numSchedulers int) int { return seq % numSchedulers }

// Options configures a VM instance. The zero value is not usable directly;
// construct one via New's Option arguments, which apply on top of
// defaultOptions.
type Options struct {
	// NumSchedulers is how many scheduler goroutines to start. Zero means
	// runtime.NumCPU()-1, with a floor of 1.
	NumSchedulers int

	// QuantumSize is the number of reductions each process gets per
	// scheduling turn. Zero means pcb.NumFcalls.
	QuantumSize int

	// Router picks the scheduler each newly spawned process lands on. Nil
	// means Scheduler0Router.
	Router Router

	// Logger receives scheduler/VM lifecycle diagnostics. Nil disables
	// logging, same as a *log.Logger pointed at io.Discard.
	Logger *log.Logger
}

// Option mutates Options, following a functional-options constructor shape.
type Option func(*Options)

// WithSchedulers overrides the scheduler pool size.
func WithSchedulers(n int) Option {
	return func(o *Options) { o.NumSchedulers = n }
}

// WithQuantum overrides the per-process reduction quantum.
func WithQuantum(n int) Option {
	return func(o *Options) { o.QuantumSize = n }
}

// WithRouter overrides the spawn-routing policy.
func WithRouter(r Router) Option {
	return func(o *Options) { o.Router = r }
}

// WithLogger overrides the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func defaultOptions() Options {
	return Options{
		Router: Scheduler0Router,
		Logger: log.New(os.Stderr, "[lam] ", log.LstdFlags),
	}
}

func (o Options) numSchedulers() int {
	if o.NumSchedulers > 0 {
		return o.NumSchedulers
	}
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

func (o Options) router() Router {
	if o.Router != nil {
		return o.Router
	}
	return Scheduler0Router
}

// VM is the running instance: the shared register bank, the scheduler
// pool, and the listener that mints PIDs and routes commands.
type VM struct {
	runID string

	regs *process.RegisterBank

	quantum int
	router  Router

	schedChans []chan scheduler.Cmd
	wg         sync.WaitGroup // scheduler goroutines

	cmds chan vmcmd.Command // embedder + process -> listener

	mu        sync.Mutex
	processes map[value.PID]*process.Process
	nextSeq   int

	log *log.Logger

	listenerDone chan struct{}
}

// NewRunID returns a fresh identifier in the same format VM.New stamps
// each running instance with, for callers (such as cmd/lam's asm
// subcommand) that want a matching debug-header tag without starting a VM.
func NewRunID() string {
	return uuid.NewString()
}

// New starts a VM: its register bank, its scheduler pool (each on its own
// goroutine), and its command listener (also on its own goroutine). The
// spawn-routing policy and per-process reduction quantum default to
// Scheduler0Router and pcb.NumFcalls respectively, and are overridable via
// WithRouter/WithQuantum.
func New(opts ...Option) *VM {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &VM{
		runID:        NewRunID(),
		regs:         process.NewRegisterBank(),
		quantum:      o.QuantumSize,
		router:       o.router(),
		cmds:         make(chan vmcmd.Command, 64),
		processes:    make(map[value.PID]*process.Process),
		log:          o.Logger,
		listenerDone: make(chan struct{}),
	}

	n := o.numSchedulers()
	v.schedChans = make([]chan scheduler.Cmd, n)
	for i := 0; i < n; i++ {
		ch := make(chan scheduler.Cmd, 64)
		v.schedChans[i] = ch
		sched := scheduler.New(i, ch, v.schedulerLogger(i))
		v.wg.Add(1)
		go func() {
			defer v.wg.Done()
			sched.Run()
		}()
	}

	go v.listen()

	return v
}

func (v *VM) schedulerLogger(id int) *log.Logger {
	if v.log == nil {
		return nil
	}
	prefix := fmt.Sprintf("[run %s] [scheduler %d] ", v.runID, id)
	return log.New(v.log.Writer(), prefix, v.log.Flags())
}

// RunID returns a UUID stamped at construction, used only to disambiguate
// this VM's log lines when multiple VMs run in the same process; it plays
// no part in any core invariant.
func (v *VM) RunID() string { return v.runID }

// Spawn is the embedder-facing equivalent of submitting a Spawn command:
// it mints a PID, builds the Process, and hands it to whichever scheduler
// the VM's Router selects, exactly as a running process's own Spawn
// instruction does via the command channel.
func (v *VM) Spawn(instrs []instr.Instruction) value.PID {
	return v.spawn(instrs)
}

// SendToProc delivers msg to the mailbox of the process identified by pid,
// serialized through the listener goroutine so message order from a single
// sender is preserved.
func (v *VM) SendToProc(pid value.PID, msg value.Value) {
	v.cmds <- vmcmd.SendToProc{Pid: pid, Msg: msg}
}

// Kill broadcasts a graceful shutdown to every scheduler and stops the
// listener. Schedulers finish draining their ready queues before exiting:
// Kill is cooperative, not a hard stop.
func (v *VM) Kill() {
	v.cmds <- vmcmd.Kill{}
}

// Wait blocks until every scheduler has drained and exited, i.e. until a
// prior Kill has taken full effect.
func (v *VM) Wait() {
	v.wg.Wait()
	<-v.listenerDone
}

func (v *VM) spawn(instrs []instr.Instruction) value.PID {
	v.mu.Lock()
	seq := v.nextSeq
	v.nextSeq++
	n := len(v.schedChans)
	routedScheduler := v.router(seq, n) % n
	if routedScheduler < 0 {
		routedScheduler += n
	}
	pid := value.PID{Scheduler: routedScheduler, Sequence: seq}
	proc := process.NewWithQuantum(pid, instrs, v.regs, v.cmds, v.quantum)
	v.processes[pid] = proc
	v.mu.Unlock()

	if v.log != nil {
		v.log.Printf("[run %s] spawned process %s", v.runID, pid)
	}
	v.schedChans[routedScheduler] <- scheduler.CmdSpawn{Proc: proc}
	return pid
}

func (v *VM) listen() {
	defer close(v.listenerDone)
	for cmd := range v.cmds {
		switch c := cmd.(type) {
		case vmcmd.Spawn:
			v.spawn(c.Instrs)

		case vmcmd.SendToProc:
			v.mu.Lock()
			proc, ok := v.processes[c.Pid]
			v.mu.Unlock()
			if !ok {
				if v.log != nil {
					v.log.Printf("[run %s] send to unknown pid %s dropped", v.runID, c.Pid)
				}
				continue
			}
			proc.Deliver(c.Msg)

		case vmcmd.Kill:
			for _, ch := range v.schedChans {
				ch <- scheduler.CmdKill{}
			}
			return
		}
	}
}
