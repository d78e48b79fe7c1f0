// Package mailbox implements a process's inbound message queue.
package mailbox

import "lam/value"

// Mailbox is an ordered FIFO of values delivered to a process, plus a
// reserved save-cursor for future selective-receive support. The cursor is
// inert in the core: nothing reads it yet.
type Mailbox struct {
	msgs []value.Value
	save *int
}

// New creates an empty mailbox.
func New() *Mailbox {
	return &Mailbox{}
}

// AddMsg appends v to the end of the mailbox. Callers delivering from
// different senders concurrently must still serialize calls to AddMsg
// themselves; the VM listener does this by routing every SendToProc
// through a single goroutine (see vm.VM).
func (m *Mailbox) AddMsg(v value.Value) {
	m.msgs = append(m.msgs, v)
}

// Len reports how many messages are queued.
func (m *Mailbox) Len() int {
	return len(m.msgs)
}

// Messages returns the queued messages in arrival order. The returned slice
// is a copy; callers may not mutate the mailbox through it.
func (m *Mailbox) Messages() []value.Value {
	out := make([]value.Value, len(m.msgs))
	copy(out, m.msgs)
	return out
}
