// Package lock provides the task-callable gateways onto the kernel's
// mini-primitives: lock_send, lock_alert, lock_ready, lock_unready and
// lock_sched. Each wrapper brackets its call to the kernel with an
// interrupt-disable/restore pair, matching the original kernel's lock(n,
// name)/unlock(n) idiom around every entry into process/message-passing
// state.
package lock

import (
	"sync"
	"sync/atomic"

	"github.com/Kihui/minix/kernel"
)

// Gateway owns one kernel System and the reentrancy bookkeeping that decides
// whether a call needs its own interrupt-disable bracket.
//
// A call arriving from interrupt context sets Reenter >= 0 before invoking
// the kernel directly; the gateways below only take the bracket when
// Reenter is still at its idle value, so a kernel call already running
// inside an interrupt handler is never bracketed a second time.
type Gateway struct {
	sys *kernel.System

	mu      sync.Mutex
	reenter atomic.Int32
}

// idleReenter is the sentinel Reenter value outside of interrupt context.
const idleReenter = -1

// NewGateway wraps sys with the lock_* bracket.
func NewGateway(sys *kernel.System) *Gateway {
	g := &Gateway{sys: sys}
	g.reenter.Store(idleReenter)
	return g
}

// disable takes the bracket unless already inside interrupt context, and
// returns whether it was actually taken (so the matching restore knows
// whether to release it).
func (g *Gateway) disable() bool {
	if g.reenter.Load() >= 0 {
		return false
	}
	g.mu.Lock()
	return true
}

func (g *Gateway) restore(held bool) {
	if held {
		g.mu.Unlock()
	}
}

// EnterInterrupt marks the gateway as running inside interrupt context for
// the duration of fn: nested lock_* calls made by fn skip their own bracket,
// matching k_reenter's role in the original lock_notify/lock_send pair.
func (g *Gateway) EnterInterrupt(fn func()) {
	held := g.disable()
	prev := g.reenter.Load()
	g.reenter.Store(prev + 1)
	defer func() {
		g.reenter.Store(prev)
		g.restore(held)
	}()
	fn()
}

// LockSend is the task-callable gateway onto mini_send.
func (g *Gateway) LockSend(caller *kernel.Process, dst kernel.ProcNr, msg *kernel.Message, flags kernel.SendFlags) kernel.Status {
	held := g.disable()
	defer g.restore(held)
	return g.sys.Send(caller, dst, msg, flags)
}

// LockAlert is the task-callable gateway onto mini_alert.
func (g *Gateway) LockAlert(caller *kernel.Process, dst kernel.ProcNr) kernel.Status {
	held := g.disable()
	defer g.restore(held)
	return g.sys.SendAlert(caller, dst)
}

// LockReceive is the task-callable gateway onto mini_receive.
func (g *Gateway) LockReceive(caller *kernel.Process, src kernel.ProcNr, msg *kernel.Message, flags kernel.SendFlags) kernel.Status {
	held := g.disable()
	defer g.restore(held)
	return g.sys.Receive(caller, src, msg, flags)
}

// LockNotify is the task-callable gateway onto mini_notify.
func (g *Gateway) LockNotify(caller *kernel.Process, dst kernel.ProcNr, msg *kernel.Message) kernel.Status {
	held := g.disable()
	defer g.restore(held)
	return g.sys.SendNotify(caller, dst, msg)
}

// LockReady is the task-callable gateway onto ready.
func (g *Gateway) LockReady(rp *kernel.Process) {
	held := g.disable()
	defer g.restore(held)
	g.sys.Ready(rp)
}

// LockUnready is the task-callable gateway onto unready.
func (g *Gateway) LockUnready(rp *kernel.Process) {
	held := g.disable()
	defer g.restore(held)
	g.sys.Unready(rp)
}

// LockSched is the task-callable gateway onto sched.
func (g *Gateway) LockSched(rp *kernel.Process) {
	held := g.disable()
	defer g.restore(held)
	g.sys.Sched(rp)
}
