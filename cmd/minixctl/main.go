// Command minixctl drives a small in-process kernel.System through a named
// scenario and reports what happened. There is no window or device layer
// here: minixctl only exists to exercise the message-passing and
// scheduling core from the outside.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Kihui/minix/internal/buildinfo"
	"github.com/Kihui/minix/kernel"
	"github.com/Kihui/minix/kernel/lock"
	"github.com/Kihui/minix/klog"
)

func main() {
	scenario := flag.String("scenario", "all", "Scenario to run: rendezvous, fifo, alert, notify, deadlock, quantum, all.")
	ticks := flag.Uint64("ticks", 32, "Ticks to drive in the quantum scenario.")
	showVersion := flag.Bool("version", false, "Print build version and exit.")
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.Short())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scenarios := map[string]func(context.Context, uint64) string{
		"rendezvous": func(context.Context, uint64) string { return runRendezvous() },
		"fifo":       func(context.Context, uint64) string { return runFIFOQueue() },
		"alert":      func(context.Context, uint64) string { return runAlertCoalescing() },
		"notify":     func(context.Context, uint64) string { return runNotifyCoalescing() },
		"deadlock":   func(context.Context, uint64) string { return runDeadlockDetect() },
		"quantum":    runQuantumDemotion,
	}

	if *scenario == "all" {
		for _, name := range []string{"rendezvous", "fifo", "alert", "notify", "deadlock", "quantum"} {
			fmt.Printf("[%s] %s\n", name, scenarios[name](ctx, *ticks))
		}
		return
	}

	run, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *scenario)
		os.Exit(1)
	}
	fmt.Printf("[%s] %s\n", *scenario, run(ctx, *ticks))
}

func newHarness(n int) (*kernel.System, *lock.Gateway) {
	sys := kernel.NewSystem(n)
	return sys, lock.NewGateway(sys)
}

func spawn(sys *kernel.System, nr kernel.ProcNr, prio kernel.Priority, sysID kernel.SysID) *kernel.Process {
	mem := kernel.MemRegion{Lo: 0, Hi: 1 << 20}
	priv := kernel.NewPriv(sysID, kernel.FlagPreemptible, ^uint32(0), 16)
	return sys.AddProcess(nr, prio, priv, mem)
}

func runRendezvous() string {
	sys, gw := newHarness(4)
	receiver := spawn(sys, 1, 3, 1)
	sender := spawn(sys, 2, 3, 2)

	var inbox kernel.Message
	if st := gw.LockReceive(receiver, kernel.AnyProc, &inbox, kernel.NonBlocking); st != kernel.ENotReady {
		return fmt.Sprintf("FAIL: expected ENotReady before any sender, got %s", st)
	}

	// A blocking RECEIVE with nothing pending only marks the process
	// RTS_RECEIVING; the caller is unblocked later when a send delivers
	// straight into this same buffer.
	if st := gw.LockReceive(receiver, kernel.AnyProc, &inbox, 0); st != kernel.OK {
		return fmt.Sprintf("FAIL: blocking receive returned %s", st)
	}

	var msg kernel.Message
	klog.EncodeLine(&msg, "hello")
	if st := gw.LockSend(sender, receiver.Nr, &msg, 0); st != kernel.OK {
		return fmt.Sprintf("FAIL: send returned %s", st)
	}
	return fmt.Sprintf("OK: rendezvous delivered %q", klog.DecodeLine(&inbox))
}

func runFIFOQueue() string {
	sys, gw := newHarness(6)
	receiver := spawn(sys, 1, 3, 1)
	s1 := spawn(sys, 2, 3, 2)
	s2 := spawn(sys, 3, 3, 3)
	s3 := spawn(sys, 4, 3, 4)

	var m1, m2, m3 kernel.Message
	for _, pair := range []struct {
		p   *kernel.Process
		msg *kernel.Message
	}{{s1, &m1}, {s2, &m2}, {s3, &m3}} {
		if st := gw.LockSend(pair.p, receiver.Nr, pair.msg, 0); st != kernel.OK {
			return fmt.Sprintf("FAIL: queueing send returned %s", st)
		}
	}

	order := []kernel.ProcNr{}
	for i := 0; i < 3; i++ {
		var out kernel.Message
		if st := gw.LockReceive(receiver, kernel.AnyProc, &out, 0); st != kernel.OK {
			return fmt.Sprintf("FAIL: drain receive returned %s", st)
		}
		order = append(order, out.Source)
	}
	return fmt.Sprintf("OK: delivery order %v (want [2 3 4])", order)
}

func runAlertCoalescing() string {
	sys, gw := newHarness(4)
	receiver := spawn(sys, 1, 3, 1)
	caller := spawn(sys, 2, 3, 2)

	gw.LockAlert(caller, receiver.Nr)
	gw.LockAlert(caller, receiver.Nr)
	gw.LockAlert(caller, receiver.Nr)

	var out kernel.Message
	st := gw.LockReceive(receiver, kernel.AnyProc, &out, 0)
	return fmt.Sprintf("status=%s source=%s (three alerts coalesce into one pending bit)", st, out.Source)
}

func runNotifyCoalescing() string {
	sys, gw := newHarness(4)
	receiver := spawn(sys, 1, 3, 1)
	caller := spawn(sys, 2, 3, 2)

	var n1, n2 kernel.Message
	kernel.EncodeNotify(&n1, caller.Nr, 7, 0, 111, 0)
	kernel.EncodeNotify(&n2, caller.Nr, 7, 0, 222, 0)
	gw.LockNotify(caller, receiver.Nr, &n1)
	gw.LockNotify(caller, receiver.Nr, &n2)

	var out kernel.Message
	st := gw.LockReceive(receiver, kernel.AnyProc, &out, 0)
	_, arg, _ := kernel.DecodeNotify(&out)
	return fmt.Sprintf("status=%s arg=%d (want 222, second notify overwrites the first)", st, arg)
}

func runDeadlockDetect() string {
	sys, gw := newHarness(4)
	a := spawn(sys, 1, 3, 1)
	b := spawn(sys, 2, 3, 2)

	var msgA kernel.Message
	if st := gw.LockSend(a, b.Nr, &msgA, 0); st != kernel.OK {
		return fmt.Sprintf("FAIL: setup send returned %s", st)
	}

	var msgB kernel.Message
	st := gw.LockSend(b, a.Nr, &msgB, 0)
	return fmt.Sprintf("status=%s (want %s: b waits on a, a waits on b)", st, kernel.ELocked)
}

func runQuantumDemotion(ctx context.Context, ticks uint64) string {
	sys, _ := newHarness(4)
	proc := spawn(sys, 1, 0, 1)
	startPrio := proc.Priority

	for i := uint64(0); i < ticks; i++ {
		select {
		case <-ctx.Done():
			return "interrupted"
		default:
		}
		sys.ProcPtr = proc.Nr
		sys.Tick()
	}
	return fmt.Sprintf("priority %d -> %d after %d ticks", startPrio, proc.Priority, ticks)
}
