package kernel

// NRSchedQueues is the number of multilevel ready queues. Queue 0 is highest
// priority; IdleQ is the lowest and always holds the never-blocking idle
// process.
const NRSchedQueues = 16

// IdleQ is the lowest-priority queue index.
const IdleQ Priority = NRSchedQueues - 1

// QUANTUMS returns the number of full quantums a process at the given
// priority may run before sched decays it one level. Higher (numerically
// lower) priorities get a longer leash, so a strictly higher-priority process
// is never starved by round-robin rotation within a single queue: it simply
// keeps its queue's head position across more ticks before being pushed
// down to compete with the level below it.
func QUANTUMS(p Priority) int {
	n := int(IdleQ) - int(p)
	if n < 1 {
		n = 1
	}
	return n
}

// System is one microkernel instance: the process table, the privilege
// records, the multilevel ready queues, and the notification pool.
//
// Exactly one control flow mutates a System at a time; nothing here is safe
// for concurrent use without the lock gateways in package kernel/lock.
type System struct {
	procs []Process

	readyHead [NRSchedQueues]ProcNr
	readyTail [NRSchedQueues]ProcNr

	// NextPtr names the process pick_proc selected to run next; BillPtr
	// names the last billable process picked, for time accounting.
	NextPtr ProcNr
	BillPtr ProcNr
	// ProcPtr is the currently running process, i.e. the caller of the
	// in-progress system call.
	ProcPtr ProcNr

	pool *notifyPool

	// hardware and system back the HARDWARE/SYSTEM pseudo-sources: they
	// are not process-table slots (negative ProcNrs can't index s.procs),
	// but mini_alert and mini_notify still need a *Process/Priv pair to
	// read a SysID and a pending word from when the kernel itself is the
	// caller, so proc() resolves the two sentinels onto these instead.
	hardware Process
	system   Process

	// uptime is the kernel tick counter consumed by notification
	// timestamps and by the quantum-decrement hook.
	uptime uint64

	// DebugSchedCheck, when true, makes ready/unready verify queue
	// consistency and panic on a violation.
	DebugSchedCheck bool
}

// Uptime returns the kernel's tick counter.
func (s *System) Uptime() uint64 { return s.uptime }

// Tick advances the kernel clock and, if the running process has exhausted
// its current quantum, calls sched on it. Establishing the timer that
// drives this call is the bootstrap/timer subsystem's job, out of scope
// here.
func (s *System) Tick() {
	s.uptime++
	rp := s.proc(s.ProcPtr)
	if rp == nil || rp.IsEmpty() {
		return
	}
	rp.SchedTicks--
	if rp.SchedTicks <= 0 {
		s.sched(rp)
	}
}

// idleProcNr is the reserved slot IDLE occupies: never empty, always at
// IdleQ, and never blocked, so pick_proc always has a winner. NewSystem
// requires at least one slot to install it in.
const idleProcNr ProcNr = 0

// NewSystem allocates a kernel instance with n process slots and installs
// IDLE at idleProcNr, priority IdleQ, permanently runnable: nothing in this
// package ever sets IDLE's RTS bits or touches its Priv, so it can never
// block and never decays (sched bails out on a nil Priv before it would
// rotate or demote it).
func NewSystem(n int) *System {
	if n < 1 {
		n = 1
	}
	s := &System{
		procs:    make([]Process, n),
		pool:     newNotifyPool(),
		hardware: Process{Nr: Hardware, Priv: &Priv{SysID: HardwareSysID}},
		system:   Process{Nr: SystemSrc, Priv: &Priv{SysID: SystemSysID}},
	}
	for q := range s.readyHead {
		s.readyHead[q] = NoProc
		s.readyTail[q] = NoProc
	}
	s.NextPtr, s.BillPtr, s.ProcPtr = NoProc, NoProc, NoProc

	for i := range s.procs {
		s.procs[i] = Process{Nr: ProcNr(i), empty: true, NextReady: NoProc, CallerQ: NoProc, QLink: NoProc, NtfQ: notifyNone}
	}

	idle := &s.procs[idleProcNr]
	*idle = Process{
		Nr:          idleProcNr,
		Priority:    IdleQ,
		MaxPriority: IdleQ,
		GetFrom:     NoProc,
		SendTo:      NoProc,
		CallerQ:     NoProc,
		QLink:       NoProc,
		NextReady:   NoProc,
		NtfQ:        notifyNone,
	}
	s.ready(idle)
	return s
}

// AddProcess installs a process at nr with the given priority, privilege
// record and valid message-buffer region, and marks it runnable (ready).
// nr must not be idleProcNr: slot 0 is reserved for IDLE.
//
// AddProcess is a test/bootstrap helper standing in for the process
// manager's slot-creation path, which lives outside this package.
func (s *System) AddProcess(nr ProcNr, prio Priority, priv *Priv, mem MemRegion) *Process {
	p := s.proc(nr)
	*p = Process{
		Nr:          nr,
		Priority:    prio,
		MaxPriority: prio,
		QuantumSize: 1,
		GetFrom:     NoProc,
		SendTo:      NoProc,
		CallerQ:     NoProc,
		QLink:       NoProc,
		NextReady:   NoProc,
		NtfQ:        notifyNone,
		Priv:        priv,
		Mem:         mem,
	}
	p.FullQuantums = QUANTUMS(prio)
	s.ready(p)
	return p
}

func (s *System) proc(nr ProcNr) *Process {
	switch nr {
	case Hardware:
		return &s.hardware
	case SystemSrc:
		return &s.system
	}
	if nr < 0 || int(nr) >= len(s.procs) {
		return nil
	}
	return &s.procs[nr]
}

// Process exposes a table slot for inspection. It returns nil for an
// out-of-range or sentinel ProcNr.
func (s *System) Process(nr ProcNr) *Process { return s.proc(nr) }

func (s *System) isEmptyN(nr ProcNr) bool {
	p := s.proc(nr)
	return p == nil || p.IsEmpty()
}

// isOkProcN reports whether nr names a legal process slot (in range, or one
// of the HARDWARE/SYSTEM pseudo-sources). It does not care whether the slot
// is currently occupied: liveness is a separate check (isEmptyN), made only
// where the call actually transports a message to the peer.
func (s *System) isOkProcN(nr ProcNr) bool {
	return s.proc(nr) != nil
}

