package kernel

// Ready, Unready, Sched, Send, SendAlert, Receive and SendNotify are the public, single-call-site
// entry points the kernel/lock gateways bracket with interrupt-disable when
// called from task context. SysCall calls the unexported primitives
// directly, since a trap is already the single control flow holding the
// kernel.

// Ready is the exported entry point for ready(rp).
func (s *System) Ready(rp *Process) { s.ready(rp) }

// Unready is the exported entry point for unready(rp).
func (s *System) Unready(rp *Process) { s.unready(rp) }

// Sched is the exported entry point for sched(rp).
func (s *System) Sched(rp *Process) { s.sched(rp) }

// Send is the exported entry point for mini_send.
func (s *System) Send(caller *Process, dst ProcNr, msg *Message, flags SendFlags) Status {
	return s.miniSend(caller, dst, msg, flags)
}

// SendAlert is the exported entry point for mini_alert.
func (s *System) SendAlert(caller *Process, dst ProcNr) Status {
	return s.miniAlert(caller, dst)
}

// Receive is the exported entry point for mini_receive.
func (s *System) Receive(caller *Process, src ProcNr, msg *Message, flags SendFlags) Status {
	return s.miniReceive(caller, src, msg, flags)
}

// SendNotify is the exported entry point for mini_notify.
func (s *System) SendNotify(caller *Process, dst ProcNr, msg *Message) Status {
	return s.miniNotify(caller, dst, msg)
}
