package kernel

// sched is called when rp has used up its current quantum. It may decay
// rp's priority, rotates rp to the tail of its (possibly new) queue if it
// was still at the head, refills its tick budget, and recomputes the
// runnable winner.
func (s *System) sched(rp *Process) {
	if rp.Priv == nil || rp.Priv.Flags&FlagPreemptible == 0 {
		return
	}

	rp.FullQuantums--
	if rp.FullQuantums <= 0 {
		if rp.Priority+1 < IdleQ {
			q := rp.Priority + 1
			s.unready(rp)
			rp.Priority = q
			s.ready(rp)
		}
		rp.FullQuantums = QUANTUMS(rp.Priority)
	}

	q := rp.Priority
	if s.readyHead[q] == rp.Nr {
		tail := s.proc(s.readyTail[q])
		tail.NextReady = s.readyHead[q]
		s.readyTail[q] = s.readyHead[q]
		s.readyHead[q] = s.proc(s.readyHead[q]).NextReady
		s.proc(s.readyTail[q]).NextReady = NoProc
	}

	rp.SchedTicks = rp.QuantumSize
	s.pickProc()
}
