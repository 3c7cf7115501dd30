package kernel

import "unsafe"

// ClickShift mirrors MINIX's virtual-click granularity: address ranges are
// compared after shifting by this many bits, so a buffer's final byte is
// allowed to share a click with region's last mapped click.
const ClickShift = 10

// MemRegion is a process's data/stack-gap virtual range, [Lo, Hi), checked
// against message buffer pointers by the range check in SysCall. It models
// the caller's p_memmap[D]..p_memmap[S] span without modeling a full
// virtual memory map.
type MemRegion struct {
	Lo, Hi uintptr
}

// Contains reports whether [ptr, ptr+MessSize) lies inside the region at
// click granularity.
func (m MemRegion) Contains(ptr uintptr) bool {
	lo := m.Lo >> ClickShift
	hi := m.Hi >> ClickShift
	vlo := ptr >> ClickShift
	vhi := (ptr + MessSize - 1) >> ClickShift
	return vlo >= lo && vlo <= vhi && vhi < hi
}

// bufferPtr returns msg's address as a uintptr for the range check. It does
// not dereference or retain the pointer.
func bufferPtr(msg *Message) uintptr {
	return uintptr(unsafe.Pointer(msg))
}
