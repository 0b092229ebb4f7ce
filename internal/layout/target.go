package layout

// Target describes the ABI target triple and its pointer properties.
//
// Only the x86-64 System V target is implemented.
type Target struct {
	Triple   string // e.g. "x86_64-unknown-linux-gnu"
	PtrSize  uint64 // bytes
	PtrAlign uint64 // bytes
}

// X86_64SysV returns the x86-64 System V target.
func X86_64SysV() Target {
	return Target{
		Triple:   "x86_64-unknown-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}
