package sysv

// Classification holds the classes of the low (bytes [0,8)) and high
// (bytes [8,16)) eightbytes. Values wider than 16 bytes that still classify
// fit in these two slots; anything passed in memory has both set to Memory.
type Classification struct {
	Low  ArgClass
	High ArgClass
}

// MemoryClassification is the result for values passed through memory.
func MemoryClassification() Classification {
	return Classification{Low: Memory, High: Memory}
}

// IsMemory reports whether the value is passed in memory.
func (c Classification) IsMemory() bool {
	return c.Low == Memory
}

func (c Classification) String() string {
	return "{" + c.Low.String() + ", " + c.High.String() + "}"
}

// AddField merges class into the eightbyte containing offset.
//
// Once a slot turns to Memory the other follows and later fields are ignored.
// Fields never straddle the 8-byte boundary here: unaligned types are
// rejected before classification, and everything wide enough to cross
// (doubles in complex pairs, long doubles, aggregates) contributes per part.
func (c *Classification) AddField(offset uint64, class ArgClass) {
	if c.IsMemory() {
		return
	}

	slot, other := &c.Low, &c.High
	if offset >= 8 {
		slot, other = &c.High, &c.Low
	}

	merged := Merge(*slot, class)
	if merged == *slot {
		return
	}
	*slot = merged
	if merged == Memory {
		*other = Memory
	}
}
