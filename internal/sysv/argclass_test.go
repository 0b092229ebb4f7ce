package sysv

import "testing"

func TestMergeIdentityAndAbsorption(t *testing.T) {
	for _, c := range AllClasses {
		if got := Merge(NoClass, c); got != c {
			t.Fatalf("Merge(NO_CLASS, %s): want %s, got %s", c, c, got)
		}
		if got := Merge(c, NoClass); got != c {
			t.Fatalf("Merge(%s, NO_CLASS): want %s, got %s", c, c, got)
		}
		if got := Merge(Memory, c); got != Memory {
			t.Fatalf("Merge(MEMORY, %s): want MEMORY, got %s", c, got)
		}
		if got := Merge(c, c); got != c {
			t.Fatalf("Merge(%s, %s) is not idempotent: got %s", c, c, got)
		}
	}
}

func TestMergeCommutative(t *testing.T) {
	for _, a := range AllClasses {
		for _, b := range AllClasses {
			if Merge(a, b) != Merge(b, a) {
				t.Fatalf("Merge(%s, %s)=%s but Merge(%s, %s)=%s", a, b, Merge(a, b), b, a, Merge(b, a))
			}
		}
	}
}

func TestMergeAssociative(t *testing.T) {
	for _, a := range AllClasses {
		for _, b := range AllClasses {
			for _, c := range AllClasses {
				left := Merge(Merge(a, b), c)
				right := Merge(a, Merge(b, c))
				if left != right {
					t.Fatalf("(%s+%s)+%s=%s but %s+(%s+%s)=%s", a, b, c, left, a, b, c, right)
				}
			}
		}
	}
}

func TestMergeTable(t *testing.T) {
	cases := []struct {
		a, b, want ArgClass
	}{
		{Integer, SSE, Integer},
		{SSE, SSEUp, SSE},
		{X87, Integer, Integer},
		{X87, SSE, Memory},
		{X87Up, SSE, Memory},
		{ComplexX87, SSEUp, Memory},
		{X87, X87Up, Memory},
	}
	for _, tc := range cases {
		if got := Merge(tc.a, tc.b); got != tc.want {
			t.Fatalf("Merge(%s, %s): want %s, got %s", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestAddFieldMemoryForcesBothSlots(t *testing.T) {
	var cls Classification
	cls.AddField(0, Integer)
	cls.AddField(8, X87Up)
	cls.AddField(12, SSE)
	if cls != MemoryClassification() {
		t.Fatalf("want %s, got %s", MemoryClassification(), cls)
	}
	cls.AddField(0, Integer)
	if !cls.IsMemory() || cls.High != Memory {
		t.Fatalf("memory classification changed after another field: %s", cls)
	}
}

func TestAddFieldSlotByOffset(t *testing.T) {
	var cls Classification
	cls.AddField(4, SSE)
	cls.AddField(8, Integer)
	cls.AddField(15, Integer)
	if cls.Low != SSE || cls.High != Integer {
		t.Fatalf("want {SSE, INTEGER}, got %s", cls)
	}
	if cls.String() != "{SSE, INTEGER}" {
		t.Fatalf("unexpected rendering %q", cls.String())
	}
}
