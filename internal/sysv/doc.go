// Package sysv decides how values cross a function boundary under the
// x86-64 System V calling convention.
//
// A type is classified into two eightbyte slots (bytes [0,8) and [8,16)).
// Each slot holds an ArgClass, combined field by field with Merge. The
// classification then resolves to a canonical LLVM IR type that a lowered
// signature carries instead of the natural one, or to nil when the natural
// representation is already correct (scalars, memory-passed values, and a
// few compatibility carve-outs).
//
// EncodeValues and DecodeValues move a value between its natural and its
// canonical representation by copying its bytes through two stack slots. They
// are written against the Builder interface so any code generator can drive
// them.
//
// Nothing here is safe for concurrent use: an ABI owns mutable query caches.
// Use one ABI per goroutine, each over its own interner.
package sysv
