// Package llvm lowers Type Model signatures to LLVM IR with github.com/llir/llvm.
//
// It provides the natural IR mapping of every type, an IR builder that
// drives the sysv value transcoder, and the caller/callee harness the CLI
// prints for each C prototype.
package llvm
