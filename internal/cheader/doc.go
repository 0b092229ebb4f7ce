// Package cheader reads C headers with modernc.org/cc/v4 and turns the
// records and prototypes declared in them into Type Model values.
//
// Only what the Type Model can express is accepted: unions, bit-fields,
// flexible array members and vector types are reported as errors at the
// declaration that uses them.
package cheader
