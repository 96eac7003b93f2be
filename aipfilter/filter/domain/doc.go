// Package filter compiles AIP-160 filter expressions into backend-native
// predicates.
//
// The compiler walks a syntax tree bottom-up. Literals are resolved into
// TypedValue, every restriction becomes one Adapter call and the logical
// structure is folded through Adapter.And, Adapter.Or and Adapter.Not in
// source order. Backends implement Adapter[P] for their predicate type P.
package filter
