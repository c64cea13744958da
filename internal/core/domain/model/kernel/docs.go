// Package kernel holds the value objects every aggregate in the settlement
// engine is built from.
//
//   - UUID identifies orders, escrows, release requests and wallet accounts.
//   - Money is an amount in minor units bound to its Currency; amounts of
//     different currencies never mix.
//   - Actor pairs a party's identifier with its Role; lifecycle transitions
//     and workflow decisions are authorized against it.
//
// All types are immutable value objects. Their zero values are invalid and
// fail Validate, so an aggregate restored from storage or built by a handler
// cannot silently carry an unconstructed field.
package kernel
