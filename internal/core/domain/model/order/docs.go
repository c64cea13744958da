// Package order provides domain entities and business logic for order
// lifecycle management in the settlement engine. It implements the Order
// aggregate root with its lines, the status state machine and the
// per-variant settlement policies.
//
// The package includes:
//   - Order: The aggregate root managing identity, parties, totals and the
//     lifecycle state
//   - Line: A priced item capturing base price, display price and the
//     commission rate at checkout time
//   - Status: A state machine whose edge table carries role permissions and
//     the settlement effect of every transition
//   - Variant and Policy: The marketplace flows and their settlement knobs
//
// Key business rules:
//   - Orders must have valid buyer, seller and at least one line, all priced
//     in one currency
//   - The display total equals base plus commission plus charges, within one
//     minor unit
//   - Status moves only along the lifecycle edge table, and buyer, seller
//     and agent actors act only on their own orders
//   - Exactly one agent can claim an order; delivery starts the grace period
//     that gates fund release
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
