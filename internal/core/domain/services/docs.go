// Package services provides domain services that work across aggregates of
// the settlement engine.
//
// The package includes:
//   - CommissionCalculator: pricing math at order creation (display markup,
//     commission spread, clamped delivery fee)
//   - SettlementSplitter: payout planning when a held escrow is released or
//     refunded
//
// Both services are pure: they take aggregates and tariff values in and
// return money plans out, leaving persistence and event publishing to the
// application layer.
package services
