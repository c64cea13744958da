// Package escrow provides the domain model for holding and settling order
// funds. An Escrow freezes the buyer's payment when an order is confirmed
// and ends exactly once: released to seller, agent and platform, or refunded
// to the buyer. A Settlement is the validated three-way disbursement plan a
// release executes.
//
// The one-shot rule is enforced twice: by the aggregate's status checks and
// by the repository's status-guarded conditional update, so concurrent
// release and refund attempts cannot both succeed.
package escrow
