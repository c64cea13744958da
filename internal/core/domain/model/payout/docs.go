// Package payout provides the release-request workflow: the formal way
// parties ask for a delivered order's escrowed funds and admins decide on
// it. A request is pending until approved or rejected; rejections require an
// explanation and leave the escrow untouched, approvals trigger the release
// settlement. At most one pending request exists per order.
package payout
