// Package wallet holds the balance ledger the settlement engine credits and
// debits. Escrow holds debit the buyer, releases credit seller, agent and the
// platform's reserved account, refunds credit the buyer back. Balances never
// go negative; concurrent debits are additionally guarded at the storage
// layer.
package wallet
