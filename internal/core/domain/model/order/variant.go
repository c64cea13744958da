package order

import (
	"fmt"
	"time"

	"settlement/internal/pkg/errs"
)

// Variant selects the marketplace flow an order settles under. One engine
// serves every variant; only the Policy knobs differ between them.
type Variant int

const (
	// VariantUnknown represents an invalid or undefined variant.
	VariantUnknown Variant = iota

	// VariantStandard is the regular marketplace flow: escrow is funded
	// from the buyer's wallet and the platform pays the delivery agent.
	VariantStandard

	// VariantLocalMarket is the local-market flow: the buyer pays the
	// seller out of band, an admin approves the payment proof, and the
	// agent fee is carved out of the seller's proceeds.
	VariantLocalMarket

	// VariantGrocery is the grocery flow. It settles like the standard
	// flow and exists as its own tag for pricing and reporting.
	VariantGrocery
)

// FundingMode tells how escrow for a variant is funded.
type FundingMode int

const (
	// FundingWallet debits the buyer's wallet when escrow is held.
	FundingWallet FundingMode = iota

	// FundingProof records the hold against an out-of-band payment proof
	// approved by an admin; no wallet debit happens.
	FundingProof
)

// DefaultGracePeriod is the release wait applied after delivery when the
// deployment does not override it.
const DefaultGracePeriod = 5 * time.Minute

// Policy bundles the per-variant knobs of the settlement engine.
type Policy struct {
	funding             FundingMode
	gracePeriod         time.Duration
	agentPaidFromSeller bool
}

// Funding returns how escrow is funded for the variant.
func (p Policy) Funding() FundingMode {
	return p.funding
}

// GracePeriod returns the wait between delivery and release eligibility.
func (p Policy) GracePeriod() time.Duration {
	return p.gracePeriod
}

// AgentPaidFromSeller reports whether the delivery fee is carved out of the
// seller's proceeds at release instead of being paid on top by the platform.
func (p Policy) AgentPaidFromSeller() bool {
	return p.agentPaidFromSeller
}

// getVariantStrings returns a map of Variant values to their string
// representations. All variants are included for string conversion.
func getVariantStrings() map[Variant]string {
	return map[Variant]string{
		VariantUnknown:     "unknown",
		VariantStandard:    "standard",
		VariantLocalMarket: "local_market",
		VariantGrocery:     "grocery",
	}
}

// getValidVariantStrings returns a map of only valid Variant values.
func getValidVariantStrings() map[Variant]string {
	//nolint:exhaustive // VariantUnknown is intentionally excluded as it's invalid
	return map[Variant]string{
		VariantStandard:    "standard",
		VariantLocalMarket: "local_market",
		VariantGrocery:     "grocery",
	}
}

// Validate checks if the Variant value is valid.
func (v Variant) Validate() error {
	if _, ok := getValidVariantStrings()[v]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("variant is invalid", fmt.Errorf("%d is not a valid variant", v))
	}
	return nil
}

// String returns the snake_case name of the variant.
func (v Variant) String() string {
	if str, ok := getVariantStrings()[v]; ok {
		return str
	}
	return "unknown"
}

// VariantFromString parses the persisted representation back into a Variant.
func VariantFromString(value string) (Variant, error) {
	for variant, str := range getValidVariantStrings() {
		if str == value {
			return variant, nil
		}
	}
	return VariantUnknown, errs.NewValueIsInvalidErrorWithCause(
		"variant is invalid",
		fmt.Errorf("%q is not a valid variant", value),
	)
}

// Policy returns the settlement knobs of the variant. Variants other than
// local_market settle under the standard policy.
func (v Variant) Policy() Policy {
	if v == VariantLocalMarket {
		return Policy{
			funding:             FundingProof,
			gracePeriod:         DefaultGracePeriod,
			agentPaidFromSeller: true,
		}
	}

	return Policy{
		funding:             FundingWallet,
		gracePeriod:         DefaultGracePeriod,
		agentPaidFromSeller: false,
	}
}
