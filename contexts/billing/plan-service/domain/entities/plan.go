package entities

import "strings"

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// DefaultFreeBoardLimit is the number of boards a free account may own.
const DefaultFreeBoardLimit = 3

// ParsePlan maps a stored plan name onto a known plan. Anything unknown,
// including an empty value, is the free plan.
func ParsePlan(raw string) Plan {
	if Plan(strings.ToLower(strings.TrimSpace(raw))) == PlanPro {
		return PlanPro
	}
	return PlanFree
}

func (p Plan) IsPro() bool {
	return p == PlanPro
}

// CanCreateBoard reports whether an owner with count boards may add another.
func CanCreateBoard(isPro bool, count int, limit int) bool {
	if limit <= 0 {
		limit = DefaultFreeBoardLimit
	}
	return isPro || count < limit
}

type Entitlements struct {
	Plan           Plan
	BoardCount     int
	BoardLimit     int
	CanCreateBoard bool
}

func NewEntitlements(plan Plan, boardCount int, limit int) Entitlements {
	if limit <= 0 {
		limit = DefaultFreeBoardLimit
	}
	return Entitlements{
		Plan:           plan,
		BoardCount:     boardCount,
		BoardLimit:     limit,
		CanCreateBoard: CanCreateBoard(plan.IsPro(), boardCount, limit),
	}
}

// Checkout line item sold by the upgrade flow.
const (
	ProProductName        = "Fidbaq Pro Plan"
	ProProductDescription = "Unlimited boards and premium features"
	ProPriceCents         = int64(1900)
	ProCurrency           = "usd"
)

const (
	WebhookCheckoutCompleted   = "checkout.session.completed"
	WebhookPaymentIntentFailed = "payment_intent.payment_failed"
)
