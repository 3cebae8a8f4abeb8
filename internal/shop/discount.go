package shop

// DiscountPolicy decides how much a member saves on an item.
type DiscountPolicy interface {
	Discount(m Member, price int) int
}

// FixDiscountPolicy takes a fixed amount off for VIP members.
type FixDiscountPolicy struct {
	Amount int
}

// NewFixDiscountPolicy returns the policy with the default 1000 discount.
func NewFixDiscountPolicy() *FixDiscountPolicy {
	return &FixDiscountPolicy{Amount: 1000}
}

// Discount returns Amount for VIP members.
func (p *FixDiscountPolicy) Discount(m Member, _ int) int {
	if m.Grade != GradeVIP {
		return 0
	}
	return p.Amount
}

// RateDiscountPolicy takes a percentage off for VIP members.
type RateDiscountPolicy struct {
	Percent int
}

// NewRateDiscountPolicy returns the policy with the default 10% discount.
func NewRateDiscountPolicy() *RateDiscountPolicy {
	return &RateDiscountPolicy{Percent: 10}
}

// Discount returns Percent of price for VIP members.
func (p *RateDiscountPolicy) Discount(m Member, price int) int {
	if m.Grade != GradeVIP {
		return 0
	}
	return price * p.Percent / 100
}
