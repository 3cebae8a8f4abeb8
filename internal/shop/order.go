package shop

import "fmt"

// Order is a priced purchase by a member.
type Order struct {
	MemberID      int64
	ItemName      string
	ItemPrice     int
	DiscountPrice int
}

// CalculatePrice returns the price after discount.
func (o Order) CalculatePrice() int {
	return o.ItemPrice - o.DiscountPrice
}

func (o Order) String() string {
	return fmt.Sprintf("Order{memberID=%d, item=%s, price=%d, discount=%d}",
		o.MemberID, o.ItemName, o.ItemPrice, o.DiscountPrice)
}
