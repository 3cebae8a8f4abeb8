package shop

import (
	"context"
	"fmt"

	"github.com/kbukum/iockit/errors"
	"github.com/kbukum/iockit/validation"
)

// MemberService handles member sign-up and lookup.
type MemberService struct {
	repo MemberRepository
}

// NewMemberService creates a MemberService over repo.
func NewMemberService(repo MemberRepository) *MemberService {
	return &MemberService{repo: repo}
}

// Join validates and stores m.
func (s *MemberService) Join(ctx context.Context, m Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return s.repo.Save(ctx, m)
}

// FindMember returns the member with id.
func (s *MemberService) FindMember(ctx context.Context, id int64) (Member, error) {
	return s.repo.FindByID(ctx, id)
}

// Repository returns the repository the service was built with.
func (s *MemberService) Repository() MemberRepository { return s.repo }

// OrderService prices orders for members.
type OrderService struct {
	repo   MemberRepository
	policy DiscountPolicy
}

// NewOrderService creates an OrderService.
func NewOrderService(repo MemberRepository, policy DiscountPolicy) *OrderService {
	return &OrderService{repo: repo, policy: policy}
}

// CreateOrder prices itemName for the member with memberID.
func (s *OrderService) CreateOrder(ctx context.Context, memberID int64, itemName string, itemPrice int) (Order, error) {
	v := validation.New().
		Required("item_name", itemName).
		Custom(itemPrice >= 0, "item_price", "must not be negative")
	if appErr := v.Validate(); appErr != nil {
		return Order{}, appErr
	}

	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		if errors.HasCode(err, ErrCodeMemberNotFound) {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("loading member %d: %w", memberID, err)
	}
	return Order{
		MemberID:      memberID,
		ItemName:      itemName,
		ItemPrice:     itemPrice,
		DiscountPrice: s.policy.Discount(member, itemPrice),
	}, nil
}

// Repository returns the repository the service was built with.
func (s *OrderService) Repository() MemberRepository { return s.repo }

// Policy returns the discount policy in use.
func (s *OrderService) Policy() DiscountPolicy { return s.policy }
