package shop

import (
	"context"

	"github.com/kbukum/iockit/config"
	"github.com/kbukum/iockit/di"
)

// ComponentNames lists the definition names of the shop.
type ComponentNames struct {
	MemberRepository   string
	DiscountPolicy     string
	RateDiscountPolicy string
	MemberService      string
	OrderService       string
}

// Components contains the shop definition names.
var Components = ComponentNames{
	MemberRepository:   "memberRepository",
	DiscountPolicy:     "discountPolicy",
	RateDiscountPolicy: "rateDiscountPolicy",
	MemberService:      "memberService",
	OrderService:       "orderService",
}

// RoleDiscountPolicy is carried by every discount policy definition.
const RoleDiscountPolicy = "discountPolicy"

// Catalog factory keys.
const (
	FactoryMemoryMemberRepository = "memory-member-repository"
	FactoryFixDiscountPolicy      = "fix-discount-policy"
	FactoryRateDiscountPolicy     = "rate-discount-policy"
	FactoryMemberService          = "member-service"
	FactoryOrderService           = "order-service"
)

func newMemberRepository(context.Context, []any) (MemberRepository, error) {
	return NewMemoryMemberRepository(), nil
}

func newFixDiscountPolicy(context.Context, []any) (DiscountPolicy, error) {
	return NewFixDiscountPolicy(), nil
}

func newRateDiscountPolicy(context.Context, []any) (DiscountPolicy, error) {
	return NewRateDiscountPolicy(), nil
}

// newMemberService expects deps: [MemberRepository].
func newMemberService(_ context.Context, deps []any) (*MemberService, error) {
	repo, err := di.Dep[MemberRepository](deps, 0)
	if err != nil {
		return nil, err
	}
	return NewMemberService(repo), nil
}

// newOrderService expects deps: [MemberRepository, DiscountPolicy].
func newOrderService(_ context.Context, deps []any) (*OrderService, error) {
	repo, err := di.Dep[MemberRepository](deps, 0)
	if err != nil {
		return nil, err
	}
	policy, err := di.Dep[DiscountPolicy](deps, 1)
	if err != nil {
		return nil, err
	}
	return NewOrderService(repo, policy), nil
}

// Register adds the shop definitions to c. Both discount policies carry
// RoleDiscountPolicy; the fixed one is primary and is the one the order
// service receives.
func Register(c *di.Container) error {
	n := Components
	if err := di.Provide(c, n.MemberRepository, nil, newMemberRepository); err != nil {
		return err
	}
	if err := di.Provide(c, n.DiscountPolicy, nil, newFixDiscountPolicy,
		di.WithRoles(RoleDiscountPolicy), di.AsPrimary()); err != nil {
		return err
	}
	if err := di.Provide(c, n.RateDiscountPolicy, nil, newRateDiscountPolicy,
		di.WithRoles(RoleDiscountPolicy)); err != nil {
		return err
	}
	if err := di.Provide(c, n.MemberService, []string{n.MemberRepository}, newMemberService); err != nil {
		return err
	}
	return di.Provide(c, n.OrderService, []string{n.MemberRepository, n.DiscountPolicy}, newOrderService)
}

// Catalog returns the shop factories keyed for a declarative definition table.
func Catalog() *di.Catalog {
	return di.NewCatalog().
		MustAdd(FactoryMemoryMemberRepository, untyped(newMemberRepository)).
		MustAdd(FactoryFixDiscountPolicy, untyped(newFixDiscountPolicy)).
		MustAdd(FactoryRateDiscountPolicy, untyped(newRateDiscountPolicy)).
		MustAdd(FactoryMemberService, untyped(newMemberService)).
		MustAdd(FactoryOrderService, untyped(newOrderService))
}

// Table returns the definition table equivalent to Register.
func Table() []config.DefinitionConfig {
	n := Components
	return []config.DefinitionConfig{
		{Name: n.MemberRepository, Factory: FactoryMemoryMemberRepository},
		{Name: n.DiscountPolicy, Factory: FactoryFixDiscountPolicy, Roles: []string{RoleDiscountPolicy}, Primary: true},
		{Name: n.RateDiscountPolicy, Factory: FactoryRateDiscountPolicy, Roles: []string{RoleDiscountPolicy}},
		{Name: n.MemberService, Factory: FactoryMemberService, DependsOn: []string{n.MemberRepository}},
		{Name: n.OrderService, Factory: FactoryOrderService, DependsOn: []string{n.MemberRepository, n.DiscountPolicy}},
	}
}

func untyped[T any](f func(context.Context, []any) (T, error)) di.Factory {
	return func(ctx context.Context, deps []any) (any, error) {
		return f(ctx, deps)
	}
}
