// Package di is a singleton inversion-of-control container.
//
// A definition names a component, the names it depends on and a factory
// that builds it from those dependencies. The container resolves a name by
// planning a post-order walk of the dependency graph, failing fast on
// unknown names and cycles, and then building each planned definition once.
// Every instance is cached for the life of the container, so any two lookups
// of the same name return the same instance.
//
// # Registration
//
//	c := di.New(di.WithLogger(log))
//	_ = c.Register("memberRepository", nil, newMemberRepository)
//	_ = c.Register("memberService", []string{"memberRepository"}, newMemberService)
//
// Typed factories use Provide, which also records the component type for
// ResolveByType:
//
//	_ = di.Provide(c, "discountPolicy", nil,
//	    func(ctx context.Context, _ []any) (shop.DiscountPolicy, error) {
//	        return shop.NewFixDiscountPolicy(), nil
//	    }, di.WithRoles("discountPolicy"), di.AsPrimary())
//
// # Resolution
//
//	svc, err := di.Resolve[*shop.MemberService](ctx, c, "memberService")
//	policy, err := di.ResolveRole[shop.DiscountPolicy](ctx, c, "discountPolicy")
//
// Factories receive their dependencies in declaration order and must not
// look them up through the container. A factory that does so anyway must pass
// its ctx: lookups that would wait on each other, on one goroutine or
// across several, fail with CYCLIC_DEPENDENCY.
package di
