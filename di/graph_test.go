package di

import (
	"context"
	"slices"
	"testing"

	"github.com/kbukum/iockit/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, c *Container)
		code  errors.ErrorCode
		cycle []string
	}{
		{
			name: "valid graph",
			setup: func(t *testing.T, c *Container) {
				mustRegister(t, c, "a", []string{"b"}, newRecorder().factory("a"))
				mustRegister(t, c, "b", nil, newRecorder().factory("b"))
			},
		},
		{
			name: "unknown dependency",
			setup: func(t *testing.T, c *Container) {
				mustRegister(t, c, "a", []string{"ghost"}, newRecorder().factory("a"))
			},
			code: errors.ErrCodeUnknownDependency,
		},
		{
			name: "cycle",
			setup: func(t *testing.T, c *Container) {
				mustRegister(t, c, "a", []string{"b"}, newRecorder().factory("a"))
				mustRegister(t, c, "b", []string{"c"}, newRecorder().factory("b"))
				mustRegister(t, c, "c", []string{"a"}, newRecorder().factory("c"))
			},
			code:  errors.ErrCodeCyclicDependency,
			cycle: []string{"a", "b", "c", "a"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			tc.setup(t, c)
			err := c.Validate()
			if tc.code == "" {
				if err != nil {
					t.Fatalf("expected valid graph, got %v", err)
				}
				return
			}
			if !errors.HasCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if tc.cycle != nil && !slices.Equal(errors.CyclePath(err), tc.cycle) {
				t.Errorf("expected cycle %v, got %v", tc.cycle, errors.CyclePath(err))
			}
			if len(c.Instantiated()) != 0 {
				t.Error("expected Validate not to build anything")
			}
		})
	}
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	c := New()
	rec := newRecorder()
	mustRegister(t, c, "A", []string{"B", "C"}, rec.factory("A"))
	mustRegister(t, c, "B", []string{"D"}, rec.factory("B"))
	mustRegister(t, c, "C", []string{"D"}, rec.factory("C"))
	mustRegister(t, c, "D", nil, rec.factory("D"))

	plan, err := c.resolver.Plan(ctx, "A")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !slices.Equal(plan, []string{"D", "B", "C", "A"}) {
		t.Errorf("expected plan [D B C A], got %v", plan)
	}

	if _, err := c.Get(ctx, "B"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	plan, _ = c.resolver.Plan(ctx, "A")
	if !slices.Equal(plan, []string{"C", "A"}) {
		t.Errorf("expected instantiated definitions skipped, got %v", plan)
	}
}

func TestLevels(t *testing.T) {
	c := New()
	rec := newRecorder()
	mustRegister(t, c, "orderService", []string{"memberRepository", "discountPolicy"}, rec.factory("orderService"))
	mustRegister(t, c, "memberService", []string{"memberRepository"}, rec.factory("memberService"))
	mustRegister(t, c, "discountPolicy", nil, rec.factory("discountPolicy"))
	mustRegister(t, c, "memberRepository", nil, rec.factory("memberRepository"))
	mustRegister(t, c, "app", []string{"orderService", "memberService", "orderService"}, rec.factory("app"))

	levels, err := c.Levels()
	if err != nil {
		t.Fatalf("Levels failed: %v", err)
	}
	want := [][]string{
		{"discountPolicy", "memberRepository"},
		{"orderService", "memberService"},
		{"app"},
	}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}
	for i := range want {
		if !slices.Equal(levels[i], want[i]) {
			t.Errorf("level %d: expected %v, got %v", i, want[i], levels[i])
		}
	}
	if len(rec.built()) != 0 {
		t.Error("expected Levels not to build anything")
	}
}

func TestLevels_Cycle(t *testing.T) {
	c := New()
	mustRegister(t, c, "a", []string{"a"}, newRecorder().factory("a"))
	if _, err := c.Levels(); !errors.HasCode(err, errors.ErrCodeCyclicDependency) {
		t.Errorf("expected cyclic dependency, got %v", err)
	}
}
