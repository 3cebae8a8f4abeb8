package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/iockit/bootstrap"
	"github.com/kbukum/iockit/config"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/internal/shop"
	"github.com/kbukum/iockit/logger"
)

func TestConfigFile(t *testing.T) {
	cfg, err := config.Load[ShopConfig]("shopdemo", config.WithConfigFile("config.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config.yml to be valid, got %v", err)
	}
	if got := cfg.Container.Names(); len(got) != len(shop.Table()) {
		t.Errorf("expected %d definitions, got %v", len(shop.Table()), got)
	}
	if cfg.Demo.ItemPrice != 10000 {
		t.Errorf("expected item price 10000, got %d", cfg.Demo.ItemPrice)
	}
}

func TestShopConfigValidate(t *testing.T) {
	cfg := &ShopConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
	cfg.Demo.ItemPrice = -5
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "demo.item_price") {
		t.Errorf("expected demo.item_price error, got %v", err)
	}
}

func TestPlaceOrder(t *testing.T) {
	tests := []struct {
		name  string
		table bool
	}{
		{"definition table", true},
		{"registered from code", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &ShopConfig{}
			if tc.table {
				cfg.Container.Definitions = shop.Table()
			}
			var logs bytes.Buffer
			app, err := bootstrap.NewApp(cfg,
				bootstrap.WithCatalog(shop.Catalog()),
				bootstrap.WithLogger(logger.NewWithWriter(&logs, "info")),
				bootstrap.WithSummaryOutput(&bytes.Buffer{}),
			)
			if err != nil {
				t.Fatalf("NewApp failed: %v", err)
			}
			if !tc.table {
				app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*ShopConfig]) error {
					return shop.Register(a.Container)
				})
			}

			err = app.RunTask(context.Background(), func(ctx context.Context) error {
				return placeOrder(ctx, app.Container, cfg.Demo, app.Logger)
			})
			if err != nil {
				t.Fatalf("RunTask failed: %v", err)
			}
			out := logs.String()
			if !strings.Contains(out, `"discount":1000`) || !strings.Contains(out, `"final_price":9000`) {
				t.Errorf("expected the fixed discount in the order log, got:\n%s", out)
			}
		})
	}
}

func TestPlaceOrder_MissingService(t *testing.T) {
	c := di.New()
	err := placeOrder(context.Background(), c, DemoConfig{ItemName: "x"}, logger.NewNop())
	if err == nil {
		t.Fatal("expected error for an empty container")
	}
}

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func placeOrderSpan(t *testing.T, exporter *tracetest.InMemoryExporter) tracetest.SpanStub {
	t.Helper()
	for _, s := range exporter.GetSpans() {
		if s.Name == "shop.place_order" {
			return s
		}
	}
	t.Fatal("expected a shop.place_order span")
	return tracetest.SpanStub{}
}

func TestPlaceOrder_Span(t *testing.T) {
	t.Run("order attributes", func(t *testing.T) {
		exporter := recordSpans(t)
		c := di.New()
		if err := shop.Register(c); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		demo := DemoConfig{MemberName: "memberA", ItemName: "itemA", ItemPrice: 10000}
		if err := placeOrder(context.Background(), c, demo, logger.NewNop()); err != nil {
			t.Fatalf("placeOrder failed: %v", err)
		}

		span := placeOrderSpan(t, exporter)
		attrs := make(map[attribute.Key]attribute.Value, len(span.Attributes))
		for _, kv := range span.Attributes {
			attrs[kv.Key] = kv.Value
		}
		if got := attrs[attrDiscount].AsInt64(); got != 1000 {
			t.Errorf("expected discount 1000, got %d", got)
		}
		if got := attrs[attrMemberID].AsInt64(); got != 1 {
			t.Errorf("expected member id 1, got %d", got)
		}
		if attrs[attrOrderRef].AsString() == "" {
			t.Error("expected an order reference")
		}
		if span.Status.Code == codes.Error {
			t.Errorf("unexpected error status: %s", span.Status.Description)
		}
	})

	t.Run("failure marks the span", func(t *testing.T) {
		exporter := recordSpans(t)
		if err := placeOrder(context.Background(), di.New(), DemoConfig{ItemName: "x"}, logger.NewNop()); err == nil {
			t.Fatal("expected error for an empty container")
		}
		if span := placeOrderSpan(t, exporter); span.Status.Code != codes.Error {
			t.Errorf("expected error status, got %v", span.Status.Code)
		}
	})
}
