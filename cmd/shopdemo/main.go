// Command shopdemo wires the shop through the container from config.yml,
// joins a VIP member and places an order.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/kbukum/iockit/bootstrap"
	"github.com/kbukum/iockit/config"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/internal/shop"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
	"github.com/kbukum/iockit/validation"
)

// ShopConfig is the shopdemo configuration.
type ShopConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Demo                 DemoConfig `yaml:"demo" mapstructure:"demo"`
}

// DemoConfig describes the order the demo places.
type DemoConfig struct {
	MemberName string `yaml:"member_name" mapstructure:"member_name"`
	ItemName   string `yaml:"item_name" mapstructure:"item_name"`
	ItemPrice  int    `yaml:"item_price" mapstructure:"item_price" validate:"gte=0"`
}

// ApplyDefaults fills the demo order and the base defaults.
func (c *ShopConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Name == "" {
		c.Name = "shopdemo"
		c.Logging.ServiceName = c.Name
	}
	if c.Demo.MemberName == "" {
		c.Demo.MemberName = "memberA"
	}
	if c.Demo.ItemName == "" {
		c.Demo.ItemName = "itemA"
	}
	if c.Demo.ItemPrice == 0 {
		c.Demo.ItemPrice = 10000
	}
}

// Validate checks the base config and the demo order.
func (c *ShopConfig) Validate() error {
	v := validation.New().
		Merge("", c.ServiceConfig.Validate()).
		Merge("demo", validation.ValidateStruct(c.Demo))
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "shopdemo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[ShopConfig]("shopdemo", config.WithEnvPrefix("SHOPDEMO"))
	if err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithCatalog(shop.Catalog()))
	if err != nil {
		return err
	}

	// Without a table in config.yml, fall back to registering from code.
	if len(cfg.Container.Definitions) == 0 {
		app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*ShopConfig]) error {
			return shop.Register(a.Container)
		})
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		return placeOrder(ctx, app.Container, cfg.Demo, app.Logger.WithComponent("shopdemo"))
	})
}

// Span attributes set by placeOrder.
const (
	attrOrderRef = "shop.order_ref"
	attrMemberID = "shop.member_id"
	attrDiscount = "shop.discount"
)

func placeOrder(ctx context.Context, c *di.Container, demo DemoConfig, log *logger.Logger) (err error) {
	ctx, span := observability.StartSpan(ctx, "shop.place_order")
	defer func() {
		observability.SetSpanError(ctx, err)
		span.End()
	}()

	members, err := di.Resolve[*shop.MemberService](ctx, c, shop.Components.MemberService)
	if err != nil {
		return err
	}
	orders, err := di.Resolve[*shop.OrderService](ctx, c, shop.Components.OrderService)
	if err != nil {
		return err
	}

	member := shop.Member{ID: 1, Name: demo.MemberName, Grade: shop.GradeVIP}
	if err := members.Join(ctx, member); err != nil {
		return fmt.Errorf("joining member: %w", err)
	}

	order, err := orders.CreateOrder(ctx, member.ID, demo.ItemName, demo.ItemPrice)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	ref := uuid.NewString()
	observability.SetSpanAttribute(ctx, attrOrderRef, ref)
	observability.SetSpanAttribute(ctx, attrMemberID, member.ID)
	observability.SetSpanAttribute(ctx, attrDiscount, order.DiscountPrice)

	log.WithContext(ctx).Info("order created", map[string]interface{}{
		"order_ref":   ref,
		"member":      member.Name,
		"item":        order.ItemName,
		"price":       order.ItemPrice,
		"discount":    order.DiscountPrice,
		"final_price": order.CalculatePrice(),
	})
	fmt.Println(order)
	return nil
}
