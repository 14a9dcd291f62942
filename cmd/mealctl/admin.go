package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/lifecycle"
	"github.com/ganghaofan/mealorder/internal/money"
	"github.com/ganghaofan/mealorder/internal/service"
)

const adminUsage = `usage: mealctl admin <subcommand> [flags]

subcommands:
  publish -date D [-dinner] -desc S -price YUAN -max N [-addons id=max,...]
  edit -id N -desc S -price YUAN -max N [-addons id=max,...]
  lock|unlock|complete -id N
  cancel-meal -id N -reason S
  stats -id N                     order statistics for a meal
  orders -id N                    list orders on a meal
  confirm-orders -id N            confirm every placed order on a meal
  complete-orders -id N           complete every confirmed order on a meal
  addons [-status S]
  addon-create -name S -price YUAN
  addon-delete -id N
  users [-status S]
  recharge-user -user N -amount YUAN -reason S
  deduct-user -user N -amount YUAN -reason S
  suspend|activate -users 1,2,...
`

func (a *app) adminCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, adminUsage)
		return fmt.Errorf("admin: subcommand required")
	}
	svc := a.admin()
	sub, rest := args[0], args[1:]

	switch sub {
	case "publish":
		return a.adminPublish(ctx, svc, rest)
	case "edit":
		return a.adminEdit(ctx, svc, rest)
	case "lock", "unlock", "complete", "cancel-meal":
		return a.adminMealAction(ctx, svc, sub, rest)
	case "stats":
		return a.adminStats(ctx, svc, rest)
	case "orders":
		return a.adminOrders(ctx, svc, rest)
	case "confirm-orders", "complete-orders":
		return a.adminBatchOrders(ctx, svc, sub, rest)
	case "addons":
		return a.adminAddons(ctx, svc, rest)
	case "addon-create":
		return a.adminAddonCreate(ctx, svc, rest)
	case "addon-delete":
		return a.adminAddonDelete(ctx, svc, rest)
	case "users":
		return a.adminUsers(ctx, svc, rest)
	case "recharge-user", "deduct-user":
		return a.adminBalance(ctx, svc, sub, rest)
	case "suspend", "activate":
		return a.adminUserStatus(ctx, svc, sub, rest)
	default:
		fmt.Fprint(os.Stderr, adminUsage)
		return fmt.Errorf("unknown admin subcommand %q", sub)
	}
}

func mealFormFlags(fs *flag.FlagSet) (desc *string, price *string, max *int, addons *string) {
	desc = fs.String("desc", "", "meal description")
	price = fs.String("price", "", "base price in yuan")
	max = fs.Int("max", 0, "maximum number of orders")
	addons = fs.String("addons", "", "addon config, id=max comma separated")
	return
}

func buildForm(desc, price string, max int, addons string) (domain.MealForm, error) {
	base, err := money.ParseYuan(price)
	if err != nil {
		return domain.MealForm{}, err
	}
	sel, err := parseSelections(addons)
	if err != nil {
		return domain.MealForm{}, err
	}
	cfg := make(domain.AddonConfig, len(sel))
	for id, qty := range sel {
		cfg[id] = qty
	}
	return domain.MealForm{
		Description: desc,
		BasePrice:   base,
		MaxOrders:   max,
		AddonConfig: cfg,
	}, nil
}

func (a *app) adminPublish(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	date := fs.String("date", "", "meal date, YYYY-MM-DD")
	dinner := fs.Bool("dinner", false, "publish the dinner slot instead of lunch")
	desc, price, max, addons := mealFormFlags(fs)
	fs.Parse(args)

	form, err := buildForm(*desc, *price, *max, *addons)
	if err != nil {
		return err
	}
	meal, err := svc.PublishMeal(ctx, *date, slotOf(*dinner), form)
	if err != nil {
		return err
	}
	fmt.Printf("published meal #%d for %s %s\n", meal.ID, meal.Date, meal.Slot)
	return nil
}

func (a *app) adminEdit(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.Int64("id", 0, "meal id")
	desc, price, max, addons := mealFormFlags(fs)
	fs.Parse(args)

	meal, err := a.client.GetMeal(ctx, *id)
	if err != nil {
		return err
	}
	form, err := buildForm(*desc, *price, *max, *addons)
	if err != nil {
		return err
	}
	meal, err = svc.EditMeal(ctx, meal, form)
	if err != nil {
		return err
	}
	fmt.Printf("updated meal #%d\n", meal.ID)
	return nil
}

func (a *app) adminMealAction(ctx context.Context, svc *service.AdminService, sub string, args []string) error {
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	id := fs.Int64("id", 0, "meal id")
	reason := fs.String("reason", "", "cancellation reason")
	fs.Parse(args)

	action := map[string]lifecycle.Action{
		"lock":        lifecycle.ActionLock,
		"unlock":      lifecycle.ActionUnlock,
		"complete":    lifecycle.ActionComplete,
		"cancel-meal": lifecycle.ActionAdminCancel,
	}[sub]

	meal, err := a.client.GetMeal(ctx, *id)
	if err != nil {
		return err
	}
	ob, err := svc.MealAction(ctx, meal, action, *reason)
	if err != nil {
		return err
	}
	fmt.Printf("%s applied to meal #%d\n", sub, meal.ID)
	if ob == lifecycle.ObligationRefundAllOrders {
		fmt.Println("all active orders are refunded")
	}
	return nil
}

func (a *app) adminStats(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	id := fs.Int64("id", 0, "meal id")
	fs.Parse(args)

	stats, err := svc.Statistics(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("meal #%d: %d orders (%d active), total %s\n",
		*id, stats.TotalOrders, stats.ActiveOrders, stats.TotalAmount)
	return nil
}

func (a *app) adminOrders(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	id := fs.Int64("id", 0, "meal id")
	fs.Parse(args)

	orders, err := svc.MealOrders(ctx, *id)
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Printf("order #%d  user #%d  [%s]  total %s  %s\n",
			o.ID, o.UserID, o.Status, o.Total, o.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func (a *app) adminBatchOrders(ctx context.Context, svc *service.AdminService, sub string, args []string) error {
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	id := fs.Int64("id", 0, "meal id")
	fs.Parse(args)

	orders, err := svc.MealOrders(ctx, *id)
	if err != nil {
		return err
	}

	want := enum.OrderStatusPlaced
	if sub == "complete-orders" {
		want = enum.OrderStatusConfirmed
	}
	var batch []domain.Order
	for _, o := range orders {
		if o.Status == want {
			batch = append(batch, o)
		}
	}

	if sub == "complete-orders" {
		err = svc.CompleteOrders(ctx, batch)
	} else {
		err = svc.ConfirmOrders(ctx, batch)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d orders\n", sub, len(batch))
	return nil
}

func (a *app) adminAddons(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("addons", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	fs.Parse(args)

	addons, err := svc.Addons(ctx, *status)
	if err != nil {
		return err
	}
	for _, ad := range addons {
		fmt.Printf("addon #%d  %-16s %8s  [%s]\n", ad.ID, ad.Name, ad.Price, ad.Status)
	}
	return nil
}

func (a *app) adminAddonCreate(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("addon-create", flag.ExitOnError)
	name := fs.String("name", "", "addon name")
	price := fs.String("price", "0", "price in yuan, negative for a discount")
	fs.Parse(args)

	p, err := money.ParseYuan(*price)
	if err != nil {
		return err
	}
	created, err := svc.CreateAddon(ctx, domain.Addon{Name: *name, Price: p})
	if err != nil {
		return err
	}
	fmt.Printf("created addon #%d %s %s\n", created.ID, created.Name, created.Price)
	return nil
}

func (a *app) adminAddonDelete(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("addon-delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "addon id")
	fs.Parse(args)

	// Check the addon against the meals currently on the calendar before
	// asking the service to delete it.
	now := time.Now()
	meals, err := a.client.ListMeals(ctx, now.AddDate(0, 0, -28), now.AddDate(0, 0, 28))
	if err != nil {
		return err
	}
	if err := svc.DeleteAddon(ctx, *id, meals); err != nil {
		return err
	}
	fmt.Printf("deleted addon #%d\n", *id)
	return nil
}

func (a *app) adminUsers(ctx context.Context, svc *service.AdminService, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	fs.Parse(args)

	users, err := svc.Users(ctx, *status)
	if err != nil {
		return err
	}
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = " (admin)"
		}
		fmt.Printf("user #%d  %-20s balance %10s  [%s]%s\n", u.ID, u.Nickname, u.Balance, u.Status, admin)
	}
	return nil
}

func (a *app) adminBalance(ctx context.Context, svc *service.AdminService, sub string, args []string) error {
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	user := fs.Int64("user", 0, "user id")
	amount := fs.String("amount", "", "amount in yuan")
	reason := fs.String("reason", "", "ledger description")
	fs.Parse(args)

	m, err := money.ParseYuan(*amount)
	if err != nil {
		return err
	}
	deduct := sub == "deduct-user"
	if err := svc.AdjustBalance(ctx, *user, m, *reason, deduct); err != nil {
		return err
	}
	fmt.Printf("%s: user #%d %s\n", sub, *user, m)
	return nil
}

func (a *app) adminUserStatus(ctx context.Context, svc *service.AdminService, sub string, args []string) error {
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	users := fs.String("users", "", "user ids, comma separated")
	fs.Parse(args)

	ids, err := parseIDs(*users)
	if err != nil {
		return err
	}
	if err := svc.SetUsersActive(ctx, ids, sub == "activate"); err != nil {
		return err
	}
	fmt.Printf("%s: %d users\n", sub, len(ids))
	return nil
}
