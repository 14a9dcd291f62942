// mealctl is a terminal client for the meal ordering service: browse the
// calendar, place and manage orders, and run the admin flows.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ganghaofan/mealorder/internal/api"
	"github.com/ganghaofan/mealorder/internal/config"
	"github.com/ganghaofan/mealorder/internal/domain"
	"github.com/ganghaofan/mealorder/internal/enum"
	"github.com/ganghaofan/mealorder/internal/lifecycle"
	"github.com/ganghaofan/mealorder/internal/money"
	"github.com/ganghaofan/mealorder/internal/service"
	"github.com/ganghaofan/mealorder/internal/session"
)

const usage = `usage: mealctl <command> [flags]

commands:
  calendar                     show the rolling meal calendar
  meal -id N                   show one meal with its add-ons and price range
  place -meal N [-addons id=qty,...]
  modify -meal N [-addons id=qty,...]
  cancel -meal N               cancel my order for a meal
  me                           show my account and balance
  recharge -amount YUAN        top up my wallet
  transactions [-type T]       list my wallet ledger
  admin <subcommand>           management flows (see mealctl admin)

The access token is read from MEAL_API_TOKEN.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger := zap.NewNop()
	if cfg.Debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			fatal(err)
		}
		logger = l
	}
	defer logger.Sync()

	sess := session.New(&session.MemoryStore{})
	if tok := os.Getenv("MEAL_API_TOKEN"); tok != "" {
		if err := sess.SetToken(tok); err != nil {
			fatal(fmt.Errorf("MEAL_API_TOKEN: %w", err))
		}
	}

	app := &app{
		cfg:    cfg,
		sess:   sess,
		client: api.New(cfg, sess, logger),
		log:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout*3)
	defer cancel()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "mealctl:", err)
	os.Exit(1)
}

type app struct {
	cfg    *config.Config
	sess   *session.Session
	client *api.Client
	log    *zap.Logger
}

func (a *app) orders() *service.OrderService {
	return service.NewOrderService(a.client, lifecycle.DefaultPolicy(), a.log)
}

func (a *app) admin() *service.AdminService {
	return service.NewAdminService(a.client, a.sess, a.cfg.AddonQuantityCap, a.log)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "calendar":
		return a.calendar(ctx, args)
	case "meal":
		return a.meal(ctx, args)
	case "place":
		return a.placeOrModify(ctx, args, false)
	case "modify":
		return a.placeOrModify(ctx, args, true)
	case "cancel":
		return a.cancel(ctx, args)
	case "me":
		return a.me(ctx)
	case "recharge":
		return a.recharge(ctx, args)
	case "transactions":
		return a.transactions(ctx, args)
	case "admin":
		return a.adminCmd(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) calendar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ExitOnError)
	before := fs.Int("weeks-before", 1, "weeks before the current one")
	after := fs.Int("weeks-after", 1, "weeks after the current one")
	fs.Parse(args)

	svc := service.NewCalendarService(a.client, a.log)
	weeks, err := svc.Weeks(ctx, time.Now(), *before, *after)
	if err != nil {
		return err
	}

	for _, w := range weeks {
		for _, d := range w.Days {
			marker := " "
			if d.IsToday {
				marker = "*"
			}
			fmt.Printf("%s %s  lunch: %-22s dinner: %s\n",
				marker, d.Date.Format(domain.DateLayout),
				cellString(d.Lunch), cellString(d.Dinner))
		}
		fmt.Println()
	}
	return nil
}

func cellString(c service.DayCell) string {
	if c.MealID == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d %s %s", c.MealID, c.Status, c.Price)
}

func (a *app) meal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("meal", flag.ExitOnError)
	id := fs.Int64("id", 0, "meal id")
	fs.Parse(args)
	if *id == 0 {
		return fmt.Errorf("meal: -id is required")
	}

	oc, err := a.orders().Load(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Printf("meal #%d  %s %s  [%s]\n", oc.Meal.ID, oc.Meal.Date, oc.Meal.Slot, oc.Meal.Status)
	fmt.Printf("  %s\n", oc.Meal.Description)
	fmt.Printf("  base price %s, up to %d orders\n", oc.Meal.BasePrice, oc.Meal.MaxOrders)
	for _, ad := range oc.Addons {
		fmt.Printf("  addon #%d %-16s %8s  (max %d)\n", ad.ID, ad.Name, ad.Price, oc.Meal.AddonConfig[ad.ID])
	}
	if oc.Existing != nil {
		fmt.Printf("  my order: #%d [%s] total %s\n", oc.Existing.ID, oc.Existing.Status, oc.Existing.Total)
	}
	fmt.Printf("  balance %s, actions: %v\n", oc.Balance, a.orders().Actions(oc))
	return nil
}

func (a *app) placeOrModify(ctx context.Context, args []string, modify bool) error {
	name := "place"
	if modify {
		name = "modify"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	mealID := fs.Int64("meal", 0, "meal id")
	addons := fs.String("addons", "", "addon selections, id=qty comma separated")
	fs.Parse(args)
	if *mealID == 0 {
		return fmt.Errorf("%s: -meal is required", name)
	}
	sel, err := parseSelections(*addons)
	if err != nil {
		return err
	}

	svc := a.orders()
	oc, err := svc.Load(ctx, *mealID)
	if err != nil {
		return err
	}
	if modify {
		oc.BeginModify()
	}
	for id, qty := range sel {
		if _, ok := oc.Meal.AddonConfig[id]; !ok {
			return fmt.Errorf("%s: addon %d is not offered on meal %d", name, id, *mealID)
		}
		oc.Selections[id] = 0
		svc.Adjust(oc, id, qty)
	}

	quote, err := svc.Quote(oc)
	if err != nil {
		return err
	}
	fmt.Printf("total %s (base %s + addons %s), balance %s\n",
		quote.Grand, quote.Base, quote.AddonTotal, oc.Balance)

	var order domain.Order
	if modify {
		order, err = svc.Modify(ctx, oc)
	} else {
		order, err = svc.Place(ctx, oc)
	}
	if err != nil {
		return err
	}
	fmt.Printf("order #%d [%s]\n", order.ID, order.Status)
	return nil
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	mealID := fs.Int64("meal", 0, "meal id")
	fs.Parse(args)
	if *mealID == 0 {
		return fmt.Errorf("cancel: -meal is required")
	}

	svc := a.orders()
	oc, err := svc.Load(ctx, *mealID)
	if err != nil {
		return err
	}
	ob, err := svc.Cancel(ctx, oc)
	if err != nil {
		return err
	}
	fmt.Println("order canceled")
	if ob == lifecycle.ObligationRefundOrder {
		fmt.Println("the paid amount is refunded to your balance")
	}
	return nil
}

func (a *app) me(ctx context.Context) error {
	me, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("#%d %s  balance %s", me.ID, me.Nickname, me.Balance)
	if me.IsAdmin {
		fmt.Print("  (admin)")
	}
	fmt.Println()
	return nil
}

func (a *app) recharge(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recharge", flag.ExitOnError)
	amount := fs.String("amount", "", "amount in yuan, e.g. 50 or 19.90")
	fs.Parse(args)

	m, err := money.ParseYuan(*amount)
	if err != nil {
		return err
	}
	if m <= 0 {
		return fmt.Errorf("recharge: amount must be positive")
	}
	me, err := a.client.Recharge(ctx, m)
	if err != nil {
		return err
	}
	fmt.Printf("recharged %s, balance now %s\n", m, me.Balance)
	return nil
}

func (a *app) transactions(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	txType := fs.String("type", "", "filter by transaction type")
	fs.Parse(args)

	txs, err := a.client.ListTransactions(ctx, *txType)
	if err != nil {
		return err
	}
	for _, tx := range txs {
		fmt.Printf("%s  %-16s %10s  balance %10s  %s\n",
			tx.CreatedAt.Format("2006-01-02 15:04"), tx.Type, tx.Amount, tx.BalanceAfter, tx.Description)
	}
	return nil
}

// parseSelections parses "11=2,12=1" into selections.
func parseSelections(s string) (domain.Selections, error) {
	sel := domain.Selections{}
	if s == "" {
		return sel, nil
	}
	for _, part := range strings.Split(s, ",") {
		id, qty, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed addon selection %q", part)
		}
		aid, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed addon id %q", id)
		}
		q, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("malformed addon quantity %q", qty)
		}
		sel[aid] = q
	}
	return sel, nil
}

// parseIDs parses "1,2,3" into ids.
func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func slotOf(dinner bool) string {
	if dinner {
		return enum.SlotDinner
	}
	return enum.SlotLunch
}
