package pages

import (
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/pagination"
	qc "github.com/deltegui/bankconsole/querycache"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/session"
)

// Dashboard totals read the transactions of the last day in one page.
const (
	dashboardWindow   = core.OneDayDuration
	dashboardPageSize = 1000
	latestLimit       = 5
)

var newestFirst = pagination.Sort{Field: "timestamp", Direction: pagination.Descending}

type adminDashboardPage struct {
	Chrome
	Merchants    Panel
	CoreUsers    Panel
	Transactions Panel
	NetValue     Panel
}

func countPanel[T any](lang string, res qc.Typed[pagination.Page[T]], resource string) Panel {
	switch {
	case res.IsLoading && !res.HasData:
		return Panel{Loading: true}
	case res.Err != nil:
		return Panel{Error: core.Describe(res.Err, resource)}
	}
	return Panel{Value: renderer.Count(lang, int64(res.Data.TotalElements))}
}

func moneyPanel(lang string, value float64, loading bool, err error, resource string) Panel {
	switch {
	case loading:
		return Panel{Loading: true}
	case err != nil:
		return Panel{Error: core.Describe(err, resource)}
	}
	return Panel{Value: renderer.Money(lang, value)}
}

// adminDashboardHandler shows platform totals. Every panel is fetched at the
// same time and fails on its own.
func adminDashboardHandler(api *bank.API, sessions *session.Manager, clk clock.Clock) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		c := caller(ctx, api)
		now := clk.Now()
		last24h := bank.TransactionFilter{
			StartDate: pagination.FormatTime(now.Add(-dashboardWindow)),
			EndDate:   pagination.FormatTime(now),
		}

		var (
			merchants qc.Typed[pagination.Page[bank.Merchant]]
			users     qc.Typed[pagination.Page[bank.CoreUser]]
			txs       qc.Typed[pagination.Page[bank.Transaction]]
			g         errgroup.Group
		)
		g.Go(func() error {
			merchants = c.ListMerchants(ctx.Context(), pagination.Request{Page: 0, Size: 1})
			return nil
		})
		g.Go(func() error {
			users = c.ListCoreUsers(ctx.Context(), pagination.Request{Page: 0, Size: 1})
			return nil
		})
		g.Go(func() error {
			txs = c.SystemTransactions(ctx.Context(), pagination.Request{Page: 0, Size: dashboardPageSize, Sort: newestFirst}, last24h)
			return nil
		})
		_ = g.Wait()

		if unauthorized(sessions, ctx, merchants.Err, users.Err, txs.Err) {
			return nil
		}
		logPanelErrors(ctx.Logger(), map[string]error{
			"merchants":    merchants.Err,
			"core_users":   users.Err,
			"transactions": txs.Err,
		})

		lang := ctx.Language()
		page := adminDashboardPage{
			Chrome:       chrome(ctx),
			Merchants:    countPanel(lang, merchants, "merchants"),
			CoreUsers:    countPanel(lang, users, "core users"),
			Transactions: countPanel(lang, txs, "transactions"),
			NetValue: moneyPanel(lang, bank.NetValue(txs.Data.Content),
				txs.IsLoading && !txs.HasData, txs.Err, "transactions"),
		}
		return ctx.JsonOrRender(ViewAdminDashboard, page, page)
	}
}

func logPanelErrors(log *zerolog.Logger, errs map[string]error) {
	for panel, err := range errs {
		if err != nil {
			log.Warn().Err(err).Str("panel", panel).Msg("dashboard panel failed")
		}
	}
}

type merchantDashboardPage struct {
	Chrome
	Profile      *bank.MyMerchantProfile
	ProfileError string
	Balance      Panel
	Details      *bank.AccountDetails
	DetailsError string
	Latest       []bank.Transaction
	LatestError  string
}

// merchantDashboardHandler shows the profile of the merchant user, then the
// balance, details and latest transactions of its account side by side.
func merchantDashboardHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		c := caller(ctx, api)
		page := merchantDashboardPage{Chrome: chrome(ctx)}

		profile := c.MyMerchantProfile(ctx.Context())
		if unauthorized(sessions, ctx, profile.Err) {
			return nil
		}
		if !profile.HasData {
			page.ProfileError = profileError(ctx, profile)
			return ctx.JsonOrRender(ViewMerchantDashboard, page, page)
		}
		page.Profile = &profile.Data

		accountID := profile.Data.Merchant.AccountID
		if accountID == "" {
			page.Balance = Panel{Error: ctx.Localize(ViewMerchantDashboard, "NoAccount")}
			return ctx.JsonOrRender(ViewMerchantDashboard, page, page)
		}

		var (
			balance qc.Typed[bank.AccountBalance]
			details qc.Typed[bank.AccountDetails]
			latest  qc.Typed[bank.AccountTransactions]
			g       errgroup.Group
		)
		g.Go(func() error {
			balance = c.AccountBalance(ctx.Context(), accountID)
			return nil
		})
		g.Go(func() error {
			details = c.AccountDetails(ctx.Context(), accountID)
			return nil
		})
		g.Go(func() error {
			latest = c.AccountTransactions(ctx.Context(), accountID,
				pagination.Request{Page: 0, Size: latestLimit, Sort: newestFirst}, bank.TransactionFilter{})
			return nil
		})
		_ = g.Wait()

		if unauthorized(sessions, ctx, balance.Err, details.Err, latest.Err) {
			return nil
		}

		lang := ctx.Language()
		page.Balance = moneyPanel(lang, balance.Data.Balance, balance.IsLoading && !balance.HasData, balance.Err, "balance")
		if details.HasData {
			page.Details = &details.Data
		} else {
			page.DetailsError = core.Describe(details.Err, "account details")
		}
		if latest.HasData {
			page.Latest = latest.Data.TransactionsPage.Content
		} else {
			page.LatestError = core.Describe(latest.Err, "transactions")
		}
		return ctx.JsonOrRender(ViewMerchantDashboard, page, page)
	}
}

func profileError(ctx *bankconsole.Context, profile qc.Typed[bank.MyMerchantProfile]) string {
	if profile.IsLoading {
		return ctx.Localize("shared", "Loading")
	}
	return core.Describe(profile.Err, "merchant profile")
}
