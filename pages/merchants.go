package pages

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/pagination"
	qc "github.com/deltegui/bankconsole/querycache"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/session"
	"github.com/deltegui/bankconsole/validator"
)

type merchantsPage struct {
	Chrome
	Table    datatable.View
	Form     merchantForm
	Feedback string
}

// formState is what a failed submit hands back to the page it came from.
type formState struct {
	status   int
	errs     validator.Errors
	feedback string
}

var okState = formState{status: http.StatusOK}

func merchantsHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return showMerchants(ctx, api, sessions, merchantForm{}, okState)
	}
}

func showMerchants(ctx *bankconsole.Context, api *bank.API, sessions *session.Manager, form merchantForm, state formState) error {
	q := readTable(ctx, "/admin/merchants", "", pagination.Request{Size: pagination.DefaultPageSize})
	loc := ctx.GetLocalizer(ViewMerchants)
	res := caller(ctx, api).ListMerchants(ctx.Context(), q.Req)
	if unauthorized(sessions, ctx, res.Err) {
		return nil
	}
	table, err := newTable(q, loc, res, merchantColumns(loc), merchantID)
	if err != nil {
		return err
	}
	if q.Dispatch(table) {
		return ctx.Redirect(q.NextURL())
	}
	page := merchantsPage{
		Chrome:   chrome(ctx),
		Table:    table.View(),
		Form:     form,
		Feedback: state.feedback,
	}
	if ctx.WantsJSON() {
		return ctx.JsonOk(page.Table)
	}
	return ctx.RenderWithErrors(state.status, ViewMerchants, page, state.errs)
}

func createMerchantHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		var form merchantForm
		if err := ctx.ParseForm(&form); err != nil {
			return ctx.BadRequest("malformed merchant form")
		}
		if errs := form.validate(ctx.Validator()); !errs.Empty() {
			return showMerchants(ctx, api, sessions, form, formState{status: http.StatusUnprocessableEntity, errs: errs})
		}
		created, err := caller(ctx, api).CreateMerchant(ctx.Context(), form.request())
		if err != nil {
			if unauthorized(sessions, ctx, err) {
				return nil
			}
			ctx.Logger().Warn().Err(err).Msg("cannot create merchant")
			return showMerchants(ctx, api, sessions, form, formState{status: failureStatus(err), feedback: core.Feedback(err)})
		}
		ctx.Logger().Info().Str("merchant_id", created.MerchantID).Msg("merchant created")
		return ctx.Redirect("/admin/merchants")
	}
}

type transactionsSection struct {
	// Prefix of the table parameters, set when the page has more tables.
	Prefix      string
	WithAccount bool
	Filter      bank.TransactionFilter
	TypeSelect  renderer.ViewModel
	Sort        string
	Size        int
	Table       datatable.View
	Summary     *bank.TransactionSummary
	Quantity    string
	Total       string
}

func summarize(lang string, section *transactionsSection) {
	if section.Summary == nil {
		return
	}
	section.Quantity = renderer.Count(lang, section.Summary.Quantity)
	section.Total = renderer.Money(lang, section.Summary.TotalAmount)
}

type merchantDetailsPage struct {
	Chrome
	Merchant      *bank.Merchant
	MerchantError string
	Balance       Panel
	Users         usersSection
	Transactions  transactionsSection
}

type merchantDetailsJSON struct {
	Merchant     *bank.Merchant `json:"merchant,omitempty"`
	Users        datatable.View `json:"users"`
	Transactions datatable.View `json:"transactions"`
}

func merchantDetailsHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return showMerchantDetails(ctx, api, sessions, createUserForm{}, okState)
	}
}

// showMerchantDetails renders the merchant, its balance, its users and the
// transactions of its account. Both tables live on the page, so their query
// parameters are prefixed.
func showMerchantDetails(ctx *bankconsole.Context, api *bank.API, sessions *session.Manager, form createUserForm, state formState) error {
	c := caller(ctx, api)
	id := ctx.GetURLParam("id")
	lang := ctx.Language()
	loc := ctx.GetLocalizer(ViewMerchantDetails)
	path := "/admin/merchants/" + id
	page := merchantDetailsPage{Chrome: chrome(ctx)}

	merchant := c.GetMerchant(ctx.Context(), id)
	if unauthorized(sessions, ctx, merchant.Err) {
		return nil
	}
	if !merchant.HasData {
		page.MerchantError = core.Describe(merchant.Err, "merchant details")
		status := http.StatusOK
		if code, ok := core.StatusOf(merchant.Err); ok && code == "404" {
			status = http.StatusNotFound
		}
		if ctx.WantsJSON() {
			return ctx.Json(status, merchantDetailsJSON{})
		}
		return ctx.Render(status, ViewMerchantDetails, page)
	}
	page.Merchant = &merchant.Data
	accountID := merchant.Data.AccountID

	usersQuery := readTable(ctx, path, "users.", pagination.Request{Size: pagination.DefaultPageSize})
	txQuery := readTable(ctx, path, "tx.", pagination.Request{Size: pagination.DefaultPageSize, Sort: newestFirst})
	var filter bank.TransactionFilter
	if err := ctx.ParseQuery(&filter); err != nil {
		return ctx.BadRequest("malformed transaction filters")
	}

	var (
		users   qc.Typed[pagination.Page[bank.MerchantUser]]
		balance qc.Typed[bank.AccountBalance]
		txs     qc.Typed[bank.AccountTransactions]
		g       errgroup.Group
	)
	g.Go(func() error {
		users = c.ListMerchantUsers(ctx.Context(), id, usersQuery.Req)
		return nil
	})
	if accountID != "" {
		g.Go(func() error {
			balance = c.AccountBalance(ctx.Context(), accountID)
			return nil
		})
		g.Go(func() error {
			txs = c.AccountTransactions(ctx.Context(), accountID, txQuery.Req, filter)
			return nil
		})
	}
	_ = g.Wait()
	if unauthorized(sessions, ctx, users.Err, balance.Err, txs.Err) {
		return nil
	}

	target := adminTarget(id)
	usersTable, err := newTable(usersQuery, loc, users, merchantUserColumns(loc, target), merchantUserID)
	if err != nil {
		return err
	}
	if usersQuery.Dispatch(usersTable) {
		return ctx.Redirect(usersQuery.NextURL())
	}

	txPage := qc.Typed[pagination.Page[bank.Transaction]]{
		Err:        txs.Err,
		IsLoading:  txs.IsLoading,
		IsFetching: txs.IsFetching,
		HasData:    txs.HasData,
		Data:       txs.Data.TransactionsPage,
	}
	if accountID == "" {
		txPage.Err = core.NewValidationFailure(loc.Get("NoAccount"))
	}
	txTable, err := newTable(txQuery, loc, txPage, transactionColumns(loc, lang, false), transactionID)
	if err != nil {
		return err
	}
	if txQuery.Dispatch(txTable) {
		return ctx.Redirect(txQuery.NextURL())
	}

	page.Users = newUsersSection(loc, target, usersTable.View(), form, state)
	page.Transactions = transactionsSection{
		Prefix:     txQuery.prefix,
		Filter:     filter,
		TypeSelect: renderer.TransactionTypeSelectList(loc, "type", filter.Type),
		Sort:       txQuery.Req.Sort.String(),
		Size:       txQuery.Req.Size,
		Table:      txTable.View(),
		Summary:    txs.Data.Summary,
	}
	summarize(lang, &page.Transactions)
	if accountID == "" {
		page.Balance = Panel{Error: loc.Get("NoAccount")}
	} else {
		page.Balance = moneyPanel(lang, balance.Data.Balance, balance.IsLoading && !balance.HasData, balance.Err, "balance")
	}

	if ctx.WantsJSON() {
		return ctx.JsonOk(merchantDetailsJSON{
			Merchant:     page.Merchant,
			Users:        page.Users.Table,
			Transactions: page.Transactions.Table,
		})
	}
	return ctx.RenderWithErrors(state.status, ViewMerchantDetails, page, state.errs)
}
