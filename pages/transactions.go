package pages

import (
	"net/http"

	"github.com/deltegui/bankconsole"
	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/pagination"
	qc "github.com/deltegui/bankconsole/querycache"
	"github.com/deltegui/bankconsole/renderer"
	"github.com/deltegui/bankconsole/session"
)

type systemTransactionsPage struct {
	Chrome
	Transactions transactionsSection
}

// systemTransactionsHandler lists the transactions of every account, newest
// first unless the user sorts otherwise.
func systemTransactionsHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		q := readTable(ctx, "/admin/transactions", "", pagination.Request{Size: pagination.DefaultPageSize, Sort: newestFirst})
		var filter bank.TransactionFilter
		if err := ctx.ParseQuery(&filter); err != nil {
			return ctx.BadRequest("malformed transaction filters")
		}
		lang := ctx.Language()
		loc := ctx.GetLocalizer(ViewTransactions)
		res := caller(ctx, api).SystemTransactions(ctx.Context(), q.Req, filter)
		if unauthorized(sessions, ctx, res.Err) {
			return nil
		}
		table, err := newTable(q, loc, res, transactionColumns(loc, lang, true), transactionID)
		if err != nil {
			return err
		}
		if q.Dispatch(table) {
			return ctx.Redirect(q.NextURL())
		}
		page := systemTransactionsPage{
			Chrome: chrome(ctx),
			Transactions: transactionsSection{
				WithAccount: true,
				Filter:      filter,
				TypeSelect:  renderer.TransactionTypeSelectList(loc, "type", filter.Type),
				Sort:        q.Req.Sort.String(),
				Size:        q.Req.Size,
				Table:       table.View(),
			},
		}
		if ctx.WantsJSON() {
			return ctx.JsonOk(page.Transactions.Table)
		}
		return ctx.RenderOk(ViewTransactions, page)
	}
}

type merchantTransactionsPage struct {
	Chrome
	ProfileError string
	AccountID    string
	Transactions transactionsSection
	Form         transactionForm
	FormType     renderer.ViewModel
	Feedback     string
}

func merchantTransactionsHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		return showMerchantTransactions(ctx, api, sessions, transactionForm{Type: string(core.PayIn)}, okState)
	}
}

// showMerchantTransactions lists the account of the merchant user with the
// totals of every transaction matching the filters.
func showMerchantTransactions(ctx *bankconsole.Context, api *bank.API, sessions *session.Manager, form transactionForm, state formState) error {
	c := caller(ctx, api)
	lang := ctx.Language()
	loc := ctx.GetLocalizer(ViewMerchantTransactions)
	page := merchantTransactionsPage{
		Chrome:   chrome(ctx),
		Form:     form,
		FormType: transactionTypeChoice(loc, form.Type),
		Feedback: state.feedback,
	}

	profile := c.MyMerchantProfile(ctx.Context())
	if unauthorized(sessions, ctx, profile.Err) {
		return nil
	}
	if !profile.HasData {
		page.ProfileError = profileError(ctx, profile)
		return ctx.JsonOrRender(ViewMerchantTransactions, page, page)
	}
	accountID := profile.Data.Merchant.AccountID
	if accountID == "" {
		page.ProfileError = loc.Get("NoAccount")
		return ctx.JsonOrRender(ViewMerchantTransactions, page, page)
	}
	page.AccountID = accountID

	q := readTable(ctx, "/merchant/transactions", "", pagination.Request{Size: pagination.DefaultPageSize, Sort: newestFirst})
	var filter bank.TransactionFilter
	if err := ctx.ParseQuery(&filter); err != nil {
		return ctx.BadRequest("malformed transaction filters")
	}
	res := c.AccountTransactions(ctx.Context(), accountID, q.Req, filter)
	if unauthorized(sessions, ctx, res.Err) {
		return nil
	}
	txs := qc.Typed[pagination.Page[bank.Transaction]]{
		Data:       res.Data.TransactionsPage,
		HasData:    res.HasData,
		Err:        res.Err,
		IsLoading:  res.IsLoading,
		IsFetching: res.IsFetching,
	}
	table, err := newTable(q, loc, txs, transactionColumns(loc, lang, false), transactionID)
	if err != nil {
		return err
	}
	if q.Dispatch(table) {
		return ctx.Redirect(q.NextURL())
	}
	page.Transactions = transactionsSection{
		Filter:     filter,
		TypeSelect: renderer.TransactionTypeSelectList(loc, "type", filter.Type),
		Sort:       q.Req.Sort.String(),
		Size:       q.Req.Size,
		Table:      table.View(),
		Summary:    res.Data.Summary,
	}
	summarize(lang, &page.Transactions)
	if ctx.WantsJSON() {
		return ctx.JsonOk(page.Transactions.Table)
	}
	return ctx.RenderWithErrors(state.status, ViewMerchantTransactions, page, state.errs)
}

// transactionTypeChoice is the type select of the create form, which has no
// "any" entry.
func transactionTypeChoice(loc localizer.Localizer, selected string) renderer.ViewModel {
	items := []renderer.SelectItem{
		{Value: string(core.PayIn), Label: "TransactionPAYIN", Selected: selected == string(core.PayIn)},
		{Value: string(core.PayOut), Label: "TransactionPAYOUT", Selected: selected == string(core.PayOut)},
	}
	return renderer.CreateSelectList(loc, "type", items, false)
}

func createTransactionHandler(api *bank.API, sessions *session.Manager) bankconsole.Handler {
	return func(ctx *bankconsole.Context) error {
		c := caller(ctx, api)
		var form transactionForm
		if err := ctx.ParseForm(&form); err != nil {
			return ctx.BadRequest("malformed transaction form")
		}
		amount, errs := form.validate(ctx.Validator())
		if !errs.Empty() {
			return showMerchantTransactions(ctx, api, sessions, form, formState{status: http.StatusUnprocessableEntity, errs: errs})
		}
		profile := c.MyMerchantProfile(ctx.Context())
		if !profile.HasData || profile.Data.Merchant.AccountID == "" {
			if unauthorized(sessions, ctx, profile.Err) {
				return nil
			}
			return showMerchantTransactions(ctx, api, sessions, form, formState{
				status:   http.StatusConflict,
				feedback: ctx.Localize(ViewMerchantTransactions, "NoAccount"),
			})
		}
		created, err := c.CreateTransaction(ctx.Context(), form.request(profile.Data.Merchant.AccountID, amount))
		if err != nil {
			if unauthorized(sessions, ctx, err) {
				return nil
			}
			ctx.Logger().Warn().Err(err).Msg("cannot create transaction")
			return showMerchantTransactions(ctx, api, sessions, form, formState{status: failureStatus(err), feedback: core.Feedback(err)})
		}
		ctx.Logger().Info().Str("transaction_id", created.TransactionID).Msg("transaction created")
		return ctx.Redirect("/merchant/transactions")
	}
}
