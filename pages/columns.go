package pages

import (
	"html/template"
	"strconv"

	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/datatable"
	"github.com/deltegui/bankconsole/localizer"
	"github.com/deltegui/bankconsole/renderer"
)

func merchantColumns(loc localizer.Localizer) []datatable.Column[bank.Merchant] {
	return []datatable.Column[bank.Merchant]{
		{
			Header:   loc.Get("ColumnName"),
			Accessor: "name",
			Sortable: true,
			Render: func(m bank.Merchant) template.HTML {
				return datatable.Link("/admin/merchants/"+m.MerchantID, m.Name)
			},
		},
		{Header: loc.Get("ColumnCNPJ"), Accessor: "cnpj", Sortable: true},
		{Header: loc.Get("ColumnAccount"), Accessor: "accountId"},
		{Header: loc.Get("ColumnID"), Accessor: "merchantId", CellClass: "text-gray-400 font-mono"},
	}
}

func merchantID(m bank.Merchant, _ int) string { return m.MerchantID }

func enabledBadge(loc localizer.Localizer, enabled bool) template.HTML {
	if enabled {
		return datatable.Badge("bg-green-100 text-green-800", loc.Get("Yes"))
	}
	return datatable.Badge("bg-red-100 text-red-800", loc.Get("No"))
}

func roleLabel(loc localizer.Localizer, role core.Role) template.HTML {
	return datatable.Text(loc.Get("Role" + string(role)))
}

// actions renders the edit link and the delete form of a row. Delete posts
// through the layout script, which asks for confirmation first.
func actions(loc localizer.Localizer, edit, remove string) template.HTML {
	return template.HTML(`<span class="space-x-2">`) +
		datatable.Link(edit, loc.Get("Edit")) +
		template.HTML(`<button type="button" class="text-red-600 hover:text-red-900" data-delete="`+
			template.HTMLEscapeString(remove)+`" data-confirm="`+
			template.HTMLEscapeString(loc.Get("DeleteConfirm"))+`">`) +
		datatable.Text(loc.Get("Delete")) +
		template.HTML(`</button></span>`)
}

func coreUserColumns(loc localizer.Localizer) []datatable.Column[bank.CoreUser] {
	return []datatable.Column[bank.CoreUser]{
		{Header: loc.Get("ColumnUsername"), Accessor: "username", Sortable: true},
		{Header: loc.Get("ColumnFullName"), Accessor: "fullName", Sortable: true},
		{Header: loc.Get("ColumnEmail"), Accessor: "email", Sortable: true},
		{
			Header:   loc.Get("ColumnRole"),
			Accessor: "role",
			Render:   func(u bank.CoreUser) template.HTML { return roleLabel(loc, u.Role) },
		},
		{
			Header: loc.Get("ColumnEnabled"),
			Render: func(u bank.CoreUser) template.HTML {
				return enabledBadge(loc, u.Enabled == nil || *u.Enabled)
			},
		},
		{
			Header: loc.Get("ColumnActions"),
			Render: func(u bank.CoreUser) template.HTML {
				base := "/admin/core-users/" + u.UserID
				return actions(loc, base+"/edit", base+"/delete")
			},
		},
	}
}

func coreUserID(u bank.CoreUser, _ int) string { return u.UserID }

// merchantUserColumns hides the action column from users that cannot manage.
func merchantUserColumns(loc localizer.Localizer, scope usersTarget) []datatable.Column[bank.MerchantUser] {
	cols := []datatable.Column[bank.MerchantUser]{
		{Header: loc.Get("ColumnUsername"), Accessor: "username", Sortable: true},
		{Header: loc.Get("ColumnFullName"), Accessor: "fullName", Sortable: true},
		{Header: loc.Get("ColumnEmail"), Accessor: "email", Sortable: true},
		{
			Header:   loc.Get("ColumnRole"),
			Accessor: "role",
			Sortable: true,
			Render:   func(u bank.MerchantUser) template.HTML { return roleLabel(loc, u.Role) },
		},
		{
			Header:   loc.Get("ColumnEnabled"),
			Accessor: "enabled",
			Render:   func(u bank.MerchantUser) template.HTML { return enabledBadge(loc, u.Enabled) },
		},
	}
	if !scope.CanManage {
		return cols
	}
	return append(cols, datatable.Column[bank.MerchantUser]{
		Header: loc.Get("ColumnActions"),
		Render: func(u bank.MerchantUser) template.HTML {
			base := scope.userPath(u.UserID)
			return actions(loc, base+"/edit", base+"/delete")
		},
	})
}

func merchantUserID(u bank.MerchantUser, _ int) string { return u.UserID }

func amountClass(tx bank.Transaction) string {
	switch tx.Type {
	case core.PayIn:
		return "text-green-600"
	case core.PayOut:
		return "text-red-600"
	default:
		return ""
	}
}

// transactionColumns lists transactions. The account column is only shown
// on lists spanning accounts.
func transactionColumns(loc localizer.Localizer, lang string, withAccount bool) []datatable.Column[bank.Transaction] {
	cols := []datatable.Column[bank.Transaction]{
		{Header: loc.Get("ColumnID"), Accessor: "transactionId", CellClass: "text-gray-400 font-mono"},
	}
	if withAccount {
		cols = append(cols, datatable.Column[bank.Transaction]{
			Header: loc.Get("ColumnAccount"), Accessor: "accountId", Sortable: true,
		})
	}
	return append(cols,
		datatable.Column[bank.Transaction]{
			Header:   loc.Get("ColumnType"),
			Accessor: "type",
			Sortable: true,
			Render: func(tx bank.Transaction) template.HTML {
				class := "bg-green-100 text-green-800"
				if tx.Type == core.PayOut {
					class = "bg-red-100 text-red-800"
				}
				return datatable.Badge(class, loc.Get("Transaction"+string(tx.Type)))
			},
		},
		datatable.Column[bank.Transaction]{
			Header:        loc.Get("ColumnAmount"),
			Accessor:      "amount",
			Sortable:      true,
			CellClassFunc: amountClass,
			Render: func(tx bank.Transaction) template.HTML {
				return datatable.Text(renderer.Money(lang, tx.Amount))
			},
		},
		datatable.Column[bank.Transaction]{
			Header:   loc.Get("ColumnTimestamp"),
			Accessor: "timestamp",
			Sortable: true,
			Render: func(tx bank.Transaction) template.HTML {
				return datatable.Text(renderer.Timestamp(lang, tx.Timestamp))
			},
		},
		datatable.Column[bank.Transaction]{Header: loc.Get("ColumnStatus"), Accessor: "status"},
		datatable.Column[bank.Transaction]{Header: loc.Get("ColumnDescription"), Accessor: "description"},
	)
}

func transactionID(tx bank.Transaction, index int) string {
	if tx.TransactionID == "" {
		return "tx-" + strconv.Itoa(index)
	}
	return tx.TransactionID
}
