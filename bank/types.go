package bank

import (
	"net/url"

	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/pagination"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type Merchant struct {
	MerchantID string `json:"merchantId"`
	Name       string `json:"name"`
	CNPJ       string `json:"cnpj,omitempty"`
	AccountID  string `json:"accountId,omitempty"`
}

type CreateMerchantRequest struct {
	Name string `json:"name"`
	CNPJ string `json:"cnpj"`
}

type CoreUser struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Role     core.Role `json:"role,omitempty"`
	Enabled  *bool     `json:"enabled,omitempty"`
}

type CreateCoreUserRequest struct {
	Username string    `json:"username"`
	Password string    `json:"password"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Role     core.Role `json:"role"`
}

// UpdateCoreUserRequest only carries the fields that changed.
type UpdateCoreUserRequest struct {
	Email    *string    `json:"email,omitempty"`
	FullName *string    `json:"fullName,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *core.Role `json:"role,omitempty"`
	Enabled  *bool      `json:"enabled,omitempty"`
}

func (r UpdateCoreUserRequest) Empty() bool {
	return r.Email == nil && r.FullName == nil && r.Password == nil && r.Role == nil && r.Enabled == nil
}

type MerchantUser struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       core.Role `json:"role"`
	MerchantID string    `json:"merchantId"`
	Enabled    bool      `json:"enabled"`
}

type CreateMerchantUserRequest struct {
	Username   string    `json:"username"`
	Password   string    `json:"password"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       core.Role `json:"role"`
	MerchantID string    `json:"merchantId"`
}

type UpdateMerchantUserRequest struct {
	FullName *string    `json:"fullName,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *core.Role `json:"role,omitempty"`
	Enabled  *bool      `json:"enabled,omitempty"`
}

func (r UpdateMerchantUserRequest) Empty() bool {
	return r.Email == nil && r.FullName == nil && r.Password == nil && r.Role == nil && r.Enabled == nil
}

type MyMerchantProfile struct {
	User     MerchantUser `json:"user"`
	Merchant Merchant     `json:"merchant"`
}

type Transaction struct {
	TransactionID string               `json:"transactionId"`
	AccountID     string               `json:"accountId"`
	Type          core.TransactionType `json:"type"`
	Amount        float64              `json:"amount"`
	Timestamp     string               `json:"timestamp"`
	Description   string               `json:"description,omitempty"`
	Status        string               `json:"status"`
}

type CreateTransactionRequest struct {
	AccountID   string               `json:"accountId"`
	Type        core.TransactionType `json:"type"`
	Amount      float64              `json:"amount"`
	Description string               `json:"description,omitempty"`
}

type TransactionSummary struct {
	Quantity    int64   `json:"quantity"`
	TotalAmount float64 `json:"totalAmount"`
}

// AccountTransactions is the page of an account plus the totals of every
// transaction matching the filters.
type AccountTransactions struct {
	TransactionsPage pagination.Page[Transaction] `json:"transactionsPage"`
	Summary          *TransactionSummary          `json:"summary,omitempty"`
}

type AccountBalance struct {
	AccountID string  `json:"accountId"`
	Balance   float64 `json:"balance"`
}

type AccountDetails struct {
	AccountID         string  `json:"accountId"`
	AccountNumber     string  `json:"accountNumber"`
	Balance           float64 `json:"balance"`
	AccountHolderType string  `json:"accountHolderType"`
	HolderID          string  `json:"holderId"`
}

// TransactionFilter narrows transaction lists. Dates come from
// datetime-local inputs; empty fields are not sent.
type TransactionFilter struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Type      string `form:"type"`
	AccountID string `form:"accountId"`
}

func (f TransactionFilter) Encode(values url.Values) {
	pagination.SetNonEmpty(values, map[string]string{
		"startDate": pagination.FormatDateTimeParam(f.StartDate),
		"endDate":   pagination.FormatDateTimeParam(f.EndDate),
		"type":      f.Type,
		"accountId": f.AccountID,
	})
}

// NetValue is pay-ins minus pay-outs.
func NetValue(transactions []Transaction) float64 {
	net := 0.0
	for _, tx := range transactions {
		switch tx.Type {
		case core.PayIn:
			net += tx.Amount
		case core.PayOut:
			net -= tx.Amount
		}
	}
	return net
}
