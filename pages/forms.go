package pages

import (
	"strings"

	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/validator"
)

// Form fields are validated before any call to the banking API. Failures are
// keyed by the names below, which are also the keys of the errors bundle.
const (
	fieldLoginUsername   = "LoginUsername"
	fieldLoginPassword   = "LoginPassword"
	fieldMerchantName    = "Name"
	fieldCNPJ            = "CNPJ"
	fieldUsername        = "Username"
	fieldPassword        = "Password"
	fieldEmail           = "Email"
	fieldFullName        = "FullName"
	fieldRole            = "Role"
	fieldTransactionType = "TransactionType"
	fieldAmount          = "Amount"
	fieldNoChanges       = "NoChanges"
)

var (
	coreRoles     = []core.Role{core.RoleAdmin}
	merchantRoles = []core.Role{core.RoleMerchantAdmin, core.RoleMerchantUser}
)

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (f loginForm) validate(v core.Validator) validator.Errors {
	return validator.Check(v, f,
		validator.Required(fieldLoginUsername, f.Username),
		validator.Required(fieldLoginPassword, f.Password))
}

type merchantForm struct {
	Name string `form:"name" valtruc:"min=2, max=100, required"`
	CNPJ string `form:"cnpj"`
}

func (f merchantForm) validate(v core.Validator) validator.Errors {
	f.Name = strings.TrimSpace(f.Name)
	return validator.Check(v, f,
		validator.Digits(fieldCNPJ, strings.TrimSpace(f.CNPJ), 14))
}

func (f merchantForm) request() bank.CreateMerchantRequest {
	return bank.CreateMerchantRequest{
		Name: strings.TrimSpace(f.Name),
		CNPJ: strings.TrimSpace(f.CNPJ),
	}
}

// createUserForm is shared by core and merchant users.
type createUserForm struct {
	Username string `form:"username" valtruc:"min=3, max=50, required"`
	Password string `form:"password" valtruc:"min=8, max=100, required"`
	Email    string `form:"email"`
	FullName string `form:"fullName"`
	Role     string `form:"role"`
}

type editUserForm struct {
	Email    string `form:"email"`
	FullName string `form:"fullName"`
	Password string `form:"password"`
	Role     string `form:"role"`
	Enabled  bool   `form:"enabled"`
}

func roleRule(role string, allowed []core.Role) *validator.FieldError {
	for _, r := range allowed {
		if core.Role(role) == r {
			return nil
		}
	}
	return &validator.FieldError{Field: fieldRole, Code: "role"}
}

func (f createUserForm) validate(v core.Validator, roles []core.Role) validator.Errors {
	f.Username = strings.TrimSpace(f.Username)
	return validator.Check(v, f,
		validator.Email(fieldEmail, strings.TrimSpace(f.Email)),
		validator.Required(fieldFullName, f.FullName),
		roleRule(f.Role, roles))
}

// userChanges is the diff of an edit form against the stored user. Only the
// changed fields are validated and sent.
type userChanges struct {
	Email    *string
	FullName *string
	Password *string
	Role     *core.Role
	Enabled  *bool
}

func (c userChanges) empty() bool {
	return c.Email == nil && c.FullName == nil && c.Password == nil && c.Role == nil && c.Enabled == nil
}

type storedUser struct {
	Email    string
	FullName string
	Role     core.Role
	Enabled  bool
}

func (f editUserForm) diff(current storedUser) userChanges {
	var c userChanges
	if email := strings.TrimSpace(f.Email); email != current.Email {
		c.Email = &email
	}
	if name := strings.TrimSpace(f.FullName); name != current.FullName {
		c.FullName = &name
	}
	if f.Password != "" {
		password := f.Password
		c.Password = &password
	}
	if role := core.Role(f.Role); role != "" && role != current.Role {
		c.Role = &role
	}
	if f.Enabled != current.Enabled {
		enabled := f.Enabled
		c.Enabled = &enabled
	}
	return c
}

func (c userChanges) validate(roles []core.Role) validator.Errors {
	errs := validator.Check(nil, nil, validator.Changed(!c.empty()))
	if c.Email != nil {
		errs.Add(validator.Email(fieldEmail, *c.Email))
	}
	if c.FullName != nil {
		errs.Add(validator.Required(fieldFullName, *c.FullName))
	}
	if c.Password != nil {
		errs.Add(validator.Length(fieldPassword, *c.Password, 8, 100))
	}
	if c.Role != nil {
		errs.Add(roleRule(string(*c.Role), roles))
	}
	return errs
}

func (c userChanges) coreRequest() bank.UpdateCoreUserRequest {
	return bank.UpdateCoreUserRequest{
		Email:    c.Email,
		FullName: c.FullName,
		Password: c.Password,
		Role:     c.Role,
		Enabled:  c.Enabled,
	}
}

func (f createUserForm) coreRequest() bank.CreateCoreUserRequest {
	return bank.CreateCoreUserRequest{
		Username: strings.TrimSpace(f.Username),
		Password: f.Password,
		Email:    strings.TrimSpace(f.Email),
		FullName: strings.TrimSpace(f.FullName),
		Role:     core.Role(f.Role),
	}
}

func (f createUserForm) merchantRequest(merchantID string) bank.CreateMerchantUserRequest {
	return bank.CreateMerchantUserRequest{
		Username:   strings.TrimSpace(f.Username),
		Password:   f.Password,
		Email:      strings.TrimSpace(f.Email),
		FullName:   strings.TrimSpace(f.FullName),
		Role:       core.Role(f.Role),
		MerchantID: merchantID,
	}
}

func (c userChanges) merchantRequest() bank.UpdateMerchantUserRequest {
	return bank.UpdateMerchantUserRequest{
		Email:    c.Email,
		FullName: c.FullName,
		Password: c.Password,
		Role:     c.Role,
		Enabled:  c.Enabled,
	}
}

type transactionForm struct {
	Type        string `form:"type"`
	Amount      string `form:"amount"`
	Description string `form:"description"`
}

func (f transactionForm) validate(v core.Validator) (float64, validator.Errors) {
	amount, amountErr := validator.Amount(fieldAmount, f.Amount)
	var typeErr *validator.FieldError
	if !core.TransactionType(f.Type).Valid() {
		typeErr = &validator.FieldError{Field: fieldTransactionType, Code: "required"}
	}
	return amount, validator.Check(v, f, typeErr, amountErr)
}

func (f transactionForm) request(accountID string, amount float64) bank.CreateTransactionRequest {
	return bank.CreateTransactionRequest{
		AccountID:   accountID,
		Type:        core.TransactionType(f.Type),
		Amount:      amount,
		Description: strings.TrimSpace(f.Description),
	}
}
