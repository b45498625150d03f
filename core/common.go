package core

import "time"

const OneDayDuration = 24 * time.Hour

type ValidationError interface {
	error
	Format(string) string
	GetName() string
}

type Validator func(interface{}) map[string][]ValidationError

type Cypher interface {
	Encrypt(data []byte) ([]byte, error)
	Decrypt(data []byte) ([]byte, error)
}

// UserKind tells which population a console user belongs to. Core users are
// bank staff, merchant users belong to exactly one merchant.
type UserKind string

const (
	KindCore     UserKind = "core"
	KindMerchant UserKind = "merchant"
)

// Dashboard is the landing page for each kind of user.
func (kind UserKind) Dashboard() string {
	switch kind {
	case KindCore:
		return "/admin/dashboard"
	case KindMerchant:
		return "/merchant/dashboard"
	default:
		return "/"
	}
}

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleMerchantAdmin Role = "MERCHANT_ADMIN"
	RoleMerchantUser  Role = "MERCHANT_USER"
)

var AllRoles = []Role{RoleAdmin, RoleMerchantAdmin, RoleMerchantUser}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

type TransactionType string

const (
	PayIn  TransactionType = "PAYIN"
	PayOut TransactionType = "PAYOUT"
)

func (t TransactionType) Valid() bool {
	return t == PayIn || t == PayOut
}
