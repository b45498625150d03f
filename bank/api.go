package bank

import (
	"context"
	"net/http"
	"net/url"

	"github.com/deltegui/bankconsole/pagination"
	qc "github.com/deltegui/bankconsole/querycache"
	"github.com/deltegui/bankconsole/session"
)

// Tag types of the cached resources.
const (
	TagMerchant          = "Merchant"
	TagCoreUser          = "CoreUser"
	TagMerchantUser      = "MerchantUser"
	TagTransaction       = "Transaction"
	TagSystemTransaction = "SystemTransaction"
	TagAccount           = "Account"
	TagMyMerchantProfile = "MyMerchantProfile"
)

const (
	ownerMerchant = "MERCHANT"
	ownerAccount  = "ACCOUNT"
)

func MerchantUsersTag(merchantID string) qc.Tag {
	return qc.ScopedListTag(TagMerchantUser, ownerMerchant, merchantID)
}

func AccountTransactionsTag(accountID string) qc.Tag {
	return qc.ScopedListTag(TagTransaction, ownerAccount, accountID)
}

func BalanceTag(accountID string) qc.Tag {
	return qc.EntityTag(TagAccount, accountID+"-balance")
}

func DetailsTag(accountID string) qc.Tag {
	return qc.EntityTag(TagAccount, accountID+"-details")
}

// API reads through the cache on behalf of sessions.
type API struct {
	client *Client
	cache  *qc.Cache
}

func NewAPI(client *Client, cache *qc.Cache) *API {
	return &API{client: client, cache: cache}
}

func (api *API) Client() *Client {
	return api.client
}

// Caller performs calls for one session. Its token comes from the session
// value it was built with and its cache entries are scoped to the session id.
type Caller struct {
	api   *API
	scope string
	token string
}

func (api *API) For(id session.ID, s session.Session) Caller {
	token, _ := session.Bearer(s)
	return Caller{api: api, scope: string(id), token: token}
}

func (c Caller) query(ctx context.Context, endpoint string, params url.Values, fetch qc.Fetcher, provides func(any, error) []qc.Tag) qc.Result {
	return c.api.cache.Query(ctx, qc.Request{
		Key:      qc.NewKey(c.scope, endpoint, params),
		Fetch:    fetch,
		Provides: provides,
	})
}

func mutate[T any](ctx context.Context, c Caller, run func(context.Context) (T, error), invalidates func(T) []qc.Tag) (T, error) {
	out, err := c.api.cache.Mutate(ctx, qc.Mutation{
		Run: func(ctx context.Context) (any, error) {
			return run(ctx)
		},
		Invalidates: func(result any, _ error) []qc.Tag {
			typed, _ := result.(T)
			return invalidates(typed)
		},
	})
	typed, _ := out.(T)
	return typed, err
}

func withList[T any](typ string, list qc.Tag, id func(T) string) func(any, error) []qc.Tag {
	return func(data any, _ error) []qc.Tag {
		tags := []qc.Tag{list}
		page, ok := data.(pagination.Page[T])
		if !ok {
			return tags
		}
		for _, item := range page.Content {
			tags = append(tags, qc.EntityTag(typ, id(item)))
		}
		return tags
	}
}

func fixed(tags ...qc.Tag) func(any, error) []qc.Tag {
	return func(any, error) []qc.Tag { return tags }
}

func (c Caller) ListMerchants(ctx context.Context, page pagination.Request) qc.Typed[pagination.Page[Merchant]] {
	const path = "/api/v1/merchants"
	params := page.Values()
	r := c.query(ctx, path, params, func(ctx context.Context) (any, error) {
		return get[pagination.Page[Merchant]](ctx, c.api.client, c.token, path, params)
	}, withList(TagMerchant, qc.ListTag(TagMerchant), func(m Merchant) string { return m.MerchantID }))
	return qc.As[pagination.Page[Merchant]](r)
}

func (c Caller) GetMerchant(ctx context.Context, id string) qc.Typed[Merchant] {
	path := pathf("/api/v1/merchants/%s", id)
	r := c.query(ctx, path, nil, func(ctx context.Context) (any, error) {
		return get[Merchant](ctx, c.api.client, c.token, path, nil)
	}, fixed(qc.EntityTag(TagMerchant, id)))
	return qc.As[Merchant](r)
}

func (c Caller) CreateMerchant(ctx context.Context, req CreateMerchantRequest) (Merchant, error) {
	return mutate(ctx, c, func(ctx context.Context) (Merchant, error) {
		return send[Merchant](ctx, c.api.client, c.token, http.MethodPost, "/api/v1/merchants", req)
	}, func(Merchant) []qc.Tag {
		return []qc.Tag{qc.ListTag(TagMerchant)}
	})
}

func (c Caller) ListCoreUsers(ctx context.Context, page pagination.Request) qc.Typed[pagination.Page[CoreUser]] {
	const path = "/api/v1/core-users"
	params := page.Values()
	r := c.query(ctx, path, params, func(ctx context.Context) (any, error) {
		return get[pagination.Page[CoreUser]](ctx, c.api.client, c.token, path, params)
	}, withList(TagCoreUser, qc.ListTag(TagCoreUser), func(u CoreUser) string { return u.UserID }))
	return qc.As[pagination.Page[CoreUser]](r)
}

func (c Caller) GetCoreUser(ctx context.Context, id string) qc.Typed[CoreUser] {
	path := pathf("/api/v1/core-users/%s", id)
	r := c.query(ctx, path, nil, func(ctx context.Context) (any, error) {
		return get[CoreUser](ctx, c.api.client, c.token, path, nil)
	}, fixed(qc.EntityTag(TagCoreUser, id)))
	return qc.As[CoreUser](r)
}

func (c Caller) CreateCoreUser(ctx context.Context, req CreateCoreUserRequest) (CoreUser, error) {
	return mutate(ctx, c, func(ctx context.Context) (CoreUser, error) {
		return send[CoreUser](ctx, c.api.client, c.token, http.MethodPost, "/api/v1/core-users", req)
	}, func(CoreUser) []qc.Tag {
		return []qc.Tag{qc.ListTag(TagCoreUser)}
	})
}

func (c Caller) UpdateCoreUser(ctx context.Context, id string, req UpdateCoreUserRequest) (CoreUser, error) {
	return mutate(ctx, c, func(ctx context.Context) (CoreUser, error) {
		return send[CoreUser](ctx, c.api.client, c.token, http.MethodPut, pathf("/api/v1/core-users/%s", id), req)
	}, func(CoreUser) []qc.Tag {
		return []qc.Tag{qc.EntityTag(TagCoreUser, id), qc.ListTag(TagCoreUser)}
	})
}

func (c Caller) DeleteCoreUser(ctx context.Context, id string) error {
	_, err := mutate(ctx, c, func(ctx context.Context) (struct{}, error) {
		return send[struct{}](ctx, c.api.client, c.token, http.MethodDelete, pathf("/api/v1/core-users/%s", id), nil)
	}, func(struct{}) []qc.Tag {
		return []qc.Tag{qc.EntityTag(TagCoreUser, id), qc.ListTag(TagCoreUser)}
	})
	return err
}

func (c Caller) ListMerchantUsers(ctx context.Context, merchantID string, page pagination.Request) qc.Typed[pagination.Page[MerchantUser]] {
	path := pathf("/api/v1/merchant-users/by-merchant/%s", merchantID)
	params := page.Values()
	r := c.query(ctx, path, params, func(ctx context.Context) (any, error) {
		return get[pagination.Page[MerchantUser]](ctx, c.api.client, c.token, path, params)
	}, withList(TagMerchantUser, MerchantUsersTag(merchantID), func(u MerchantUser) string { return u.UserID }))
	return qc.As[pagination.Page[MerchantUser]](r)
}

func (c Caller) CreateMerchantUser(ctx context.Context, req CreateMerchantUserRequest) (MerchantUser, error) {
	return mutate(ctx, c, func(ctx context.Context) (MerchantUser, error) {
		return send[MerchantUser](ctx, c.api.client, c.token, http.MethodPost, "/api/v1/merchant-users", req)
	}, func(MerchantUser) []qc.Tag {
		return []qc.Tag{MerchantUsersTag(req.MerchantID)}
	})
}

// UpdateMerchantUser invalidates the list of the merchant the API reports
// the user belongs to.
func (c Caller) UpdateMerchantUser(ctx context.Context, id string, req UpdateMerchantUserRequest) (MerchantUser, error) {
	return mutate(ctx, c, func(ctx context.Context) (MerchantUser, error) {
		return send[MerchantUser](ctx, c.api.client, c.token, http.MethodPut, pathf("/api/v1/merchant-users/%s", id), req)
	}, func(updated MerchantUser) []qc.Tag {
		list := qc.ListTag(TagMerchantUser)
		if updated.MerchantID != "" {
			list = MerchantUsersTag(updated.MerchantID)
		}
		return []qc.Tag{qc.EntityTag(TagMerchantUser, id), list}
	})
}

func (c Caller) DeleteMerchantUser(ctx context.Context, id, merchantID string) error {
	_, err := mutate(ctx, c, func(ctx context.Context) (struct{}, error) {
		return send[struct{}](ctx, c.api.client, c.token, http.MethodDelete, pathf("/api/v1/merchant-users/%s", id), nil)
	}, func(struct{}) []qc.Tag {
		return []qc.Tag{qc.EntityTag(TagMerchantUser, id), MerchantUsersTag(merchantID)}
	})
	return err
}

func (c Caller) MyMerchantProfile(ctx context.Context) qc.Typed[MyMerchantProfile] {
	const path = "/api/v1/merchant-users/me"
	r := c.query(ctx, path, nil, func(ctx context.Context) (any, error) {
		return get[MyMerchantProfile](ctx, c.api.client, c.token, path, nil)
	}, func(data any, _ error) []qc.Tag {
		tags := []qc.Tag{qc.EntityTag(TagMyMerchantProfile, "PROFILE")}
		profile, ok := data.(MyMerchantProfile)
		if !ok {
			return tags
		}
		tags = append(tags,
			qc.EntityTag(TagMerchant, profile.Merchant.MerchantID),
			qc.EntityTag(TagMerchantUser, profile.User.UserID))
		if account := profile.Merchant.AccountID; account != "" {
			tags = append(tags, qc.EntityTag(TagAccount, account), AccountTransactionsTag(account))
		}
		return tags
	})
	return qc.As[MyMerchantProfile](r)
}

func (c Caller) AccountBalance(ctx context.Context, accountID string) qc.Typed[AccountBalance] {
	path := pathf("/api/v1/accounts/%s/balance", accountID)
	r := c.query(ctx, path, nil, func(ctx context.Context) (any, error) {
		return get[AccountBalance](ctx, c.api.client, c.token, path, nil)
	}, fixed(BalanceTag(accountID)))
	return qc.As[AccountBalance](r)
}

func (c Caller) AccountDetails(ctx context.Context, accountID string) qc.Typed[AccountDetails] {
	path := pathf("/api/v1/accounts/%s/details", accountID)
	r := c.query(ctx, path, nil, func(ctx context.Context) (any, error) {
		return get[AccountDetails](ctx, c.api.client, c.token, path, nil)
	}, fixed(DetailsTag(accountID)))
	return qc.As[AccountDetails](r)
}

func (c Caller) AccountTransactions(ctx context.Context, accountID string, page pagination.Request, filter TransactionFilter) qc.Typed[AccountTransactions] {
	path := pathf("/api/v1/transactions/account/%s", accountID)
	params := page.Values()
	filter.AccountID = ""
	filter.Encode(params)
	r := c.query(ctx, path, params, func(ctx context.Context) (any, error) {
		return get[AccountTransactions](ctx, c.api.client, c.token, path, params)
	}, func(data any, _ error) []qc.Tag {
		tags := []qc.Tag{AccountTransactionsTag(accountID)}
		if result, ok := data.(AccountTransactions); ok {
			for _, tx := range result.TransactionsPage.Content {
				tags = append(tags, qc.EntityTag(TagTransaction, tx.TransactionID))
			}
		}
		return tags
	})
	return qc.As[AccountTransactions](r)
}

func (c Caller) SystemTransactions(ctx context.Context, page pagination.Request, filter TransactionFilter) qc.Typed[pagination.Page[Transaction]] {
	const path = "/api/v1/transactions/system-wide"
	params := page.Values()
	filter.Encode(params)
	r := c.query(ctx, path, params, func(ctx context.Context) (any, error) {
		return get[pagination.Page[Transaction]](ctx, c.api.client, c.token, path, params)
	}, withList(TagSystemTransaction, qc.ListTag(TagSystemTransaction), func(t Transaction) string { return t.TransactionID }))
	return qc.As[pagination.Page[Transaction]](r)
}

func (c Caller) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (Transaction, error) {
	return mutate(ctx, c, func(ctx context.Context) (Transaction, error) {
		return send[Transaction](ctx, c.api.client, c.token, http.MethodPost, "/api/v1/transactions", req)
	}, func(Transaction) []qc.Tag {
		return []qc.Tag{AccountTransactionsTag(req.AccountID), BalanceTag(req.AccountID)}
	})
}
