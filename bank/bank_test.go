package bank_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltegui/bankconsole/bank"
	"github.com/deltegui/bankconsole/clock"
	"github.com/deltegui/bankconsole/core"
	"github.com/deltegui/bankconsole/pagination"
	"github.com/deltegui/bankconsole/querycache"
	"github.com/deltegui/bankconsole/session"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	hits     map[string]*int32
	mux      *http.ServeMux
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{hits: map[string]*int32{}, mux: http.NewServeMux()}
}

func (f *fakeAPI) handle(pattern string, h http.HandlerFunc) {
	var n int32
	f.hits[pattern] = &n
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&n, 1)
		f.mu.Lock()
		f.requests = append(f.requests, r.Clone(context.Background()))
		f.mu.Unlock()
		h(w, r)
	})
}

func (f *fakeAPI) count(pattern string) int {
	return int(atomic.LoadInt32(f.hits[pattern]))
}

func (f *fakeAPI) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func setup(t *testing.T, api *fakeAPI) (*bank.API, *clock.Fake) {
	t.Helper()
	server := httptest.NewServer(api.mux)
	t.Cleanup(server.Close)
	clk := clock.NewFake(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	opts := querycache.DefaultOptions()
	opts.Clock = clk
	cache := querycache.New(opts)
	t.Cleanup(cache.Close)
	return bank.NewAPI(bank.NewClient(server.URL, 5*time.Second, zerolog.Nop()), cache), clk
}

func merchantsPage(names ...string) pagination.Page[bank.Merchant] {
	page := pagination.Page[bank.Merchant]{Size: 10, TotalElements: len(names), TotalPages: 1}
	for i, name := range names {
		page.Content = append(page.Content, bank.Merchant{MerchantID: string(rune('a' + i)), Name: name})
	}
	return page
}

func TestLogin(t *testing.T) {
	api := newFakeAPI()
	api.handle("POST /api/v1/auth/core/login", func(w http.ResponseWriter, r *http.Request) {
		var creds bank.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		writeJSON(w, http.StatusOK, bank.AuthResponse{Token: "jwt"})
	})
	b, _ := setup(t, api)

	out, err := b.Client().CoreLogin(context.Background(), bank.Credentials{Username: "ana", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", out.Token)

	_, err = b.Client().CoreLogin(context.Background(), bank.Credentials{Username: "ana", Password: "nope"})
	failure, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.FailureHTTP, failure.Kind)
	assert.Equal(t, http.StatusUnauthorized, failure.Code)
	assert.Equal(t, "Bad credentials", failure.Message)
	assert.True(t, failure.IsUnauthorized())
}

func TestListMerchantsSendsPageAndBearer(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/v1/merchants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, merchantsPage("Acme", "Globex"))
	})
	b, _ := setup(t, api)
	caller := b.For("s1", session.Core{Token: "tok"})

	req := pagination.Request{Page: 2, Size: 20, Sort: pagination.Sort{Field: "name", Direction: pagination.Descending}}
	res := caller.ListMerchants(context.Background(), req)
	require.NoError(t, res.Err)
	require.True(t, res.HasData)
	assert.Len(t, res.Data.Content, 2)

	sent := api.last()
	assert.Equal(t, "Bearer tok", sent.Header.Get("Authorization"))
	assert.Equal(t, "2", sent.URL.Query().Get("page"))
	assert.Equal(t, "20", sent.URL.Query().Get("size"))
	assert.Equal(t, "name,desc", sent.URL.Query().Get("sort"))

	caller.ListMerchants(context.Background(), req)
	assert.Equal(t, 1, api.count("GET /api/v1/merchants"), "second read is served from cache")
}

func TestSessionsDoNotShareEntries(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/v1/merchants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, merchantsPage(r.Header.Get("Authorization")))
	})
	b, _ := setup(t, api)
	req := pagination.Request{Size: 10}

	a := b.For("s1", session.Core{Token: "a"}).ListMerchants(context.Background(), req)
	other := b.For("s2", session.Core{Token: "b"}).ListMerchants(context.Background(), req)
	assert.Equal(t, "Bearer a", a.Data.Content[0].Name)
	assert.Equal(t, "Bearer b", other.Data.Content[0].Name)
}

func TestCreateMerchantRefetchesList(t *testing.T) {
	api := newFakeAPI()
	var mu sync.Mutex
	names := []string{"Acme"}
	api.handle("GET /api/v1/merchants", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, http.StatusOK, merchantsPage(names...))
	})
	api.handle("POST /api/v1/merchants", func(w http.ResponseWriter, r *http.Request) {
		var req bank.CreateMerchantRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		names = append(names, req.Name)
		mu.Unlock()
		writeJSON(w, http.StatusCreated, bank.Merchant{MerchantID: "new", Name: req.Name, CNPJ: req.CNPJ})
	})
	b, clk := setup(t, api)
	caller := b.For("s1", session.Core{Token: "tok"})
	req := pagination.Request{Size: 10}

	require.Len(t, caller.ListMerchants(context.Background(), req).Data.Content, 1)

	created, err := caller.CreateMerchant(context.Background(), bank.CreateMerchantRequest{Name: "Initech", CNPJ: "12345678000199"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.MerchantID)

	fresh := caller.ListMerchants(context.Background(), req)
	require.NoError(t, fresh.Err)
	assert.Len(t, fresh.Data.Content, 2)
	assert.False(t, fresh.IsFetching)
	assert.Equal(t, 2, api.count("GET /api/v1/merchants"))

	clk.Advance(time.Second)
	assert.Equal(t, 2, api.count("GET /api/v1/merchants"), "the list was already refetched by the read")
}

func TestFailedReadIsRetried(t *testing.T) {
	api := newFakeAPI()
	var fail atomic.Bool
	fail.Store(true)
	api.handle("GET /api/v1/merchants", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "down"})
			return
		}
		writeJSON(w, http.StatusOK, merchantsPage("Acme"))
	})
	b, _ := setup(t, api)
	caller := b.For("s1", session.Core{Token: "tok"})
	req := pagination.Request{Size: 10}

	res := caller.ListMerchants(context.Background(), req)
	require.Error(t, res.Err)

	fail.Store(false)
	res = caller.ListMerchants(context.Background(), req)
	require.NoError(t, res.Err)
	assert.Len(t, res.Data.Content, 1)
	assert.Equal(t, 2, api.count("GET /api/v1/merchants"))
}

func TestFailures(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/v1/merchants/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "text":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down\n"))
		case "json":
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Merchant not found"})
		case "garbage":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{not json"))
		}
	})
	b, _ := setup(t, api)
	caller := b.For("s1", session.Core{Token: "tok"})

	res := caller.GetMerchant(context.Background(), "text")
	failure, ok := core.AsFailure(res.Err)
	require.True(t, ok)
	assert.Equal(t, core.FailureHTTP, failure.Kind)
	assert.Equal(t, "upstream down", failure.Data)
	status, _ := core.StatusOf(res.Err)
	assert.Equal(t, "502", status)

	res = caller.GetMerchant(context.Background(), "json")
	failure, _ = core.AsFailure(res.Err)
	assert.Equal(t, "Merchant not found", failure.Message)

	res = caller.GetMerchant(context.Background(), "garbage")
	failure, _ = core.AsFailure(res.Err)
	assert.Equal(t, core.FailureParse, failure.Kind)
	assert.False(t, res.HasData)
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	client := bank.NewClient(url, time.Second, zerolog.Nop())
	_, err := client.MerchantLogin(context.Background(), bank.Credentials{})
	failure, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.FailureNetwork, failure.Kind)
	status, _ := failure.Status()
	assert.Equal(t, "FETCH_ERROR", status)
}

func TestTimeoutFailure(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)
	client := bank.NewClient(server.URL, 50*time.Millisecond, zerolog.Nop())
	_, err := client.CoreLogin(context.Background(), bank.Credentials{})
	failure, ok := core.AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, core.FailureTimeout, failure.Kind)
}

func TestAccountTransactionsFilters(t *testing.T) {
	api := newFakeAPI()
	api.handle("GET /api/v1/transactions/account/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, bank.AccountTransactions{
			TransactionsPage: pagination.Page[bank.Transaction]{
				Content:       []bank.Transaction{{TransactionID: "t1", Type: core.PayIn, Amount: 10}},
				TotalElements: 1,
			},
			Summary: &bank.TransactionSummary{Quantity: 1, TotalAmount: 10},
		})
	})
	b, _ := setup(t, api)
	caller := b.For("s1", session.Merchant{Token: "tok"})

	res := caller.AccountTransactions(context.Background(), "acc-1",
		pagination.Request{Size: 10, Sort: pagination.Sort{Field: "timestamp", Direction: pagination.Descending}},
		bank.TransactionFilter{StartDate: "2024-05-01T10:00", Type: "PAYIN", AccountID: "ignored"})
	require.NoError(t, res.Err)
	assert.Equal(t, int64(1), res.Data.Summary.Quantity)

	q := api.last().URL.Query()
	assert.Equal(t, "2024-05-01T10:00:00", q.Get("startDate"))
	assert.Equal(t, "PAYIN", q.Get("type"))
	assert.False(t, q.Has("endDate"))
	assert.False(t, q.Has("accountId"))
	assert.Equal(t, "/api/v1/transactions/account/acc-1", api.last().URL.Path)
}

func TestDeleteCoreUser(t *testing.T) {
	api := newFakeAPI()
	api.handle("DELETE /api/v1/core-users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	b, _ := setup(t, api)
	err := b.For("s1", session.Core{Token: "tok"}).DeleteCoreUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("DELETE /api/v1/core-users/{id}"))
}

func TestUpdateRequestsOnlySendChanges(t *testing.T) {
	email := "new@bank.com"
	raw, err := json.Marshal(bank.UpdateCoreUserRequest{Email: &email})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"new@bank.com"}`, string(raw))
	assert.True(t, bank.UpdateMerchantUserRequest{}.Empty())
	assert.False(t, bank.UpdateCoreUserRequest{Email: &email}.Empty())
}

func TestNetValue(t *testing.T) {
	net := bank.NetValue([]bank.Transaction{
		{Type: core.PayIn, Amount: 100},
		{Type: core.PayOut, Amount: 30.5},
		{Type: "OTHER", Amount: 99},
	})
	assert.InDelta(t, 69.5, net, 1e-9)
}

func TestTags(t *testing.T) {
	assert.Equal(t, "MerchantUser:LIST_FOR_MERCHANT_m1", bank.MerchantUsersTag("m1").String())
	assert.Equal(t, "Transaction:LIST_FOR_ACCOUNT_a1", bank.AccountTransactionsTag("a1").String())
	assert.Equal(t, "Account:a1-balance", bank.BalanceTag("a1").String())
	assert.Equal(t, "Account:a1-details", bank.DetailsTag("a1").String())
}
