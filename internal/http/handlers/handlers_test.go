package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSales struct {
	lastInput service.CreateSaleInput
	lastPage  int
	lastLimit int
	err       error
}

func (s *stubSales) CreateSale(ctx context.Context, in service.CreateSaleInput) (*domain.SaleResult, error) {
	s.lastInput = in
	if s.err != nil {
		return nil, s.err
	}
	sale := &domain.Sale{ID: uuid.New(), Amount: in.Amount, CreatedAt: time.Now()}
	sale.SellerID, _ = uuid.Parse(in.SellerID)
	return &domain.SaleResult{
		Sale: sale,
		Commissions: []domain.Commission{
			{ID: uuid.New(), SaleID: sale.ID, UserID: sale.SellerID, UserName: "Luis", Amount: decimal.RequireFromString("100.00"), Percentage: decimal.RequireFromString("10.00"), Level: 1},
		},
		Summary: domain.SaleSummary{TotalSale: in.Amount, TotalCommissions: decimal.RequireFromString("100.00"), CommissionsCount: 1},
	}, nil
}

func (s *stubSales) GetSale(ctx context.Context, id string) (*domain.SaleResult, error) {
	return nil, s.err
}

func (s *stubSales) DeleteSale(ctx context.Context, id string, req service.RequestInfo) error {
	return s.err
}

func (s *stubSales) ListSales(ctx context.Context, page, limit int) (*domain.SalePage, error) {
	s.lastPage, s.lastLimit = page, limit
	return &domain.SalePage{Sales: []domain.SaleView{}, Page: page, Limit: limit}, s.err
}

func (s *stubSales) SearchSales(ctx context.Context, query string, page int) (*domain.SalePage, error) {
	s.lastPage = page
	return &domain.SalePage{Sales: []domain.SaleView{}, Page: page}, s.err
}

type stubAffiliates struct{ err error }

func (a *stubAffiliates) Create(ctx context.Context, in service.CreateAffiliateInput) (*domain.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.User{ID: uuid.New(), Name: in.Name, Email: in.Email, Level: in.Level, PasswordHash: "hash"}, nil
}

func (a *stubAffiliates) Get(ctx context.Context, id string) (*domain.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ValidationError("invalid id", nil)
	}
	return &domain.User{ID: parsed, Name: "Ana", Level: 2}, nil
}

func (a *stubAffiliates) List(ctx context.Context) ([]domain.AffiliateView, error) {
	return []domain.AffiliateView{}, a.err
}

func (a *stubAffiliates) Sellers(ctx context.Context) ([]domain.User, error) {
	return []domain.User{}, a.err
}

func (a *stubAffiliates) PotentialReferrers(ctx context.Context, level int) ([]domain.User, error) {
	return []domain.User{}, a.err
}

func (a *stubAffiliates) Referrals(ctx context.Context, id string) (*domain.ReferralSummary, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.ReferralSummary{Referrals: []domain.Referral{}}, nil
}

type stubDashboard struct{}

func (stubDashboard) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	return &domain.DashboardSummary{NumberOfSales: 2, TotalCommissionsAmount: decimal.RequireFromString("262.50"), NumberOfAffiliates: 6}, nil
}

func (stubDashboard) CommissionsByLevel(ctx context.Context) ([]domain.LevelTotal, error) {
	return []domain.LevelTotal{}, nil
}

func (stubDashboard) CommissionsByMonth(ctx context.Context) ([]domain.MonthTotal, error) {
	return []domain.MonthTotal{}, nil
}

func (stubDashboard) TopEarners(ctx context.Context) ([]domain.AffiliateEarnings, error) {
	return []domain.AffiliateEarnings{}, nil
}

func (stubDashboard) AffiliatesByLevel(ctx context.Context, level int) ([]domain.AffiliateEarnings, error) {
	if !domain.ValidLevel(level) {
		return nil, domain.NotFoundError("level not found")
	}
	return []domain.AffiliateEarnings{}, nil
}

func (stubDashboard) LatestSales(ctx context.Context) ([]domain.SaleView, error) {
	return []domain.SaleView{}, nil
}

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error) {
	if in.Password != "123456" {
		return nil, domain.UnauthorizedError("invalid email or password")
	}
	return &service.LoginResult{Token: "tok", User: &domain.User{Email: in.Email}}, nil
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/sales", h.CreateSale)
	r.GET("/sales", h.ListSales)
	r.GET("/sales/search", h.SearchSales)
	r.GET("/sales/:id", h.GetSale)
	r.DELETE("/sales/:id", h.DeleteSale)
	r.POST("/affiliates", h.CreateAffiliate)
	r.GET("/affiliates/:id", h.GetAffiliate)
	r.GET("/affiliates/referrers", h.PotentialReferrers)
	r.GET("/affiliates/:id/referrals", h.Referrals)
	r.GET("/levels/:level", h.Level)
	r.GET("/dashboard/summary", h.DashboardSummary)
	r.POST("/auth/login", h.Login)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error struct {
		Kind    string              `json:"kind"`
		Message string              `json:"message"`
		Details map[string][]string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateSaleCreated(t *testing.T) {
	sales := &stubSales{}
	r := newRouter(NewHandler(sales, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	seller := uuid.New()

	for _, amount := range []string{`1000`, `"1000.00"`} {
		w := do(r, http.MethodPost, "/sales", `{"seller_id":"`+seller.String()+`","amount":`+amount+`}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.True(t, sales.lastInput.Amount.Equal(decimal.NewFromInt(1000)))

		var body struct {
			Sale struct {
				ID       string `json:"id"`
				SellerID string `json:"seller_id"`
			} `json:"sale"`
			Commissions []struct {
				UserName   string `json:"user_name"`
				Amount     string `json:"amount"`
				Percentage string `json:"percentage"`
				Level      int    `json:"level"`
			} `json:"commissions"`
			Summary struct {
				CommissionsCount int `json:"commissions_count"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, seller.String(), body.Sale.SellerID)
		require.Len(t, body.Commissions, 1)
		assert.Equal(t, "100", body.Commissions[0].Amount)
		assert.Equal(t, 1, body.Commissions[0].Level)
		assert.Equal(t, 1, body.Summary.CommissionsCount)
	}
}

func TestCreateSaleErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", domain.ValidationError("invalid sale", map[string][]string{"amount": {"must be greater than 0"}}), http.StatusBadRequest, "validation"},
		{"not found", domain.NotFoundError("seller not found"), http.StatusNotFound, "not_found"},
		{"persistence", domain.PersistenceError("failed to record sale", errors.New("boom")), http.StatusInternalServerError, "persistence"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "persistence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewHandler(&stubSales{err: tt.err}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
			w := do(r, http.MethodPost, "/sales", `{"seller_id":"`+uuid.NewString()+`","amount":10}`)
			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.kind, body.Error.Kind)
			assert.NotContains(t, body.Error.Message, "boom")
			if tt.kind == "validation" {
				assert.Equal(t, []string{"must be greater than 0"}, body.Error.Details["amount"])
			}
		})
	}
}

func TestCreateSaleBadBody(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	for _, body := range []string{`{`, `{"seller_id":"x","amount":"abc"}`} {
		w := do(r, http.MethodPost, "/sales", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeError(t, w).Error.Kind)
	}
}

func TestListSalesQuery(t *testing.T) {
	sales := &stubSales{}
	r := newRouter(NewHandler(sales, &stubAffiliates{}, stubDashboard{}, stubAuth{}))

	w := do(r, http.MethodGet, "/sales?page=2&limit=20", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, sales.lastPage)
	assert.Equal(t, 20, sales.lastLimit)

	w = do(r, http.MethodGet, "/sales?page=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/sales/search?query=luis&page=3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, sales.lastPage)
}

func TestDeleteSaleNotFound(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{err: domain.NotFoundError("sale not found")}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	w := do(r, http.MethodDelete, "/sales/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/sales/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAffiliate(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	w := do(r, http.MethodPost, "/affiliates", `{"name":"Ana","email":"ana@example.com","password":"123456","level":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "hash")

	r = newRouter(NewHandler(&stubSales{}, &stubAffiliates{err: domain.ConflictError("email already registered", nil)}, stubDashboard{}, stubAuth{}))
	w = do(r, http.MethodPost, "/affiliates", `{"name":"Ana","email":"ana@example.com","password":"123456","level":2}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeError(t, w).Error.Kind)
}

func TestReferrals(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	w := do(r, http.MethodGet, "/affiliates/"+uuid.NewString()+"/referrals", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"referrals":[]`)

	r = newRouter(NewHandler(&stubSales{}, &stubAffiliates{err: domain.NotFoundError("affiliate not found")}, stubDashboard{}, stubAuth{}))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/affiliates/"+uuid.NewString()+"/referrals", "").Code)
}

func TestPotentialReferrersBadLevel(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/affiliates/referrers?level=two", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/affiliates/referrers?level=1", "").Code)
}

func TestLevel(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))

	w := do(r, http.MethodGet, "/levels/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"manager"`)

	for _, p := range []string{"/levels/0", "/levels/4", "/levels/abc"} {
		assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, p, "").Code, p)
	}
}

func TestDashboardSummary(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))
	w := do(r, http.MethodGet, "/dashboard/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"number_of_sales":2`)
}

func TestLogin(t *testing.T) {
	r := newRouter(NewHandler(&stubSales{}, &stubAffiliates{}, stubDashboard{}, stubAuth{}))

	w := do(r, http.MethodPost, "/auth/login", `{"email":"luis@example.com","password":"123456"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)

	w = do(r, http.MethodPost, "/auth/login", `{"email":"luis@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tt := range []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{errors.New("down"), http.StatusServiceUnavailable},
	} {
		h := NewHealthHandler(pinger{tt.err}, nil, "test")
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/readyz", h.Readiness)
		r.GET("/healthz", h.Liveness)

		assert.Equal(t, tt.status, do(r, http.MethodGet, "/health", "").Code)
		assert.Equal(t, tt.status, do(r, http.MethodGet, "/readyz", "").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	}
}
