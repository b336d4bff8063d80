package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"sales_dashboard/internal/commission"
	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	errInjected       = errors.New("injected failure")
	errDuplicateEmail = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
)

// fakeDB is an in-memory stand-in for the Postgres-backed repositories.
// Writes made through a fakeTx only become visible on Commit.
type fakeDB struct {
	mu          sync.Mutex
	users       map[uuid.UUID]domain.User
	sales       []domain.Sale
	commissions []domain.Commission
	audits      []domain.AuditLog

	failBegin            bool
	failSaleInsert       bool
	failCommissionInsert bool
	failCommit           bool
	vanishOnChain        bool
	listErr              error

	txs []*fakeTx
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: map[uuid.UUID]domain.User{}}
}

func (db *fakeDB) addUser(name string, level int, referrer *domain.User) domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.com",
		Level:     level,
		CreatedAt: time.Now(),
	}
	if referrer != nil {
		id := referrer.ID
		u.ReferrerID = &id
	}
	db.users[u.ID] = u
	return u
}

func (db *fakeDB) saleCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sales)
}

func (db *fakeDB) commissionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.commissions)
}

type fakeTx struct {
	pgx.Tx
	db          *fakeDB
	sales       []domain.Sale
	commissions []domain.Commission
	committed   bool
	rolledBack  bool
}

func (db *fakeDB) BeginTx(ctx context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if db.failBegin {
		return nil, errInjected
	}
	tx := &fakeTx{db: db}
	db.mu.Lock()
	db.txs = append(db.txs, tx)
	db.mu.Unlock()
	return tx, nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.committed || tx.rolledBack {
		return pgx.ErrTxClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if tx.db.failCommit {
		return errInjected
	}
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.sales = append(tx.db.sales, tx.sales...)
	tx.db.commissions = append(tx.db.commissions, tx.commissions...)
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed || tx.rolledBack {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	tx.sales = nil
	tx.commissions = nil
	return nil
}

// user store

func (db *fakeDB) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (db *fakeDB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (db *fakeDB) Create(ctx context.Context, u *domain.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return errDuplicateEmail
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	db.users[u.ID] = *u
	return nil
}

func (db *fakeDB) AncestorChain(ctx context.Context, q repository.Querier, userID uuid.UUID, maxDepth int) ([]domain.ChainNode, error) {
	if db.vanishOnChain {
		return nil, domain.ErrNotFound
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	var chain []domain.ChainNode
	id := userID
	for depth := 1; depth <= maxDepth; depth++ {
		u, ok := db.users[id]
		if !ok {
			break
		}
		chain = append(chain, domain.ChainNode{ID: u.ID, ReferrerID: u.ReferrerID, Level: u.Level, Depth: depth, Name: u.Name})
		if u.ReferrerID == nil {
			break
		}
		id = *u.ReferrerID
	}
	if len(chain) == 0 {
		return nil, domain.ErrNotFound
	}
	return chain, nil
}

func (db *fakeDB) ListAffiliates(ctx context.Context) ([]domain.AffiliateView, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var res []domain.AffiliateView
	for _, u := range db.users {
		res = append(res, domain.AffiliateView{ID: u.ID, Name: u.Name, Email: u.Email, Level: u.Level, ReferrerID: u.ReferrerID})
	}
	return res, nil
}

func (db *fakeDB) ListByLevel(ctx context.Context, level int) ([]domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var res []domain.User
	for _, u := range db.users {
		if u.Level == level {
			res = append(res, u)
		}
	}
	return res, nil
}

// sale store

type fakeSales struct{ db *fakeDB }

func (s fakeSales) CreateWithTx(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	if s.db.failSaleInsert {
		return errInjected
	}
	ft := tx.(*fakeTx)
	sale.ID = uuid.New()
	sale.CreatedAt = time.Now()
	ft.sales = append(ft.sales, *sale)
	return nil
}

func (s fakeSales) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, sale := range s.db.sales {
		if sale.ID == id {
			sale := sale
			return &sale, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s fakeSales) Delete(ctx context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	idx := -1
	for i, sale := range s.db.sales {
		if sale.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	s.db.sales = append(s.db.sales[:idx], s.db.sales[idx+1:]...)
	kept := s.db.commissions[:0]
	for _, c := range s.db.commissions {
		if c.SaleID != id {
			kept = append(kept, c)
		}
	}
	s.db.commissions = kept
	return nil
}

func (s fakeSales) List(ctx context.Context, limit, offset int) ([]domain.SaleView, int64, error) {
	if s.db.listErr != nil {
		return nil, 0, s.db.listErr
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var views []domain.SaleView
	for _, sale := range s.db.sales {
		views = append(views, domain.SaleView{ID: sale.ID, Amount: sale.Amount, CreatedAt: sale.CreatedAt, SellerID: sale.SellerID})
	}
	total := int64(len(views))
	if offset >= len(views) {
		return []domain.SaleView{}, total, nil
	}
	end := offset + limit
	if end > len(views) {
		end = len(views)
	}
	return views[offset:end], total, nil
}

func (s fakeSales) Search(ctx context.Context, query string, limit, offset int) ([]domain.SaleView, int64, error) {
	return s.List(ctx, limit, offset)
}

// commission store

type fakeCommissions struct{ db *fakeDB }

func (c fakeCommissions) CreateBatchWithTx(ctx context.Context, tx pgx.Tx, saleID uuid.UUID, entries []commission.Entry) ([]domain.Commission, error) {
	if c.db.failCommissionInsert {
		return nil, errInjected
	}
	ft := tx.(*fakeTx)
	out := make([]domain.Commission, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Commission{
			ID:         uuid.New(),
			SaleID:     saleID,
			UserID:     e.BeneficiaryID,
			UserName:   e.BeneficiaryName,
			Amount:     e.Amount,
			Percentage: e.Percentage,
			Level:      e.Depth,
			CreatedAt:  time.Now(),
		})
	}
	ft.commissions = append(ft.commissions, out...)
	return out, nil
}

func (c fakeCommissions) ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.Commission, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	var res []domain.Commission
	for _, cm := range c.db.commissions {
		if cm.SaleID == saleID {
			res = append(res, cm)
		}
	}
	return res, nil
}

// audit store

func (db *fakeDB) auditStore() auditStore { return fakeAudit{db: db} }

type fakeAudit struct{ db *fakeDB }

func (a fakeAudit) Create(ctx context.Context, log *domain.AuditLog) error {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	a.db.audits = append(a.db.audits, *log)
	return nil
}

func (db *fakeDB) auditActions() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []string
	for _, a := range db.audits {
		out = append(out, a.Action)
	}
	return out
}

func newTestSaleService(db *fakeDB) *SaleService {
	return NewSaleService(db, db, fakeSales{db}, fakeCommissions{db}, commission.NewEngine(commission.DefaultRates()), NewAuditService(db.auditStore()))
}

type recordingListener struct {
	mu      sync.Mutex
	created []*domain.SaleResult
	deleted []uuid.UUID
}

func (l *recordingListener) OnSaleCreated(ctx context.Context, res *domain.SaleResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.created = append(l.created, res)
}

func (l *recordingListener) OnSaleDeleted(ctx context.Context, id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted = append(l.deleted, id)
}

// referral store

func (db *fakeDB) DirectReferrals(ctx context.Context, userID uuid.UUID) ([]domain.Referral, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var res []domain.Referral
	for _, u := range db.users {
		if u.ReferrerID == nil || *u.ReferrerID != userID {
			continue
		}
		ref := domain.Referral{ID: u.ID, Name: u.Name, Email: u.Email, Level: u.Level, CreatedAt: u.CreatedAt}
		for _, d := range db.users {
			if d.ReferrerID != nil && *d.ReferrerID == u.ID {
				ref.DirectReferrals++
			}
		}
		res = append(res, ref)
	}
	return res, nil
}

func (db *fakeDB) ReferralStats(ctx context.Context, userID uuid.UUID, maxDepth int) (*domain.ReferralStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	stats := &domain.ReferralStats{}
	frontier := map[uuid.UUID]bool{userID: true}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		next := map[uuid.UUID]bool{}
		for _, u := range db.users {
			if u.ReferrerID != nil && frontier[*u.ReferrerID] {
				next[u.ID] = true
			}
		}
		if depth == 1 {
			stats.DirectReferrals = int64(len(next))
		}
		stats.Downline += int64(len(next))
		frontier = next
	}
	for _, c := range db.commissions {
		if c.UserID == userID {
			stats.TotalEarned = stats.TotalEarned.Add(c.Amount)
		}
	}
	return stats, nil
}
