package billing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahendrapn/GajiHub/app/models"
	"github.com/mahendrapn/GajiHub/internal/pkg/payment"
)

type stubSessions struct {
	lastRequest payment.SessionRequest
	calls       int
	err         error
}

func (s *stubSessions) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return &payment.Session{Token: "tok-" + req.OrderID, RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func testService(repo Repository, sessions payment.SessionCreator, now time.Time) *Service {
	return NewService(repo, sessions, Config{ServerKey: "test-server-key"}, func() time.Time { return now })
}

func TestCreateTransactionNewSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemRepository()
	repo.addCompany(&models.Company{ID: 1, Name: "PT Maju", Email: "admin@maju.co.id", Phone: "+62811111111"})
	sessions := &stubSessions{}
	svc := testService(repo, sessions, now)

	res, err := svc.CreateTransaction(context.Background(), 1, CreateTransactionInput{TargetLevel: 1, DurationMonths: 3})
	require.NoError(t, err)

	assert.Equal(t, ChangeNew, res.ChangeType)
	assert.False(t, res.Downgrade)
	assert.Equal(t, int64(897_000), res.GrossAmount)
	assert.True(t, strings.HasPrefix(res.OrderID, "new1-"), "order id %q", res.OrderID)
	assert.Equal(t, "tok-"+res.OrderID, res.Token)

	// The ledger row is pending and carries the transition metadata needed to
	// apply it later.
	tx := repo.transaction(res.OrderID)
	require.NotNil(t, tx)
	assert.Equal(t, models.GatewayStatusPending, tx.GatewayStatus)
	assert.Nil(t, tx.PaidAt)
	assert.Equal(t, 0, tx.FromLevel)
	assert.Equal(t, 1, tx.ToLevel)
	assert.Equal(t, 3, tx.DurationMonths)

	// No entitlement change before the gateway confirms.
	assert.Equal(t, 0, repo.company(1).PlanLevel)

	// The session was opened with the ledger's exact amount and order id.
	assert.Equal(t, res.OrderID, sessions.lastRequest.OrderID)
	assert.Equal(t, int64(897_000), sessions.lastRequest.GrossAmount)
}

func TestCreateTransactionOrderIDPrefixes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in40Days := now.Add(40 * 24 * time.Hour)
	in3Days := now.Add(3 * 24 * time.Hour)

	tests := []struct {
		name       string
		level      int
		expiresAt  *time.Time
		target     int
		wantPrefix string
	}{
		{name: "upgrade", level: 1, expiresAt: &in40Days, target: 2, wantPrefix: "upgrade1to2-"},
		{name: "upgrade renew", level: 1, expiresAt: &in3Days, target: 2, wantPrefix: "upgraderenew1to2-"},
		{name: "extend", level: 2, expiresAt: &in40Days, target: 2, wantPrefix: "extend2-"},
	}

	for _, tt := range tests {
		repo := newMemRepository()
		repo.addCompany(&models.Company{ID: 1, Name: "PT Maju", Email: "a@b.co", PlanLevel: tt.level, PlanExpiresAt: tt.expiresAt})
		svc := testService(repo, &stubSessions{}, now)

		res, err := svc.CreateTransaction(context.Background(), 1, CreateTransactionInput{TargetLevel: tt.target})
		require.NoError(t, err, tt.name)
		assert.True(t, strings.HasPrefix(res.OrderID, tt.wantPrefix), "%s: order id %q", tt.name, res.OrderID)
	}
}

func TestCreateTransactionDowngradeAppliesImmediately(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in4Days := now.Add(4 * 24 * time.Hour)
	repo := newMemRepository()
	repo.addCompany(&models.Company{ID: 7, Name: "PT Turun", Email: "t@t.co", PlanLevel: 2, PlanExpiresAt: &in4Days})
	sessions := &stubSessions{}
	svc := testService(repo, sessions, now)

	res, err := svc.CreateTransaction(context.Background(), 7, CreateTransactionInput{TargetLevel: 1})
	require.NoError(t, err)

	assert.True(t, res.Downgrade)
	assert.Equal(t, ChangeDowngrade, res.ChangeType)
	assert.Zero(t, sessions.calls, "downgrade must not open a payment session")

	company := repo.company(7)
	assert.Equal(t, 1, company.PlanLevel)
	// Expiration is untouched by a downgrade.
	require.NotNil(t, company.PlanExpiresAt)
	assert.True(t, company.PlanExpiresAt.Equal(in4Days))

	// The ledger row is written already paid with a zero amount.
	txs, err := repo.ListTransactionsByCompany(7, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, string(ChangeDowngrade), txs[0].ChangeType)
	assert.Equal(t, int64(0), txs[0].GrossAmount)
	require.NotNil(t, txs[0].PaidAt)
	assert.True(t, txs[0].PaidAt.Equal(now))
}

func TestCreateTransactionDowngradeRejectedMidTerm(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in20Days := now.Add(20 * 24 * time.Hour)
	repo := newMemRepository()
	repo.addCompany(&models.Company{ID: 7, Name: "PT Turun", Email: "t@t.co", PlanLevel: 2, PlanExpiresAt: &in20Days})
	svc := testService(repo, &stubSessions{}, now)

	_, err := svc.CreateTransaction(context.Background(), 7, CreateTransactionInput{TargetLevel: 1})
	require.ErrorIs(t, err, ErrDowngradeTooEarly)

	// Nothing moved.
	assert.Equal(t, 2, repo.company(7).PlanLevel)
	txs, _ := repo.ListTransactionsByCompany(7, 0)
	assert.Empty(t, txs)
}

func TestCreateTransactionCompanyNotFound(t *testing.T) {
	svc := testService(newMemRepository(), &stubSessions{}, time.Now())

	_, err := svc.CreateTransaction(context.Background(), 99, CreateTransactionInput{TargetLevel: 1})
	require.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCreateTransactionSessionFailureLeavesNoLedgerRow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemRepository()
	repo.addCompany(&models.Company{ID: 1, Name: "PT Maju", Email: "a@b.co"})
	svc := testService(repo, &stubSessions{err: errors.New("gateway down")}, now)

	_, err := svc.CreateTransaction(context.Background(), 1, CreateTransactionInput{TargetLevel: 1})
	require.Error(t, err)

	txs, _ := repo.ListTransactionsByCompany(1, 0)
	assert.Empty(t, txs, "no pending row should exist without a session")
}

func TestCreateTransactionLapsedTermIsNew(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	repo := newMemRepository()
	// Stored level lags behind the elapsed expiration; the engine must read
	// the derived level and classify this as NEW, not EXTEND.
	repo.addCompany(&models.Company{ID: 1, Name: "PT Lama", Email: "l@l.co", PlanLevel: 1, PlanExpiresAt: &lastWeek})
	svc := testService(repo, &stubSessions{}, now)

	res, err := svc.CreateTransaction(context.Background(), 1, CreateTransactionInput{TargetLevel: 1})
	require.NoError(t, err)
	assert.Equal(t, ChangeNew, res.ChangeType)
	assert.Equal(t, int64(299_000), res.GrossAmount)
}

func TestSweepLapsedEntitlements(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastWeek := now.Add(-7 * 24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	repo := newMemRepository()
	repo.addCompany(&models.Company{ID: 1, Name: "A", Email: "a@a.co", PlanLevel: 2, PlanExpiresAt: &lastWeek})
	repo.addCompany(&models.Company{ID: 2, Name: "B", Email: "b@b.co", PlanLevel: 1, PlanExpiresAt: &nextWeek})
	repo.addCompany(&models.Company{ID: 3, Name: "C", Email: "c@c.co", PlanLevel: 0})
	svc := testService(repo, &stubSessions{}, now)

	n, err := svc.SweepLapsedEntitlements()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, repo.company(1).PlanLevel)
	assert.Equal(t, 1, repo.company(2).PlanLevel)
}
