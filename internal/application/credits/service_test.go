package credits

import (
	"context"
	"errors"
	"testing"
	"time"

	"pixgen-ai-api/internal/domain/entity"
	apperrors "pixgen-ai-api/pkg/errors"
)

type fakeRepo struct {
	balance    int64
	balanceErr error
	deductErr  error
	recordErr  error

	deducts  int
	recorded []*entity.CreditTransaction
}

func (f *fakeRepo) GetBalance(ctx context.Context, userID string) (int64, error) {
	return f.balance, f.balanceErr
}

func (f *fakeRepo) Deduct(ctx context.Context, userID string, amount int64, toolSlug string) error {
	if f.deductErr != nil {
		return f.deductErr
	}
	f.deducts++
	f.balance -= amount
	return nil
}

func (f *fakeRepo) Record(ctx context.Context, tx *entity.CreditTransaction) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, tx)
	return nil
}

type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func newTestService(repo *fakeRepo, enabled bool) *Service {
	return NewService(repo, nil, nil, enabled, time.Second, func() string { return "tx-id" })
}

func TestCheckDisabledPassesThrough(t *testing.T) {
	repo := &fakeRepo{balance: 0, balanceErr: errors.New("must not be called")}
	svc := newTestService(repo, false)

	if err := svc.Check(context.Background(), "u1", 5); err != nil {
		t.Fatalf("disabled check should pass: %v", err)
	}
}

func TestCheckAnonymousUserPassesThrough(t *testing.T) {
	repo := &fakeRepo{balanceErr: errors.New("must not be called")}
	svc := newTestService(repo, true)

	if err := svc.Check(context.Background(), "", 5); err != nil {
		t.Fatalf("anonymous check should pass: %v", err)
	}
}

func TestCheckSufficientBalance(t *testing.T) {
	svc := newTestService(&fakeRepo{balance: 10}, true)

	if err := svc.Check(context.Background(), "u1", 10); err != nil {
		t.Fatalf("balance equal to amount should pass: %v", err)
	}
}

func TestCheckInsufficientBalance(t *testing.T) {
	svc := newTestService(&fakeRepo{balance: 3}, true)

	err := svc.Check(context.Background(), "u1", 5)
	if err == nil {
		t.Fatal("expected insufficient credits error")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInsufficientCredits {
		t.Fatalf("code = %s, want %s", appErr.Code, apperrors.CodeInsufficientCredits)
	}
	if appErr.Detail != "balance=3 required=5" {
		t.Fatalf("detail = %q", appErr.Detail)
	}
}

func TestCheckRepositoryError(t *testing.T) {
	svc := newTestService(&fakeRepo{balanceErr: errors.New("db down")}, true)

	if err := svc.Check(context.Background(), "u1", 1); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestDeductRecordsTransaction(t *testing.T) {
	repo := &fakeRepo{balance: 10}
	svc := newTestService(repo, true)

	if err := svc.Deduct(context.Background(), "u1", 4, "pet-to-human"); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if repo.deducts != 1 || repo.balance != 6 {
		t.Fatalf("deducts = %d, balance = %d", repo.deducts, repo.balance)
	}

	if len(repo.recorded) != 1 {
		t.Fatalf("recorded %d transactions, want 1", len(repo.recorded))
	}
	tx := repo.recorded[0]
	if tx.ID != "tx-id" || tx.UserID != "u1" || tx.Amount != -4 {
		t.Fatalf("transaction = %+v", tx)
	}
	if tx.Reason != entity.CreditReasonGeneration || tx.ToolSlug != "pet-to-human" {
		t.Fatalf("transaction = %+v", tx)
	}
}

func TestDeductDisabledPassesThrough(t *testing.T) {
	repo := &fakeRepo{deductErr: errors.New("must not be called")}
	svc := newTestService(repo, false)

	if err := svc.Deduct(context.Background(), "u1", 4, "pet-to-human"); err != nil {
		t.Fatalf("disabled deduct should pass: %v", err)
	}
}

func TestDeductFailurePropagates(t *testing.T) {
	repo := &fakeRepo{deductErr: errors.New("conditional update rejected")}
	svc := newTestService(repo, true)

	if err := svc.Deduct(context.Background(), "u1", 4, "pet-to-human"); err == nil {
		t.Fatal("expected deduct error")
	}
	if len(repo.recorded) != 0 {
		t.Fatal("transaction must not be recorded on failed deduct")
	}
}

func TestDeductTransactionalRecordsAtomically(t *testing.T) {
	repo := &fakeRepo{balance: 10}
	tx := &fakeTransactor{}
	svc := NewService(repo, tx, nil, true, time.Second, func() string { return "tx-id" })

	if err := svc.Deduct(context.Background(), "u1", 4, "pet-to-human"); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if tx.calls != 1 {
		t.Fatalf("transaction calls = %d, want 1", tx.calls)
	}
	if repo.deducts != 1 || len(repo.recorded) != 1 {
		t.Fatalf("deducts = %d, recorded = %d", repo.deducts, len(repo.recorded))
	}
}

func TestDeductTransactionalRecordFailureFails(t *testing.T) {
	repo := &fakeRepo{balance: 10, recordErr: errors.New("ledger down")}
	tx := &fakeTransactor{}
	svc := NewService(repo, tx, nil, true, time.Second, func() string { return "tx-id" })

	if err := svc.Deduct(context.Background(), "u1", 4, "pet-to-human"); err == nil {
		t.Fatal("ledger failure inside a transaction must fail the deduct")
	}
}

func TestDeductRecordFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{balance: 10, recordErr: errors.New("ledger down")}
	svc := newTestService(repo, true)

	if err := svc.Deduct(context.Background(), "u1", 4, "pet-to-human"); err != nil {
		t.Fatalf("record failure must not fail deduct: %v", err)
	}
	if repo.deducts != 1 {
		t.Fatalf("deducts = %d, want 1", repo.deducts)
	}
}
