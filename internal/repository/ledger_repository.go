package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// LedgerTx exposes the balance-moving statements available inside one transaction.
// Reads taken through it hold row locks until the transaction ends.
type LedgerTx interface {
	// LockJobForPayment loads the job, its contract and both parties, locking the job and profile rows.
	LockJobForPayment(ctx context.Context, jobID int64) (*domain.JobPayment, error)
	// LockProfile loads and locks a single profile row.
	LockProfile(ctx context.Context, profileID int64) (*domain.Profile, error)
	// SumUnpaidActiveJobs totals unpaid job prices on the client's in_progress contracts.
	SumUnpaidActiveJobs(ctx context.Context, clientID int64) (decimal.Decimal, error)
	// MarkJobPaid flips paid to true only if it is still false. It reports whether the row changed.
	MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) (bool, error)
	// Debit subtracts amount only if the balance covers it. It reports whether the row changed.
	Debit(ctx context.Context, profileID int64, amount decimal.Decimal) (bool, error)
	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, profileID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// LedgerRepository runs balance mutations atomically.
type LedgerRepository interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a Postgres-backed implementation.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &ledgerTx{tx: tx})
	})
}

type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) LockJobForPayment(ctx context.Context, jobID int64) (*domain.JobPayment, error) {
	const jobQuery = `
        SELECT j.id, j.description, j.price, j.paid, j.payment_date, j.contract_id, j.created_at, j.updated_at,
               c.id, c.terms, c.status, c.client_id, c.contractor_id, c.created_at, c.updated_at
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        WHERE j.id=$1
        FOR UPDATE OF j`

	var payment domain.JobPayment
	job, contract := &payment.Job, &payment.Contract
	if err := t.tx.QueryRow(ctx, jobQuery, jobID).Scan(
		&job.ID,
		&job.Description,
		&job.Price,
		&job.Paid,
		&job.PaymentDate,
		&job.ContractID,
		&job.CreatedAt,
		&job.UpdatedAt,
		&contract.ID,
		&contract.Terms,
		&contract.Status,
		&contract.ClientID,
		&contract.ContractorID,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		return nil, translateNoRows(err)
	}

	// Both parties are locked in id order so concurrent payments cannot deadlock.
	profilesQuery := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := t.tx.Query(ctx, profilesQuery, []int64{contract.ClientID, contract.ContractorID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		switch profile.ID {
		case contract.ClientID:
			payment.Client = *profile
			found++
		case contract.ContractorID:
			payment.Contractor = *profile
			found++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if found != 2 {
		return nil, fmt.Errorf("contract %d: expected 2 parties, loaded %d", contract.ID, found)
	}
	return &payment, nil
}

func (t *ledgerTx) LockProfile(ctx context.Context, profileID int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1 FOR UPDATE`
	profile, err := scanProfile(t.tx.QueryRow(ctx, query, profileID))
	if err != nil {
		return nil, translateNoRows(err)
	}
	return profile, nil
}

func (t *ledgerTx) SumUnpaidActiveJobs(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	const query = `
        SELECT COALESCE(SUM(j.price), 0)
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        WHERE c.client_id=$1 AND c.status=$2 AND j.paid = FALSE`
	var total decimal.Decimal
	if err := t.tx.QueryRow(ctx, query, clientID, domain.ContractStatusInProgress).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (t *ledgerTx) MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) (bool, error) {
	const query = `
        UPDATE jobs SET paid = TRUE, payment_date=$2, updated_at=NOW()
        WHERE id=$1 AND paid = FALSE`
	cmd, err := t.tx.Exec(ctx, query, jobID, paidAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (t *ledgerTx) Debit(ctx context.Context, profileID int64, amount decimal.Decimal) (bool, error) {
	const query = `
        UPDATE profiles SET balance = balance - $2, updated_at=NOW()
        WHERE id=$1 AND balance >= $2`
	cmd, err := t.tx.Exec(ctx, query, profileID, amount)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (t *ledgerTx) Credit(ctx context.Context, profileID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	const query = `
        UPDATE profiles SET balance = balance + $2, updated_at=NOW()
        WHERE id=$1
        RETURNING balance`
	var balance decimal.Decimal
	if err := t.tx.QueryRow(ctx, query, profileID, amount).Scan(&balance); err != nil {
		return decimal.Zero, translateNoRows(err)
	}
	return balance, nil
}
