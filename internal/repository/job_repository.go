package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// JobRepository encapsulates job reads.
type JobRepository interface {
	// ListUnpaidActiveByProfile returns unpaid jobs of in_progress contracts where the profile is a party.
	ListUnpaidActiveByProfile(ctx context.Context, profileID int64) ([]domain.Job, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

func (r *jobRepository) ListUnpaidActiveByProfile(ctx context.Context, profileID int64) ([]domain.Job, error) {
	const query = `
        SELECT j.id, j.description, j.price, j.paid, j.payment_date, j.contract_id, j.created_at, j.updated_at
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        WHERE j.paid = FALSE
          AND c.status = $2
          AND (c.client_id = $1 OR c.contractor_id = $1)
        ORDER BY j.id`
	rows, err := r.pool.Query(ctx, query, profileID, domain.ContractStatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Job{}
	for rows.Next() {
		var job domain.Job
		if err := scanJob(rows, &job); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}

func scanJob(row pgx.Row, job *domain.Job) error {
	return row.Scan(
		&job.ID,
		&job.Description,
		&job.Price,
		&job.Paid,
		&job.PaymentDate,
		&job.ContractID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
}
