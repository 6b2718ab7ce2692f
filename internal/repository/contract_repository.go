package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

const contractColumns = `id, terms, status, client_id, contractor_id, created_at, updated_at`

// ContractRepository encapsulates contract reads.
type ContractRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Contract, error)
	// ListOpenByProfile returns non-terminated contracts where the profile is a party.
	ListOpenByProfile(ctx context.Context, profileID int64) ([]domain.Contract, error)
}

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository instantiates repository.
func NewContractRepository(pool *pgxpool.Pool) ContractRepository {
	return &contractRepository{pool: pool}
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id=$1`
	var contract domain.Contract
	if err := scanContract(r.pool.QueryRow(ctx, query, id), &contract); err != nil {
		return nil, translateNoRows(err)
	}
	return &contract, nil
}

func (r *contractRepository) ListOpenByProfile(ctx context.Context, profileID int64) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + `
        FROM contracts
        WHERE (client_id=$1 OR contractor_id=$1) AND status <> $2
        ORDER BY id`
	rows, err := r.pool.Query(ctx, query, profileID, domain.ContractStatusTerminated)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Contract{}
	for rows.Next() {
		var contract domain.Contract
		if err := scanContract(rows, &contract); err != nil {
			return nil, err
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}

func scanContract(row pgx.Row, contract *domain.Contract) error {
	return row.Scan(
		&contract.ID,
		&contract.Terms,
		&contract.Status,
		&contract.ClientID,
		&contract.ContractorID,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
}
