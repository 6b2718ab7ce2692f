package service

import (
	"context"
	"errors"

	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/repository"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// ContractService answers contract queries on behalf of a requester.
type ContractService struct {
	contracts repository.ContractRepository
}

// NewContractService constructs the service.
func NewContractService(contracts repository.ContractRepository) *ContractService {
	return &ContractService{contracts: contracts}
}

// GetContract returns the contract if the requester is one of its parties.
func (s *ContractService) GetContract(ctx context.Context, contractID, requesterID int64) (*domain.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("contract", map[string]any{"contract_id": contractID})
		}
		return nil, err
	}
	if !contract.HasParty(requesterID) {
		return nil, apperrors.NewForbidden("contract does not belong to the requesting profile")
	}
	return contract, nil
}

// ListContracts returns the requester's non-terminated contracts.
func (s *ContractService) ListContracts(ctx context.Context, requesterID int64) ([]domain.Contract, error) {
	return s.contracts.ListOpenByProfile(ctx, requesterID)
}
