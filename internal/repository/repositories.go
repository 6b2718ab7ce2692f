package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups every store the services depend on.
type Repositories struct {
	Profiles  ProfileRepository
	Contracts ContractRepository
	Jobs      JobRepository
	Ledger    LedgerRepository
	Reports   ReportRepository
}

// NewPostgresRepositories builds the pgx-backed set sharing one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Profiles:  NewProfileRepository(pool),
		Contracts: NewContractRepository(pool),
		Jobs:      NewJobRepository(pool),
		Ledger:    NewLedgerRepository(pool),
		Reports:   NewReportRepository(pool),
	}
}
