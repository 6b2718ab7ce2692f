package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// ReportRepository aggregates paid jobs for the admin reports.
type ReportRepository interface {
	// BestProfession returns the top-earning profession, or ErrNotFound when nothing was paid in range.
	BestProfession(ctx context.Context, period domain.DateRange) (*domain.ProfessionEarnings, error)
	// BestClients returns up to limit clients ordered by amount paid, descending.
	BestClients(ctx context.Context, period domain.DateRange, limit int) ([]domain.ClientPayments, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) BestProfession(ctx context.Context, period domain.DateRange) (*domain.ProfessionEarnings, error) {
	where, args := paidWithin(period)
	query := fmt.Sprintf(`
        SELECT p.profession, SUM(j.price) AS total
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        JOIN profiles p ON p.id = c.contractor_id
        WHERE %s
        GROUP BY p.profession
        ORDER BY total DESC, p.profession ASC
        LIMIT 1`, where)

	var earnings domain.ProfessionEarnings
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&earnings.Profession, &earnings.TotalEarned); err != nil {
		return nil, translateNoRows(err)
	}
	return &earnings, nil
}

func (r *reportRepository) BestClients(ctx context.Context, period domain.DateRange, limit int) ([]domain.ClientPayments, error) {
	where, args := paidWithin(period)
	if limit <= 0 {
		limit = 2
	}
	query := fmt.Sprintf(`
        SELECT p.id, p.first_name || ' ' || p.last_name, SUM(j.price) AS paid
        FROM jobs j
        JOIN contracts c ON c.id = j.contract_id
        JOIN profiles p ON p.id = c.client_id
        WHERE %s
        GROUP BY p.id, p.first_name, p.last_name
        ORDER BY paid DESC, p.id ASC
        LIMIT %d`, where, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.ClientPayments{}
	for rows.Next() {
		var item domain.ClientPayments
		if err := rows.Scan(&item.ClientID, &item.FullName, &item.Paid); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func paidWithin(period domain.DateRange) (string, []any) {
	clauses := []string{"j.paid = TRUE"}
	args := []any{}

	if period.Start != nil {
		args = append(args, *period.Start)
		clauses = append(clauses, fmt.Sprintf("j.payment_date >= $%d", len(args)))
	}
	if period.End != nil {
		args = append(args, *period.End)
		op := "<="
		if period.EndExclusive {
			op = "<"
		}
		clauses = append(clauses, fmt.Sprintf("j.payment_date %s $%d", op, len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
