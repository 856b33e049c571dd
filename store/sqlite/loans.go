package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/warp/library-engine/lending"
)

// =============================================================================
// LOAN STORE (lending.Store interface)
// =============================================================================

var dialect = goqu.Dialect("sqlite3")

const loansTable = "loans"

type loanRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	BookID       string         `db:"book_id"`
	LoanDate     string         `db:"loan_date"`
	DueDate      string         `db:"due_date"`
	ReturnDate   sql.NullString `db:"return_date"`
	IsReturned   bool           `db:"is_returned"`
	RenewalCount int            `db:"renewal_count"`
	FineAmount   int64          `db:"fine_amount"`
	CreatedAt    string         `db:"created_at"`
	UpdatedAt    string         `db:"updated_at"`
}

func (r loanRow) toLoan() (*lending.Loan, error) {
	loanDate, err := parseTime(r.LoanDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseTime(r.DueDate)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	loan := &lending.Loan{
		ID:           r.ID,
		UserID:       r.UserID,
		BookID:       r.BookID,
		LoanDate:     loanDate,
		DueDate:      dueDate,
		IsReturned:   r.IsReturned,
		RenewalCount: r.RenewalCount,
		FineAmount:   r.FineAmount,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	if r.ReturnDate.Valid {
		rd, err := parseTime(r.ReturnDate.String)
		if err != nil {
			return nil, err
		}
		loan.ReturnDate = &rd
	}
	return loan, nil
}

// CreateLoan inserts a loan row. The schema's check constraints reject
// rows that slipped past engine validation.
func (s *Store) CreateLoan(ctx context.Context, loan *lending.Loan) error {
	now := time.Now().UTC()
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = now
	}
	loan.UpdatedAt = now

	query := `
		INSERT INTO loans
		(id, user_id, book_id, loan_date, due_date, return_date,
		 is_returned, renewal_count, fine_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.ext.ExecContext(ctx, query,
		loan.ID, loan.UserID, loan.BookID,
		fmtTime(loan.LoanDate), fmtTime(loan.DueDate), nullTime(loan.ReturnDate),
		loan.IsReturned, loan.RenewalCount, loan.FineAmount,
		fmtTime(loan.CreatedAt), fmtTime(loan.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetLoan returns a loan by id.
func (s *Store) GetLoan(ctx context.Context, id string) (*lending.Loan, error) {
	var row loanRow
	if err := sqlx.GetContext(ctx, s.ext, &row, `SELECT * FROM loans WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lending.ErrLoanNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return row.toLoan()
}

// UpdateLoan rewrites the mutable lifecycle fields of a loan row.
func (s *Store) UpdateLoan(ctx context.Context, loan *lending.Loan) error {
	loan.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE loans
		SET due_date = ?, return_date = ?, is_returned = ?,
		    renewal_count = ?, fine_amount = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.ext.ExecContext(ctx, query,
		fmtTime(loan.DueDate), nullTime(loan.ReturnDate), loan.IsReturned,
		loan.RenewalCount, loan.FineAmount, fmtTime(loan.UpdatedAt), loan.ID)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	if n == 0 {
		return lending.ErrLoanNotFound
	}
	return nil
}

// ListLoans returns loans matching the filter, oldest first. The filter
// combinations ride the composite indexes on (user_id, is_returned),
// (book_id, is_returned), and (due_date, is_returned).
func (s *Store) ListLoans(ctx context.Context, filter lending.Filter) ([]lending.Loan, error) {
	stmt := dialect.From(loansTable).
		Select(&loanRow{}).
		Order(goqu.I("loan_date").Asc(), goqu.I("created_at").Asc())

	exprs := make([]goqu.Expression, 0, 4)
	if filter.UserID != "" {
		exprs = append(exprs, goqu.Ex{"user_id": filter.UserID})
	}
	if filter.BookID != "" {
		exprs = append(exprs, goqu.Ex{"book_id": filter.BookID})
	}
	if filter.Returned != nil {
		exprs = append(exprs, goqu.Ex{"is_returned": *filter.Returned})
	}
	if filter.DueBefore != nil {
		// Strictly before: a loan due exactly at the cutoff is not overdue.
		exprs = append(exprs, goqu.C("due_date").Lt(fmtTime(*filter.DueBefore)))
	}
	if len(exprs) > 0 {
		stmt = stmt.Where(exprs...)
	}

	query, args, err := stmt.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build loan query: %w", err)
	}

	var rows []loanRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}

	loans := make([]lending.Loan, 0, len(rows))
	for _, r := range rows {
		l, err := r.toLoan()
		if err != nil {
			return nil, err
		}
		loans = append(loans, *l)
	}
	return loans, nil
}

// DeleteLoan removes a loan row. Administrative override only; the
// lifecycle engine keeps loans as history.
func (s *Store) DeleteLoan(ctx context.Context, id string) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	if n == 0 {
		return lending.ErrLoanNotFound
	}
	return nil
}
