/*
loans.go - HTTP handlers for the loan lifecycle

ENDPOINTS:
  POST /api/loans               open a loan (reserves a copy)
  GET  /api/loans               list with ?user_id=&book_id=&returned=&overdue=
  GET  /api/loans/{id}          fetch one loan
  POST /api/loans/{id}/renew    extend the due date
  POST /api/loans/{id}/return   close the loan (releases the copy)
  GET  /api/loans/overdue       past-due open loans
  GET  /api/users/{id}/loans    a user's loans, ?active=true for open only

SEE ALSO:
  - lending/engine.go: the operations behind these routes
*/
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/library-engine/lending"
)

// CreateLoan opens a loan for a user and book.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	in := lending.CreateLoanInput{
		UserID:   req.UserID,
		BookID:   req.BookID,
		Duration: time.Duration(req.DurationDays) * 24 * time.Hour,
	}
	if req.LoanDate != "" {
		loanDate, err := time.Parse(time.RFC3339, req.LoanDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid loan_date format (use RFC3339)", err)
			return
		}
		in.LoanDate = loanDate
	}

	loan, err := h.Engine.CreateLoan(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to create loan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanDTO(loan))
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Engine.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(loan))
}

// ListLoans returns loans matching the query filters.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("overdue") == "true" {
		loans, err := h.Engine.ListOverdue(r.Context(), time.Time{})
		if err != nil {
			writeDomainError(w, "Failed to list overdue loans", err)
			return
		}
		writeJSON(w, http.StatusOK, toLoanDTOs(loans))
		return
	}

	filter := lending.Filter{
		UserID: q.Get("user_id"),
		BookID: q.Get("book_id"),
	}
	if v := q.Get("returned"); v != "" {
		returned, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid returned flag", err)
			return
		}
		filter.Returned = &returned
	}

	loans, err := h.Engine.ListLoans(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "Failed to list loans", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTOs(loans))
}

// RenewLoan extends an active loan's due date.
func (h *Handler) RenewLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Engine.RenewLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to renew loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(loan))
}

// ReturnLoan closes an active loan and releases the copy.
func (h *Handler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	var req ReturnLoanRequest
	if r.ContentLength > 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	var returnDate time.Time
	if req.ReturnDate != "" {
		var err error
		returnDate, err = time.Parse(time.RFC3339, req.ReturnDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid return_date format (use RFC3339)", err)
			return
		}
	}

	loan, err := h.Engine.ReturnLoan(r.Context(), chi.URLParam(r, "id"), returnDate)
	if err != nil {
		writeDomainError(w, "Failed to return loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(loan))
}

// ListOverdueLoans returns past-due open loans.
func (h *Handler) ListOverdueLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Engine.ListOverdue(r.Context(), time.Time{})
	if err != nil {
		writeDomainError(w, "Failed to list overdue loans", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTOs(loans))
}

// ListUserLoans returns a user's loans; ?active=true keeps open ones.
func (h *Handler) ListUserLoans(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var loans []lending.Loan
	var err error
	if r.URL.Query().Get("active") == "true" {
		loans, err = h.Engine.ListActiveForUser(r.Context(), userID)
	} else {
		loans, err = h.Engine.ListForUser(r.Context(), userID)
	}
	if err != nil {
		writeDomainError(w, "Failed to list user loans", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTOs(loans))
}
