/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the wire contract. Request types carry validator tags; response
  types format times as RFC3339 and money as decimal currency strings.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

SEE ALSO:
  - validation.go: validator wiring
  - handlers.go, loans.go: users of these types
*/
package api

import (
	"time"

	"github.com/warp/library-engine/catalog"
	"github.com/warp/library-engine/lending"
	"github.com/warp/library-engine/members"
)

// =============================================================================
// BOOKS
// =============================================================================

// BookDTO represents a book in API responses.
type BookDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
	Quantity        int    `json:"quantity"`
	CreatedAt       string `json:"created_at,omitempty"`
}

func toBookDTO(b *catalog.Book) BookDTO {
	return BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Quantity:        b.Quantity,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}

// CreateBookRequest is the request to register a book.
type CreateBookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn" validate:"required"`
	PublicationYear int    `json:"publication_year"`
	Quantity        int    `json:"quantity" validate:"gte=0"`
}

// UpdateBookRequest carries partial catalog-field updates.
type UpdateBookRequest struct {
	Title           *string `json:"title,omitempty"`
	Author          *string `json:"author,omitempty"`
	ISBN            *string `json:"isbn,omitempty"`
	PublicationYear *int    `json:"publication_year,omitempty"`
}

// AdjustQuantityRequest applies a stock correction.
type AdjustQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// =============================================================================
// CATEGORIES
// =============================================================================

// CategoryDTO represents a category in API responses.
type CategoryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func toCategoryDTO(c *catalog.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description}
}

// CreateCategoryRequest is the request to create a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateCategoryRequest carries partial category updates.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// =============================================================================
// USERS
// =============================================================================

// UserDTO represents a user in API responses. The credential hash never
// leaves the server.
type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	IsActive  bool   `json:"is_active"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toUserDTO(u *members.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest is the request to register a user.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name"`
}

// UpdateUserRequest carries partial user updates.
type UpdateUserRequest struct {
	FullName *string `json:"full_name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// =============================================================================
// LOANS
// =============================================================================

// LoanDTO represents a loan in API responses. Fine is the formatted
// currency value of FineAmount (cents).
type LoanDTO struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	BookID       string  `json:"book_id"`
	LoanDate     string  `json:"loan_date"`
	DueDate      string  `json:"due_date"`
	ReturnDate   *string `json:"return_date,omitempty"`
	IsReturned   bool    `json:"is_returned"`
	RenewalCount int     `json:"renewal_count"`
	FineAmount   int64   `json:"fine_amount"`
	Fine         string  `json:"fine"`
	Status       string  `json:"status"`
}

func toLoanDTO(l *lending.Loan) LoanDTO {
	dto := LoanDTO{
		ID:           l.ID,
		UserID:       l.UserID,
		BookID:       l.BookID,
		LoanDate:     l.LoanDate.Format(time.RFC3339),
		DueDate:      l.DueDate.Format(time.RFC3339),
		IsReturned:   l.IsReturned,
		RenewalCount: l.RenewalCount,
		FineAmount:   l.FineAmount,
		Fine:         lending.CentsToDecimal(l.FineAmount).StringFixed(2),
		Status:       string(l.Status()),
	}
	if l.ReturnDate != nil {
		rd := l.ReturnDate.Format(time.RFC3339)
		dto.ReturnDate = &rd
	}
	return dto
}

func toLoanDTOs(loans []lending.Loan) []LoanDTO {
	dtos := make([]LoanDTO, len(loans))
	for i := range loans {
		dtos[i] = toLoanDTO(&loans[i])
	}
	return dtos
}

// CreateLoanRequest is the request to open a loan. LoanDate defaults to
// now; DurationDays defaults to the policy loan duration.
type CreateLoanRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	BookID       string `json:"book_id" validate:"required"`
	LoanDate     string `json:"loan_date,omitempty"`
	DurationDays int    `json:"duration_days,omitempty" validate:"gte=0"`
}

// ReturnLoanRequest is the request to close a loan. ReturnDate defaults
// to now.
type ReturnLoanRequest struct {
	ReturnDate string `json:"return_date,omitempty"`
}
