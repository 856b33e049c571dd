/*
handlers.go - HTTP handlers for catalog, categories, and users

PURPOSE:
  Thin adapters between HTTP and the domain services: decode, validate,
  delegate, serialize. Business meaning lives in the services and the
  lifecycle engine; this layer only translates.

ERROR HANDLING:
  Domain errors pass through writeDomainError so every typed failure
  maps to a stable status code (see respond.go).

SEE ALSO:
  - loans.go: loan lifecycle handlers
  - server.go: routes
  - dto.go: request/response shapes
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/library-engine/catalog"
	"github.com/warp/library-engine/lending"
	"github.com/warp/library-engine/members"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine    *lending.Engine
	Catalog   *catalog.Service
	Inventory *catalog.Inventory
	Users     *members.Service
}

// NewHandler creates a handler over the given services.
func NewHandler(engine *lending.Engine, cat *catalog.Service, inv *catalog.Inventory, users *members.Service) *Handler {
	return &Handler{Engine: engine, Catalog: cat, Inventory: inv, Users: users}
}

// =============================================================================
// BOOK HANDLERS
// =============================================================================

// ListBooks returns all books, optionally filtered by ?title= keyword.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	filter := catalog.BookFilter{Title: r.URL.Query().Get("title")}

	books, err := h.Catalog.ListBooks(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "Failed to list books", err)
		return
	}

	dtos := make([]BookDTO, len(books))
	for i := range books {
		dtos[i] = toBookDTO(&books[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBook returns a single book.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get book", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// CreateBook registers a new book.
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	book, err := h.Catalog.CreateBook(r.Context(), catalog.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Quantity:        req.Quantity,
	})
	if err != nil {
		writeDomainError(w, "Failed to create book", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookDTO(book))
}

// UpdateBook rewrites catalog fields of a book.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var req UpdateBookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	book, err := h.Catalog.UpdateBook(r.Context(), chi.URLParam(r, "id"), catalog.UpdateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
	})
	if err != nil {
		writeDomainError(w, "Failed to update book", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// DeleteBook removes a book that no loans reference.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete book", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustQuantity applies a stock correction to a book.
func (h *Handler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req AdjustQuantityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	book, err := h.Inventory.AdjustQuantity(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeDomainError(w, "Failed to adjust quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListCategories returns all categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list categories", err)
		return
	}

	dtos := make([]CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = toCategoryDTO(&categories[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCategory returns a single category.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.Catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get category", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(category))
}

// CreateCategory creates a category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.Catalog.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(category))
}

// UpdateCategory rewrites a category.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.Catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to update category", err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(category))
}

// DeleteCategory removes a category.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// CreateUser registers a user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.Users.CreateUser(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeDomainError(w, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// UpdateUser rewrites user fields.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.Users.UpdateUser(r.Context(), chi.URLParam(r, "id"), members.UpdateUserInput{
		FullName: req.FullName,
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
		Password: req.Password,
	})
	if err != nil {
		writeDomainError(w, "Failed to update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// DeleteUser removes a user that no loans reference.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
