package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/bookshelf-be/internal/models"
)

// BookServiceProvider defines the interface for the catalog and review store.
type BookServiceProvider interface {
	Search(query string) ([]models.Book, error)
	Create(title, author, description, cover string, owner models.Principal) (models.Book, error)
	GetDetail(id string) (models.BookDetail, error)
	Update(id string, patch models.BookPatch, owner models.Principal) (models.Book, error)
	Delete(id string, owner models.Principal) error
	AddReview(bookID string, rating int, comment string, reviewer models.Principal) (models.Review, error)
}

// BookService provides business logic for books and their reviews.
type BookService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewBookService creates a new BookService.
func NewBookService(db *sql.DB, events EventServiceProvider) *BookService {
	return &BookService{db: db, events: events}
}

const bookColumns = "id, title, author, description, cover, created_at, created_by_user_id, created_by_username"

// scanBook is a helper to scan a book from a row or rows object.
func scanBook(scanner interface{ Scan(...interface{}) error }) (models.Book, error) {
	var book models.Book
	err := scanner.Scan(
		&book.ID, &book.Title, &book.Author, &book.Description, &book.Cover,
		&book.CreatedAt, &book.CreatedByUserID, &book.CreatedByUsername,
	)
	return book, err
}

// Search returns books whose title or author contains the query substring,
// case-insensitively, or all books when the query is empty. Results are
// always newest first.
func (s *BookService) Search(query string) ([]models.Book, error) {
	var rows *sql.Rows
	var err error

	query = strings.TrimSpace(query)
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		rows, err = s.db.Query(
			"SELECT "+bookColumns+" FROM books WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ? ORDER BY created_at DESC",
			pattern, pattern,
		)
	} else {
		rows, err = s.db.Query("SELECT " + bookColumns + " FROM books ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// Create adds a new book owned by the given principal. All four text fields
// are required non-empty after trimming. The owner's username is snapshotted
// onto the book at creation time.
func (s *BookService) Create(title, author, description, cover string, owner models.Principal) (models.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	description = strings.TrimSpace(description)
	cover = strings.TrimSpace(cover)

	if title == "" || author == "" || description == "" || cover == "" {
		return models.Book{}, validationError("title, author, description, and cover are required")
	}

	book := models.Book{
		ID:                uuid.New().String(),
		Title:             title,
		Author:            author,
		Description:       description,
		Cover:             cover,
		CreatedAt:         time.Now().UTC(),
		CreatedByUserID:   owner.UserID,
		CreatedByUsername: owner.Username,
	}

	_, err := s.db.Exec(
		"INSERT INTO books(id, title, author, description, cover, created_at, created_by_user_id, created_by_username) VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		book.ID, book.Title, book.Author, book.Description, book.Cover,
		book.CreatedAt, book.CreatedByUserID, book.CreatedByUsername,
	)
	if err != nil {
		return models.Book{}, fmt.Errorf("insert book: %w", err)
	}

	_ = s.events.Record("book.create", "info", "Book \""+book.Title+"\" added by "+owner.Username, &owner.UserID)

	return book, nil
}

// getBookByID retrieves a single book by its ID.
func (s *BookService) getBookByID(id string) (models.Book, error) {
	row := s.db.QueryRow("SELECT "+bookColumns+" FROM books WHERE id = ?", id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, ErrNotFound
		}
		return models.Book{}, fmt.Errorf("query book: %w", err)
	}
	return book, nil
}

// GetDetail loads a book together with its reviews, newest first. Reviews
// are never fetched independently of their book.
func (s *BookService) GetDetail(id string) (models.BookDetail, error) {
	book, err := s.getBookByID(id)
	if err != nil {
		return models.BookDetail{}, err
	}

	rows, err := s.db.Query(
		"SELECT id, book_id, reviewer_user_id, reviewer_username, rating, comment, created_at FROM reviews WHERE book_id = ? ORDER BY created_at DESC",
		id,
	)
	if err != nil {
		return models.BookDetail{}, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID, &review.BookID, &review.ReviewerUserID, &review.ReviewerUsername,
			&review.Rating, &review.Comment, &review.CreatedAt,
		); err != nil {
			return models.BookDetail{}, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return models.BookDetail{}, err
	}

	return models.BookDetail{Book: book, Reviews: reviews}, nil
}

// Update applies a partial update to a book. The patch is validated before
// anything is loaded, so an empty patch is rejected with a validation error
// even when the book does not exist or the caller is not the owner. The
// ownership guard runs only after the book is known to exist: a non-owner
// probing a nonexistent id sees not-found, never forbidden.
func (s *BookService) Update(id string, patch models.BookPatch, owner models.Principal) (models.Book, error) {
	updates := []string{}
	params := []interface{}{}

	for _, field := range []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"author", patch.Author},
		{"description", patch.Description},
		{"cover", patch.Cover},
	} {
		if field.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			return models.Book{}, validationError(field.name + " cannot be empty")
		}
		updates = append(updates, field.name+" = ?")
		params = append(params, trimmed)
	}

	if len(updates) == 0 {
		return models.Book{}, validationError("No fields provided for update")
	}

	book, err := s.getBookByID(id)
	if err != nil {
		return models.Book{}, err
	}
	if book.CreatedByUserID != owner.UserID {
		return models.Book{}, ErrForbidden
	}

	params = append(params, id)
	if _, err := s.db.Exec("UPDATE books SET "+strings.Join(updates, ", ")+" WHERE id = ?", params...); err != nil {
		return models.Book{}, fmt.Errorf("update book: %w", err)
	}

	_ = s.events.Record("book.update", "info", "Book \""+book.Title+"\" updated by "+owner.Username, &owner.UserID)

	return s.getBookByID(id)
}

// Delete removes a book and, through the storage-level cascade, its reviews.
// Existence is checked before ownership, same as Update.
func (s *BookService) Delete(id string, owner models.Principal) error {
	book, err := s.getBookByID(id)
	if err != nil {
		return err
	}
	if book.CreatedByUserID != owner.UserID {
		return ErrForbidden
	}

	if _, err := s.db.Exec("DELETE FROM books WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	_ = s.events.Record("book.delete", "info", "Book \""+book.Title+"\" deleted by "+owner.Username, &owner.UserID)

	return nil
}

// AddReview attaches a star rating and comment to an existing book. Any
// authenticated principal may review any book, including their own. The
// reviewer identity is taken from the principal, never from the client.
func (s *BookService) AddReview(bookID string, rating int, comment string, reviewer models.Principal) (models.Review, error) {
	if rating < 1 || rating > 5 {
		return models.Review{}, validationError("rating must be an integer between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return models.Review{}, validationError("comment is required")
	}

	var existingID string
	if err := s.db.QueryRow("SELECT id FROM books WHERE id = ?", bookID).Scan(&existingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Review{}, ErrNotFound
		}
		return models.Review{}, fmt.Errorf("query book: %w", err)
	}

	review := models.Review{
		ID:               uuid.New().String(),
		BookID:           bookID,
		ReviewerUserID:   reviewer.UserID,
		ReviewerUsername: reviewer.Username,
		Rating:           rating,
		Comment:          comment,
		CreatedAt:        time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO reviews(id, book_id, reviewer_user_id, reviewer_username, rating, comment, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		review.ID, review.BookID, review.ReviewerUserID, review.ReviewerUsername,
		review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}

	_ = s.events.Record("review.create", "info", reviewer.Username+" reviewed a book", &reviewer.UserID)

	return review, nil
}
