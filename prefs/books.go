package prefs

import (
	"database/sql"
	"fmt"
	"time"
)

// Audiobook is a library record: one folder of audio files with its
// listening state.
type Audiobook struct {
	ID             string
	Title          string
	Author         string
	Folder         string
	DurationMillis int64
	PositionMillis int64
	Speed          float64
	Completed      bool
	Updated        time.Time
}

// SaveBooks upserts library records in one transaction.
func (s *Store) SaveBooks(books []Audiobook) (err error) {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO audiobooks (id, title, author, folder, duration_ms, position_ms, speed, completed, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			author=excluded.author,
			folder=excluded.folder,
			duration_ms=excluded.duration_ms,
			position_ms=excluded.position_ms,
			speed=excluded.speed,
			completed=excluded.completed,
			updated=excluded.updated
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, book := range books {
		updated := book.Updated
		if updated.IsZero() {
			updated = time.Now()
		}

		_, err = stmt.Exec(
			book.ID,
			book.Title,
			nullString(book.Author),
			book.Folder,
			book.DurationMillis,
			book.PositionMillis,
			book.Speed,
			book.Completed,
			updated.UnixMilli(),
		)
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}

// Book returns one library record, or (nil, nil) if absent.
func (s *Store) Book(id string) (*Audiobook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("prefs: missing database connection")
	}

	row := s.db.QueryRow(`
		SELECT id, title, author, folder, duration_ms, position_ms, speed, completed, updated
		FROM audiobooks
		WHERE id = ?
	`, id)

	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return book, nil
}

// Books returns all library records ordered by title.
func (s *Store) Books() ([]Audiobook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("prefs: missing database connection")
	}

	rows, err := s.db.Query(`
		SELECT id, title, author, folder, duration_ms, position_ms, speed, completed, updated
		FROM audiobooks
		ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Audiobook
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}

	return books, rows.Err()
}

// DeleteBook removes a library record and its tag links.
func (s *Store) DeleteBook(id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	_, err := s.db.Exec(`DELETE FROM audiobooks WHERE id = ?`, id)
	return err
}

// SavePosition records the listening position and rate for a book.
func (s *Store) SavePosition(id string, positionMillis int64, speed float64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	_, err := s.db.Exec(`
		UPDATE audiobooks
		SET position_ms = ?, speed = ?, updated = ?
		WHERE id = ?
	`, positionMillis, speed, time.Now().UnixMilli(), id)

	return err
}

// AddTag creates a tag; creating an existing tag is a no-op.
func (s *Store) AddTag(name string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	_, err := s.db.Exec(`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	return err
}

// Tags returns all tag names.
func (s *Store) Tags() ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("prefs: missing database connection")
	}

	rows, err := s.db.Query(`SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}

	return tags, rows.Err()
}

// TagBook links a tag to a book, creating the tag if needed.
func (s *Store) TagBook(bookID, tag string) error {
	if err := s.AddTag(tag); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO book_tags (book_id, tag) VALUES (?, ?)
		ON CONFLICT(book_id, tag) DO NOTHING
	`, bookID, tag)

	return err
}

// UntagBook removes a tag link from a book.
func (s *Store) UntagBook(bookID, tag string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("prefs: missing database connection")
	}

	_, err := s.db.Exec(`DELETE FROM book_tags WHERE book_id = ? AND tag = ?`, bookID, tag)
	return err
}

// BookTags returns the tags linked to a book.
func (s *Store) BookTags(bookID string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("prefs: missing database connection")
	}

	rows, err := s.db.Query(`SELECT tag FROM book_tags WHERE book_id = ? ORDER BY tag`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// BooksWithTag returns the books linked to a tag, ordered by title.
func (s *Store) BooksWithTag(tag string) ([]Audiobook, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("prefs: missing database connection")
	}

	rows, err := s.db.Query(`
		SELECT b.id, b.title, b.author, b.folder, b.duration_ms, b.position_ms, b.speed, b.completed, b.updated
		FROM audiobooks b
		JOIN book_tags bt ON bt.book_id = b.id
		WHERE bt.tag = ?
		ORDER BY b.title
	`, tag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Audiobook
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}

	return books, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*Audiobook, error) {
	var (
		book      Audiobook
		author    sql.NullString
		completed int
		updated   int64
	)

	err := row.Scan(
		&book.ID,
		&book.Title,
		&author,
		&book.Folder,
		&book.DurationMillis,
		&book.PositionMillis,
		&book.Speed,
		&completed,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	book.Author = author.String
	book.Completed = completed != 0
	book.Updated = time.UnixMilli(updated)

	return &book, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
