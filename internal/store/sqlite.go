// Package store is an in-memory SQLite search index over classified entries.
// It is rebuilt on every run and never written to disk.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pbaille/logindex/internal/domain"
)

//go:embed schema.sql
var schema string

// Hit is one search result with its session context
type Hit struct {
	ID      string   `json:"id"`
	Date    string   `json:"date"`
	Session string   `json:"session"`
	Text    string   `json:"text"`
	Tags    []string `json:"tags"`
}

// Tag is a topic row
type Tag struct {
	ID   string
	Name string
}

// TagCount is a topic with the number of entries carrying it
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Query selects entries. Empty fields match everything.
type Query struct {
	Text  string
	Topic string
	Limit int
}

// Store handles index operations
type Store struct {
	db   *sql.DB
	seq  int
	tags map[string]string
}

// New opens a fresh in-memory index
func New() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// every pooled connection would get its own empty :memory: database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, tags: map[string]string{}}, nil
}

// Open creates an index holding entries
func Open(entries []domain.Entry) (*Store, error) {
	s, err := New()
	if err != nil {
		return nil, err
	}
	if err := s.Load(entries); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Load inserts entries with their topic links
func (s *Store) Load(entries []domain.Entry) error {
	for _, e := range entries {
		id, err := s.AddEntry(e)
		if err != nil {
			return err
		}
		for _, t := range e.Tags {
			tag, err := s.GetOrCreateTag(string(t))
			if err != nil {
				return err
			}
			if err := s.LinkEntryTag(id, tag.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddEntry stores an entry and returns its id
func (s *Store) AddEntry(e domain.Entry) (string, error) {
	id := uuid.New().String()
	s.seq++

	_, err := s.db.Exec(
		"INSERT INTO entries (id, seq, date, session, content, plain) VALUES (?, ?, ?, ?, ?, ?)",
		id, s.seq, e.Date, e.Session, e.Text, e.Plain,
	)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}
	return id, nil
}

// GetOrCreateTag finds a tag by name or creates it
func (s *Store) GetOrCreateTag(name string) (Tag, error) {
	if id, ok := s.tags[name]; ok {
		return Tag{ID: id, Name: name}, nil
	}

	id := uuid.New().String()
	if _, err := s.db.Exec("INSERT INTO tags (id, name) VALUES (?, ?)", id, name); err != nil {
		return Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	s.tags[name] = id
	return Tag{ID: id, Name: name}, nil
}

// LinkEntryTag associates a tag with an entry
func (s *Store) LinkEntryTag(entryID, tagID string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)",
		entryID, tagID,
	)
	if err != nil {
		return fmt.Errorf("link entry tag: %w", err)
	}
	return nil
}

// Search returns matching entries, most recent first
func (s *Store) Search(q Query) ([]Hit, error) {
	var (
		where []string
		args  []any
	)
	if q.Text != "" {
		like := "%" + escapeLike(q.Text) + "%"
		where = append(where, `(e.plain LIKE ? ESCAPE '\' OR e.content LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	if q.Topic != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM entry_tags et JOIN tags t ON t.id = et.tag_id
			WHERE et.entry_id = e.id AND t.name = ?)`)
		args = append(args, q.Topic)
	}

	query := "SELECT e.id, e.date, e.session, e.content FROM entries e"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.date DESC, e.seq DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ID, &h.Date, &h.Session, &h.Text); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}

	for i := range hits {
		tags, err := s.EntryTags(hits[i].ID)
		if err != nil {
			return nil, err
		}
		hits[i].Tags = tags
	}
	return hits, nil
}

// EntryTags returns the topic names of an entry in name order
func (s *Store) EntryTags(entryID string) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name
		FROM tags t
		JOIN entry_tags et ON t.id = et.tag_id
		WHERE et.entry_id = ?
		ORDER BY t.name
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("get entry tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// ListTags returns every topic with its entry count, busiest first
func (s *Store) ListTags() ([]TagCount, error) {
	rows, err := s.db.Query(`
		SELECT t.name, COUNT(et.entry_id) AS n
		FROM tags t
		LEFT JOIN entry_tags et ON t.id = et.tag_id
		GROUP BY t.id
		ORDER BY n DESC, t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var t TagCount
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
