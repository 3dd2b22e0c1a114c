package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/luminakb/lumina/internal/domain"
)

// ContentRepository handles content item persistence
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create creates a new content item
func (r *ContentRepository) Create(item *domain.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	var extractedJSON []byte
	if item.ExtractedContent != nil {
		extractedJSON, _ = json.Marshal(item.ExtractedContent)
	}

	_, err := r.db.Exec(`
		INSERT INTO content_items (id, collection_id, type, title, url, video_id, transcript, extracted_content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.CollectionID, string(item.Type), item.Title, item.URL, item.VideoID,
		string(item.Transcript), string(extractedJSON), item.CreatedAt, item.UpdatedAt)

	return err
}

// Get retrieves a content item by ID
func (r *ContentRepository) Get(id string) (*domain.ContentItem, error) {
	row := r.db.QueryRow(`
		SELECT id, collection_id, type, title, url, video_id, transcript, extracted_content, created_at, updated_at
		FROM content_items WHERE id = ?
	`, id)

	item, err := scanContentItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListByCollection retrieves all content items in a collection
func (r *ContentRepository) ListByCollection(collectionID string) ([]*domain.ContentItem, error) {
	rows, err := r.db.Query(`
		SELECT id, collection_id, type, title, url, video_id, transcript, extracted_content, created_at, updated_at
		FROM content_items WHERE collection_id = ?
		ORDER BY created_at ASC
	`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Delete deletes a content item and reports its collection ID
func (r *ContentRepository) Delete(id string) (string, error) {
	var collectionID string
	err := r.db.QueryRow(`SELECT collection_id FROM content_items WHERE id = ?`, id).Scan(&collectionID)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}

	if _, err := r.db.Exec(`DELETE FROM content_items WHERE id = ?`, id); err != nil {
		return "", err
	}
	return collectionID, nil
}

// Count returns the total number of content items
func (r *ContentRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM content_items`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (*domain.ContentItem, error) {
	item := &domain.ContentItem{}
	var itemType string
	var url, videoID, transcript, extracted sql.NullString

	if err := row.Scan(&item.ID, &item.CollectionID, &itemType, &item.Title,
		&url, &videoID, &transcript, &extracted, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	item.Type = domain.SourceType(itemType)
	if url.Valid {
		item.URL = url.String
	}
	if videoID.Valid {
		item.VideoID = videoID.String
	}
	if transcript.Valid && transcript.String != "" {
		item.Transcript = json.RawMessage(transcript.String)
	}
	if extracted.Valid && extracted.String != "" {
		json.Unmarshal([]byte(extracted.String), &item.ExtractedContent)
	}

	return item, nil
}
