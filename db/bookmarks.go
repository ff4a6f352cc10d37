package db

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// Bookmark is a saved partition. It is stored in the database as table
// `bookmarks`. Query holds the encoded bookmark without the leading '?'.
type Bookmark struct {
	gorm.Model
	Slug  string `gorm:"unique_index"`
	Name  string `gorm:"unique_index"`
	Query string `gorm:"type:text"`
}

// BookmarkDAO is the DAO for Bookmark.
type BookmarkDAO struct {
	db *gorm.DB
}

// NewBookmarkDAO creates a BookmarkDAO.
func NewBookmarkDAO() (*BookmarkDAO, error) {
	db, err := getDB()
	if err != nil {
		return nil, err
	}
	return &BookmarkDAO{db}, nil
}

// Close the db connection of this DAO.
func (d *BookmarkDAO) Close() error {
	return errors.WithStack(d.db.Close())
}

// Add saves a new bookmark. A public slug is generated if none is set.
func (d *BookmarkDAO) Add(b *Bookmark) error {
	if b.Name == "" {
		return errors.New("bookmark name is empty")
	}
	if b.Slug == "" {
		b.Slug = uuid.New().String()
	}
	if err := d.db.Create(b).Error; err != nil {
		return errors.Wrapf(err, "failed to add bookmark '%s'", b.Name)
	}
	return nil
}

// Delete the bookmark of the given name.
func (d *BookmarkDAO) Delete(name string) error {
	q := d.db.Delete(&Bookmark{}, "name = ?", name)
	if q.Error != nil {
		return errors.Wrapf(q.Error, "failed to delete bookmark '%s'", name)
	}
	if q.RowsAffected == 0 {
		return errors.Errorf("bookmark '%s' not found", name)
	}
	return nil
}

// Update saves the bookmark to the database.
func (d *BookmarkDAO) Update(b *Bookmark) error {
	if q := d.db.Save(b); q.Error != nil {
		return errors.Wrap(q.Error, "failed to update bookmark")
	}
	return nil
}

// Get the bookmark of the given name.
func (d *BookmarkDAO) Get(name string) (*Bookmark, error) {
	return d.first("name = ?", name)
}

// GetBySlug gets a bookmark by its public slug.
func (d *BookmarkDAO) GetBySlug(slug string) (*Bookmark, error) {
	return d.first("slug = ?", slug)
}

func (d *BookmarkDAO) first(where string, arg string) (*Bookmark, error) {
	b := Bookmark{}
	query := d.db.Where(where, arg).First(&b)
	if query.Error != nil {
		if query.RecordNotFound() {
			return nil, errors.Errorf("bookmark '%s' not found", arg)
		}
		return nil, errors.Wrap(query.Error, "error occurred when querying db")
	}
	return &b, nil
}

// List returns all the bookmarks ordered by name.
func (d *BookmarkDAO) List() ([]*Bookmark, error) {
	results := []*Bookmark{}
	query := d.db.Order("name").Find(&results)
	if query.Error != nil {
		return nil, errors.Wrap(query.Error, "error occurred when querying db")
	}
	return results, nil
}

// CheckExists return a boolean value indicating the existence of the
// bookmark.
func (d *BookmarkDAO) CheckExists(name string) bool {
	_, err := d.Get(name)
	return err == nil
}
