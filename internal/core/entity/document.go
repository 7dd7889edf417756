package entity

import (
	"context"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
)

// Document is the base type for business documents that are drafted and then
// committed exactly once.
type Document struct {
	BaseDocument

	// AuthorID is the user who created the document
	AuthorID id.ID `db:"author_id" json:"authorId"`

	// Pending is true while the document is a draft.
	// It flips to false exactly once, when the document is committed.
	Pending bool `db:"is_pending" json:"isPending"`

	CommittedAt *time.Time `db:"committed_at" json:"committedAt,omitempty"`
	CommittedBy *id.ID     `db:"committed_by" json:"committedBy,omitempty"`

	Note string `db:"note" json:"note,omitempty"`
}

// NewDocument creates a pending document authored by authorID.
func NewDocument(authorID id.ID) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		AuthorID:     authorID,
		Pending:      true,
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.AuthorID) {
		return apperror.NewValidation("author is required").
			WithDetail("field", "authorId")
	}
	return nil
}

// CanModify reports whether the document still accepts changes.
func (d *Document) CanModify() error {
	if !d.Pending {
		return apperror.NewInvalidState("document is already committed").
			WithDetail("document_id", d.ID.String())
	}
	return nil
}

// MarkCommitted records the commit on the in-memory copy.
// Persistence goes through the repository's conditional update.
func (d *Document) MarkCommitted(by id.ID, at time.Time) {
	d.Pending = false
	d.CommittedAt = &at
	d.CommittedBy = &by
	d.UpdatedAt = at
	d.Version++
}
