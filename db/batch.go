// ABOUTME: Mutation batch types and atomic batch application
// ABOUTME: Applies ordered per-contact field operations in a single transaction
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OpKind tags one field-level operation inside a batch.
type OpKind int

const (
	// OpCreate inserts the base contact row. Later ops in the same batch
	// reference it through the batch's ContactID.
	OpCreate OpKind = iota
	OpSetField
	OpClearField
	OpSetGroup
	OpSetPhoto
	OpClearPhoto
	// OpDelete removes the contact row outright. The row must be truly
	// gone afterwards, not hidden behind a tombstone.
	OpDelete
)

// Field names one scalar contact attribute a batch op targets.
type Field string

const (
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldPhoneMobile Field = "phone_mobile"
	FieldPhoneFixed  Field = "phone_fixed"
)

// fieldColumns whitelists the columns batch ops may touch.
var fieldColumns = map[Field]string{
	FieldName:        "name",
	FieldEmail:       "email",
	FieldPhoneMobile: "phone_mobile",
	FieldPhoneFixed:  "phone_fixed",
}

// Op is one atomic field-level operation.
type Op struct {
	Kind              OpKind
	Field             Field
	Value             string
	GroupID           uuid.UUID
	Photo             []byte
	PhotoLastModified string
}

// Batch is an ordered sequence of operations scoped to one contact.
// It either fully commits or leaves the contact exactly as before.
type Batch struct {
	ContactID uuid.UUID
	Account   string
	SourceID  string
	Ops       []Op
}

// NewBatch starts a batch against an existing contact.
func NewBatch(contactID uuid.UUID) *Batch {
	return &Batch{ContactID: contactID}
}

// NewInsertBatch starts a batch that creates a contact. The contact ID is
// assigned up front so subsequent ops can reference the new row.
func NewInsertBatch(account, sourceID string) *Batch {
	b := &Batch{ContactID: uuid.New(), Account: account, SourceID: sourceID}
	b.Ops = append(b.Ops, Op{Kind: OpCreate})
	return b
}

func (b *Batch) SetField(f Field, value string) {
	b.Ops = append(b.Ops, Op{Kind: OpSetField, Field: f, Value: value})
}

func (b *Batch) ClearField(f Field) {
	b.Ops = append(b.Ops, Op{Kind: OpClearField, Field: f})
}

func (b *Batch) SetGroup(groupID uuid.UUID) {
	b.Ops = append(b.Ops, Op{Kind: OpSetGroup, GroupID: groupID})
}

func (b *Batch) SetPhoto(photo []byte, lastModified string) {
	b.Ops = append(b.Ops, Op{Kind: OpSetPhoto, Photo: photo, PhotoLastModified: lastModified})
}

func (b *Batch) ClearPhoto() {
	b.Ops = append(b.Ops, Op{Kind: OpClearPhoto})
}

func (b *Batch) DeleteContact() {
	b.Ops = append(b.Ops, Op{Kind: OpDelete})
}

// Empty reports whether the batch contains no operations. An empty batch
// means no observable change and must not be applied.
func (b *Batch) Empty() bool {
	return len(b.Ops) == 0
}

// ApplyBatch applies all operations of a batch in a single transaction.
func ApplyBatch(db *sql.DB, b *Batch) error {
	if b.Empty() {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	now := time.Now()
	id := b.ContactID.String()

	for _, op := range b.Ops {
		switch op.Kind {
		case OpCreate:
			_, err = tx.Exec(`
				INSERT INTO contacts (id, account, source_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)
			`, id, b.Account, b.SourceID, now, now)

		case OpSetField:
			col, ok := fieldColumns[op.Field]
			if !ok {
				err = fmt.Errorf("unknown field %q", op.Field)
				break
			}
			_, err = tx.Exec(`UPDATE contacts SET `+col+` = ?, updated_at = ? WHERE id = ?`, op.Value, now, id)

		case OpClearField:
			col, ok := fieldColumns[op.Field]
			if !ok {
				err = fmt.Errorf("unknown field %q", op.Field)
				break
			}
			_, err = tx.Exec(`UPDATE contacts SET `+col+` = NULL, updated_at = ? WHERE id = ?`, now, id)

		case OpSetGroup:
			_, err = tx.Exec(`UPDATE contacts SET group_id = ?, updated_at = ? WHERE id = ?`, op.GroupID.String(), now, id)

		case OpSetPhoto:
			_, err = tx.Exec(`UPDATE contacts SET photo = ?, photo_last_modified = ?, updated_at = ? WHERE id = ?`, op.Photo, op.PhotoLastModified, now, id)

		case OpClearPhoto:
			_, err = tx.Exec(`UPDATE contacts SET photo = NULL, photo_last_modified = NULL, updated_at = ? WHERE id = ?`, now, id)

		case OpDelete:
			_, err = tx.Exec(`DELETE FROM contacts WHERE id = ?`, id)

		default:
			err = fmt.Errorf("unknown op kind %d", op.Kind)
		}

		if err != nil {
			return fmt.Errorf("failed to apply batch op: %w", err)
		}
	}

	return tx.Commit()
}
