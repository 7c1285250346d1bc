package audit

import "time"

type CreatedBySetter interface {
	SetCreatedBy(Actor)
}

type CreatedAtSetter interface {
	SetCreatedAt(time.Time)
}

type UpdatedBySetter interface {
	SetUpdatedBy(Actor)
}

type UpdatedAtSetter interface {
	SetUpdatedAt(time.Time)
}

// Auditable is implemented by entities exposing all four slots.
type Auditable interface {
	CreatedBySetter
	CreatedAtSetter
	UpdatedBySetter
	UpdatedAtSetter
}

// Fields is an embeddable implementation of Auditable.
type Fields struct {
	CreatedBy string    `bun:"created_by,nullzero" json:"created_by,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero" json:"created_at,omitempty"`
	UpdatedBy string    `bun:"updated_by,nullzero" json:"updated_by,omitempty"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

var _ Auditable = (*Fields)(nil)

func (f *Fields) SetCreatedBy(a Actor) { f.CreatedBy = string(a) }
func (f *Fields) SetCreatedAt(t time.Time) { f.CreatedAt = t }
func (f *Fields) SetUpdatedBy(a Actor) { f.UpdatedBy = string(a) }
func (f *Fields) SetUpdatedAt(t time.Time) { f.UpdatedAt = t }
