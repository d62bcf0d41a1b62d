package models

import (
	"fmt"

	"github.com/google/uuid"
)

// TargetKind tags which table a polymorphic reference points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

func (k TargetKind) Valid() bool {
	switch k {
	case TargetPost, TargetComment:
		return true
	}
	return false
}

// Target is a tagged reference to either a post or a comment. Likes and
// notifications store it as a (kind, id) column pair instead of two
// separate nullable foreign keys.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

func PostTarget(id uuid.UUID) Target {
	return Target{Kind: TargetPost, ID: id}
}

func CommentTarget(id uuid.UUID) Target {
	return Target{Kind: TargetComment, ID: id}
}

func (t Target) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("invalid target kind: %q", t.Kind)
	}
	if t.ID == uuid.Nil {
		return fmt.Errorf("target id is required")
	}
	return nil
}
