package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Verb is the closed set of events a notification can describe.
type Verb string

const (
	VerbFollow      Verb = "follow"
	VerbLikePost    Verb = "like_post"
	VerbLikeComment Verb = "like_comment"
	VerbComment     Verb = "comment"
	VerbMention     Verb = "mention"
)

func (v Verb) Valid() bool {
	switch v {
	case VerbFollow, VerbLikePost, VerbLikeComment, VerbComment, VerbMention:
		return true
	}
	return false
}

// Notification is one fan-out record. Rows are written exactly once per
// triggering event and only ever mutated by flipping Read to true; they are
// never auto-deleted.
type Notification struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipientID uuid.UUID       `json:"recipient_id" gorm:"type:uuid;not null;index:idx_recipient_read_created,priority:1"`
	ActorID     uuid.UUID       `json:"actor_id" gorm:"type:uuid;not null;index"`
	Verb        Verb            `json:"verb" gorm:"size:32;not null"`
	TargetKind  TargetKind      `json:"target_kind,omitempty" gorm:"size:16"`
	TargetID    *uuid.UUID      `json:"target_id,omitempty" gorm:"type:uuid"`
	Data        json.RawMessage `json:"data,omitempty" gorm:"type:jsonb"`
	Read        bool            `json:"read" gorm:"not null;default:false;index:idx_recipient_read_created,priority:2"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index:idx_recipient_read_created,priority:3"`

	Recipient User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Actor     User `json:"actor" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
}

// Target reports the referenced entity, if the verb carries one.
func (n *Notification) Target() (Target, bool) {
	if n.TargetID == nil || !n.TargetKind.Valid() {
		return Target{}, false
	}
	return Target{Kind: n.TargetKind, ID: *n.TargetID}, true
}

// Message renders the human-readable text from the stored verb and the
// actor's username. It is deliberately not a stored column, so the wording
// can change without touching existing rows.
func (n *Notification) Message() string {
	switch n.Verb {
	case VerbFollow:
		return fmt.Sprintf("%s started following you", n.Actor.Username)
	case VerbLikePost:
		return fmt.Sprintf("%s liked your post", n.Actor.Username)
	case VerbLikeComment:
		return fmt.Sprintf("%s liked your comment", n.Actor.Username)
	case VerbComment:
		return fmt.Sprintf("%s commented on your post", n.Actor.Username)
	case VerbMention:
		return fmt.Sprintf("%s mentioned you in a post", n.Actor.Username)
	}
	return "New notification"
}

func (Notification) TableName() string {
	return "notifications"
}
