package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestVerbValid(t *testing.T) {
	for _, verb := range []Verb{VerbFollow, VerbLikePost, VerbLikeComment, VerbComment, VerbMention} {
		if !verb.Valid() {
			t.Errorf("Verb(%q).Valid() = false, want true", verb)
		}
	}
	for _, verb := range []Verb{"", "poke", "Follow", "like"} {
		if verb.Valid() {
			t.Errorf("Verb(%q).Valid() = true, want false", verb)
		}
	}
}

func TestNotificationMessage(t *testing.T) {
	actor := User{Username: "alice"}

	tests := []struct {
		verb Verb
		want string
	}{
		{VerbFollow, "alice started following you"},
		{VerbLikePost, "alice liked your post"},
		{VerbLikeComment, "alice liked your comment"},
		{VerbComment, "alice commented on your post"},
		{VerbMention, "alice mentioned you in a post"},
		{Verb("unknown"), "New notification"},
	}
	for _, tt := range tests {
		n := &Notification{Verb: tt.verb, Actor: actor}
		if got := n.Message(); got != tt.want {
			t.Errorf("Message(%q) = %q, want %q", tt.verb, got, tt.want)
		}
	}
}

func TestNotificationTarget(t *testing.T) {
	id := uuid.New()
	n := &Notification{Verb: VerbLikePost, TargetKind: TargetPost, TargetID: &id}

	target, ok := n.Target()
	if !ok {
		t.Fatal("Target() = false for a notification with a target")
	}
	if target.Kind != TargetPost || target.ID != id {
		t.Fatalf("Target() = %v", target)
	}

	bare := &Notification{Verb: VerbFollow}
	if _, ok := bare.Target(); ok {
		t.Fatal("Target() = true for a follow notification")
	}
}
