package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
)

func TestFeedOnlyFollowedAuthorsNewestFirst(t *testing.T) {
	reader := uuid.New()
	followed := uuid.New()
	alsoFollowed := uuid.New()
	stranger := uuid.New()

	base := time.Now()
	oldPost := &models.Post{ID: uuid.New(), AuthorID: followed, Title: "old", CreatedAt: base.Add(-2 * time.Hour)}
	newPost := &models.Post{ID: uuid.New(), AuthorID: alsoFollowed, Title: "new", CreatedAt: base}
	midPost := &models.Post{ID: uuid.New(), AuthorID: followed, Title: "mid", CreatedAt: base.Add(-time.Hour)}
	strangerPost := &models.Post{ID: uuid.New(), AuthorID: stranger, Title: "hidden", CreatedAt: base}
	ownPost := &models.Post{ID: uuid.New(), AuthorID: reader, Title: "mine", CreatedAt: base}

	followRepo := newFakeFollowRepo()
	followRepo.edges[followEdge{reader, followed}] = true
	followRepo.edges[followEdge{reader, alsoFollowed}] = true

	svc := NewFeedService(
		followRepo,
		newFakePostRepo(oldPost, newPost, midPost, strangerPost, ownPost),
		newFakeCommentRepo(),
		newFakeLikeRepo(),
		testLogger(),
	)

	feed, err := svc.Feed(context.Background(), reader, 0, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	want := []string{"new", "mid", "old"}
	if len(feed) != len(want) {
		t.Fatalf("got %d posts, want %d", len(feed), len(want))
	}
	for i, title := range want {
		if feed[i].Title != title {
			t.Fatalf("feed[%d].Title = %q, want %q", i, feed[i].Title, title)
		}
	}
	for _, view := range feed {
		if view.AuthorID == stranger {
			t.Fatal("feed contains a post from an unfollowed author")
		}
		if view.AuthorID == reader {
			t.Fatal("feed contains the reader's own post")
		}
	}
}

func TestFeedEmptyWhenFollowingNobody(t *testing.T) {
	post := &models.Post{ID: uuid.New(), AuthorID: uuid.New(), Title: "out there"}

	svc := NewFeedService(
		newFakeFollowRepo(),
		newFakePostRepo(post),
		newFakeCommentRepo(),
		newFakeLikeRepo(),
		testLogger(),
	)

	feed, err := svc.Feed(context.Background(), uuid.New(), 0, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("got %d posts for a user following nobody, want 0", len(feed))
	}
}

func TestFeedReflectsUnfollowImmediately(t *testing.T) {
	reader := uuid.New()
	author := uuid.New()
	post := &models.Post{ID: uuid.New(), AuthorID: author, Title: "ephemeral"}

	followRepo := newFakeFollowRepo()
	followRepo.edges[followEdge{reader, author}] = true

	svc := NewFeedService(followRepo, newFakePostRepo(post), newFakeCommentRepo(), newFakeLikeRepo(), testLogger())
	ctx := context.Background()

	feed, err := svc.Feed(ctx, reader, 0, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("got %d posts while following, want 1", len(feed))
	}

	delete(followRepo.edges, followEdge{reader, author})

	feed, err = svc.Feed(ctx, reader, 0, 20)
	if err != nil {
		t.Fatalf("Feed() after unfollow error = %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("got %d posts after unfollow, want 0", len(feed))
	}
}

func TestFeedCarriesEngagement(t *testing.T) {
	reader := uuid.New()
	author := uuid.New()
	post := &models.Post{ID: uuid.New(), AuthorID: author, Title: "popular"}

	followRepo := newFakeFollowRepo()
	followRepo.edges[followEdge{reader, author}] = true
	commentRepo := newFakeCommentRepo()
	likeRepo := newFakeLikeRepo()
	ctx := context.Background()

	if err := commentRepo.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: reader, Content: "hi"}); err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	if err := likeRepo.Create(ctx, &models.Like{UserID: reader, TargetKind: models.TargetPost, TargetID: post.ID}); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	svc := NewFeedService(followRepo, newFakePostRepo(post), commentRepo, likeRepo, testLogger())

	feed, err := svc.Feed(ctx, reader, 0, 20)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("got %d posts, want 1", len(feed))
	}
	if feed[0].LikesCount != 1 || feed[0].CommentsCount != 1 || !feed[0].IsLiked {
		t.Fatalf("engagement = %d likes / %d comments / liked=%v, want 1/1/true",
			feed[0].LikesCount, feed[0].CommentsCount, feed[0].IsLiked)
	}
}
