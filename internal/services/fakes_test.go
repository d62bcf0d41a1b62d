package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/socialgraph/socialgraph/internal/models"
	"github.com/socialgraph/socialgraph/pkg/logger"
	"gorm.io/gorm"
)

func testLogger() *logger.Logger {
	return logger.NewLogger("error")
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Suggestions(ctx context.Context, userID uuid.UUID, limit int) ([]*models.User, error) {
	return nil, nil
}

type followEdge struct {
	followerID  uuid.UUID
	followingID uuid.UUID
}

type fakeFollowRepo struct {
	edges map[followEdge]bool
	// createErr, when set, is returned by the next Create call. Used to
	// simulate losing the unique-index race.
	createErr error
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[followEdge]bool)}
}

func (r *fakeFollowRepo) Create(ctx context.Context, follow *models.Follow) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	edge := followEdge{follow.FollowerID, follow.FollowingID}
	if r.edges[edge] {
		return fmt.Errorf("failed to create follow: %w", gorm.ErrDuplicatedKey)
	}
	r.edges[edge] = true
	return nil
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	edge := followEdge{followerID, followingID}
	if !r.edges[edge] {
		return false, nil
	}
	delete(r.edges, edge)
	return true, nil
}

func (r *fakeFollowRepo) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	return r.edges[followEdge{followerID, followingID}], nil
}

func (r *fakeFollowRepo) GetFollowers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeFollowRepo) GetFollowing(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeFollowRepo) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for edge := range r.edges {
		if edge.followingID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for edge := range r.edges {
		if edge.followerID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFollowRepo) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for edge := range r.edges {
		if edge.followerID == userID {
			ids = append(ids, edge.followingID)
		}
	}
	return ids, nil
}

type fakePostRepo struct {
	posts map[uuid.UUID]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[uuid.UUID]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *models.Post) error {
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) List(ctx context.Context, offset, limit int) ([]*models.Post, error) {
	return r.sorted(nil), nil
}

func (r *fakePostRepo) GetByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Post, error) {
	return r.sorted(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) GetByAuthors(ctx context.Context, authorIDs []uuid.UUID, offset, limit int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	allowed := make(map[uuid.UUID]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	return r.sorted(func(p *models.Post) bool { return allowed[p.AuthorID] }), nil
}

func (r *fakePostRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Post, error) {
	var posts []*models.Post
	for _, id := range ids {
		if p, ok := r.posts[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) Search(ctx context.Context, query string, offset, limit int) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) sorted(keep func(*models.Post) bool) []*models.Post {
	var posts []*models.Post
	for _, p := range r.posts {
		if keep == nil || keep(p) {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

type fakeCommentRepo struct {
	comments map[uuid.UUID]*models.Comment
}

func newFakeCommentRepo(comments ...*models.Comment) *fakeCommentRepo {
	r := &fakeCommentRepo{comments: make(map[uuid.UUID]*models.Comment)}
	for _, c := range comments {
		r.comments[c.ID] = c
	}
	return r
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = time.Now()
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.comments[id], nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) GetByPostID(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *fakeCommentRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, id := range ids {
		if c, ok := r.comments[id]; ok {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

func (r *fakeCommentRepo) IDsByPostID(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, c := range r.comments {
		if c.PostID == postID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (r *fakeCommentRepo) DeleteByPostID(ctx context.Context, postID uuid.UUID) error {
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *fakeCommentRepo) CountByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	for _, c := range r.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

type likeKey struct {
	userID uuid.UUID
	kind   models.TargetKind
	id     uuid.UUID
}

type fakeLikeRepo struct {
	likes map[likeKey]*models.Like
	// createErr, when set, is returned by the next Create call. Used to
	// simulate losing the unique-index race.
	createErr error
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]*models.Like)}
}

func (r *fakeLikeRepo) key(userID uuid.UUID, target models.Target) likeKey {
	return likeKey{userID: userID, kind: target.Kind, id: target.ID}
}

func (r *fakeLikeRepo) Create(ctx context.Context, like *models.Like) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	key := likeKey{userID: like.UserID, kind: like.TargetKind, id: like.TargetID}
	if _, ok := r.likes[key]; ok {
		return fmt.Errorf("failed to create like: %w", gorm.ErrDuplicatedKey)
	}
	like.ID = uuid.New()
	like.CreatedAt = time.Now()
	r.likes[key] = like
	return nil
}

func (r *fakeLikeRepo) Get(ctx context.Context, userID uuid.UUID, target models.Target) (*models.Like, error) {
	return r.likes[r.key(userID, target)], nil
}

func (r *fakeLikeRepo) Delete(ctx context.Context, userID uuid.UUID, target models.Target) (bool, error) {
	key := r.key(userID, target)
	if _, ok := r.likes[key]; !ok {
		return false, nil
	}
	delete(r.likes, key)
	return true, nil
}

func (r *fakeLikeRepo) CountByTarget(ctx context.Context, target models.Target) (int64, error) {
	var count int64
	for key := range r.likes {
		if key.kind == target.Kind && key.id == target.ID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLikeRepo) DeleteByTarget(ctx context.Context, target models.Target) error {
	for key := range r.likes {
		if key.kind == target.Kind && key.id == target.ID {
			delete(r.likes, key)
		}
	}
	return nil
}

func (r *fakeLikeRepo) DeleteByTargets(ctx context.Context, kind models.TargetKind, ids []uuid.UUID) error {
	allowed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	for key := range r.likes {
		if key.kind == kind && allowed[key.id] {
			delete(r.likes, key)
		}
	}
	return nil
}

func (r *fakeLikeRepo) TargetIDsByUser(ctx context.Context, userID uuid.UUID, kind models.TargetKind) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for key := range r.likes {
		if key.userID == userID && key.kind == kind {
			ids = append(ids, key.id)
		}
	}
	return ids, nil
}

func (r *fakeLikeRepo) IsLiked(ctx context.Context, userID uuid.UUID, target models.Target) (bool, error) {
	_, ok := r.likes[r.key(userID, target)]
	return ok, nil
}

type fakeNotificationRepo struct {
	rows []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()
	r.rows = append(r.rows, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	for _, n := range r.rows {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, readFilter *bool, offset, limit int) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range r.rows {
		if n.RecipientID != recipientID {
			continue
		}
		if readFilter != nil && n.Read != *readFilter {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeNotificationRepo) CountByRecipient(ctx context.Context, recipientID uuid.UUID) (int64, int64, error) {
	var total, unread int64
	for _, n := range r.rows {
		if n.RecipientID != recipientID {
			continue
		}
		total++
		if !n.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (r *fakeNotificationRepo) CountByVerb(ctx context.Context, recipientID uuid.UUID, verb models.Verb) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.RecipientID == recipientID && n.Verb == verb {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var updated int64
	for _, n := range r.rows {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}
