package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/notify"
	"github.com/postpilot/autopost/internal/publisher"
)

type fakeEntryRepo struct {
	entries map[int64]*models.AutoListEntry

	dueWeekdayBit  int
	dueMinuteOfDay string
	due            []*models.AutoListEntry

	created []*models.AutoListEntry
}

func (r *fakeEntryRepo) Create(ctx context.Context, entry *models.AutoListEntry) (int64, error) {
	entry.ID = int64(len(r.created) + 1)
	r.created = append(r.created, entry)
	return entry.ID, nil
}

func (r *fakeEntryRepo) GetByID(ctx context.Context, id int64) (*models.AutoListEntry, error) {
	return r.entries[id], nil
}

func (r *fakeEntryRepo) ListByAutoListID(ctx context.Context, autoListID int64) ([]*models.AutoListEntry, error) {
	return nil, nil
}

func (r *fakeEntryRepo) ListDue(ctx context.Context, weekdayBit int, minuteOfDay string) ([]*models.AutoListEntry, error) {
	r.dueWeekdayBit = weekdayBit
	r.dueMinuteOfDay = minuteOfDay
	return r.due, nil
}

func (r *fakeEntryRepo) Update(ctx context.Context, entry *models.AutoListEntry) error { return nil }
func (r *fakeEntryRepo) Remove(ctx context.Context, id int64) error                    { return nil }

type fakeAutoListRepo struct {
	lists    map[int64]*models.AutoList
	accounts map[int64][]*models.SocialAccount
}

func (r *fakeAutoListRepo) Create(ctx context.Context, tx *sql.Tx, al *models.AutoList, accountIDs []int64) (int64, error) {
	return 0, nil
}

func (r *fakeAutoListRepo) GetByID(ctx context.Context, id int64) (*models.AutoList, error) {
	return r.lists[id], nil
}

func (r *fakeAutoListRepo) ListByProjectID(ctx context.Context, projectID int64) ([]*models.AutoList, error) {
	return nil, nil
}

func (r *fakeAutoListRepo) Update(ctx context.Context, tx *sql.Tx, al *models.AutoList, accountIDs []int64) error {
	return nil
}

func (r *fakeAutoListRepo) ListAccounts(ctx context.Context, autoListID int64) ([]*models.SocialAccount, error) {
	return r.accounts[autoListID], nil
}

func (r *fakeAutoListRepo) Remove(ctx context.Context, id int64) error { return nil }

// fakeMediaPostRepo emulates the claim semantics of the real repository:
// oldest unprocessed post first, each post claimed at most once, safe under
// concurrent callers.
type fakeMediaPostRepo struct {
	mu    sync.Mutex
	posts []*models.MediaPost
}

func (r *fakeMediaPostRepo) Create(ctx context.Context, post *models.MediaPost) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = int64(len(r.posts) + 1)
	r.posts = append(r.posts, post)
	return post.ID, nil
}

func (r *fakeMediaPostRepo) GetByID(ctx context.Context, id int64) (*models.MediaPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeMediaPostRepo) CheckByProjectID(ctx context.Context, postID, projectID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == postID && p.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMediaPostRepo) UpdateContent(ctx context.Context, id int64, description string, coverKey sql.NullString) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			if description != "" {
				p.Description = description
			}
			if coverKey.Valid {
				p.CoverKey = coverKey
			}
		}
	}
	return nil
}

func (r *fakeMediaPostRepo) ClaimNext(ctx context.Context, tx *sql.Tx, autoListID int64) (*models.MediaPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.AutoListID.Valid && p.AutoListID.Int64 == autoListID && !p.ProcessedInAutoList {
			p.ProcessedInAutoList = true
			return p, nil
		}
	}
	return nil, nil
}

type fakePublicationRepo struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*models.PublicationRecord
}

func newFakePublicationRepo() *fakePublicationRepo {
	return &fakePublicationRepo{records: make(map[int64]*models.PublicationRecord)}
}

func (r *fakePublicationRepo) Create(ctx context.Context, tx *sql.Tx, rec *models.PublicationRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	clone := *rec
	r.records[rec.ID] = &clone
	return rec.ID, nil
}

func (r *fakePublicationRepo) GetByID(ctx context.Context, id int64) (*models.PublicationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	clone := *rec
	return &clone, nil
}

func (r *fakePublicationRepo) ListByMediaPostID(ctx context.Context, mediaPostID int64) ([]*models.PublicationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PublicationRecord
	for _, rec := range r.records {
		if rec.MediaPostID == mediaPostID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePublicationRepo) SetProcessing(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id].Status = models.PublicationStatusProcessing
	return nil
}

func (r *fakePublicationRepo) SetPublished(ctx context.Context, id int64, externalPostID, publicURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.records[id]
	rec.Status = models.PublicationStatusPublished
	rec.ExternalPostID = externalPostID
	rec.PublicURL = publicURL
	return nil
}

func (r *fakePublicationRepo) SetFailed(ctx context.Context, id int64, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.records[id]
	rec.Status = models.PublicationStatusFailed
	rec.ErrorMessage = errorMessage
	return nil
}

func (r *fakePublicationRepo) status(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[id].Status
}

type fakeSocialAccountRepo struct {
	accounts map[int64]*models.SocialAccount

	expiring           []*models.SocialAccount
	updatedCredentials map[int64]string
	updatedExpiresAt   map[int64]time.Time
}

func (r *fakeSocialAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	return 0, nil
}

func (r *fakeSocialAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return r.accounts[id], nil
}

func (r *fakeSocialAccountRepo) ListByProjectID(ctx context.Context, projectID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeSocialAccountRepo) ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialAccount, error) {
	return r.expiring, nil
}

func (r *fakeSocialAccountRepo) CheckByProjectID(ctx context.Context, projectID int64, accountIDs []int64) (bool, error) {
	for _, id := range accountIDs {
		acc, ok := r.accounts[id]
		if !ok || acc.ProjectID != projectID {
			return false, nil
		}
	}
	return true, nil
}

func (r *fakeSocialAccountRepo) SetCredentials(ctx context.Context, id int64, credentials string, expiresAt time.Time) error {
	if r.updatedCredentials == nil {
		r.updatedCredentials = make(map[int64]string)
		r.updatedExpiresAt = make(map[int64]time.Time)
	}
	r.updatedCredentials[id] = credentials
	r.updatedExpiresAt[id] = expiresAt
	return nil
}

func (r *fakeSocialAccountRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakeEnqueuer struct {
	mu        sync.Mutex
	recordIDs []int64
	err       error
}

func (e *fakeEnqueuer) EnqueuePublish(ctx context.Context, recordID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.recordIDs = append(e.recordIDs, recordID)
	return nil
}

func (e *fakeEnqueuer) enqueued() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int64(nil), e.recordIDs...)
}

type fakeNotifier struct {
	mu      sync.Mutex
	changes []notify.StatusChange
}

func (n *fakeNotifier) NotifyStatusChanged(ctx context.Context, change notify.StatusChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

type fakeStorage struct{}

func (fakeStorage) PresignedURL(ctx context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

type fakePublisher struct {
	fn func(ctx context.Context, req publisher.Request) (*publisher.Result, error)
}

func (p *fakePublisher) Publish(ctx context.Context, req publisher.Request) (*publisher.Result, error) {
	return p.fn(ctx, req)
}
