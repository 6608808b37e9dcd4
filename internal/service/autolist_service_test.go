package service

import (
	"context"
	"testing"

	"github.com/postpilot/autopost/internal/models"
	"github.com/postpilot/autopost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAutoListFixture() (*fakeAutoListRepo, *fakeEntryRepo, *fakeSocialAccountRepo, AutoListService) {
	al := &fakeAutoListRepo{
		lists:    make(map[int64]*models.AutoList),
		accounts: make(map[int64][]*models.SocialAccount),
	}
	er := &fakeEntryRepo{entries: make(map[int64]*models.AutoListEntry)}
	sa := &fakeSocialAccountRepo{accounts: make(map[int64]*models.SocialAccount)}
	return al, er, sa, NewAutoListService(al, er, sa)
}

func TestAutoListCreateValidation(t *testing.T) {
	_, _, sa, svc := newAutoListFixture()
	sa.accounts[101] = &models.SocialAccount{ID: 101, ProjectID: 1}

	_, err := svc.Create(context.Background(), 1, &transfer.AutoListCreation{Name: "", AccountIDs: []int64{101}})
	assert.ErrorContains(t, err, "name")

	_, err = svc.Create(context.Background(), 1, &transfer.AutoListCreation{Name: "reels", AccountIDs: []int64{101, 101}})
	assert.ErrorContains(t, err, "duplicate")

	_, err = svc.Create(context.Background(), 2, &transfer.AutoListCreation{Name: "reels", AccountIDs: []int64{101}})
	assert.ErrorContains(t, err, "belong")
}

func TestAutoListUpdateScopedToProject(t *testing.T) {
	al, _, sa, svc := newAutoListFixture()
	sa.accounts[101] = &models.SocialAccount{ID: 101, ProjectID: 1}
	al.lists[5] = &models.AutoList{ID: 5, ProjectID: 1, Name: "reels"}

	err := svc.Update(context.Background(), 2, 5, &transfer.AutoListCreation{Name: "renamed", AccountIDs: []int64{101}})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Update(context.Background(), 1, 5, &transfer.AutoListCreation{Name: "renamed", AccountIDs: []int64{101}})
	require.NoError(t, err)
	assert.Equal(t, "renamed", al.lists[5].Name)
}

func TestAutoListRemoveScopedToProject(t *testing.T) {
	al, _, _, svc := newAutoListFixture()
	al.lists[5] = &models.AutoList{ID: 5, ProjectID: 1}

	assert.ErrorIs(t, svc.Remove(context.Background(), 2, 5), ErrNotFound)
	assert.NoError(t, svc.Remove(context.Background(), 1, 5))
}

func TestCreateEntryValidation(t *testing.T) {
	al, er, _, svc := newAutoListFixture()
	al.lists[5] = &models.AutoList{ID: 5, ProjectID: 1}

	_, err := svc.CreateEntry(context.Background(), &transfer.AutoListEntryCreation{AutoListID: 5, DayOfWeeks: 0, PublicationTime: "09:00"})
	assert.ErrorContains(t, err, "day_of_weeks")

	_, err = svc.CreateEntry(context.Background(), &transfer.AutoListEntryCreation{AutoListID: 5, DayOfWeeks: 128, PublicationTime: "09:00"})
	assert.ErrorContains(t, err, "day_of_weeks")

	_, err = svc.CreateEntry(context.Background(), &transfer.AutoListEntryCreation{AutoListID: 5, DayOfWeeks: 1, PublicationTime: "25:00"})
	assert.Error(t, err)

	_, err = svc.CreateEntry(context.Background(), &transfer.AutoListEntryCreation{AutoListID: 99, DayOfWeeks: 1, PublicationTime: "09:00"})
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := svc.CreateEntry(context.Background(), &transfer.AutoListEntryCreation{AutoListID: 5, DayOfWeeks: 65, PublicationTime: "9:05"})
	require.NoError(t, err)
	require.Len(t, er.created, 1)
	assert.Equal(t, id, er.created[0].ID)
	assert.Equal(t, "09:05", er.created[0].PublicationTime)
	assert.Equal(t, 65, er.created[0].DayOfWeeks)
}

func TestUpdateEntryMissing(t *testing.T) {
	_, _, _, svc := newAutoListFixture()

	err := svc.UpdateEntry(context.Background(), 99, &transfer.AutoListEntryCreation{DayOfWeeks: 1, PublicationTime: "09:00"})
	assert.ErrorIs(t, err, ErrNotFound)
}
