package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/service"
)

func TestCoAuthorService_Create(t *testing.T) {
	f := newFixture(t)
	note := f.groceries(t)

	grant := f.share(t, note.ID, " Bob@Example.com ")

	assert.Equal(t, note.ID, grant.NoteID)
	assert.Equal(t, f.bob, grant.UserID)
	assert.Equal(t, activeID, grant.StatusID)
	require.NotNil(t, grant.User)
	assert.Equal(t, "Bob", grant.User.FirstName)
	require.NotNil(t, grant.Note)
	require.Len(t, grant.Note.CoAuthors, 1)
	assert.Equal(t, f.bob, grant.Note.CoAuthors[0].UserID)
	assert.Len(t, grant.Note.List, 2)

	shared, err := f.coAuthors.FindByUserID(context.Background(), f.bob)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, note.ID, shared[0].NoteID)
}

func TestCoAuthorService_CreateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note := f.groceries(t)
	f.share(t, note.ID, "bob@example.com")

	tests := []struct {
		name    string
		noteID  int64
		email   string
		actor   int64
		wantErr error
	}{
		{name: "co-author shares", noteID: note.ID, email: "carol@example.com", actor: f.bob, wantErr: models.ErrPermissionDenied},
		{name: "stranger shares", noteID: note.ID, email: "carol@example.com", actor: f.carol, wantErr: models.ErrNotFound},
		{name: "missing note", noteID: 999, email: "carol@example.com", actor: f.alice, wantErr: models.ErrNotFound},
		{name: "unknown email", noteID: note.ID, email: "nobody@example.com", actor: f.alice, wantErr: models.ErrNotFound},
		{name: "owner email", noteID: note.ID, email: "alice@example.com", actor: f.alice, wantErr: models.ErrValidationFailed},
		{name: "already active", noteID: note.ID, email: "bob@example.com", actor: f.alice, wantErr: models.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coAuthors.Create(ctx, tt.noteID, tt.email, tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCoAuthorService_RevokeAndReactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note := f.groceries(t)
	grant := f.share(t, note.ID, "bob@example.com")

	revoked, err := f.coAuthors.Delete(ctx, grant.ID, f.bob)
	require.NoError(t, err)
	assert.Equal(t, inactiveID, revoked.StatusID)
	require.NotNil(t, revoked.Note)
	assert.Empty(t, revoked.Note.CoAuthors)

	_, err = f.notes.GetNoteByID(ctx, note.ID, f.bob, false)
	assert.ErrorIs(t, err, models.ErrNotFound)
	list, err := f.notes.GetList(ctx, f.bob, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = f.notes.Update(ctx, note.ID, service.NoteInput{Title: "Hijacked"}, f.bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.items.Create(ctx, service.ListItemInput{NoteID: note.ID, Text: "Cake"}, f.bob)
	assert.ErrorIs(t, err, models.ErrNotFound)

	again := f.share(t, note.ID, "bob@example.com")
	assert.Equal(t, grant.ID, again.ID, "inactive grant is reactivated")
	assert.Equal(t, activeID, again.StatusID)

	got, err := f.notes.GetNoteByID(ctx, note.ID, f.bob, false)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
}

func TestCoAuthorService_RevokedGranteeCannotReadThroughGrant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note := f.groceries(t)
	grant := f.share(t, note.ID, "bob@example.com")

	_, err := f.coAuthors.Delete(ctx, grant.ID, f.alice)
	require.NoError(t, err)
	_, err = f.notes.Update(ctx, note.ID, service.NoteInput{Title: "Private after revoke", Text: "secret"}, f.alice)
	require.NoError(t, err)

	got, err := f.coAuthors.Delete(ctx, grant.ID, f.bob)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, got)

	// The owner may still revoke again; the grant simply stays inactive.
	again, err := f.coAuthors.Delete(ctx, grant.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, inactiveID, again.StatusID)
	assert.Equal(t, "Private after revoke", again.Note.Title)
}

func TestCoAuthorService_DeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	note := f.groceries(t)
	bobGrant := f.share(t, note.ID, "bob@example.com")
	f.share(t, note.ID, "carol@example.com")

	_, err := f.coAuthors.Delete(ctx, bobGrant.ID, f.carol)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = f.coAuthors.Delete(ctx, 999, f.alice)
	assert.ErrorIs(t, err, models.ErrNotFound)

	revoked, err := f.coAuthors.Delete(ctx, bobGrant.ID, f.alice)
	require.NoError(t, err)
	require.Len(t, revoked.Note.CoAuthors, 1)
	assert.Equal(t, f.carol, revoked.Note.CoAuthors[0].UserID)
}
