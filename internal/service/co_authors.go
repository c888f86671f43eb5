package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// CoAuthorService maintains the sharing grants between notes and users.
type CoAuthorService struct {
	core
}

// NewCoAuthorService constructs a CoAuthorService.
func NewCoAuthorService(repos Repositories, statuses StatusProvider, types TypeProvider) *CoAuthorService {
	return &CoAuthorService{core{repos: repos, statuses: statuses, types: types}}
}

// FindByUserID returns the active grants targeting userID, the notes shared
// to that user. It never returns nil.
func (s *CoAuthorService) FindByUserID(ctx context.Context, userID int64) ([]models.NoteCoAuthor, error) {
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}
	grants, err := s.repos.CoAuthors.ListByUser(ctx, userID, active.ID)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		grants = []models.NoteCoAuthor{}
	}
	return grants, nil
}

// Create shares noteID with the user registered under email. Only the owner
// may share. An inactive grant for the same user is reactivated. The grant
// is returned with its user and the rehydrated note attached.
func (s *CoAuthorService) Create(ctx context.Context, noteID int64, email string, actorID int64) (*models.NoteCoAuthor, error) {
	note, err := s.findNote(ctx, noteID, actorID, false)
	if err != nil {
		return nil, err
	}
	if !note.IsOwnedBy(actorID) {
		return nil, fmt.Errorf("share note %d: %w", noteID, models.ErrPermissionDenied)
	}

	target, err := s.repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if target.ID == note.UserID {
		return nil, models.NewValidationError("the owner cannot be a co-author")
	}

	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}

	grant, err := s.repos.CoAuthors.GetByNoteAndUser(ctx, noteID, target.ID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		grant = &models.NoteCoAuthor{NoteID: noteID, UserID: target.ID, StatusID: active.ID}
		if err := s.repos.CoAuthors.Create(ctx, grant); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case grant.StatusID == active.ID:
		return nil, models.NewValidationError("user is already a co-author")
	default:
		if err := s.repos.CoAuthors.UpdateStatus(ctx, grant.ID, active.ID); err != nil {
			return nil, err
		}
		grant.StatusID = active.ID
	}

	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	grant.User = target
	grant.Note = note
	return grant, nil
}

// Delete revokes grantID. The note's owner and the grant's target may revoke.
// The grant is returned with the rehydrated note, which no longer lists it.
func (s *CoAuthorService) Delete(ctx context.Context, grantID, actorID int64) (*models.NoteCoAuthor, error) {
	grant, err := s.repos.CoAuthors.GetByID(ctx, grantID)
	if err != nil {
		return nil, err
	}

	var note *models.Note
	if grant.UserID == actorID {
		// A revoked grantee no longer sees the note, not even through its grant.
		active, statusErr := s.statuses.Active(ctx)
		if statusErr != nil {
			return nil, statusErr
		}
		if grant.StatusID != active.ID {
			return nil, fmt.Errorf("revoke co-author %d: %w", grantID, models.ErrNotFound)
		}
		note, err = s.repos.Notes.GetByID(ctx, grant.NoteID, models.NoteFilter{
			UserID:        actorID,
			SharedNoteIDs: []int64{grant.NoteID},
		})
	} else {
		note, err = s.findNote(ctx, grant.NoteID, actorID, true)
	}
	if err != nil {
		return nil, err
	}
	if grant.UserID != actorID && !note.IsOwnedBy(actorID) {
		return nil, fmt.Errorf("revoke co-author %d: %w", grantID, models.ErrPermissionDenied)
	}

	inactive, err := s.statuses.Inactive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repos.CoAuthors.UpdateStatus(ctx, grant.ID, inactive.ID); err != nil {
		return nil, err
	}
	grant.StatusID = inactive.ID

	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	grant.Note = note
	return grant, nil
}
