package service

import (
	"context"
	"fmt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// NoteInput carries the caller-editable fields of a note. Nil flags keep the
// current value on update and default to false on create.
type NoteInput struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	TypeID int64  `json:"typeId"`

	IsCompletedListExpanded *bool `json:"isCompletedListExpanded"`
	IsCountable             *bool `json:"isCountable"`
	IsShowCheckedCheckboxes *bool `json:"isShowCheckedCheckboxes"`

	// List holds inline items, honoured on create only.
	List []ListItemInput `json:"list"`
}

// NoteService exposes the access-scoped note operations.
type NoteService struct {
	core
}

// NewNoteService constructs a NoteService.
func NewNoteService(repos Repositories, statuses StatusProvider, types TypeProvider) *NoteService {
	return &NoteService{core{repos: repos, statuses: statuses, types: types}}
}

// GetList returns every active note userID owns or has an active grant on,
// newest first or by manual order when byOrder is set.
func (s *NoteService) GetList(ctx context.Context, userID int64, byOrder bool) ([]models.Note, error) {
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.accessFilter(ctx, userID, active.ID)
	if err != nil {
		return nil, err
	}
	f.ByOrder = byOrder

	return s.list(ctx, f)
}

// GetRemovedList returns the trash: the inactive notes userID owns.
func (s *NoteService) GetRemovedList(ctx context.Context, userID int64) ([]models.Note, error) {
	inactive, err := s.statuses.Inactive(ctx)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, models.NoteFilter{UserID: userID, StatusID: inactive.ID})
}

func (s *NoteService) list(ctx context.Context, f models.NoteFilter) ([]models.Note, error) {
	notes, err := s.repos.Notes.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	if err := s.hydrate(ctx, notes, false); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNoteByID returns an active note visible to userID. With onlyUncompleted
// completed list items are left out of the projection.
func (s *NoteService) GetNoteByID(ctx context.Context, noteID, userID int64, onlyUncompleted bool) (*models.Note, error) {
	note, err := s.findNote(ctx, noteID, userID, false)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, note, onlyUncompleted); err != nil {
		return nil, err
	}
	return note, nil
}

// Create stores a note owned by userID at the end of the owner's order,
// together with its inline list items.
func (s *NoteService) Create(ctx context.Context, in NoteInput, userID int64) (*models.Note, error) {
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}
	typeID, err := s.resolveType(ctx, in.TypeID)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		UserID:   userID,
		Title:    in.Title,
		Text:     in.Text,
		TypeID:   typeID,
		StatusID: active.ID,
	}
	applyFlags(note, in)
	for i, item := range in.List {
		note.List = append(note.List, models.ListItem{
			Text:      item.Text,
			Checked:   item.Checked,
			Completed: item.Completed,
			StatusID:  active.ID,
			Order:     i + 1,
		})
	}
	if err := note.Validate(); err != nil {
		return nil, err
	}

	if err := s.repos.Notes.Create(ctx, note); err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	return note, nil
}

// Update overwrites the title, text, type and flags of an active note visible
// to userID. Ownership, order and grants are left as they are.
func (s *NoteService) Update(ctx context.Context, noteID int64, in NoteInput, userID int64) (*models.Note, error) {
	note, err := s.findNote(ctx, noteID, userID, false)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}

	note.Title = in.Title
	note.Text = in.Text
	if in.TypeID != 0 {
		if note.TypeID, err = s.resolveType(ctx, in.TypeID); err != nil {
			return nil, err
		}
	}
	applyFlags(note, in)
	if err := note.Validate(); err != nil {
		return nil, err
	}

	if err := s.repos.Notes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Remove moves an active note visible to userID to the trash. Items and
// grants are untouched.
func (s *NoteService) Remove(ctx context.Context, noteID, userID int64) (*models.Note, error) {
	note, err := s.findNote(ctx, noteID, userID, false)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	inactive, err := s.statuses.Inactive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Notes.UpdateStatus(ctx, note.ID, inactive.ID); err != nil {
		return nil, err
	}
	note.StatusID = inactive.ID
	return note, nil
}

// Restore brings a note visible to userID back from the trash.
func (s *NoteService) Restore(ctx context.Context, noteID, userID int64) (*models.Note, error) {
	note, err := s.findNote(ctx, noteID, userID, true)
	if err != nil {
		return nil, err
	}
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Notes.UpdateStatus(ctx, note.ID, active.ID); err != nil {
		return nil, err
	}
	note.StatusID = active.ID
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	return note, nil
}

// Complete marks every checked list item of the note as completed. Only the
// owner may complete.
func (s *NoteService) Complete(ctx context.Context, noteID, userID int64) (*models.Note, error) {
	note, err := s.findNote(ctx, noteID, userID, false)
	if err != nil {
		return nil, err
	}
	if !note.IsOwnedBy(userID) {
		return nil, fmt.Errorf("complete note %d: %w", noteID, models.ErrPermissionDenied)
	}
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.ListItems.CompleteChecked(ctx, note.ID, active.ID); err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	return note, nil
}

// resolveType returns typeID if it names a known type, or the default type
// when typeID is zero.
func (s *NoteService) resolveType(ctx context.Context, typeID int64) (int64, error) {
	if typeID == 0 {
		t, err := s.types.Default(ctx)
		if err != nil {
			return 0, err
		}
		return t.ID, nil
	}
	types, err := s.types.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range types {
		if t.ID == typeID {
			return typeID, nil
		}
	}
	return 0, models.NewValidationError(fmt.Sprintf("unknown note type %d", typeID))
}

func applyFlags(n *models.Note, in NoteInput) {
	if in.IsCompletedListExpanded != nil {
		n.IsCompletedListExpanded = *in.IsCompletedListExpanded
	}
	if in.IsCountable != nil {
		n.IsCountable = *in.IsCountable
	}
	if in.IsShowCheckedCheckboxes != nil {
		n.IsShowCheckedCheckboxes = *in.IsShowCheckedCheckboxes
	}
}
