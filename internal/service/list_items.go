package service

import (
	"context"
	"sort"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// ListItemInput carries the caller-editable fields of a list item.
type ListItemInput struct {
	NoteID    int64  `json:"noteId"`
	Text      string `json:"text"`
	Checked   bool   `json:"checked"`
	Completed bool   `json:"completed"`
}

// ListItemService exposes list item operations scoped by note access.
type ListItemService struct {
	core
}

// NewListItemService constructs a ListItemService.
func NewListItemService(repos Repositories, statuses StatusProvider, types TypeProvider) *ListItemService {
	return &ListItemService{core{repos: repos, statuses: statuses, types: types}}
}

// Create appends an item to an active note visible to userID.
func (s *ListItemService) Create(ctx context.Context, in ListItemInput, userID int64) (*models.ListItem, error) {
	note, err := s.findNote(ctx, in.NoteID, userID, false)
	if err != nil {
		return nil, err
	}
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}

	item := &models.ListItem{
		NoteID:    note.ID,
		Text:      in.Text,
		Checked:   in.Checked,
		Completed: in.Completed,
		StatusID:  active.ID,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.ListItems.Create(ctx, item); err != nil {
		return nil, err
	}
	return s.attachNote(ctx, item, note)
}

// Update overwrites text and flags of an active item.
func (s *ListItemService) Update(ctx context.Context, itemID int64, in ListItemInput, userID int64) (*models.ListItem, error) {
	item, note, err := s.findItem(ctx, itemID, userID, false)
	if err != nil {
		return nil, err
	}

	item.Text = in.Text
	item.Checked = in.Checked
	item.Completed = in.Completed
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.ListItems.Update(ctx, item); err != nil {
		return nil, err
	}
	return s.attachNote(ctx, item, note)
}

// Remove moves an active item to the trash.
func (s *ListItemService) Remove(ctx context.Context, itemID, userID int64) (*models.ListItem, error) {
	item, note, err := s.findItem(ctx, itemID, userID, false)
	if err != nil {
		return nil, err
	}
	inactive, err := s.statuses.Inactive(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ListItems.UpdateStatus(ctx, item.ID, inactive.ID); err != nil {
		return nil, err
	}
	item.StatusID = inactive.ID
	return s.attachNote(ctx, item, note)
}

// Restore brings an item back from the trash. The parent note must be active.
func (s *ListItemService) Restore(ctx context.Context, itemID, userID int64) (*models.ListItem, error) {
	item, note, err := s.findItem(ctx, itemID, userID, true)
	if err != nil {
		return nil, err
	}
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ListItems.UpdateStatus(ctx, item.ID, active.ID); err != nil {
		return nil, err
	}
	item.StatusID = active.ID
	return s.attachNote(ctx, item, note)
}

// findItem loads an item and authorizes its parent note. Only active items
// match unless anyStatus is set.
func (s *ListItemService) findItem(ctx context.Context, itemID, userID int64, anyStatus bool) (*models.ListItem, *models.Note, error) {
	var statusID int64
	if !anyStatus {
		active, err := s.statuses.Active(ctx)
		if err != nil {
			return nil, nil, err
		}
		statusID = active.ID
	}
	item, err := s.repos.ListItems.GetByID(ctx, itemID, statusID)
	if err != nil {
		return nil, nil, err
	}
	note, err := s.findNote(ctx, item.NoteID, userID, false)
	if err != nil {
		return nil, nil, err
	}
	return item, note, nil
}

// attachNote rehydrates note and hangs it on item for fan-out.
func (s *ListItemService) attachNote(ctx context.Context, item *models.ListItem, note *models.Note) (*models.ListItem, error) {
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}
	item.Note = note
	return item, nil
}

func sortItems(items []models.ListItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].Created.Before(items[j].Created)
	})
}
