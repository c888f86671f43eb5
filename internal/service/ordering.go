package service

import (
	"context"
	"fmt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// reorder ranks orderedIDs densely from 1 and returns only the ids whose
// current order differs. Every id must be a key of current and appear once;
// nothing is returned when either check fails.
func reorder(current map[int64]int, orderedIDs []int64) (map[int64]int, error) {
	seen := make(map[int64]bool, len(orderedIDs))
	changed := make(map[int64]int)
	for i, id := range orderedIDs {
		if seen[id] {
			return nil, models.NewValidationError(fmt.Sprintf("id %d is listed twice", id))
		}
		seen[id] = true

		order, ok := current[id]
		if !ok {
			return nil, fmt.Errorf("order id %d: %w", id, models.ErrNotFound)
		}
		if order != i+1 {
			changed[id] = i + 1
		}
	}
	return changed, nil
}

// SetNotesOrder ranks the given notes, all of which must be active and
// visible to userID, in the submitted sequence. No order is written unless
// every id resolves, and the changed orders are written in one transaction.
func (s *NoteService) SetNotesOrder(ctx context.Context, orderedIDs []int64, userID int64) error {
	active, err := s.statuses.Active(ctx)
	if err != nil {
		return err
	}
	f, err := s.accessFilter(ctx, userID, active.ID)
	if err != nil {
		return err
	}
	notes, err := s.repos.Notes.List(ctx, f)
	if err != nil {
		return err
	}

	current := make(map[int64]int, len(notes))
	for _, n := range notes {
		current[n.ID] = n.Order
	}
	changed, err := reorder(current, orderedIDs)
	if err != nil {
		return err
	}
	return s.repos.Notes.UpdateOrders(ctx, changed)
}

// SetListItemsOrder ranks the active items of one note visible to userID and
// returns the rehydrated note.
func (s *NoteService) SetListItemsOrder(ctx context.Context, noteID int64, orderedIDs []int64, userID int64) (*models.Note, error) {
	note, err := s.findNote(ctx, noteID, userID, false)
	if err != nil {
		return nil, err
	}
	if err := s.hydrateOne(ctx, note, false); err != nil {
		return nil, err
	}

	current := make(map[int64]int, len(note.List))
	for _, li := range note.List {
		current[li.ID] = li.Order
	}
	changed, err := reorder(current, orderedIDs)
	if err != nil {
		return nil, err
	}
	if err := s.repos.ListItems.UpdateOrders(ctx, changed); err != nil {
		return nil, err
	}

	for i := range note.List {
		if order, ok := changed[note.List[i].ID]; ok {
			note.List[i].Order = order
		}
	}
	sortItems(note.List)
	return note, nil
}
