// Package service implements the collaborative note engine: access-scoped
// queries, the co-authorship registry, manual ordering and the soft-delete
// lifecycle. Persistence is delegated to repository interfaces.
package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// NoteRepository defines the persistence operations on notes.
type NoteRepository interface {
	// List returns every note matching the filter.
	List(ctx context.Context, f models.NoteFilter) ([]models.Note, error)
	// GetByID returns the note if it matches the filter, models.ErrNotFound otherwise.
	GetByID(ctx context.Context, id int64, f models.NoteFilter) (*models.Note, error)
	// Create inserts the note with its inline list items.
	Create(ctx context.Context, n *models.Note) error
	// Update writes the mutable columns.
	Update(ctx context.Context, n *models.Note) error
	// UpdateStatus flips the note status.
	UpdateStatus(ctx context.Context, id, statusID int64) error
	// UpdateOrders writes the given orders atomically.
	UpdateOrders(ctx context.Context, orders map[int64]int) error
}

// ListItemRepository defines the persistence operations on list items.
type ListItemRepository interface {
	ListByNoteIDs(ctx context.Context, noteIDs []int64, statusID int64, onlyUncompleted bool) ([]models.ListItem, error)
	// GetByID fetches one item; a zero statusID matches any status.
	GetByID(ctx context.Context, id, statusID int64) (*models.ListItem, error)
	Create(ctx context.Context, li *models.ListItem) error
	Update(ctx context.Context, li *models.ListItem) error
	UpdateStatus(ctx context.Context, id, statusID int64) error
	UpdateOrders(ctx context.Context, orders map[int64]int) error
	CompleteChecked(ctx context.Context, noteID, statusID int64) (int64, error)
}

// CoAuthorRepository defines the persistence operations on sharing grants.
type CoAuthorRepository interface {
	// ListByUser returns the grants targeting userID.
	ListByUser(ctx context.Context, userID, statusID int64) ([]models.NoteCoAuthor, error)
	// ListByNoteIDs returns the grants on the notes with target users attached.
	ListByNoteIDs(ctx context.Context, noteIDs []int64, statusID int64) ([]models.NoteCoAuthor, error)
	GetByID(ctx context.Context, id int64) (*models.NoteCoAuthor, error)
	GetByNoteAndUser(ctx context.Context, noteID, userID int64) (*models.NoteCoAuthor, error)
	Create(ctx context.Context, c *models.NoteCoAuthor) error
	UpdateStatus(ctx context.Context, id, statusID int64) error
}

// UserRepository defines the persistence operations on users.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
}

// StatusProvider resolves the lifecycle statuses.
type StatusProvider interface {
	List(ctx context.Context) ([]models.Status, error)
	Active(ctx context.Context) (models.Status, error)
	Inactive(ctx context.Context) (models.Status, error)
}

// TypeProvider resolves note types.
type TypeProvider interface {
	List(ctx context.Context) ([]models.Type, error)
	Default(ctx context.Context) (models.Type, error)
}

// Repositories bundles the stores the services are built on.
type Repositories struct {
	Notes     NoteRepository
	ListItems ListItemRepository
	CoAuthors CoAuthorRepository
	Users     UserRepository
}

// core is shared by the note, list item and co-author services. It owns the
// single access predicate and the projection loader.
type core struct {
	repos    Repositories
	statuses StatusProvider
	types    TypeProvider
}

// accessFilter builds the predicate "owned by userID or shared to userID by
// an active grant", restricted to statusID unless it is zero.
func (c *core) accessFilter(ctx context.Context, userID, statusID int64) (models.NoteFilter, error) {
	active, err := c.statuses.Active(ctx)
	if err != nil {
		return models.NoteFilter{}, err
	}
	grants, err := c.repos.CoAuthors.ListByUser(ctx, userID, active.ID)
	if err != nil {
		return models.NoteFilter{}, err
	}

	shared := make([]int64, 0, len(grants))
	for _, g := range grants {
		shared = append(shared, g.NoteID)
	}
	return models.NoteFilter{UserID: userID, SharedNoteIDs: shared, StatusID: statusID}, nil
}

// findNote locates and authorizes a single note. Only active notes match
// unless anyStatus is set.
func (c *core) findNote(ctx context.Context, noteID, userID int64, anyStatus bool) (*models.Note, error) {
	var statusID int64
	if !anyStatus {
		active, err := c.statuses.Active(ctx)
		if err != nil {
			return nil, err
		}
		statusID = active.ID
	}

	f, err := c.accessFilter(ctx, userID, statusID)
	if err != nil {
		return nil, err
	}
	return c.repos.Notes.GetByID(ctx, noteID, f)
}

// hydrate attaches active list items, active co-authors and the owner to
// every note. The three lookups run concurrently.
func (c *core) hydrate(ctx context.Context, notes []models.Note, onlyUncompleted bool) error {
	if len(notes) == 0 {
		return nil
	}
	active, err := c.statuses.Active(ctx)
	if err != nil {
		return err
	}

	noteIDs := make([]int64, 0, len(notes))
	ownerIDs := make([]int64, 0, len(notes))
	seenOwner := make(map[int64]bool, len(notes))
	for _, n := range notes {
		noteIDs = append(noteIDs, n.ID)
		if !seenOwner[n.UserID] {
			seenOwner[n.UserID] = true
			ownerIDs = append(ownerIDs, n.UserID)
		}
	}

	var (
		items  []models.ListItem
		grants []models.NoteCoAuthor
		owners []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		items, err = c.repos.ListItems.ListByNoteIDs(gctx, noteIDs, active.ID, onlyUncompleted)
		return err
	})
	g.Go(func() (err error) {
		grants, err = c.repos.CoAuthors.ListByNoteIDs(gctx, noteIDs, active.ID)
		return err
	})
	g.Go(func() (err error) {
		owners, err = c.repos.Users.GetByIDs(gctx, ownerIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load note projection: %w", err)
	}

	itemsByNote := make(map[int64][]models.ListItem, len(notes))
	for _, li := range items {
		itemsByNote[li.NoteID] = append(itemsByNote[li.NoteID], li)
	}
	grantsByNote := make(map[int64][]models.NoteCoAuthor, len(notes))
	for _, ca := range grants {
		grantsByNote[ca.NoteID] = append(grantsByNote[ca.NoteID], ca)
	}
	ownersByID := make(map[int64]*models.User, len(owners))
	for i := range owners {
		ownersByID[owners[i].ID] = &owners[i]
	}

	for i := range notes {
		n := &notes[i]
		n.List = itemsByNote[n.ID]
		if n.List == nil {
			n.List = []models.ListItem{}
		}
		n.CoAuthors = grantsByNote[n.ID]
		if n.CoAuthors == nil {
			n.CoAuthors = []models.NoteCoAuthor{}
		}
		n.User = ownersByID[n.UserID]
	}
	return nil
}

// hydrateOne is hydrate for a single note.
func (c *core) hydrateOne(ctx context.Context, n *models.Note, onlyUncompleted bool) error {
	notes := []models.Note{*n}
	if err := c.hydrate(ctx, notes, onlyUncompleted); err != nil {
		return err
	}
	*n = notes[0]
	return nil
}
