package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/service"
)

const (
	activeID   int64 = 1
	inactiveID int64 = 2
	listTypeID int64 = 1
	plainType  int64 = 2
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// memStore is an in-memory implementation of every repository the services
// use. It mirrors the Postgres repositories closely enough for the access
// predicate and ordering rules to be observable.
type memStore struct {
	mu     sync.Mutex
	nextID int64

	users  map[int64]models.User
	notes  map[int64]models.Note
	items  map[int64]models.ListItem
	grants map[int64]models.NoteCoAuthor

	// orderWrites counts rows written through UpdateOrders.
	orderWrites int
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[int64]models.User{},
		notes:  map[int64]models.Note{},
		items:  map[int64]models.ListItem{},
		grants: map[int64]models.NoteCoAuthor{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) stamp(id int64) time.Time {
	return epoch.Add(time.Duration(id) * time.Second)
}

func (m *memStore) repos() service.Repositories {
	return service.Repositories{
		Notes:     noteRepo{m},
		ListItems: itemRepo{m},
		CoAuthors: grantRepo{m},
		Users:     userRepo{m},
	}
}

func (m *memStore) addUser(first, email string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.users[id] = models.User{ID: id, FirstName: first, SecondName: "Test", Email: email}
	return id
}

func (m *memStore) noteStatus(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes[id].StatusID
}

func (m *memStore) item(id int64) models.ListItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, models.ErrNotFound)
}

func newStatuses() *service.Statuses {
	return service.NewStatuses(func(context.Context) ([]models.Status, error) {
		return []models.Status{{ID: activeID, Name: models.StatusActive}, {ID: inactiveID, Name: models.StatusInactive}}, nil
	})
}

func newTypes() *service.Types {
	return service.NewTypes(func(context.Context) ([]models.Type, error) {
		return []models.Type{{ID: listTypeID, Name: models.TypeList}, {ID: plainType, Name: models.TypePlain}}, nil
	})
}

type noteRepo struct{ m *memStore }

func matches(n models.Note, f models.NoteFilter) bool {
	visible := n.UserID == f.UserID
	for _, id := range f.SharedNoteIDs {
		if id == n.ID {
			visible = true
		}
	}
	return visible && (f.StatusID == 0 || n.StatusID == f.StatusID)
}

func (r noteRepo) List(_ context.Context, f models.NoteFilter) ([]models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Note
	for _, n := range r.m.notes {
		if matches(n, f) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.ByOrder {
			if out[i].Order != out[j].Order {
				return out[i].Order < out[j].Order
			}
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r noteRepo) GetByID(_ context.Context, id int64, f models.NoteFilter) (*models.Note, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok || !matches(n, f) {
		return nil, notFound("note", id)
	}
	return &n, nil
}

func (r noteRepo) Create(_ context.Context, n *models.Note) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n.ID = r.m.id()
	n.Created, n.Updated = r.m.stamp(n.ID), r.m.stamp(n.ID)
	n.Order = 1
	for _, other := range r.m.notes {
		if other.UserID == n.UserID && other.Order >= n.Order {
			n.Order = other.Order + 1
		}
	}
	for i := range n.List {
		li := &n.List[i]
		li.ID = r.m.id()
		li.NoteID = n.ID
		li.Created, li.Updated = r.m.stamp(li.ID), r.m.stamp(li.ID)
		r.m.items[li.ID] = *li
	}
	stored := *n
	stored.List, stored.CoAuthors, stored.User = nil, nil, nil
	r.m.notes[n.ID] = stored
	return nil
}

func (r noteRepo) Update(_ context.Context, n *models.Note) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.notes[n.ID]
	if !ok {
		return notFound("note", n.ID)
	}
	stored.Title, stored.Text, stored.TypeID = n.Title, n.Text, n.TypeID
	stored.IsCompletedListExpanded = n.IsCompletedListExpanded
	stored.IsCountable = n.IsCountable
	stored.IsShowCheckedCheckboxes = n.IsShowCheckedCheckboxes
	r.m.notes[n.ID] = stored
	return nil
}

func (r noteRepo) UpdateStatus(_ context.Context, id, statusID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return notFound("note", id)
	}
	n.StatusID = statusID
	r.m.notes[id] = n
	return nil
}

func (r noteRepo) UpdateOrders(_ context.Context, orders map[int64]int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, order := range orders {
		n := r.m.notes[id]
		n.Order = order
		r.m.notes[id] = n
		r.m.orderWrites++
	}
	return nil
}

type itemRepo struct{ m *memStore }

func (r itemRepo) ListByNoteIDs(_ context.Context, noteIDs []int64, statusID int64, onlyUncompleted bool) ([]models.ListItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range noteIDs {
		wanted[id] = true
	}
	var out []models.ListItem
	for _, li := range r.m.items {
		if wanted[li.NoteID] && li.StatusID == statusID && !(onlyUncompleted && li.Completed) {
			out = append(out, li)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NoteID != out[j].NoteID {
			return out[i].NoteID < out[j].NoteID
		}
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r itemRepo) GetByID(_ context.Context, id, statusID int64) (*models.ListItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	li, ok := r.m.items[id]
	if !ok || (statusID != 0 && li.StatusID != statusID) {
		return nil, notFound("list item", id)
	}
	return &li, nil
}

func (r itemRepo) Create(_ context.Context, li *models.ListItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	li.ID = r.m.id()
	li.Created, li.Updated = r.m.stamp(li.ID), r.m.stamp(li.ID)
	if li.Order == 0 {
		li.Order = 1
		for _, other := range r.m.items {
			if other.NoteID == li.NoteID && other.Order >= li.Order {
				li.Order = other.Order + 1
			}
		}
	}
	r.m.items[li.ID] = *li
	return nil
}

func (r itemRepo) Update(_ context.Context, li *models.ListItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.items[li.ID]
	if !ok {
		return notFound("list item", li.ID)
	}
	stored.Text, stored.Checked, stored.Completed = li.Text, li.Checked, li.Completed
	r.m.items[li.ID] = stored
	return nil
}

func (r itemRepo) UpdateStatus(_ context.Context, id, statusID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	li, ok := r.m.items[id]
	if !ok {
		return notFound("list item", id)
	}
	li.StatusID = statusID
	r.m.items[id] = li
	return nil
}

func (r itemRepo) UpdateOrders(_ context.Context, orders map[int64]int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, order := range orders {
		li := r.m.items[id]
		li.Order = order
		r.m.items[id] = li
		r.m.orderWrites++
	}
	return nil
}

func (r itemRepo) CompleteChecked(_ context.Context, noteID, statusID int64) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, li := range r.m.items {
		if li.NoteID == noteID && li.StatusID == statusID && li.Checked && !li.Completed {
			li.Completed = true
			r.m.items[id] = li
			n++
		}
	}
	return n, nil
}

type grantRepo struct{ m *memStore }

func (r grantRepo) ListByUser(_ context.Context, userID, statusID int64) ([]models.NoteCoAuthor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.NoteCoAuthor
	for _, g := range r.m.grants {
		if g.UserID == userID && g.StatusID == statusID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r grantRepo) ListByNoteIDs(_ context.Context, noteIDs []int64, statusID int64) ([]models.NoteCoAuthor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range noteIDs {
		wanted[id] = true
	}
	var out []models.NoteCoAuthor
	for _, g := range r.m.grants {
		if wanted[g.NoteID] && g.StatusID == statusID {
			u := r.m.users[g.UserID]
			g.User = &u
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r grantRepo) GetByID(_ context.Context, id int64) (*models.NoteCoAuthor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.grants[id]
	if !ok {
		return nil, notFound("co-author", id)
	}
	return &g, nil
}

func (r grantRepo) GetByNoteAndUser(_ context.Context, noteID, userID int64) (*models.NoteCoAuthor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, g := range r.m.grants {
		if g.NoteID == noteID && g.UserID == userID {
			return &g, nil
		}
	}
	return nil, notFound("co-author of note", noteID)
}

func (r grantRepo) Create(_ context.Context, g *models.NoteCoAuthor) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g.ID = r.m.id()
	r.m.grants[g.ID] = *g
	return nil
}

func (r grantRepo) UpdateStatus(_ context.Context, id, statusID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.grants[id]
	if !ok {
		return notFound("co-author", id)
	}
	g.StatusID = statusID
	r.m.grants[id] = g
	return nil
}

type userRepo struct{ m *memStore }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, other := range r.m.users {
		if other.Email == u.Email {
			return models.NewValidationError("email is already registered")
		}
	}
	u.ID = r.m.id()
	r.m.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, models.ErrNotFound)
}

func (r userRepo) GetByIDs(_ context.Context, ids []int64) ([]models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r userRepo) Update(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	r.m.users[u.ID] = *u
	return nil
}
