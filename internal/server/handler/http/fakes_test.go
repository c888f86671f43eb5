package http

import (
	"context"
	"errors"
	"sync"

	"github.com/Feaman/elven-keep-server/internal/models"
	"github.com/Feaman/elven-keep-server/internal/realtime"
	"github.com/Feaman/elven-keep-server/internal/service"
)

const testToken = "token-for-1"

type staticVerifier struct{}

func (staticVerifier) Verify(token string) (int64, error) {
	if token == testToken {
		return 1, nil
	}
	return 0, errors.New("bad token")
}

type staticIssuer struct{ err error }

func (s staticIssuer) Issue(userID int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return testToken, nil
}

// event is one recorded notifier call.
type event struct {
	name   string
	origin realtime.Origin
	id     int64
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeNotifier) record(name string, from realtime.Origin, id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{name: name, origin: from, id: id})
}

func (f *fakeNotifier) NoteAdded(from realtime.Origin, n *models.Note) {
	f.record(realtime.EventNoteAdded, from, n.ID)
}
func (f *fakeNotifier) NoteChanged(from realtime.Origin, n *models.Note) {
	f.record(realtime.EventNoteChanged, from, n.ID)
}
func (f *fakeNotifier) NoteRemoved(from realtime.Origin, n *models.Note) {
	f.record(realtime.EventNoteRemoved, from, n.ID)
}
func (f *fakeNotifier) ListItemsOrderSet(from realtime.Origin, n *models.Note) {
	f.record(realtime.EventNoteOrderSet, from, n.ID)
}
func (f *fakeNotifier) ListItemAdded(from realtime.Origin, li *models.ListItem) {
	f.record(realtime.EventListItemAdded, from, li.ID)
}
func (f *fakeNotifier) ListItemChanged(from realtime.Origin, li *models.ListItem) {
	f.record(realtime.EventListItemChanged, from, li.ID)
}
func (f *fakeNotifier) ListItemRemoved(from realtime.Origin, li *models.ListItem) {
	f.record(realtime.EventListItemRemoved, from, li.ID)
}
func (f *fakeNotifier) CoAuthorAdded(from realtime.Origin, g *models.NoteCoAuthor) {
	f.record("co-author added", from, g.ID)
}
func (f *fakeNotifier) CoAuthorRemoved(from realtime.Origin, g *models.NoteCoAuthor) {
	f.record("co-author removed", from, g.ID)
}

// fakeNoteService returns note for every single-note call, or err.
type fakeNoteService struct {
	note  *models.Note
	notes []models.Note
	err   error

	gotByOrder         bool
	gotOnlyUncompleted bool
	gotInput           service.NoteInput
	gotOrder           []int64
	gotUser            int64
}

func (f *fakeNoteService) single(userID int64) (*models.Note, error) {
	f.gotUser = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.note, nil
}

func (f *fakeNoteService) GetList(_ context.Context, userID int64, byOrder bool) ([]models.Note, error) {
	f.gotUser, f.gotByOrder = userID, byOrder
	return f.notes, f.err
}
func (f *fakeNoteService) GetRemovedList(_ context.Context, userID int64) ([]models.Note, error) {
	f.gotUser = userID
	return f.notes, f.err
}
func (f *fakeNoteService) GetNoteByID(_ context.Context, _, userID int64, onlyUncompleted bool) (*models.Note, error) {
	f.gotOnlyUncompleted = onlyUncompleted
	return f.single(userID)
}
func (f *fakeNoteService) Create(_ context.Context, in service.NoteInput, userID int64) (*models.Note, error) {
	f.gotInput = in
	return f.single(userID)
}
func (f *fakeNoteService) Update(_ context.Context, _ int64, in service.NoteInput, userID int64) (*models.Note, error) {
	f.gotInput = in
	return f.single(userID)
}
func (f *fakeNoteService) Remove(_ context.Context, _, userID int64) (*models.Note, error) {
	return f.single(userID)
}
func (f *fakeNoteService) Restore(_ context.Context, _, userID int64) (*models.Note, error) {
	return f.single(userID)
}
func (f *fakeNoteService) Complete(_ context.Context, _, userID int64) (*models.Note, error) {
	return f.single(userID)
}
func (f *fakeNoteService) SetNotesOrder(_ context.Context, ids []int64, userID int64) error {
	f.gotOrder, f.gotUser = ids, userID
	return f.err
}
func (f *fakeNoteService) SetListItemsOrder(_ context.Context, _ int64, ids []int64, userID int64) (*models.Note, error) {
	f.gotOrder = ids
	return f.single(userID)
}

type fakeListItemService struct {
	item     *models.ListItem
	err      error
	gotInput service.ListItemInput
}

func (f *fakeListItemService) result() (*models.ListItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

func (f *fakeListItemService) Create(_ context.Context, in service.ListItemInput, _ int64) (*models.ListItem, error) {
	f.gotInput = in
	return f.result()
}
func (f *fakeListItemService) Update(_ context.Context, _ int64, in service.ListItemInput, _ int64) (*models.ListItem, error) {
	f.gotInput = in
	return f.result()
}
func (f *fakeListItemService) Remove(context.Context, int64, int64) (*models.ListItem, error) {
	return f.result()
}
func (f *fakeListItemService) Restore(context.Context, int64, int64) (*models.ListItem, error) {
	return f.result()
}

type fakeCoAuthorService struct {
	grant    *models.NoteCoAuthor
	err      error
	gotEmail string
}

func (f *fakeCoAuthorService) Create(_ context.Context, _ int64, email string, _ int64) (*models.NoteCoAuthor, error) {
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	return f.grant, nil
}
func (f *fakeCoAuthorService) Delete(context.Context, int64, int64) (*models.NoteCoAuthor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.grant, nil
}

type fakeUserService struct {
	user *models.User
	err  error
}

func (f *fakeUserService) result() (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) Register(context.Context, string, string, string, string) (*models.User, error) {
	return f.result()
}
func (f *fakeUserService) Login(context.Context, string, string) (*models.User, error) {
	return f.result()
}
func (f *fakeUserService) GetByID(context.Context, int64) (*models.User, error) {
	return f.result()
}
func (f *fakeUserService) UpdateProfile(context.Context, int64, string, string, string) (*models.User, error) {
	return f.result()
}

type fakeLookups struct{}

func (fakeLookups) List(context.Context) ([]models.Status, error) {
	return []models.Status{{ID: 1, Name: models.StatusActive}, {ID: 2, Name: models.StatusInactive}}, nil
}

type fakeTypes struct{}

func (fakeTypes) List(context.Context) ([]models.Type, error) {
	return []models.Type{{ID: 1, Name: models.TypeList}}, nil
}
