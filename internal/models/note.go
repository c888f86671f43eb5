package models

import (
	"strings"
	"time"
)

// Note is a titled document owned by one user and optionally shared with
// co-authors. List, CoAuthors and User are projections filled by the services
// and are not columns of the notes table.
type Note struct {
	// ID is the unique identifier for the note.
	ID int64 `json:"id"`
	// UserID is the owner.
	UserID int64 `json:"userId"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	// TypeID references the types lookup table.
	TypeID int64 `json:"typeId"`
	// StatusID references the statuses lookup table. Inactive notes are in the trash.
	StatusID int64 `json:"statusId"`
	// Order is the owner's manual rank, dense from 1.
	Order int `json:"order"`

	IsCompletedListExpanded bool `json:"isCompletedListExpanded"`
	IsCountable             bool `json:"isCountable"`
	IsShowCheckedCheckboxes bool `json:"isShowCheckedCheckboxes"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	User      *User          `json:"user,omitempty"`
	List      []ListItem     `json:"list"`
	CoAuthors []NoteCoAuthor `json:"coAuthors"`
}

// Validate reports whether the note may be saved. A note needs a title, a
// text or at least one list item, and every inline list item needs text.
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Text) == "" && len(n.List) == 0 {
		return NewValidationError("note must have a title, a text or a list")
	}
	if n.TypeID == 0 {
		return NewValidationError("note type is required")
	}
	if n.StatusID == 0 {
		return NewValidationError("note status is required")
	}
	for i := range n.List {
		if err := n.List[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsOwnedBy reports whether userID owns the note.
func (n *Note) IsOwnedBy(userID int64) bool {
	return n.UserID == userID
}

// AudienceUserIDs returns the owner followed by every attached co-author.
func (n *Note) AudienceUserIDs() []int64 {
	ids := make([]int64, 0, len(n.CoAuthors)+1)
	ids = append(ids, n.UserID)
	for _, coAuthor := range n.CoAuthors {
		ids = append(ids, coAuthor.UserID)
	}
	return ids
}

// ListItem is one checkable row of a list note.
type ListItem struct {
	ID        int64  `json:"id"`
	NoteID    int64  `json:"noteId"`
	Text      string `json:"text"`
	Checked   bool   `json:"checked"`
	Completed bool   `json:"completed"`
	StatusID  int64  `json:"statusId"`
	// Order is the rank inside the parent note, dense from 1.
	Order int `json:"order"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	// Note is the parent, attached when the item is handed to the notifier.
	Note *Note `json:"-"`
}

// Validate reports whether the list item may be saved.
func (li *ListItem) Validate() error {
	if strings.TrimSpace(li.Text) == "" {
		return NewValidationError("list item text is required")
	}
	return nil
}

// NoteCoAuthor is a sharing grant from a note's owner to another user.
type NoteCoAuthor struct {
	ID       int64 `json:"id"`
	NoteID   int64 `json:"noteId"`
	UserID   int64 `json:"userId"`
	StatusID int64 `json:"statusId"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	User *User `json:"user,omitempty"`
	// Note is the rehydrated note, attached after create and delete.
	Note *Note `json:"note,omitempty"`
}

// NoteFilter is the access predicate used by every note query: the note is
// owned by UserID or its id is one of SharedNoteIDs. A zero StatusID matches
// every status.
type NoteFilter struct {
	UserID        int64
	SharedNoteIDs []int64
	StatusID      int64
	// ByOrder switches listing from newest-first to manual order.
	ByOrder bool
}
