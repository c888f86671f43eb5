package realtime

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// Event names carried in every frame.
const (
	EventConnected       = "EVENT_CONNECTED"
	EventNoteAdded       = "EVENT_NOTE_ADDED"
	EventNoteChanged     = "EVENT_NOTE_CHANGED"
	EventNoteRemoved     = "EVENT_NOTE_REMOVED"
	EventNoteOrderSet    = "EVENT_NOTE_ORDER_SET"
	EventListItemAdded   = "EVENT_LIST_ITEM_ADDED"
	EventListItemChanged = "EVENT_LIST_ITEM_CHANGED"
	EventListItemRemoved = "EVENT_LIST_ITEM_REMOVED"
)

// Frame is the JSON envelope written to a connection.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Origin identifies who caused a change and over which connection.
type Origin struct {
	UserID       int64
	ConnectionID string
}

// Notifier fans note and list item changes out to collaborators. Delivery is
// best-effort: failures are logged and never reported to the caller.
type Notifier struct {
	hub *Hub
	log *zap.Logger
}

// NewNotifier returns a Notifier delivering through hub.
func NewNotifier(hub *Hub, log *zap.Logger) *Notifier {
	return &Notifier{hub: hub, log: log}
}

func (n *Notifier) NoteAdded(from Origin, note *models.Note) {
	n.publish(from, note, EventNoteAdded, note)
}

func (n *Notifier) NoteChanged(from Origin, note *models.Note) {
	n.publish(from, note, EventNoteChanged, note)
}

func (n *Notifier) NoteRemoved(from Origin, note *models.Note) {
	n.publish(from, note, EventNoteRemoved, note)
}

// ListItemsOrderSet sends the reordered note.
func (n *Notifier) ListItemsOrderSet(from Origin, note *models.Note) {
	n.publish(from, note, EventNoteOrderSet, note)
}

func (n *Notifier) ListItemAdded(from Origin, item *models.ListItem) {
	n.publish(from, item.Note, EventListItemAdded, item)
}

func (n *Notifier) ListItemChanged(from Origin, item *models.ListItem) {
	n.publish(from, item.Note, EventListItemChanged, item)
}

func (n *Notifier) ListItemRemoved(from Origin, item *models.ListItem) {
	n.publish(from, item.Note, EventListItemRemoved, item)
}

// CoAuthorAdded tells the new co-author that a note appeared and everyone
// else that it changed.
func (n *Notifier) CoAuthorAdded(from Origin, grant *models.NoteCoAuthor) {
	n.grantChanged(from, grant, EventNoteAdded)
}

// CoAuthorRemoved tells the remaining collaborators that the note changed and
// the revoked user that it is gone.
func (n *Notifier) CoAuthorRemoved(from Origin, grant *models.NoteCoAuthor) {
	n.grantChanged(from, grant, EventNoteRemoved)
}

func (n *Notifier) grantChanged(from Origin, grant *models.NoteCoAuthor, targetEvent string) {
	if grant.Note == nil {
		return
	}
	var rest []int64
	for _, id := range Audience(grant.Note, from.UserID) {
		if id != grant.UserID {
			rest = append(rest, id)
		}
	}
	n.deliver(from, rest, EventNoteChanged, grant.Note)
	n.deliver(from, []int64{grant.UserID}, targetEvent, grant.Note)
}

// Audience returns the users to notify about a change of note made by
// actorID: the actor, the owner and every attached co-author, each once.
func Audience(note *models.Note, actorID int64) []int64 {
	seen := make(map[int64]bool, len(note.CoAuthors)+2)
	out := make([]int64, 0, len(note.CoAuthors)+2)
	for _, id := range append([]int64{actorID}, note.AudienceUserIDs()...) {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (n *Notifier) publish(from Origin, note *models.Note, event string, data any) {
	if note == nil {
		n.log.Warn("fan-out skipped: no note attached", zap.String("event", event))
		return
	}
	n.deliver(from, Audience(note, from.UserID), event, data)
}

func (n *Notifier) deliver(from Origin, userIDs []int64, event string, data any) {
	frame, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		n.log.Error("fan-out encode failed", zap.String("event", event), zap.Error(err))
		return
	}
	for _, userID := range userIDs {
		for _, c := range n.hub.ClientsFor(userID, from.ConnectionID) {
			if !c.Enqueue(frame) {
				n.log.Warn("fan-out dropped",
					zap.String("event", event),
					zap.Int64("user_id", userID),
					zap.String("connection_id", c.ID))
			}
		}
	}
}
