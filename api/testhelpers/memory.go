package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
)

// Store keeps every collection in memory. The views returned by its accessors
// implement the databases interfaces so handlers can run end to end in tests.
type Store struct {
	mu            sync.Mutex
	events        []models.Event
	departments   []models.Department
	users         []models.User
	resources     []models.ResourceAvailability
	locations     []models.LocationAvailability
	notifications []models.Notification
	logs          []models.ActivityLog
	messages      []models.Message

	// NotificationErr, when set, fails every notification insert
	NotificationErr error
}

// NewStore returns an empty Store
func NewStore() *Store {
	return &Store{}
}

// Events returns the events collection
func (s *Store) Events() databases.EventDatabase { return eventStore{s} }

// Departments returns the departments collection
func (s *Store) Departments() databases.DepartmentDatabase { return departmentStore{s} }

// Users returns the users collection
func (s *Store) Users() databases.UserDatabase { return userStore{s} }

// Availability returns both availability ledgers
func (s *Store) Availability() databases.AvailabilityDatabase { return availabilityStore{s} }

// Notifications returns the notifications collection
func (s *Store) Notifications() databases.NotificationDatabase { return notificationStore{s} }

// ActivityLogs returns the activity log collection
func (s *Store) ActivityLogs() databases.ActivityLogDatabase { return activityStore{s} }

// Messages returns the messages collection
func (s *Store) Messages() databases.MessageDatabase { return messageStore{s} }

// AllNotifications returns a copy of every stored notification
func (s *Store) AllNotifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

// AllLocations returns a copy of every location availability row
func (s *Store) AllLocations() []models.LocationAvailability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LocationAvailability(nil), s.locations...)
}

// AllLogs returns a copy of every activity log entry
func (s *Store) AllLogs() []models.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ActivityLog(nil), s.logs...)
}

func stamp() primitive.DateTime {
	return primitive.NewDateTimeFromTime(time.Now())
}

type eventStore struct{ s *Store }

func (e eventStore) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) (*models.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	for _, ev := range e.s.events {
		if Matches(ev, filter) {
			out := &models.Event{}
			clone(ev, out)
			return out, nil
		}
	}
	return nil, databases.ErrNotFound
}

func (e eventStore) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	var out []models.Event
	for _, ev := range e.s.events {
		if Matches(ev, filter) {
			var c models.Event
			clone(ev, &c)
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (e eventStore) InsertOne(_ context.Context, ev *models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	ev.Version = 1
	ev.SyncTaggedDepartments()
	var c models.Event
	clone(ev, &c)
	e.s.events = append(e.s.events, c)
	return nil
}

func (e eventStore) Replace(_ context.Context, ev *models.Event) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	for i := range e.s.events {
		if e.s.events[i].ID != ev.ID {
			continue
		}
		if e.s.events[i].Version != ev.Version {
			return databases.ErrVersionConflict
		}
		next := models.Event{}
		clone(ev, &next)
		next.Version = ev.Version + 1
		next.SyncTaggedDepartments()
		e.s.events[i] = next
		*ev = models.Event{}
		clone(next, ev)
		return nil
	}
	return databases.ErrVersionConflict
}

func (e eventStore) DeleteOne(_ context.Context, id primitive.ObjectID) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	for i := range e.s.events {
		if e.s.events[i].ID == id {
			e.s.events = append(e.s.events[:i], e.s.events[i+1:]...)
			return nil
		}
	}
	return databases.ErrNotFound
}

type departmentStore struct{ s *Store }

func (d departmentStore) FindOne(_ context.Context, filter interface{}) (*models.Department, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, dep := range d.s.departments {
		if Matches(dep, filter) {
			out := &models.Department{}
			clone(dep, out)
			return out, nil
		}
	}
	return nil, databases.ErrNotFound
}

func (d departmentStore) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.Department, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	var out []models.Department
	for _, dep := range d.s.departments {
		if Matches(dep, filter) {
			var c models.Department
			clone(dep, &c)
			out = append(out, c)
		}
	}
	return out, nil
}

func (d departmentStore) InsertOne(_ context.Context, dep *models.Department) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, existing := range d.s.departments {
		if existing.Name == dep.Name {
			return databases.ErrDuplicate
		}
	}
	if dep.ID.IsZero() {
		dep.ID = primitive.NewObjectID()
	}
	if dep.Requirements == nil {
		dep.Requirements = []models.RequirementDefinition{}
	}
	var c models.Department
	clone(dep, &c)
	d.s.departments = append(d.s.departments, c)
	return nil
}

func (d departmentStore) UpdateOne(_ context.Context, id primitive.ObjectID, update interface{}) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for i := range d.s.departments {
		if d.s.departments[i].ID == id {
			next := models.Department{}
			applyUpdate(d.s.departments[i], update, &next)
			d.s.departments[i] = next
			return nil
		}
	}
	return databases.ErrNotFound
}

func (d departmentStore) DeleteOne(_ context.Context, id primitive.ObjectID) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for i := range d.s.departments {
		if d.s.departments[i].ID == id {
			d.s.departments = append(d.s.departments[:i], d.s.departments[i+1:]...)
			return nil
		}
	}
	return databases.ErrNotFound
}

type userStore struct{ s *Store }

func (u userStore) FindOne(_ context.Context, filter interface{}) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if Matches(user, filter) {
			out := &models.User{}
			clone(user, out)
			return out, nil
		}
	}
	return nil, databases.ErrNotFound
}

func (u userStore) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var out []models.User
	for _, user := range u.s.users {
		if Matches(user, filter) {
			var c models.User
			clone(user, &c)
			out = append(out, c)
		}
	}
	return out, nil
}

func (u userStore) InsertOne(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return databases.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	var c models.User
	clone(user, &c)
	u.s.users = append(u.s.users, c)
	return nil
}

func (u userStore) UpdateOne(_ context.Context, id primitive.ObjectID, update interface{}) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for i := range u.s.users {
		if u.s.users[i].ID == id {
			next := models.User{}
			applyUpdate(u.s.users[i], update, &next)
			u.s.users[i] = next
			return nil
		}
	}
	return databases.ErrNotFound
}

func (u userStore) DeleteOne(_ context.Context, id primitive.ObjectID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for i := range u.s.users {
		if u.s.users[i].ID == id {
			u.s.users = append(u.s.users[:i], u.s.users[i+1:]...)
			return nil
		}
	}
	return databases.ErrNotFound
}

type availabilityStore struct{ s *Store }

func (a availabilityStore) FindResources(_ context.Context, filter interface{}) ([]models.ResourceAvailability, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []models.ResourceAvailability
	for _, r := range a.s.resources {
		if Matches(r, filter) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (a availabilityStore) UpsertResource(_ context.Context, r *models.ResourceAvailability) (*models.ResourceAvailability, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	now := stamp()
	for i, existing := range a.s.resources {
		if existing.DepartmentID == r.DepartmentID && existing.RequirementID == r.RequirementID && existing.Date == r.Date {
			next := *r
			next.ID = existing.ID
			next.CreatedAt = existing.CreatedAt
			next.UpdatedAt = now
			a.s.resources[i] = next
			return &next, nil
		}
	}
	next := *r
	next.ID = primitive.NewObjectID()
	next.CreatedAt = now
	next.UpdatedAt = now
	a.s.resources = append(a.s.resources, next)
	return &next, nil
}

func (a availabilityStore) DeleteResource(_ context.Context, id primitive.ObjectID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for i := range a.s.resources {
		if a.s.resources[i].ID == id {
			a.s.resources = append(a.s.resources[:i], a.s.resources[i+1:]...)
			return nil
		}
	}
	return databases.ErrNotFound
}

func (a availabilityStore) FindLocations(_ context.Context, filter interface{}) ([]models.LocationAvailability, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var out []models.LocationAvailability
	for _, l := range a.s.locations {
		if Matches(l, filter) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (a availabilityStore) UpsertLocation(_ context.Context, l *models.LocationAvailability) (*models.LocationAvailability, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	now := stamp()
	for i, existing := range a.s.locations {
		if existing.LocationName == l.LocationName && existing.Date == l.Date {
			next := *l
			next.ID = existing.ID
			next.CreatedAt = existing.CreatedAt
			next.UpdatedAt = now
			a.s.locations[i] = next
			return &next, nil
		}
	}
	next := *l
	next.ID = primitive.NewObjectID()
	next.CreatedAt = now
	next.UpdatedAt = now
	a.s.locations = append(a.s.locations, next)
	return &next, nil
}

func (a availabilityStore) EnsureLocation(_ context.Context, l *models.LocationAvailability) (bool, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, existing := range a.s.locations {
		if existing.LocationName == l.LocationName && existing.Date == l.Date {
			return false, nil
		}
	}
	next := *l
	next.ID = primitive.NewObjectID()
	next.CreatedAt = stamp()
	next.UpdatedAt = next.CreatedAt
	a.s.locations = append(a.s.locations, next)
	return true, nil
}

func (a availabilityStore) DeleteLocation(_ context.Context, id primitive.ObjectID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for i := range a.s.locations {
		if a.s.locations[i].ID == id {
			a.s.locations = append(a.s.locations[:i], a.s.locations[i+1:]...)
			return nil
		}
	}
	return databases.ErrNotFound
}

func (a availabilityStore) DeleteBefore(_ context.Context, date string) (models.CleanupResult, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	result := models.CleanupResult{Before: date}

	keptResources := a.s.resources[:0]
	for _, r := range a.s.resources {
		if r.Date < date {
			result.ResourceDeleted++
			continue
		}
		keptResources = append(keptResources, r)
	}
	a.s.resources = keptResources

	keptLocations := a.s.locations[:0]
	for _, l := range a.s.locations {
		if l.Date < date {
			result.LocationDeleted++
			continue
		}
		keptLocations = append(keptLocations, l)
	}
	a.s.locations = keptLocations
	return result, nil
}

type notificationStore struct{ s *Store }

func (n notificationStore) InsertOne(_ context.Context, note *models.Notification) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	if n.s.NotificationErr != nil {
		return n.s.NotificationErr
	}
	if note.ID.IsZero() {
		note.ID = primitive.NewObjectID()
	}
	n.s.notifications = append(n.s.notifications, *note)
	return nil
}

func (n notificationStore) FindForUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var out []models.Notification
	for i := len(n.s.notifications) - 1; i >= 0; i-- {
		if n.s.notifications[i].UserID == userID {
			out = append(out, n.s.notifications[i])
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (n notificationStore) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var count int64
	for _, note := range n.s.notifications {
		if note.UserID == userID && !note.IsRead {
			count++
		}
	}
	return count, nil
}

func (n notificationStore) MarkRead(_ context.Context, userID, id primitive.ObjectID) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	for i := range n.s.notifications {
		if n.s.notifications[i].ID == id && n.s.notifications[i].UserID == userID {
			ts := stamp()
			n.s.notifications[i].IsRead = true
			n.s.notifications[i].ReadAt = &ts
			return nil
		}
	}
	return databases.ErrNotFound
}

func (n notificationStore) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var count int64
	ts := stamp()
	for i := range n.s.notifications {
		if n.s.notifications[i].UserID == userID && !n.s.notifications[i].IsRead {
			n.s.notifications[i].IsRead = true
			n.s.notifications[i].ReadAt = &ts
			count++
		}
	}
	return count, nil
}

type activityStore struct{ s *Store }

func (a activityStore) InsertOne(_ context.Context, l *models.ActivityLog) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	a.s.logs = append(a.s.logs, *l)
	return nil
}

func (a activityStore) Find(_ context.Context, filter interface{}, limit, page int) ([]models.ActivityLog, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var matched []models.ActivityLog
	for i := len(a.s.logs) - 1; i >= 0; i-- {
		if Matches(a.s.logs[i], filter) {
			matched = append(matched, a.s.logs[i])
		}
	}
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (a activityStore) Count(_ context.Context, filter interface{}) (int64, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var n int64
	for _, l := range a.s.logs {
		if Matches(l, filter) {
			n++
		}
	}
	return n, nil
}

type messageStore struct{ s *Store }

func (m messageStore) InsertOne(_ context.Context, msg *models.Message) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	m.s.messages = append(m.s.messages, *msg)
	return nil
}

func (m messageStore) FindConversation(_ context.Context, eventID primitive.ObjectID, department string) ([]models.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.Message
	for _, msg := range m.s.messages {
		if msg.EventID == eventID && (department == "" || msg.Department == department) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m messageStore) DeleteForEvent(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	kept := m.s.messages[:0]
	var n int64
	for _, msg := range m.s.messages {
		if msg.EventID == eventID {
			n++
			continue
		}
		kept = append(kept, msg)
	}
	m.s.messages = kept
	return n, nil
}
