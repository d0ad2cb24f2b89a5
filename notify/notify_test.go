package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/notify"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

type push struct {
	Target string
	Event  string
}

type recorder struct {
	pushes []push
}

func (r *recorder) ToUser(userID, event string, _ interface{}) {
	r.pushes = append(r.pushes, push{"user:" + userID, event})
}
func (r *recorder) ToRoom(room, event string, _ interface{}) {
	r.pushes = append(r.pushes, push{"room:" + room, event})
}
func (r *recorder) Broadcast(event string, _ interface{}) {
	r.pushes = append(r.pushes, push{"all", event})
}

type notificationDB struct {
	mock.Mock
}

func (m *notificationDB) InsertOne(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *notificationDB) FindForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	ret := m.Called(ctx, userID, limit)
	return ret.Get(0).([]models.Notification), ret.Error(1)
}
func (m *notificationDB) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(int64), ret.Error(1)
}
func (m *notificationDB) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	return m.Called(ctx, userID, id).Error(0)
}
func (m *notificationDB) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	ret := m.Called(ctx, userID)
	return ret.Get(0).(int64), ret.Error(1)
}

func statusChange(prev, next models.AllocationStatus) (workflow.Change, *models.User) {
	member := &models.User{ID: primitive.NewObjectID(), Username: "pgso1", Role: models.RoleDepartment, Department: "PGSO"}
	ev := models.Event{ID: primitive.NewObjectID(), EventTitle: "Summit", CreatedBy: primitive.NewObjectID(), TaggedDepartments: []string{"PGSO"}}
	return workflow.Change{
		Kind:                      workflow.ChangeRequirementStatus,
		Event:                     ev,
		Actor:                     member,
		Department:                "PGSO",
		Requirement:               &models.RequirementAllocation{ID: "r1", Name: "Chairs", Status: next},
		PreviousRequirementStatus: prev,
		OccurredAt:                time.Now(),
	}, member
}

func TestRealtimeStatusUpdateGoesToRequestorAndActor(t *testing.T) {
	rec := &recorder{}
	c, member := statusChange(models.AllocationPending, models.AllocationConfirmed)

	require.NoError(t, notify.Realtime{Pub: rec}.Hook(context.Background(), c))
	assert.Equal(t, []push{
		{"user:" + c.Event.CreatedBy.Hex(), realtime.EventStatusUpdate},
		{"user:" + member.ID.Hex(), realtime.EventStatusUpdate},
		{"room:event:" + c.Event.ID.Hex(), realtime.EventStatusUpdate},
	}, rec.pushes)
}

func TestRealtimeSkipsUnchangedStatus(t *testing.T) {
	rec := &recorder{}
	c, _ := statusChange(models.AllocationConfirmed, models.AllocationConfirmed)

	require.NoError(t, notify.Realtime{Pub: rec}.Hook(context.Background(), c))
	assert.Empty(t, rec.pushes)
}

func TestRealtimeApprovalReachesEveryone(t *testing.T) {
	rec := &recorder{}
	ev := models.Event{ID: primitive.NewObjectID(), CreatedBy: primitive.NewObjectID(), Status: models.EventStatusApproved, TaggedDepartments: []string{"PGSO", "PHO"}}

	require.NoError(t, notify.Realtime{Pub: rec}.Hook(context.Background(), workflow.Change{Kind: workflow.ChangeApproved, Event: ev}))
	assert.Equal(t, []push{
		{"user:" + ev.CreatedBy.Hex(), realtime.EventUpdated},
		{"all", realtime.EventUpdated},
		{"room:department:PGSO", realtime.EventUpdated},
		{"room:department:PHO", realtime.EventUpdated},
	}, rec.pushes)
}

func TestNotificationsPersistOnlyRealStatusChanges(t *testing.T) {
	db := &notificationDB{}
	rec := &recorder{}
	hook := notify.Notifications{DB: db, Pub: rec}

	c, _ := statusChange(models.AllocationPending, models.AllocationDeclined)
	reason := "no stock"
	c.Requirement.DeclineReason = &reason
	db.On("InsertOne", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == c.Event.CreatedBy && n.Type == models.NotificationStatus &&
			n.RequirementID == "r1" && !n.IsRead && n.Message == `PGSO updated "Chairs" to declined: no stock`
	})).Return(nil).Once()

	require.NoError(t, hook.Hook(context.Background(), c))
	assert.Equal(t, []push{{"user:" + c.Event.CreatedBy.Hex(), realtime.EventNewNotification}}, rec.pushes)

	same, _ := statusChange(models.AllocationDeclined, models.AllocationDeclined)
	require.NoError(t, hook.Hook(context.Background(), same))
	require.NoError(t, hook.Hook(context.Background(), workflow.Change{Kind: workflow.ChangeApproved}))
	db.AssertNumberOfCalls(t, "InsertOne", 1)
}

func TestNotificationsReportPersistenceFailure(t *testing.T) {
	db := &notificationDB{}
	db.On("InsertOne", mock.Anything, mock.Anything).Return(errors.New("mocked-error"))
	c, _ := statusChange(models.AllocationPending, models.AllocationConfirmed)
	rec := &recorder{}

	err := notify.Notifications{DB: db, Pub: rec}.Hook(context.Background(), c)
	assert.EqualError(t, err, "persist notification: mocked-error")
	assert.Empty(t, rec.pushes)
}

type mailer struct {
	sent []notify.Email
}

func (m *mailer) Send(_ context.Context, e notify.Email) error {
	m.sent = append(m.sent, e)
	return nil
}

func TestLifecycleEmails(t *testing.T) {
	m := &mailer{}
	hook := notify.LifecycleEmails{Mailer: m, BaseURL: "https://events.bataan.gov.ph/"}
	ev := models.Event{ID: primitive.NewObjectID(), EventTitle: "Summit", RequestorName: "Ana", ContactEmail: "ana@example.com", Status: models.EventStatusCancelled}

	require.NoError(t, hook.Hook(context.Background(), workflow.Change{Kind: workflow.ChangeCancelled, Event: ev, Reason: "venue conflict"}))
	require.NoError(t, hook.Hook(context.Background(), workflow.Change{Kind: workflow.ChangeReply, Event: ev}))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "ana@example.com", m.sent[0].ToAddress)
	assert.Equal(t, "Event request cancelled: Summit", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].PlainText, "Reason: venue conflict")
	assert.Contains(t, m.sent[0].PlainText, "https://events.bataan.gov.ph/events/"+ev.ID.Hex())
}

func TestActivityEntry(t *testing.T) {
	c, member := statusChange(models.AllocationPending, models.AllocationConfirmed)
	entry := notify.NewActivityEntry(c)

	assert.Equal(t, string(workflow.ChangeRequirementStatus), entry.Action)
	assert.Equal(t, member.ID, *entry.UserID)
	assert.Equal(t, "PGSO", entry.Department)
	assert.Equal(t, `PGSO set "Chairs" on "Summit" to confirmed`, entry.Description)

	auto := notify.NewActivityEntry(workflow.Change{Kind: workflow.ChangeCompleted, Automatic: true, Event: models.Event{EventTitle: "Summit"}})
	assert.Equal(t, "system", auto.Username)
	assert.Nil(t, auto.UserID)
	assert.Equal(t, `"Summit" completed after its schedule ended`, auto.Description)
}
