package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/realtime"
)

func TestEventConversation(t *testing.T) {
	f := newFixture(t)
	ana, reqToken := f.user("ana", models.RoleRequestor, "")
	_, pgsoToken := f.user("pgso1", models.RoleDepartment, "PGSO")
	_, phoToken := f.user("pho1", models.RoleDepartment, "PHO")
	pgso := f.department("PGSO", "Chairs", 100)
	id := f.createEvent(reqToken, eventBody("Mini Theater", pgso))
	path := "/api/v1/events/" + id.Hex() + "/messages"

	rr := f.do("POST", path, reqToken, map[string]string{"department": "PGSO", "content": "Can we get 50 more?"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1, f.pub.count("room", realtime.DepartmentRoom("PGSO"), realtime.EventNewMessage))

	rr = f.do("POST", path, pgsoToken, map[string]string{"department": "PGSO", "content": "Yes"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1, f.pub.count("user", ana.ID.Hex(), realtime.EventNewMessage))
	assert.Equal(t, 2, f.pub.count("room", realtime.EventRoom(id.Hex()), realtime.EventNewMessage))

	assert.Equal(t, http.StatusForbidden, f.do("POST", path, phoToken, map[string]string{"department": "PGSO", "content": "hi"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do("POST", path, reqToken, map[string]string{"department": "PGSO"}).Code)
	assert.Equal(t, http.StatusForbidden, f.do("POST", path, reqToken, map[string]string{"department": "PHO", "content": "hello?"}).Code,
		"the requestor only talks to tagged departments")
	assert.Equal(t, http.StatusForbidden, f.do("GET", path+"?department=PHO", reqToken, nil).Code)

	var msgs []models.Message
	decodeData(t, f.do("GET", path+"?department=PGSO", reqToken, nil), &msgs)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.ReplyRoleRequestor, msgs[0].SenderRole)
	assert.Equal(t, models.ReplyRoleDepartment, msgs[1].SenderRole)

	assert.Equal(t, http.StatusForbidden, f.do("GET", path, phoToken, nil).Code)
}

func TestMessageAttachment(t *testing.T) {
	f := newFixture(t)
	_, reqToken := f.user("ana", models.RoleRequestor, "")
	pgso := f.department("PGSO", "Chairs", 100)
	id := f.createEvent(reqToken, eventBody("Mini Theater", pgso))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("department", "PGSO"))
	part, err := mw.CreateFormFile("attachment", "layout.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 seating layout"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/events/"+id.Hex()+"/messages", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+reqToken)
	rr := executeRequest(f.app, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var msg models.Message
	decodeData(t, rr, &msg)
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "layout.pdf", msg.Attachment.OriginalName)

	rr = f.do("GET", "/api/v1/files/"+msg.Attachment.Path+"?download=true", reqToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF-1.4 seating layout", rr.Body.String())
}
