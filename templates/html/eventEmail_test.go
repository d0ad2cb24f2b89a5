package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEventStatusEmail(t *testing.T) {
	e := EventStatusEmail{
		RecipientName: "Juan",
		EventTitle:    "<Sports Fest>",
		Status:        "cancelled",
		Reason:        "venue conflict",
		Schedule:      "2026-03-10 08:00 to 2026-03-10 17:00",
	}

	out := RenderEventStatusEmail(e)
	assert.Contains(t, out, "&lt;Sports Fest&gt;")
	assert.NotContains(t, out, "<Sports Fest>")
	assert.Contains(t, out, "CANCELLED")
	assert.Contains(t, out, "Reason: venue conflict<br>")
	assert.Equal(t, "Event request cancelled: <Sports Fest>", e.Subject())
}

func TestPlainTextSkipsEmptyFields(t *testing.T) {
	text := EventStatusEmail{RecipientName: "Ana", EventTitle: "Summit", Status: "approved"}.PlainText()
	assert.False(t, strings.Contains(text, "Reason:"))
	assert.False(t, strings.Contains(text, "Location:"))
	assert.Contains(t, text, `"Summit" is now approved`)
}
