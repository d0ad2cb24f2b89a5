package templates

import (
	"fmt"
	"html"
	"strings"
)

// EventStatusEmail holds what a lifecycle email says about one event
type EventStatusEmail struct {
	RecipientName string
	EventTitle    string
	Status        string
	Reason        string
	Schedule      string
	Location      string
	Link          string
}

// Subject is the mail subject line for e
func (e EventStatusEmail) Subject() string {
	return fmt.Sprintf("Event request %s: %s", e.Status, e.EventTitle)
}

// PlainText is the text/plain alternative of the email
func (e EventStatusEmail) PlainText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", e.RecipientName)
	fmt.Fprintf(&b, "Your event request \"%s\" is now %s.\n", e.EventTitle, e.Status)
	if e.Schedule != "" {
		fmt.Fprintf(&b, "Schedule: %s\n", e.Schedule)
	}
	if e.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", e.Location)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", e.Reason)
	}
	if e.Link != "" {
		fmt.Fprintf(&b, "\nView the request: %s\n", e.Link)
	}
	return b.String()
}

// RenderEventStatusEmail generates branded HTML for an event lifecycle email.
// Every field is HTML-escaped before it is placed in the page.
func RenderEventStatusEmail(e EventStatusEmail) string {
	escaped := html.EscapeString(e.PlainText())
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")

	safeSubject := html.EscapeString(e.Subject())
	safeStatus := html.EscapeString(strings.ToUpper(e.Status))

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f6f8; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #0f4c81 0%%, #1b998b 100%%); padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .status { display: inline-block; margin-top: 12px; padding: 4px 12px; border-radius: 12px; background: rgba(255,255,255,0.2); color: #fff; font-size: 12px; letter-spacing: 1px; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
      <span class="status">%s</span>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>&copy; Provincial Government of Bataan | Event Scheduler</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, safeStatus, htmlBody)
}
