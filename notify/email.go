package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/models"
	templates "github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/templates/html"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

// Email is one outgoing message
type Email struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainText string
	HTML      string
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGridMailer builds a mailer for apiKey sending as from
func NewSendGridMailer(apiKey, fromName, fromAddr string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

// Send implements Mailer
func (m *SendGridMailer) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(e.ToName, e.ToAddress)
	message := mail.NewSingleEmail(from, e.Subject, to, e.PlainText, e.HTML)
	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", e.ToAddress)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", e.ToAddress, "subject", e.Subject)
	return nil
}

// LifecycleEmails mails the requestor when an admin or the sweep decides an event
type LifecycleEmails struct {
	Mailer  Mailer
	BaseURL string
}

// Hook implements workflow.Hook
func (n LifecycleEmails) Hook(ctx context.Context, c workflow.Change) error {
	switch c.Kind {
	case workflow.ChangeApproved, workflow.ChangeRejected, workflow.ChangeCancelled, workflow.ChangeCompleted:
	default:
		return nil
	}
	if n.Mailer == nil || c.Event.ContactEmail == "" {
		return nil
	}
	return n.Mailer.Send(ctx, NewLifecycleEmail(c.Event, c.Reason, n.BaseURL))
}

// NewLifecycleEmail renders the status email for ev
func NewLifecycleEmail(ev models.Event, reason, baseURL string) Email {
	e := templates.EventStatusEmail{
		RecipientName: ev.RequestorName,
		EventTitle:    ev.EventTitle,
		Status:        string(ev.Status),
		Reason:        reason,
		Schedule:      fmt.Sprintf("%s %s to %s %s", ev.StartDate, ev.StartTime, ev.EndDate, ev.EndTime),
		Location:      strings.Join(ev.AllLocations(), ", "),
	}
	if baseURL != "" {
		e.Link = strings.TrimRight(baseURL, "/") + "/events/" + ev.ID.Hex()
	}
	return Email{
		ToName:    ev.RequestorName,
		ToAddress: ev.ContactEmail,
		Subject:   e.Subject(),
		PlainText: e.PlainText(),
		HTML:      templates.RenderEventStatusEmail(e),
	}
}
