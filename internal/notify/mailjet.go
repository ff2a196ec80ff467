package notify

import (
	"context"
	"fmt"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

// MailjetNotifier sends owner notifications by email through Mailjet.
type MailjetNotifier struct {
	client    *mailjet.Client
	fromEmail string
	fromName  string
}

// NewMailjetNotifier creates a Mailjet-backed notifier.
func NewMailjetNotifier(apiKey, secretKey, fromEmail, fromName string) *MailjetNotifier {
	return &MailjetNotifier{
		client:    mailjet.NewMailjetClient(apiKey, secretKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Notify sends msg as a plain-text email.
func (n *MailjetNotifier) Notify(_ context.Context, msg Message) error {
	messages := mailjet.MessagesV31{
		Info: []mailjet.InfoMessagesV31{
			{
				From: &mailjet.RecipientV31{
					Email: n.fromEmail,
					Name:  n.fromName,
				},
				To: &mailjet.RecipientsV31{
					mailjet.RecipientV31{
						Email: msg.ToEmail,
						Name:  msg.ToName,
					},
				},
				Subject:  msg.Title,
				TextPart: msg.Content,
			},
		},
	}

	if _, err := n.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
