package services

import (
	"fmt"
	"log"

	"casevault/config"

	"github.com/resend/resend-go/v2"
)

// EmailConfig is the global email configuration
var EmailConfig *config.Config

// InitializeEmail stores the config used by the email senders
func InitializeEmail(cfg *config.Config) {
	EmailConfig = cfg
}

// sendEmail delivers an email via Resend, or logs it in test mode
func sendEmail(to, subject, htmlBody string) {
	cfg := EmailConfig
	if cfg == nil {
		log.Printf("[WARNING] Email not initialized, dropping email to %s", to)
		return
	}

	if cfg.EmailTestMode || cfg.ResendAPIKey == "" {
		log.Printf("[EMAIL TEST MODE] To: %s | Subject: %s", to, subject)
		return
	}

	// Send asynchronously to avoid blocking the request
	go func() {
		client := resend.NewClient(cfg.ResendAPIKey)
		params := &resend.SendEmailRequest{
			From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
			To:      []string{to},
			Subject: subject,
			Html:    htmlBody,
		}
		if _, err := client.Emails.Send(params); err != nil {
			log.Printf("[WARNING] Failed to send email to %s: %v", to, err)
		}
	}()
}

// SendCaseInvitationEmail sends a case invitation with the acceptance link
func SendCaseInvitationEmail(to, caseNumber, inviterName, token string) {
	appURL := "http://localhost:8080"
	if EmailConfig != nil {
		appURL = EmailConfig.AppURL
	}
	acceptURL := fmt.Sprintf("%s/invitations/%s/accept", appURL, token)

	subject := fmt.Sprintf("You have been invited to case %s", caseNumber)
	body := fmt.Sprintf(`<p>%s has invited you to collaborate on case <strong>%s</strong>.</p>
<p><a href="%s">Accept the invitation</a> to join the case.</p>
<p>This invitation expires in 14 days.</p>`, inviterName, caseNumber, acceptURL)

	sendEmail(to, subject, body)
}

// SendDisclosureGeneratedEmail notifies a case member that a disclosure
// report has been generated
func SendDisclosureGeneratedEmail(to, caseNumber string, documentCount, newCount int) {
	subject := fmt.Sprintf("Disclosure report generated for case %s", caseNumber)
	body := fmt.Sprintf(`<p>A disclosure report has been generated for case <strong>%s</strong>.</p>
<p>It lists %d documents, %d of which are new since the last disclosure.</p>`, caseNumber, documentCount, newCount)

	sendEmail(to, subject, body)
}
