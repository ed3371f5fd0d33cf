package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendEscalationAlert(toEmail, ticketID, category, priority, summary string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendEscalationAlert(toEmail, ticketID, category, priority, summary string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("[%s] Escalated ticket %s", priority, ticketID))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Troubleshooting escalated to a technician</h2>
			<p><b>Ticket:</b> %s</p>
			<p><b>Category:</b> %s</p>
			<p><b>Priority:</b> %s</p>
			<p>%s</p>
		</div>
	`, ticketID, category, priority, summary)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send escalation alert for %s: %v\n", ticketID, err)
		return err
	}

	fmt.Printf("[MAILER] Escalation alert for %s sent to %s\n", ticketID, toEmail)
	return nil
}
