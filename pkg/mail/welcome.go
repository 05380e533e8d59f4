package mail

import (
	"time"

	"github.com/piazza-crm/leadflow/pkg/models"
	"github.com/piazza-crm/leadflow/pkg/template"
)

// The welcome email sent by the send_email action. The template is fixed;
// only the lead fields and the date vary.
const (
	welcomeSubject = "Welcome aboard, {{.Name}}!"
	welcomeBody    = `Hi {{.Name}},

Thanks for reaching out to us on {{.Date}}. We have registered your
contact details ({{.Email}}) and one of our team members will be in
touch with you shortly.

Best regards,
The Piazza CRM Team`
)

type welcomeData struct {
	Name  string
	Email string
	Date  string
}

// RenderWelcome renders the welcome subject and body for a lead.
func RenderWelcome(lead *models.Lead, now time.Time) (subject, body string, err error) {
	data := welcomeData{
		Name:  lead.Name,
		Email: lead.Email,
		Date:  now.Format("January 2, 2006"),
	}

	subject, err = template.Render(welcomeSubject, data)
	if err != nil {
		return "", "", err
	}

	body, err = template.Render(welcomeBody, data)
	if err != nil {
		return "", "", err
	}

	return subject, body, nil
}
