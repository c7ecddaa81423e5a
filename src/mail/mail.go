package mail

import (
	"fmt"

	"inkwell-entitlement/src/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Email struct {
	Name    string
	To      string
	Subject string
	Plain   string
	Html    string
}

func Send(email Email) error {
	from := mail.NewEmail(config.EmailName, config.EmailFrom)
	to := mail.NewEmail(email.Name, email.To)
	message := mail.NewSingleEmail(from, email.Subject, to, email.Plain, email.Html)
	client := sendgrid.NewSendClient(config.SendgridAPIKey)

	_, err := client.Send(message)
	if err != nil {
		return err
	}

	return nil
}

func SendLicenseMail(emailTo string, licenseID string) error {
	email := Email{
		Name:    emailTo,
		To:      emailTo,
		Subject: "Your Inkwell License is Here!",
		Plain:   fmt.Sprintf("Your Inkwell License Key: %s\n", licenseID),
		Html:    fmt.Sprintf("<h1>Your Inkwell License Key</h1><p>%s</p>", licenseID),
	}

	return Send(email)
}

func SendUsageWarningMail(emailTo string, totalTokens, quota int64) error {
	email := Email{
		Name:    emailTo,
		To:      emailTo,
		Subject: "Inkwell AI Usage Warning",
		Plain:   fmt.Sprintf("Your installation has used %d of its %d AI token allowance.\n", totalTokens, quota),
		Html:    fmt.Sprintf("<h1>AI Usage Warning</h1><p>Your installation has used %d of its %d AI token allowance.</p>", totalTokens, quota),
	}

	return Send(email)
}
