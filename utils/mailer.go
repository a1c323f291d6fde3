package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"vidora/config"
)

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	Year      int
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"welcome": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Welcome to {{.Data.AppName}}</h2>
    </div>
    <div class="content">
        <p>Hello {{.Data.Name}},</p>
        <p>Your account is ready. Browse the catalog and start watching — basic videos are free for every member.</p>
    </div>
    <div class="footer">
        <p>&copy; {{.Year}} {{.Data.AppName}}. All rights reserved.</p>
    </div>
</body>
</html>`,
	"subscription_confirmed": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .plan-name { font-size: 20px; font-weight: bold; color: #3498db; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Subscription confirmed</h2>
    </div>
    <div class="content">
        <p>Hello {{.Data.Name}},</p>
        <p>Your <span class="plan-name">{{.Data.PlanName}}</span> subscription is active until {{.Data.EndsAt}}.</p>
        <p>Everything at the {{.Data.PlanName}} tier and below is now unlocked.</p>
    </div>
    <div class="footer">
        <p>&copy; {{.Year}} {{.Data.AppName}}. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// SendEmail renders the named template and sends it through the configured
// SMTP relay. A missing SMTP host turns this into a no-op so local
// development works without a relay.
func SendEmail(data EmailData) error {
	if config.AppConfig.SMTPHost == "" {
		return nil
	}

	tmplBody, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("unknown email template %q", data.Template)
	}

	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	if data.FromEmail == "" {
		data.FromEmail = config.AppConfig.FromEmail
	}
	if data.FromName == "" {
		data.FromName = config.AppConfig.FromName
	}

	tmpl, err := template.New(data.Template).Parse(tmplBody)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(data.FromEmail, data.FromName))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	port, err := strconv.Atoi(config.AppConfig.SMTPPort)
	if err != nil {
		port = 587
	}

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		port,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	return d.DialAndSend(m)
}
