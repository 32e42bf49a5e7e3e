package email

import (
	"bytes"
	"fmt"
	"html/template"
)

type Template struct {
	tmpl *template.Template
}

func NewTemplate(htmlContent string) (*Template, error) {
	tmpl, err := template.New("email").Parse(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}

// Mailer renders the account mails and sends them through a Sender.
type Mailer struct {
	sender  Sender
	from    string
	appName string

	verification *Template
	welcome      *Template
	reset        *Template
}

func NewMailer(sender Sender, from, appName string) *Mailer {
	if appName == "" {
		appName = "MedSync"
	}
	return &Mailer{
		sender:       sender,
		from:         from,
		appName:      appName,
		verification: mustTemplate(VerificationCodeTemplate),
		welcome:      mustTemplate(WelcomeTemplate),
		reset:        mustTemplate(ResetPasswordTemplate),
	}
}

func mustTemplate(content string) *Template {
	t, err := NewTemplate(content)
	if err != nil {
		panic(err)
	}
	return t
}

func (m *Mailer) sendWithTemplate(to, subject string, tmpl *Template, data any) error {
	body, err := tmpl.Render(data)
	if err != nil {
		return err
	}
	return SendHTML(m.sender, m.from, to, subject, body)
}

// VerificationCodeData feeds VerificationCodeTemplate.
type VerificationCodeData struct {
	AppName       string
	Name          string
	Code          string
	ExpireMinutes int
}

// SendVerificationCode mails the registration OTP.
func (m *Mailer) SendVerificationCode(to, name, code string, expireMinutes int) error {
	return m.sendWithTemplate(to, m.appName+": verify your email address", m.verification, VerificationCodeData{
		AppName:       m.appName,
		Name:          name,
		Code:          code,
		ExpireMinutes: expireMinutes,
	})
}

// WelcomeData feeds WelcomeTemplate.
type WelcomeData struct {
	AppName   string
	Name      string
	Username  string
	DisplayID string
	LoginURL  string
}

// SendWelcome confirms a finished registration.
func (m *Mailer) SendWelcome(to, name, username, displayID, loginURL string) error {
	return m.sendWithTemplate(to, m.appName+": registration successful", m.welcome, WelcomeData{
		AppName:   m.appName,
		Name:      name,
		Username:  username,
		DisplayID: displayID,
		LoginURL:  loginURL,
	})
}

// ResetPasswordData feeds ResetPasswordTemplate.
type ResetPasswordData struct {
	AppName       string
	Code          string
	ExpireMinutes int
}

// SendResetPasswordCode mails the password reset OTP.
func (m *Mailer) SendResetPasswordCode(to, code string, expireMinutes int) error {
	return m.sendWithTemplate(to, m.appName+": password reset code", m.reset, ResetPasswordData{
		AppName:       m.appName,
		Code:          code,
		ExpireMinutes: expireMinutes,
	})
}

const VerificationCodeTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0d6efd; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .code { font-size: 32px; font-weight: bold; color: #0d6efd; text-align: center;
                letter-spacing: 5px; padding: 20px; background-color: #fff; border: 2px dashed #0d6efd; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Verify your email</h1>
        </div>
        <div class="content">
            <p>Hello {{.Name}},</p>
            <p>Thank you for registering with {{.AppName}}. Use the code below to verify your email address:</p>
            <div class="code">{{.Code}}</div>
            <p>This code is valid for {{.ExpireMinutes}} minutes.</p>
            <p>If you did not request this, ignore this email.</p>
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

const WelcomeTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #198754; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .id { font-size: 24px; font-weight: bold; color: #198754; }
        .button { display: inline-block; padding: 12px 24px; background-color: #198754;
                  color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome to {{.AppName}}</h1>
        </div>
        <div class="content">
            <p>Hello {{.Name}},</p>
            <p>Your registration was successful.</p>
            <p>Username: <strong>{{.Username}}</strong></p>
            <p>User ID: <span class="id">{{.DisplayID}}</span></p>
            {{if .LoginURL}}
            <div style="text-align: center;">
                <a href="{{.LoginURL}}" class="button">Sign in</a>
            </div>
            {{end}}
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

const ResetPasswordTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #dc3545; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .code { font-size: 32px; font-weight: bold; color: #dc3545; text-align: center;
                letter-spacing: 5px; padding: 20px; background-color: #fff; border: 2px dashed #dc3545; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password reset</h1>
        </div>
        <div class="content">
            <p>We received a request to reset your {{.AppName}} password. Use the code below:</p>
            <div class="code">{{.Code}}</div>
            <p>This code is valid for {{.ExpireMinutes}} minutes.</p>
            <p>If you did not request a reset, ignore this email; your password stays unchanged.</p>
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`
