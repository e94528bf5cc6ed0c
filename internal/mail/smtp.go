package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"app/internal/config"

	gomail "github.com/wneessen/go-mail"
)

// 認証メール本文。受信者名と認証リンクだけを差し込む。
const verifyTemplate = `<html>
  <body>
    <p>Hi {{.receiver}},</p>
    <p>Welcome to {{.app_name}}! Please verify your email address by clicking the link below:</p>
    <p><a href="{{.verification_link}}">Verify your email</a></p>
    <p>If you did not create an account, you can safely ignore this message.</p>
  </body>
</html>`

var verifyTmpl = template.Must(template.New("verify").Parse(verifyTemplate))

// SMTPSenderは認証メールをSMTPで送る。
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// DI
func NewSMTPSender(cfg config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.MailServer,
		port:     cfg.MailPort,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
	}
}

// Send は宛先リストとテンプレートパラメータからメールを組み立てて送信する。
func (s *SMTPSender) Send(ctx context.Context, to []string, params map[string]string) error {
	var body bytes.Buffer
	if err := verifyTmpl.Execute(&body, params); err != nil {
		return fmt.Errorf("render mail body: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to...); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(params["app_name"] + " Email Verification")
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	// ローカルのSMTPスタブでは認証なしで動かせる
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
