package config

// MailConfig controls the confirmation-code mail consumer and the SMTP
// relay it hands messages to.
type MailConfig struct {
	Enabled  bool   // run the consumer inside the API process
	SMTPHost string // relay host
	SMTPPort string // relay port
	SMTPUser string // optional PLAIN auth user
	SMTPPass string // optional PLAIN auth password
	From     string // envelope and header sender
	TokenURL string // link to the token endpoint included in the mail body
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		Enabled:  envBool("MAILER_ENABLED", true),
		SMTPHost: envStr("SMTP_HOST", "localhost"),
		SMTPPort: envStr("SMTP_PORT", "1025"),
		SMTPUser: envStr("SMTP_USER", ""),
		SMTPPass: envStr("SMTP_PASS", ""),
		From:     envStr("MAIL_FROM", "noreply@yamdb.local"),
		TokenURL: envStr("MAIL_TOKEN_URL", "http://localhost:8080/api/v1/auth/token/"),
	}
}
