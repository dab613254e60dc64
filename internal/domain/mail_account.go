package domain

import "time"

// MailAccount holds inbound-mail credentials for one mailbox. An account
// with no host or username configured is a valid state: ingestion skips it
// with a warning rather than treating it as a failure.
type MailAccount struct {
	ID        string
	Name      string
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCredentials reports whether the account is configured for fetching.
func (a MailAccount) HasCredentials() bool {
	return a.Host != "" && a.Username != "" && a.Password != ""
}
