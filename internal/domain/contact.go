package domain

import "time"

// Contact is an external requester identified by email address. Emails are
// normalized to lowercase before storage so lookups never miss on case.
type Contact struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Agent is a staff member tickets can be assigned to.
type Agent struct {
	ID    string
	Name  string
	Email string
}

// Group is a team of agents tickets can be routed to.
type Group struct {
	ID   string
	Name string
}
