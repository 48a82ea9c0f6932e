package domain

import "time"

type Meeting struct {
	IRI           string
	ID            string
	Date          time.Time
	Final         bool
	TreatedAgenda string
	Newsletter    string
}
