package domain

import "time"

const TokenValidity = time.Minute

type Token struct {
	Value    string
	IssuedAt time.Time
}

func (t Token) Valid(now time.Time) bool {
	if t.Value == "" || t.IssuedAt.IsZero() {
		return false
	}

	return now.Sub(t.IssuedAt) < TokenValidity
}
