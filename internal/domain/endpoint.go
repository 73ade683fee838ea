package domain

import "strconv"

// APIEndpoint is the versioned portal API root, e.g. https://www.aula.dk/api/v22.
type APIEndpoint struct {
	Base    string
	Version int
}

func (e APIEndpoint) URL() string {
	return e.Base + strconv.Itoa(e.Version)
}

func (e APIEndpoint) Resolved() bool {
	return e.Base != "" && e.Version > 0
}

// RawResponse is the result of an ad-hoc passthrough call.
type RawResponse struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"response"`
}
