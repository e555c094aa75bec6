package trello

import "fmt"

type TrelloBadges struct {
	DueComplete bool `json:"dueComplete"`
}

type TrelloCard struct {
	Id     string       `json:"id"`
	Name   string       `json:"name"`
	Desc   string       `json:"desc"`
	Closed bool         `json:"closed"`
	Badges TrelloBadges `json:"badges"`
}

// APIError is returned for any non-200 answer from the Trello API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("trello: API error status %d", e.StatusCode)
	}
	return fmt.Sprintf("trello: API error status %d: %s", e.StatusCode, e.Message)
}
