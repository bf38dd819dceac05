package model

// Label is a user-defined tag owned by one account, referenced by any
// number of messages.
type Label struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
}
