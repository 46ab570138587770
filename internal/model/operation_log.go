package model

import "time"

// Operation names recorded in the operation log
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpToggle = "TOGGLE"
	OpDelete = "DELETE"
)

// OperationLog records an author action for the dashboard audit trail
type OperationLog struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"userId"`
	UserName  string    `json:"userName" bson:"userName"`
	Command   string    `json:"command" bson:"command"`
	Detail    string    `json:"detail" bson:"detail"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
