package models

// Identity is the resolved caller attached to a request context by the auth
// middleware: the (user_id, role) pair the policy and the services act on.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
