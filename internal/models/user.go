package models

// User represents a row in the PostgreSQL users table. The password hash
// lives only in the store layer and is never part of this struct.
type User struct {
	ID                  int64   `json:"id,omitempty"`
	Username            string  `json:"username"`
	FirstName           string  `json:"firstName"`
	LastName            string  `json:"lastName"`
	Email               string  `json:"email"`
	FavoritedProperties []int64 `json:"favoritedProperties"`
}

// UserUpdated is the response view for a partial update. Favorites are not
// loaded on update, so the field is absent rather than null.
type UserUpdated struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// LoginRequest is the JSON body for POST /auth/token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
