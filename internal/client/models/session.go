package models

// User describes the account the cached note set belongs to.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Session is the single locally cached authenticated session: the user plus
// the bearer token attached to remote calls. At most one session is cached
// at a time; logging in as a different user replaces it together with the
// entire local note set.
type Session struct {
	User  User
	Token string
}
