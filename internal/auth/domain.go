package auth

// User is the allow-listed user record. Decoding a server reply into this
// struct is what keeps extraneous fields out of the persisted session.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register payload.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// State is the auth domain's slice of the state tree.
type State struct {
	User            *User
	IsAuthenticated bool
	Loading         bool
	Err             string
}

// authResponse is the login/register reply. Both fields must be present;
// a 2xx reply missing either is a malformed response, not a success.
type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
