package domain

// Session is the persisted auth token pair plus a minimal profile.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         UserProfile
}

type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s Session) Valid() bool { return s.AccessToken != "" }

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
