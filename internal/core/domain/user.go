package domain

// UserProfile is an immutable snapshot of the authenticated user as reported
// by the upstream API. It is always replaced wholesale, never patched.
type UserProfile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	Image     string `json:"image"`
}

// TokenPair is an access/refresh token pair issued by the upstream API.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthPayload is the upstream login response: profile fields plus tokens.
type AuthPayload struct {
	UserProfile
	TokenPair
}

// Profile returns a copy of the profile portion of the payload.
func (p *AuthPayload) Profile() *UserProfile {
	profile := p.UserProfile
	return &profile
}

// Credentials carries the login form fields. Both must be present and at
// least three characters long before a network call is attempted.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=3"`
}
