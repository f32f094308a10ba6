package model

// TokenResponse is the login/refresh payload: `{ token, user }` plus the
// refresh token.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}
