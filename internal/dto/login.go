package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSignInRequest carries the ID token returned by Google Identity
// Services ("credential" in the browser callback).
type GoogleSignInRequest struct {
	Credential string `json:"credential"`
}
