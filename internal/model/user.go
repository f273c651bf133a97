package model

// User is an administrative account. Password holds a bcrypt hash, never plain text.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"password" db:"password"`
}

// Identity is the authenticated subject carried inside a bearer token.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginRequest represents the request payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ChangePasswordRequest represents the request payload for POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// OKResponse is a bare acknowledgement.
type OKResponse struct {
	OK bool `json:"ok"`
}

// UploadResponse carries the retrievable URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}
