package model

// Claim keys of admin access tokens; JWTAuth copies them into the gin context.
const (
	UserUIDKey   = "sub"
	UserEmailKey = "email"
	ScopeKey     = "scope"
	TokenTypeKey = "type"
	TokenIDKey   = "jti"
)

const (
	ScopeAdmin      = "admin"
	TokenTypeAccess = "access"
)

type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AdminProfile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	FullName  string  `json:"full_name"`
	Role      string  `json:"role"`
}

type LoginResponse struct {
	User         AdminProfile `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
