package dto

// RegisterRequest represents the signup payload
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email" example:"mario.rossi@example.com"`
	Password        string `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" example:"s3cret-pass"`
	FirstName       string `json:"firstName" binding:"required,min=2,max=100" example:"Mario"`
	LastName        string `json:"lastName" binding:"required,min=2,max=100" example:"Rossi"`
	Phone           string `json:"phone,omitempty" example:"+39 333 1234567"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the token refresh payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse represents the issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
	TokenType        string `json:"tokenType" example:"Bearer"`
}

// AuthResponse bundles the user profile with the token pair after login/register
type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}
