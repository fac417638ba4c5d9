package dto

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,min=8"`
}

// OTPRequest asks for a one-time sign-in code.
type OTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// OTPVerifyRequest redeems the code for a session.
type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

// UserResponse is returned when user info is needed (e.g. after login).
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	IsPro bool   `json:"is_pro"`
}
