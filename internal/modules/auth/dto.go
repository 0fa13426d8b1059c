package auth

// RegisterRequest is the new-account payload.
type RegisterRequest struct {
	DNI      string `json:"dni" validate:"required,len=8,digits"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type recoveryRequest struct {
	DNI         string `json:"dni"`
	Email       string `json:"email"`
	Code        string `json:"code,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
}
