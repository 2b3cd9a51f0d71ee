package dto

type UserOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

type AuthResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    UserOutput `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyTokenOutput struct {
	Valid bool       `json:"valid"`
	User  UserOutput `json:"user"`
}

type ClientIDOutput struct {
	ClientID string `json:"clientId"`
}
