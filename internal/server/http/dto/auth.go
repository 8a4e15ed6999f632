package dto

// RegisterRequest describes self-registration payload.
type RegisterRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// LoginRequest describes phone/password payload.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}
