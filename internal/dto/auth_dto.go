package dto

type AgentLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AgentLoginResponse struct {
	Token string `json:"token"`
}

type AgentRegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Team     string `json:"team,omitempty"`
}
