package dto

type LoginInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"-"`
}

type FederatedLoginInput struct {
	IdentityToken string `json:"identityToken"`
	IPAddress     string `json:"-"`
}
