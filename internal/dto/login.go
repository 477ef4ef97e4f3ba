package dto

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// BreakGlassToken is never accepted from the JSON body; the handler
	// copies it from the X-Break-Glass-Token header.
	BreakGlassToken string `json:"-"`
}

type LoginResponse struct {
	UserID         string `json:"userId"`
	Authenticated  bool   `json:"authenticated"`
	RecoveryMethod string `json:"recoveryMethod,omitempty"`
}
