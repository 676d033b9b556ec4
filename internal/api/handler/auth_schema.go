package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the plain acknowledgment envelope.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Request types ---

type registerRequest struct {
	Email          string `json:"email"           validate:"required,email"`
	Password       string `json:"password"        validate:"required,min=8"`
	PasswordRepeat string `json:"password_repeat" validate:"required,eqfield=Password"`
	FirstName      string `json:"first_name"      validate:"required"`
	LastName       string `json:"last_name"       validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type sendResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token          string `json:"token"           validate:"required"`
	Password       string `json:"password"        validate:"required,min=8"`
	PasswordRepeat string `json:"password_repeat" validate:"required,eqfield=Password"`
}
