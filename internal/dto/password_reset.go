package dto

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

type ValidateOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ValidateOTPResponse struct {
	Valid bool `json:"valid"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ResetPasswordResponse struct {
	Success bool `json:"success"`
}
