package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile" binding:"required,min=10,max=15"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RequestOTPRequest struct {
	Mobile string `json:"mobile" binding:"required,min=10,max=15"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required,min=10,max=15"`
	OTP    string `json:"otp" binding:"required,len=6"`
}
