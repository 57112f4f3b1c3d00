package auth

type RegisterRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
}
