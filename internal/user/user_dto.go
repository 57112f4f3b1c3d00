package user

import "time"

type CreateUserRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Role      string  `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER HR"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	Name      *string `json:"name" binding:"omitempty,max=255"`
	Role      *string `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER HR"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
	IsActive  *bool   `json:"is_active"`
}

type SetBalanceRequest struct {
	LeaveType string  `json:"leave_type" binding:"required,oneof=CASUAL SICK EARNED"`
	Balance   float64 `json:"balance" binding:"min=0"`
}

type ListUsersQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER HR"`
	Search   string `form:"search"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

type BalancesResponse struct {
	Casual float64 `json:"casual"`
	Sick   float64 `json:"sick"`
	Earned float64 `json:"earned"`
}

type UserResponse struct {
	ID             string           `json:"id"`
	EmployeeNumber string           `json:"employee_number"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Role           string           `json:"role"`
	ManagerID      *string          `json:"manager_id,omitempty"`
	Balances       BalancesResponse `json:"balances"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:             u.ID.String(),
		EmployeeNumber: u.EmployeeNumber,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Balances: BalancesResponse{
			Casual: u.BalanceCasual,
			Sick:   u.BalanceSick,
			Earned: u.BalanceEarned,
		},
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.ManagerID != nil {
		managerID := u.ManagerID.String()
		resp.ManagerID = &managerID
	}
	return resp
}

func mapToListResponse(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapToResponse(u))
	}
	return out
}
