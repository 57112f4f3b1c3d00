package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries both identity and the per-type leave balances. Balances live
// on the user row so the ledger can debit them with a single conditional
// UPDATE.
type User struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeNumber string         `gorm:"column:employee_number;type:varchar(20);uniqueIndex;not null"`
	Name           string         `gorm:"column:name;type:varchar(255);not null"`
	Email          string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	Password       string         `gorm:"column:password;type:text;not null"`
	Role           string         `gorm:"column:role;type:varchar(20);not null;default:EMPLOYEE"`
	ManagerID      *uuid.UUID     `gorm:"column:manager_id;type:uuid;index"`
	BalanceCasual  float64        `gorm:"column:balance_casual;type:numeric(5,1);not null;default:12"`
	BalanceSick    float64        `gorm:"column:balance_sick;type:numeric(5,1);not null;default:10"`
	BalanceEarned  float64        `gorm:"column:balance_earned;type:numeric(5,1);not null;default:15"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}
