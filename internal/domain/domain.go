package domain

// Roles are a closed set; authorization predicates switch on these values.
const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleHR       = "HR"
)

// Leave categories. UNPAID is conventionally unlimited: balance checks always
// pass and the ledger never debits or credits it.
const (
	LeaveCasual = "CASUAL"
	LeaveSick   = "SICK"
	LeaveEarned = "EARNED"
	LeaveUnpaid = "UNPAID"
)

var leaveTypes = map[string]struct{}{
	LeaveCasual: {},
	LeaveSick:   {},
	LeaveEarned: {},
	LeaveUnpaid: {},
}

func ValidLeaveType(t string) bool {
	_, ok := leaveTypes[t]
	return ok
}

func ValidRole(r string) bool {
	return r == RoleEmployee || r == RoleManager || r == RoleHR
}
