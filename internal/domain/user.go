package domain

type Role string

const (
	RoleTechnician Role = "technician"
	RolePlanner    Role = "planner"
	RoleAdmin      Role = "admin"
)

// Principal 是从外部签发的令牌中解析出来的调用者信息，本服务不签发令牌
type Principal struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
}
