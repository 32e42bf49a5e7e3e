package counter

// RoleCounter holds the last display number handed out for one role prefix.
type RoleCounter struct {
	RolePrefix string `gorm:"column:role_prefix;type:varchar(1);primaryKey"`
	LastID     int64  `gorm:"column:last_id;not null;default:0"`
}

func (RoleCounter) TableName() string {
	return "role_counters"
}
