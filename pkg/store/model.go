package store

// Activity is one row of the append-only event log. Rows are never
// updated; corrections arrive as new events.
type Activity struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID int64   `gorm:"column:employee_id;index:idx_activity_employee_time,priority:1" json:"employee_id"`
	EventType  string  `gorm:"column:event_type" json:"event_type"`
	EventTime  string  `gorm:"column:event_time;index:idx_activity_employee_time,priority:2" json:"event_time"`
	Duration   float64 `gorm:"column:duration" json:"duration"`
	Details    string  `gorm:"column:details" json:"details"`
}

func (*Activity) TableName() string {
	return "activity"
}

// Employee is display-only subject metadata. The engine never reads
// this table.
type Employee struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"column:name" json:"name"`
	Department string `gorm:"column:department" json:"department"`
	Position   string `gorm:"column:position" json:"position"`
}

func (*Employee) TableName() string {
	return "employees"
}
