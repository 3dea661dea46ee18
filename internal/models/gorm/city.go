package gorm

// City is unique per (name, state) within one import run.
type City struct {
	ID      uint   `gorm:"column:id;primaryKey" json:"id"`
	Name    string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	StateID uint   `gorm:"column:state_id;not null;index" json:"state"`

	// Relationships
	State State `gorm:"foreignKey:StateID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (City) TableName() string {
	return "cities"
}
