package gorm

// State is a state or province owned by one Country.
type State struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	Name         string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Abbreviation string `gorm:"column:abbreviation;type:varchar(2);not null;default:''" json:"abbreviation"`
	CountryID    uint   `gorm:"column:country_id;not null;index" json:"country"`

	// Relationships
	Country Country `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (State) TableName() string {
	return "states"
}
