package gorm

// Country is the root of the geographic hierarchy.
type Country struct {
	ID     uint   `gorm:"column:id;primaryKey" json:"id"`
	Name   string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Alpha2 string `gorm:"column:alpha2;type:varchar(2);not null;default:''" json:"alpha2"`
	Alpha3 string `gorm:"column:alpha3;type:varchar(3);not null;default:''" json:"alpha3"`
}

// TableName specifies the table name for GORM
func (Country) TableName() string {
	return "countries"
}
