package gorm

// Index names on the locations table. The importer drops and rebuilds
// these around a bulk load, so they must stay in sync with the struct tags.
const (
	LocationZipCodeIndex = "idx_locations_zip_code"
	LocationCityIndex    = "idx_locations_city_id"
)

// Location is a postal code entry. StateID and CountryID are denormalized
// copies of the owning city's state and that state's country.
type Location struct {
	ID        uint     `gorm:"column:id;primaryKey" json:"id"`
	CityID    uint     `gorm:"column:city_id;not null;index:idx_locations_city_id" json:"city"`
	StateID   uint     `gorm:"column:state_id;not null;index" json:"state"`
	CountryID uint     `gorm:"column:country_id;not null;index" json:"country"`
	ZipCode   string   `gorm:"column:zip_code;type:varchar(10);not null;default:'';index:idx_locations_zip_code" json:"zip_code"`
	Latitude  *float64 `gorm:"column:latitude;type:double precision" json:"latitude"`
	Longitude *float64 `gorm:"column:longitude;type:double precision" json:"longitude"`

	// Relationships
	City    City    `gorm:"foreignKey:CityID;constraint:OnDelete:CASCADE" json:"-"`
	State   State   `gorm:"foreignKey:StateID;constraint:OnDelete:CASCADE" json:"-"`
	Country Country `gorm:"foreignKey:CountryID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Location) TableName() string {
	return "locations"
}
