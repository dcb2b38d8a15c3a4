package domain

// ToptierAgency is a department-level agency.
type ToptierAgency struct {
	ToptierAgencyID int64  `gorm:"column:toptier_agency_id;primaryKey" json:"toptier_agency_id"`
	ToptierCode     string `gorm:"column:toptier_code;type:varchar(4);not null;uniqueIndex" json:"toptier_code"`
	Name            string `gorm:"column:name;not null" json:"name"`
	Abbreviation    string `gorm:"column:abbreviation" json:"abbreviation"`
}

func (ToptierAgency) TableName() string {
	return "toptier_agency"
}

// SubtierAgency is a sub-organization of a toptier agency.
type SubtierAgency struct {
	SubtierAgencyID int64  `gorm:"column:subtier_agency_id;primaryKey" json:"subtier_agency_id"`
	SubtierCode     string `gorm:"column:subtier_code;type:varchar(4);not null" json:"subtier_code"`
	Name            string `gorm:"column:name;not null" json:"name"`
	Abbreviation    string `gorm:"column:abbreviation" json:"abbreviation"`
}

func (SubtierAgency) TableName() string {
	return "subtier_agency"
}

// Agency pairs a toptier with one of its subtiers. ToptierFlag marks the row
// that stands for the toptier agency itself.
type Agency struct {
	ID              int64 `gorm:"column:id;primaryKey" json:"id"`
	ToptierAgencyID int64 `gorm:"column:toptier_agency_id;not null;index" json:"toptier_agency_id"`
	SubtierAgencyID int64 `gorm:"column:subtier_agency_id" json:"subtier_agency_id"`
	ToptierFlag     bool  `gorm:"column:toptier_flag;not null;default:false" json:"toptier_flag"`
}

func (Agency) TableName() string {
	return "agency"
}
