package types

// Spy cats
type Cat struct {
	ID                uint64  `gorm:"primaryKey" json:"id"`
	Name              string  `gorm:"size:255;not null" json:"name"`
	YearsOfExperience int     `gorm:"not null" json:"years_of_experience"`
	Breed             string  `gorm:"size:128;not null" json:"breed"`
	Salary            float64 `gorm:"not null" json:"salary"`
}

func (Cat) TableName() string { return "spy_cats" }

// Missions. IsComplete is derived from the targets and never set by clients.
type Mission struct {
	ID         uint64   `gorm:"primaryKey" json:"id"`
	CatID      *uint64  `gorm:"index" json:"cat_id"`
	IsComplete bool     `gorm:"not null;default:false;index" json:"is_complete"`
	Targets    []Target `gorm:"foreignKey:MissionID;constraint:OnDelete:CASCADE" json:"targets"`

	// Declares the FK constraint only; never preloaded.
	Cat *Cat `gorm:"foreignKey:CatID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Mission) TableName() string { return "missions" }

// Mission targets
type Target struct {
	ID         uint64  `gorm:"primaryKey" json:"id"`
	MissionID  uint64  `gorm:"index;not null" json:"mission_id"`
	Name       string  `gorm:"size:255;not null" json:"name"`
	Country    string  `gorm:"size:128;not null" json:"country"`
	Notes      *string `gorm:"type:text" json:"notes"`
	IsComplete bool    `gorm:"not null;default:false" json:"is_complete"`
}

func (Target) TableName() string { return "targets" }

// AllModels lists the tables in dependency order.
func AllModels() []interface{} {
	return []interface{}{&Cat{}, &Mission{}, &Target{}}
}

// Request payloads

type CatCreate struct {
	Name              string   `json:"name" binding:"required,max=255"`
	YearsOfExperience *int     `json:"years_of_experience" binding:"required,min=0,max=100"`
	Breed             string   `json:"breed" binding:"required,max=128"`
	Salary            *float64 `json:"salary" binding:"required,min=0"`
}

type CatUpdate struct {
	Salary *float64 `json:"salary" binding:"required,min=0"`
}

type TargetCreate struct {
	Name    string  `json:"name" binding:"required,max=255"`
	Country string  `json:"country" binding:"required,max=128"`
	Notes   *string `json:"notes" binding:"omitempty,max=10000"`
}

// Target count is checked by the service so that 0 and 4+ report the same error.
type MissionCreate struct {
	CatID   *uint64        `json:"cat_id"`
	Targets []TargetCreate `json:"targets" binding:"dive"`
}

type TargetUpdate struct {
	Notes      *string `json:"notes" binding:"omitempty,max=10000"`
	IsComplete *bool   `json:"is_complete"`
}
