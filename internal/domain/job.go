package domain

import "time"

// Gender requirement values.
const (
	GenderAny    = "any"
	GenderMale   = "male"
	GenderFemale = "female"
)

// Military status requirement values.
const (
	MilitaryAny                   = "any"
	MilitaryCompletedOrFullExempt = "completed_or_full_exempt"
	MilitaryEducationalExempt     = "educational_exempt"
)

// Education level requirement values, ordered weakest to strongest.
const (
	EducationAny          = "any"
	EducationDiploma      = "diploma"
	EducationBachelor     = "bachelor"
	EducationMaster       = "master"
	EducationDoctorate    = "doctorate"
	EducationPostdoctoral = "postdoctoral"
)

// Job is the position candidates are evaluated against. It is consumed, not
// produced, by the pipeline. Every hard constraint carries its own
// *AutoReject flag; a constraint only disqualifies a candidate when its flag
// is set, regardless of whether the value itself is populated.
type Job struct {
	ID          string `gorm:"type:text;primaryKey" json:"id"`
	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"type:text" json:"location,omitempty"`

	RequiredSkills           RequiredSkillList `gorm:"type:text" json:"required_skills"`
	RequiredSkillsAutoReject bool              `gorm:"default:false" json:"required_skills_auto_reject"`

	ExperienceMinYears           int  `gorm:"default:0" json:"experience_min_years"`
	ExperienceMinYearsAutoReject bool `gorm:"default:false" json:"experience_min_years_auto_reject"`

	AgeRangeMin        int  `gorm:"default:0" json:"age_range_min"`
	AgeRangeMax        int  `gorm:"default:0" json:"age_range_max"`
	AgeRangeAutoReject bool `gorm:"default:false" json:"age_range_auto_reject"`

	Gender           string `gorm:"type:text;default:any" json:"gender"`
	GenderAutoReject bool   `gorm:"default:false" json:"gender_auto_reject"`

	MilitaryStatus     string `gorm:"type:text;default:any" json:"military_status"`
	MilitaryAutoReject bool   `gorm:"default:false" json:"military_auto_reject"`

	EducationLevel           string `gorm:"type:text;default:any" json:"education_level"`
	EducationLevelAutoReject bool   `gorm:"default:false" json:"education_level_auto_reject"`

	EducationMajors          StringArray `gorm:"type:text" json:"education_majors"`
	EducationMajorAutoReject bool        `gorm:"default:false" json:"education_major_auto_reject"`

	PreferredUniversities           StringArray `gorm:"type:text" json:"preferred_universities"`
	PreferredUniversitiesAutoReject bool        `gorm:"default:false" json:"preferred_universities_auto_reject"`

	TargetCompanies           StringArray `gorm:"type:text" json:"target_companies"`
	TargetCompaniesAutoReject bool        `gorm:"default:false" json:"target_companies_auto_reject"`

	CreatedBy string    `gorm:"type:text" json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}
