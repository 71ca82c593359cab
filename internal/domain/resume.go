package domain

import "time"

// Resume is one uploaded file bound to exactly one candidate. The stored
// object is immutable; only its derived ParsedResume changes on re-parse.
type Resume struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	CandidateID string    `gorm:"type:text;not null;index:idx_resumes_candidate" json:"candidate_id"`
	StorageKey  string    `gorm:"type:text;not null" json:"storage_key"`
	Filename    string    `gorm:"type:text" json:"filename"`
	FileSize    int64     `json:"file_size"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// TableName returns the database table name for Resume.
func (Resume) TableName() string {
	return "resumes"
}

// ParsedResume is the structured extraction result for one resume,
// one-to-one and overwritten (not versioned) on re-parse. Payload keeps the
// full structured response as a backup; the sub-collection tables hold the
// denormalized rows.
type ParsedResume struct {
	ID       string  `gorm:"type:text;primaryKey" json:"id"`
	ResumeID string  `gorm:"type:text;not null;uniqueIndex:idx_parsed_resumes_resume" json:"resume_id"`
	RawText  string  `gorm:"type:text" json:"raw_text"`
	Payload  JSONMap `gorm:"type:text" json:"payload"`

	FullName        string `gorm:"type:text" json:"full_name,omitempty"`
	Email           string `gorm:"type:text" json:"email,omitempty"`
	Phone           string `gorm:"type:text" json:"phone,omitempty"`
	Address         string `gorm:"type:text" json:"address,omitempty"`
	BirthDate       string `gorm:"type:text" json:"birth_date,omitempty"`
	Gender          string `gorm:"type:text" json:"gender,omitempty"`
	MilitaryService string `gorm:"type:text" json:"military_service,omitempty"`
	Summary         string `gorm:"type:text" json:"summary,omitempty"`

	ParsedAt  time.Time `gorm:"autoCreateTime" json:"parsed_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for ParsedResume.
func (ParsedResume) TableName() string {
	return "parsed_resumes"
}

// Experience is one work-history entry under a parsed resume. Dates are kept
// as strings exactly as the model returned them ("2021-06", "2021", empty).
type Experience struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ParsedResumeID string `gorm:"type:text;not null;index:idx_experiences_parsed" json:"parsed_resume_id"`
	JobTitle       string `gorm:"type:text" json:"job_title"`
	Company        string `gorm:"type:text" json:"company"`
	Location       string `gorm:"type:text" json:"location,omitempty"`
	StartDate      string `gorm:"type:text" json:"start_date,omitempty"`
	EndDate        string `gorm:"type:text" json:"end_date,omitempty"`
	IsCurrent      bool   `json:"is_current"`
	Description    string `gorm:"type:text" json:"description,omitempty"`
	Order          int    `gorm:"column:sort_order" json:"order"`
}

// TableName returns the database table name for Experience.
func (Experience) TableName() string {
	return "experiences"
}

// Education is one education entry under a parsed resume.
type Education struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ParsedResumeID string `gorm:"type:text;not null;index:idx_educations_parsed" json:"parsed_resume_id"`
	Degree         string `gorm:"type:text" json:"degree"`
	Field          string `gorm:"type:text" json:"field"`
	Institution    string `gorm:"type:text" json:"institution"`
	StartDate      string `gorm:"type:text" json:"start_date,omitempty"`
	EndDate        string `gorm:"type:text" json:"end_date,omitempty"`
	GPA            string `gorm:"type:text" json:"gpa,omitempty"`
	Order          int    `gorm:"column:sort_order" json:"order"`
}

// TableName returns the database table name for Education.
func (Education) TableName() string {
	return "educations"
}

// Skill is one skill entry under a parsed resume.
type Skill struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ParsedResumeID string `gorm:"type:text;not null;index:idx_skills_parsed" json:"parsed_resume_id"`
	Name           string `gorm:"type:text;not null" json:"name"`
	Category       string `gorm:"type:text" json:"category,omitempty"`
	Level          string `gorm:"type:text" json:"level,omitempty"`
	Order          int    `gorm:"column:sort_order" json:"order"`
}

// TableName returns the database table name for Skill.
func (Skill) TableName() string {
	return "skills"
}

// Certification is one certification entry under a parsed resume.
type Certification struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ParsedResumeID string `gorm:"type:text;not null;index:idx_certifications_parsed" json:"parsed_resume_id"`
	Name           string `gorm:"type:text;not null" json:"name"`
	Issuer         string `gorm:"type:text" json:"issuer,omitempty"`
	Date           string `gorm:"type:text" json:"date,omitempty"`
	Order          int    `gorm:"column:sort_order" json:"order"`
}

// TableName returns the database table name for Certification.
func (Certification) TableName() string {
	return "certifications"
}

// Language is one language entry under a parsed resume.
type Language struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ParsedResumeID string `gorm:"type:text;not null;index:idx_languages_parsed" json:"parsed_resume_id"`
	Name           string `gorm:"type:text;not null" json:"name"`
	Proficiency    string `gorm:"type:text" json:"proficiency,omitempty"`
	Order          int    `gorm:"column:sort_order" json:"order"`
}

// TableName returns the database table name for Language.
func (Language) TableName() string {
	return "languages"
}

// CandidateProfile is the in-memory view of one candidate's parsed data,
// assembled from the ParsedResume and its sub-collections. The rule engine
// and the scoring engine operate on this value only, never on the store.
type CandidateProfile struct {
	CandidateID    string
	Personal       PersonalInfo
	Summary        string
	Experiences    []Experience
	Educations     []Education
	Skills         []Skill
	Certifications []Certification
	Languages      []Language
}
