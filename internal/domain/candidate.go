package domain

import "time"

// Candidate is the identity record for one applicant. It is created on the
// first resume upload and only ever enriched afterwards: parsed fields fill
// empty columns and never overwrite existing values.
type Candidate struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	Email       string    `gorm:"type:text;uniqueIndex:idx_candidates_email" json:"email"`
	Name        string    `gorm:"type:text" json:"name"`
	Phone       string    `gorm:"type:text" json:"phone,omitempty"`
	LinkedInURL string    `gorm:"type:text" json:"linkedin_url,omitempty"`
	GithubURL   string    `gorm:"type:text" json:"github_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string {
	return "candidates"
}

// PersonalInfo is the contact block extracted from a parsed resume.
type PersonalInfo struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	BirthDate       string `json:"birth_date"`
	Gender          string `json:"gender"`
	MilitaryService string `json:"military_service"`
	LinkedInURL     string `json:"linkedin_url"`
	GithubURL       string `json:"github_url"`
}

// MergeIfEmpty fills empty candidate fields from parsed personal info and
// reports whether anything changed. Existing values always win; a second
// resume for the same candidate never overwrites the first one's contact
// details.
func MergeIfEmpty(c Candidate, info PersonalInfo) (Candidate, bool) {
	changed := false
	if c.Name == "" && info.Name != "" {
		c.Name = info.Name
		changed = true
	}
	if c.Email == "" && info.Email != "" {
		c.Email = info.Email
		changed = true
	}
	if c.Phone == "" && info.Phone != "" {
		c.Phone = info.Phone
		changed = true
	}
	if c.LinkedInURL == "" && info.LinkedInURL != "" {
		c.LinkedInURL = info.LinkedInURL
		changed = true
	}
	if c.GithubURL == "" && info.GithubURL != "" {
		c.GithubURL = info.GithubURL
		changed = true
	}
	return c, changed
}
