package domain

import "encoding/json"

// ParsedPayload is the structured JSON the model returns for one resume.
// Everything is optional; the decomposition below tolerates missing blocks.
type ParsedPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	BirthDate       string `json:"birth_date"`
	Gender          string `json:"gender"`
	MilitaryService string `json:"military_service"`
	LinkedInURL     string `json:"linkedin_url"`
	GithubURL       string `json:"github_url"`
	Summary         string `json:"summary"`

	Experiences []struct {
		JobTitle    string `json:"job_title"`
		Company     string `json:"company"`
		Location    string `json:"location"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		IsCurrent   bool   `json:"is_current"`
		Description string `json:"description"`
	} `json:"experiences"`

	Education []struct {
		Degree      string `json:"degree"`
		Field       string `json:"field"`
		Institution string `json:"institution"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
		GPA         string `json:"gpa"`
	} `json:"education"`

	Skills []struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Level    string `json:"level"`
	} `json:"skills"`

	Certifications []struct {
		Name   string `json:"name"`
		Issuer string `json:"issuer"`
		Date   string `json:"date"`
	} `json:"certifications"`

	Languages []struct {
		Name        string `json:"name"`
		Proficiency string `json:"proficiency"`
	} `json:"languages"`
}

// DecodePayload parses the model's JSON output into a ParsedPayload.
func DecodePayload(raw json.RawMessage) (*ParsedPayload, error) {
	var p ParsedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PersonalInfo returns the contact block of the payload.
func (p *ParsedPayload) PersonalInfo() PersonalInfo {
	return PersonalInfo{
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		Address:         p.Address,
		BirthDate:       p.BirthDate,
		Gender:          p.Gender,
		MilitaryService: p.MilitaryService,
		LinkedInURL:     p.LinkedInURL,
		GithubURL:       p.GithubURL,
	}
}

// SubCollections holds the denormalized rows for one parsed resume. On every
// re-parse the full set replaces whatever rows existed before; nothing is
// merged incrementally.
type SubCollections struct {
	Experiences    []Experience
	Educations     []Education
	Skills         []Skill
	Certifications []Certification
	Languages      []Language
}

// SubCollections decomposes the payload into ordered sub-collection rows for
// the given parsed resume ID. Row order follows payload order; the explicit
// Order field keeps display order stable independent of row IDs.
func (p *ParsedPayload) SubCollections(parsedResumeID string) SubCollections {
	var out SubCollections
	for i, e := range p.Experiences {
		out.Experiences = append(out.Experiences, Experience{
			ParsedResumeID: parsedResumeID,
			JobTitle:       e.JobTitle,
			Company:        e.Company,
			Location:       e.Location,
			StartDate:      e.StartDate,
			EndDate:        e.EndDate,
			IsCurrent:      e.IsCurrent,
			Description:    e.Description,
			Order:          i,
		})
	}
	for i, e := range p.Education {
		out.Educations = append(out.Educations, Education{
			ParsedResumeID: parsedResumeID,
			Degree:         e.Degree,
			Field:          e.Field,
			Institution:    e.Institution,
			StartDate:      e.StartDate,
			EndDate:        e.EndDate,
			GPA:            e.GPA,
			Order:          i,
		})
	}
	for i, s := range p.Skills {
		out.Skills = append(out.Skills, Skill{
			ParsedResumeID: parsedResumeID,
			Name:           s.Name,
			Category:       s.Category,
			Level:          s.Level,
			Order:          i,
		})
	}
	for i, c := range p.Certifications {
		out.Certifications = append(out.Certifications, Certification{
			ParsedResumeID: parsedResumeID,
			Name:           c.Name,
			Issuer:         c.Issuer,
			Date:           c.Date,
			Order:          i,
		})
	}
	for i, l := range p.Languages {
		out.Languages = append(out.Languages, Language{
			ParsedResumeID: parsedResumeID,
			Name:           l.Name,
			Proficiency:    l.Proficiency,
			Order:          i,
		})
	}
	return out
}
