package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hirescan/hirescan/internal/domain"
)

// EvaluateRules decides whether a candidate is disqualified by a job's hard
// constraints. A constraint only rejects when its own AutoReject flag is set
// on the job; a violated-but-not-enforced constraint never appears in the
// reason. Constraints are checked in a fixed order: experience, required
// skills, age range, gender, military status, education level, education
// major, preferred universities, target companies.
// Parameters:
//   - profile: the candidate's parsed profile.
//   - job: the job carrying the constraints and their enforcement flags.
//
// Returns:
//   - bool: true iff at least one enforced constraint is violated.
//   - string: semicolon-joined reason fragments, empty when not rejected.
func EvaluateRules(profile *domain.CandidateProfile, job *domain.Job) (bool, string) {
	var reasons []string

	if job.ExperienceMinYearsAutoReject && job.ExperienceMinYears > 0 {
		years := TotalExperienceYears(profile.Experiences)
		if years < float64(job.ExperienceMinYears) {
			reasons = append(reasons, fmt.Sprintf(
				"Insufficient experience: %.1f years (required: %d)", years, job.ExperienceMinYears))
		}
	}

	if job.RequiredSkillsAutoReject && len(job.RequiredSkills) > 0 {
		if missing := missingSkills(job.RequiredSkills, profile.Skills); len(missing) > 0 {
			reasons = append(reasons, "Missing required skills: "+strings.Join(missing, ", "))
		}
	}

	if job.AgeRangeAutoReject && (job.AgeRangeMin > 0 || job.AgeRangeMax > 0) {
		age, known := ageFromBirthDate(profile.Personal.BirthDate, time.Now())
		switch {
		case !known:
			reasons = append(reasons, fmt.Sprintf(
				"Age unknown (required: %d-%d)", job.AgeRangeMin, job.AgeRangeMax))
		case job.AgeRangeMin > 0 && age < job.AgeRangeMin,
			job.AgeRangeMax > 0 && age > job.AgeRangeMax:
			reasons = append(reasons, fmt.Sprintf(
				"Age %d outside required range %d-%d", age, job.AgeRangeMin, job.AgeRangeMax))
		}
	}

	if job.GenderAutoReject && job.Gender != "" && job.Gender != domain.GenderAny {
		if !strings.EqualFold(profile.Personal.Gender, job.Gender) {
			reasons = append(reasons, "Gender requirement not met (required: "+job.Gender+")")
		}
	}

	if job.MilitaryAutoReject && job.MilitaryStatus != "" && job.MilitaryStatus != domain.MilitaryAny {
		if !militarySatisfies(profile.Personal.MilitaryService, job.MilitaryStatus) {
			reasons = append(reasons, "Military service requirement not met (required: "+job.MilitaryStatus+")")
		}
	}

	if job.EducationLevelAutoReject && job.EducationLevel != "" && job.EducationLevel != domain.EducationAny {
		if educationRank(highestDegree(profile.Educations)) < educationRank(job.EducationLevel) {
			reasons = append(reasons, "Education level below "+job.EducationLevel)
		}
	}

	if job.EducationMajorAutoReject && len(job.EducationMajors) > 0 {
		if !anyFieldMatches(profile.Educations, job.EducationMajors) {
			reasons = append(reasons, "No education in required majors: "+strings.Join(job.EducationMajors, ", "))
		}
	}

	if job.PreferredUniversitiesAutoReject && len(job.PreferredUniversities) > 0 {
		if !anyInstitutionMatches(profile.Educations, job.PreferredUniversities) {
			reasons = append(reasons, "No degree from a preferred university")
		}
	}

	if job.TargetCompaniesAutoReject && len(job.TargetCompanies) > 0 {
		if !anyCompanyMatches(profile.Experiences, job.TargetCompanies) {
			reasons = append(reasons, "No experience at a target company")
		}
	}

	reason := strings.Join(reasons, "; ")
	return reason != "", reason
}

// TotalExperienceYears sums month-granularity spans across experience entries
// with both start and end dates present. Entries missing either date are
// excluded from the sum; open-ended roles are not estimated as "now".
func TotalExperienceYears(experiences []domain.Experience) float64 {
	totalMonths := 0
	for _, exp := range experiences {
		startY, startM, ok := parseYearMonth(exp.StartDate)
		if !ok {
			continue
		}
		endY, endM, ok := parseYearMonth(exp.EndDate)
		if !ok {
			continue
		}
		months := (endY-startY)*12 + (endM - startM)
		if months > 0 {
			totalMonths += months
		}
	}
	return float64(totalMonths) / 12.0
}

// parseYearMonth reads a model-returned date string. Accepted shapes are
// "2021-06-15", "2021-06" and "2021"; a bare year counts as January.
func parseYearMonth(s string) (year, month int, ok bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), int(t.Month()), true
		}
	}
	return 0, 0, false
}

// missingSkills returns the required skills the candidate lacks, lowercased
// and in the job's declaration order. Matching is case-insensitive exact.
func missingSkills(required domain.RequiredSkillList, skills []domain.Skill) []string {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[strings.ToLower(strings.TrimSpace(s.Name))] = true
	}

	var missing []string
	for _, req := range required {
		name := strings.ToLower(strings.TrimSpace(req.Name))
		if name != "" && !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// ageFromBirthDate computes whole years of age at the given instant. An
// empty or unparseable birth date returns known=false.
func ageFromBirthDate(birthDate string, now time.Time) (age int, known bool) {
	y, m, ok := parseYearMonth(birthDate)
	if !ok {
		return 0, false
	}
	age = now.Year() - y
	if int(now.Month()) < m {
		age--
	}
	return age, true
}

// militarySatisfies matches the model's free-text service status against the
// job requirement. Completed service satisfies every requirement; an
// educational exemption satisfies only the educational-exempt requirement.
func militarySatisfies(status, requirement string) bool {
	s := strings.ToLower(status)

	educational := strings.Contains(s, "educational") || strings.Contains(s, "student")
	completed := !educational &&
		(strings.Contains(s, "completed") || strings.Contains(s, "exempt") || strings.Contains(s, "done"))

	switch requirement {
	case domain.MilitaryCompletedOrFullExempt:
		return completed
	case domain.MilitaryEducationalExempt:
		return completed || educational
	default:
		return true
	}
}

// educationRank orders the education level constants weakest to strongest.
func educationRank(level string) int {
	switch level {
	case domain.EducationDiploma:
		return 1
	case domain.EducationBachelor:
		return 2
	case domain.EducationMaster:
		return 3
	case domain.EducationDoctorate:
		return 4
	case domain.EducationPostdoctoral:
		return 5
	default:
		return 0
	}
}

// highestDegree maps the candidate's degree strings to the strongest
// education level constant found, by keyword.
func highestDegree(educations []domain.Education) string {
	best := ""
	bestRank := 0
	for _, edu := range educations {
		level := degreeLevel(edu.Degree)
		if r := educationRank(level); r > bestRank {
			best, bestRank = level, r
		}
	}
	return best
}

func degreeLevel(degree string) string {
	d := strings.ToLower(degree)
	switch {
	case strings.Contains(d, "postdoc"):
		return domain.EducationPostdoctoral
	case strings.Contains(d, "phd") || strings.Contains(d, "ph.d") || strings.Contains(d, "doctor"):
		return domain.EducationDoctorate
	case strings.Contains(d, "master") || strings.Contains(d, "msc") || strings.Contains(d, "m.sc") || strings.Contains(d, "mba"):
		return domain.EducationMaster
	case strings.Contains(d, "bachelor") || strings.Contains(d, "bsc") || strings.Contains(d, "b.sc") || strings.Contains(d, "license"):
		return domain.EducationBachelor
	case strings.Contains(d, "diploma") || strings.Contains(d, "associate"):
		return domain.EducationDiploma
	default:
		return ""
	}
}

func anyFieldMatches(educations []domain.Education, majors []string) bool {
	for _, edu := range educations {
		for _, major := range majors {
			if containsFold(edu.Field, major) {
				return true
			}
		}
	}
	return false
}

func anyInstitutionMatches(educations []domain.Education, universities []string) bool {
	for _, edu := range educations {
		for _, uni := range universities {
			if containsFold(edu.Institution, uni) {
				return true
			}
		}
	}
	return false
}

func anyCompanyMatches(experiences []domain.Experience, companies []string) bool {
	for _, exp := range experiences {
		for _, company := range companies {
			if containsFold(exp.Company, company) {
				return true
			}
		}
	}
	return false
}

// containsFold reports whether haystack contains needle case-insensitively.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
