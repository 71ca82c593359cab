// Package prompts holds the instruction templates sent to the model.
// Templates carry named placeholders ({resume_text}, {job_description},
// {candidates_data}) substituted by the inference client.
package prompts

// Placeholder names recognized by the inference client.
const (
	PlaceholderResumeText    = "{resume_text}"
	PlaceholderJobDesc       = "{job_description}"
	PlaceholderCandidateData = "{candidates_data}"
)

// ParseResumeSystemPrompt pins the model into structured-extraction mode.
const ParseResumeSystemPrompt = `You are an expert at parsing resumes and extracting structured information. Always return valid JSON.`

// ParseResumeUserPrompt asks for the full structured payload of one resume.
// The schema below mirrors the ParsedResume sub-collections one to one.
const ParseResumeUserPrompt = `Extract structured information from the resume below and return it as a single JSON object with exactly this schema:

{
  "name": "full name or empty string",
  "email": "email address or empty string",
  "phone": "phone number or empty string",
  "address": "postal address or empty string",
  "birth_date": "date of birth as written, or empty string",
  "gender": "male, female, or empty string",
  "military_service": "military service status as written, or empty string",
  "linkedin_url": "LinkedIn profile URL or empty string",
  "github_url": "GitHub profile URL or empty string",
  "summary": "2-3 sentence professional summary",
  "experiences": [
    {
      "job_title": "...",
      "company": "...",
      "location": "...",
      "start_date": "YYYY-MM if known, else YYYY, else empty",
      "end_date": "YYYY-MM if known, else YYYY; empty if current",
      "is_current": true,
      "description": "..."
    }
  ],
  "education": [
    {
      "degree": "diploma|bachelor|master|doctorate|postdoctoral",
      "field": "field of study",
      "institution": "...",
      "start_date": "...",
      "end_date": "...",
      "gpa": "..."
    }
  ],
  "skills": [
    {"name": "...", "category": "...", "level": "..."}
  ],
  "certifications": [
    {"name": "...", "issuer": "...", "date": "..."}
  ],
  "languages": [
    {"name": "...", "proficiency": "..."}
  ]
}

Rules:
- Keep list entries in the order they appear in the resume.
- Use empty strings for unknown fields, never null.
- Dates stay as written when they cannot be normalized.
- Return the JSON object only, no commentary.

Resume text:
{resume_text}`

// RankCandidatesSystemPrompt pins the model into comparative-ranking mode.
const RankCandidatesSystemPrompt = `You are an expert at ranking candidates for job positions. Always return valid JSON with a ranked list.`

// RankCandidatesUserPrompt asks for a relative ranking of the candidate pool
// against one job description.
const RankCandidatesUserPrompt = `Rank the candidates below for the following position. Consider skill fit, depth and relevance of experience, and overall trajectory. Rank 1 is the strongest candidate.

Return a single JSON object with exactly this schema:

{
  "ranked_candidates": [
    {"candidate_id": "id from the input", "rank": 1, "score": 87.5}
  ]
}

Rules:
- Include every candidate from the input exactly once.
- Scores are 0-100 and consistent with the ranking order.
- Never invent candidate_id values that are not in the input.
- Return the JSON object only, no commentary.

Job description:
{job_description}

Candidates:
{candidates_data}`
