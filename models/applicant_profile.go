package models

// ApplicantProfile holds everything the engine may need to answer a form.
// It is immutable for the duration of one attempt; the profile store owns it.
type ApplicantProfile struct {
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`

	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Twitter   string `json:"twitter"`
	Portfolio string `json:"portfolio"`

	CurrentCompany string `json:"current_company"`
	CurrentTitle   string `json:"current_title"`
	RecentSchool   string `json:"recent_school"`
	RecentDegree   string `json:"recent_degree"`

	// Questionnaire answers common across ATS vendors
	WorkAuthorization   string `json:"work_authorization"`   // "yes" / "no"
	RequiresSponsorship bool   `json:"requires_sponsorship"`
	YearsOfExperience   string `json:"years_of_experience"` // bucket, e.g. "3-5"
	Gender              string `json:"gender"`
	Ethnicity           string `json:"ethnicity"`
	VeteranStatus       string `json:"veteran_status"`
	DisabilityStatus    string `json:"disability_status"`
	CoverLetter         string `json:"cover_letter"` // free-text rationale

	// Stored resume artifact
	ResumeURL         string `json:"resume_url"`
	ResumeContentType string `json:"resume_content_type"`
}

// ApplicationTarget identifies the destination of one apply request.
type ApplicationTarget struct {
	URL   string `json:"url"`
	JobID string `json:"job_id"`
}
