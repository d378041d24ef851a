package model

// EmailContext holds everything derivable from a bare email address without
// any network call. It is computed once per enrichment request and never
// mutated afterwards.
type EmailContext struct {
	Email            string `json:"email"`
	Domain           string `json:"domain"`
	CompanyDomain    string `json:"company_domain,omitempty"`
	PersonalName     string `json:"personal_name,omitempty"`
	CompanyNameGuess string `json:"company_name_guess,omitempty"`
	IsPersonalEmail  bool   `json:"is_personal_email"`
}
