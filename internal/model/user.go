package model

// Role identifiers are fixed by the seed migration; 1/2/3 are reserved and
// every user references exactly one of them.
const (
	RoleAdmin  = 1
	RoleEditor = 2
	RoleUser   = 3
)

// Account status values accepted by the admin status endpoint.
const (
	StatusActive    = "Active"
	StatusInactive  = "Inactive"
	StatusSuspended = "Suspended"
	StatusBanned    = "Banned"
)

// ValidStatus reports whether s is one of the recognised account statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusBanned:
		return true
	}
	return false
}

// ValidRoleID reports whether id names one of the reserved roles.
func ValidRoleID(id int) bool {
	return id == RoleAdmin || id == RoleEditor || id == RoleUser
}

// Auth providers recorded on the users table.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// Profile is the 1:1 extension of a user row.  It is written in full at
// registration and patched field by field afterwards.
type Profile struct {
	FullName                  string `json:"full_name"`
	Phone                     string `json:"phone"`
	Bio                       string `json:"bio"`
	ProfilePic                string `json:"profile_pic"`
	LawSpecialization         string `json:"law_specialization"`
	Education                 string `json:"education"`
	BarExamStatus             string `json:"bar_exam_status"`
	LicenseNumber             string `json:"license_number"`
	PracticeArea              string `json:"practice_area"`
	Location                  string `json:"location"`
	YearsOfExperience         int    `json:"years_of_experience"`
	LinkedinProfile           string `json:"linkedin_profile"`
	AlumniOf                  string `json:"alumni_of"`
	ProfessionalOrganizations string `json:"professional_organizations"`
}
