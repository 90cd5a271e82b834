package repository

import (
	"context"
	"database/sql"

	"github.com/prabhjot122/LawCourt/internal/model"
)

// ProfileRepo persists the user_profiles table.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// insertProfileTx writes a full profile row inside an existing transaction.
// Used by registration, which always supplies every field.
func insertProfileTx(ctx context.Context, tx *sql.Tx, userID uint64, p model.Profile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, full_name, phone, bio, profile_pic, law_specialization,
			education, bar_exam_status, license_number, practice_area, location,
			years_of_experience, linkedin_profile, alumni_of, professional_organizations)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		userID, p.FullName, p.Phone, p.Bio, p.ProfilePic, p.LawSpecialization,
		p.Education, nullIfEmpty(p.BarExamStatus), p.LicenseNumber, p.PracticeArea, p.Location,
		p.YearsOfExperience, p.LinkedinProfile, p.AlumniOf, p.ProfessionalOrganizations)
	return err
}

// Complete fills in the remaining profile fields after an OAuth first login
// and flips users.profile_complete, atomically.  The profile row is upserted
// so a missing row (never the case in the normal flow) does not fail the
// operation.
func (r *ProfileRepo) Complete(ctx context.Context, userID uint64, p model.Profile) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, phone, bio, law_specialization, education,
			bar_exam_status, license_number, practice_area, location, years_of_experience,
			linkedin_profile, alumni_of, professional_organizations)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			phone = VALUES(phone), bio = VALUES(bio),
			law_specialization = VALUES(law_specialization), education = VALUES(education),
			bar_exam_status = VALUES(bar_exam_status), license_number = VALUES(license_number),
			practice_area = VALUES(practice_area), location = VALUES(location),
			years_of_experience = VALUES(years_of_experience),
			linkedin_profile = VALUES(linkedin_profile), alumni_of = VALUES(alumni_of),
			professional_organizations = VALUES(professional_organizations)`,
		userID, p.Phone, p.Bio, p.LawSpecialization, p.Education,
		nullIfEmpty(p.BarExamStatus), p.LicenseNumber, p.PracticeArea, p.Location,
		p.YearsOfExperience, p.LinkedinProfile, p.AlumniOf, p.ProfessionalOrganizations); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET profile_complete = TRUE WHERE id = ?", userID); err != nil {
		return err
	}
	return tx.Commit()
}

// ProfilePatch carries optional new values for profile fields.  A nil field
// means "leave unchanged"; the patch is applied through one fixed statement
// rather than assembled SQL.
type ProfilePatch struct {
	FullName          *string
	Phone             *string
	Bio               *string
	PracticeArea      *string
	Location          *string
	YearsOfExperience *int
}

// Patch applies a ProfilePatch, creating the profile row first if the user
// never had one.
func (r *ProfileRepo) Patch(ctx context.Context, userID uint64, p ProfilePatch) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO user_profiles (user_id) VALUES (?)", userID); err != nil {
		return err
	}
	if err := applyProfilePatchTx(ctx, tx, userID, p); err != nil {
		return err
	}
	return tx.Commit()
}

// applyProfilePatchTx updates only the fields present in the patch.  NULL
// arguments fall through COALESCE and keep the stored value.
func applyProfilePatchTx(ctx context.Context, tx *sql.Tx, userID uint64, p ProfilePatch) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE user_profiles SET
			full_name = COALESCE(?, full_name),
			phone = COALESCE(?, phone),
			bio = COALESCE(?, bio),
			practice_area = COALESCE(?, practice_area),
			location = COALESCE(?, location),
			years_of_experience = COALESCE(?, years_of_experience)
		WHERE user_id = ?`,
		p.FullName, p.Phone, p.Bio, p.PracticeArea, p.Location, p.YearsOfExperience, userID)
	return err
}

// GetByUserID loads the profile for a user.  A user without a profile row
// yields sql.ErrNoRows; callers decide whether that is an error.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	var p model.Profile
	var bio, orgs, barExam sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT full_name, phone, bio, profile_pic, law_specialization, education,
		       bar_exam_status, license_number, practice_area, location,
		       years_of_experience, linkedin_profile, alumni_of, professional_organizations
		FROM user_profiles WHERE user_id = ? LIMIT 1`, userID).
		Scan(&p.FullName, &p.Phone, &bio, &p.ProfilePic, &p.LawSpecialization, &p.Education,
			&barExam, &p.LicenseNumber, &p.PracticeArea, &p.Location,
			&p.YearsOfExperience, &p.LinkedinProfile, &p.AlumniOf, &orgs)
	if err != nil {
		return p, err
	}
	p.Bio = bio.String
	p.BarExamStatus = barExam.String
	p.ProfessionalOrganizations = orgs.String
	return p, nil
}

// nullIfEmpty maps "" to NULL for enum columns that reject empty strings.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
