package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is one user's career/academic record, joined to exactly one Role.
// The column names reproduce the stored schema verbatim, including the two
// truncated "specialization" columns and the inconsistent casing on a few
// others; they are distinct fields exactly as stored and must not be merged.
// Numeric fields are pointers so an absent value survives a save/fetch round
// trip instead of collapsing to zero.
type Profile struct {
	ID        string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string         `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	RoleID    string         `gorm:"type:uuid;index" json:"role_id"`
	Name      string         `gorm:"column:name" json:"name,omitempty"`
	Email     string         `gorm:"column:email" json:"email,omitempty"`
	RollNo    string         `gorm:"column:Roll_Number" json:"roll_number,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Birth data
	Gender      string `gorm:"column:gender of the student" json:"gender,omitempty"`
	CurrentAge  *int   `gorm:"column:current age of the student" json:"current_age,omitempty"`
	DateOfBirth string `gorm:"column:date of birth in mm/dd/yyyy format" json:"date_of_birth,omitempty"`

	// Class 10
	Class10School     string   `gorm:"column:name of the school attended for class 10" json:"class10_school,omitempty"`
	Class10Board      string   `gorm:"column:education board for class 10" json:"class10_board,omitempty"`
	Class10Percentage *float64 `gorm:"column:percentage marks scored in class 10" json:"class10_percentage,omitempty"`
	Class10Year       *int     `gorm:"column:year when class 10 was completed" json:"class10_year,omitempty"`

	// Class 12
	Class12School     string   `gorm:"column:name of the school attended for class 12" json:"class12_school,omitempty"`
	Class12Board      string   `gorm:"column:education board for class 12" json:"class12_board,omitempty"`
	Class12Stream     string   `gorm:"column:academic stream chosen in class 12" json:"class12_stream,omitempty"`
	Class12Percentage *float64 `gorm:"column:percentage marks scored in class 12" json:"class12_percentage,omitempty"`
	Class12Year       *int     `gorm:"column:year when class 12 was completed" json:"class12_year,omitempty"`

	// Graduation
	GraduationCollege        string   `gorm:"column:name of the college attended for graduation" json:"graduation_college,omitempty"`
	GraduationUniversity     string   `gorm:"column:name of the university attended for graduation" json:"graduation_university,omitempty"`
	GraduationDegree         string   `gorm:"column:type of degree obtained during graduation" json:"graduation_degree,omitempty"`
	GraduationSpecialization string   `gorm:"column:specialization pursued during graduation" json:"graduation_specialization,omitempty"`
	GraduationPercentage     *float64 `gorm:"column:percentage marks obtained during graduation" json:"graduation_percentage,omitempty"`
	GraduationYear           *int     `gorm:"column:year when graduation was completed" json:"graduation_year,omitempty"`

	// MBA program
	MBACGPA     *float64 `gorm:"column:cgpa during mba program" json:"mba_cgpa,omitempty"`
	MBAProjects string   `gorm:"column:projects or research work done during mba" json:"mba_projects,omitempty"`

	// Specializations. The source columns are truncated at the original
	// store's identifier limit; preserved as-is.
	FirstSpecialization  string `gorm:"column:First area of academic or professional specialization of the st" json:"first_specialization,omitempty"`
	SecondSpecialization string `gorm:"column:Second area of academic or professional specialization of the s" json:"second_specialization,omitempty"`

	// Summer internship
	InternshipOrganization string `gorm:"column:Name of the organization where the student completed their summ" json:"internship_organization,omitempty"`
	InternshipRole         string `gorm:"column:Role or profile undertaken by the student during their summer i" json:"internship_role,omitempty"`

	// Academic gaps
	HasAcademicGap   string `gorm:"column:did the student have any gaps in academic career" json:"has_academic_gap,omitempty"`
	AcademicGapMonth string `gorm:"column:duration of academic gap in months" json:"academic_gap_months,omitempty"`

	// Prior employment (up to three organizations)
	HasWorkExperience    string `gorm:"column:does the student have any prior work experience" json:"has_work_experience,omitempty"`
	TotalExperienceMonth string `gorm:"column:total work experience of the student in months" json:"total_experience_months,omitempty"`

	FirstOrgName     string `gorm:"column:name of the first organization worked at" json:"first_org_name,omitempty"`
	FirstOrgTitle    string `gorm:"column:job title or designation at first organization" json:"first_org_title,omitempty"`
	FirstOrgDomain   string `gorm:"column:domain or function at first organization" json:"first_org_domain,omitempty"`
	FirstOrgIndustry string `gorm:"column:industry of the first organization" json:"first_org_industry,omitempty"`
	FirstOrgMonths   string `gorm:"column:duration of work experience at first organization in months" json:"first_org_months,omitempty"`

	SecondOrgName     string `gorm:"column:name of the second organization worked at" json:"second_org_name,omitempty"`
	SecondOrgTitle    string `gorm:"column:job title or designation at second organization" json:"second_org_title,omitempty"`
	SecondOrgDomain   string `gorm:"column:domain or function at second organization" json:"second_org_domain,omitempty"`
	SecondOrgIndustry string `gorm:"column:industry of the second organization" json:"second_org_industry,omitempty"`
	SecondOrgMonths   string `gorm:"column:duration of work experience at second organization in months" json:"second_org_months,omitempty"`

	ThirdOrgName     string `gorm:"column:name of the third organization worked at" json:"third_org_name,omitempty"`
	ThirdOrgTitle    string `gorm:"column:job title or designation at third organization" json:"third_org_title,omitempty"`
	ThirdOrgDomain   string `gorm:"column:domain or function at third organization" json:"third_org_domain,omitempty"`
	ThirdOrgIndustry string `gorm:"column:industry of the third organization" json:"third_org_industry,omitempty"`
	ThirdOrgMonths   string `gorm:"column:duration of work experience at third organization in months" json:"third_org_months,omitempty"`

	// Skills and languages
	TechnicalSkills string `gorm:"column:technical skills of the student" json:"technical_skills,omitempty"`
	SoftSkills      string `gorm:"column:interpersonal or soft skills of the student" json:"soft_skills,omitempty"`
	Languages       string `gorm:"column:Languages the student can speak, understand, or is proficient i" json:"languages,omitempty"`

	// Career goals
	CareerGoal string `gorm:"column:Desired job role or long-term career goal of the student" json:"career_goal,omitempty"`

	// Resume
	ResumeURL        string         `gorm:"column:resume_url" json:"resume_url,omitempty"`
	ResumeParsedData datatypes.JSON `gorm:"column:resume_parsed_data;type:jsonb" json:"resume_parsed_data,omitempty"`

	// Relationships
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	User User  `gorm:"foreignKey:UserID" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}
