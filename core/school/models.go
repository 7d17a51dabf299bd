package school

import (
	"time"

	"github.com/trezcool/shule/core"
)

// The school entities. Relations are kept ID-based in JSON (like the profile
// links) so that a scoped read never embeds rows the caller cannot see.

type StaffMember struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"size:255;not null"`
	TaxID     string `json:"tax_id" gorm:"size:14;uniqueIndex;not null"`
	Email     string `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Phone     string `json:"phone" gorm:"size:20;not null"`
	AccountID *uint  `json:"account_id,omitempty" gorm:"uniqueIndex"`
}

type Teacher struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"size:255;not null"`
	TaxID     string `json:"tax_id" gorm:"size:14;uniqueIndex;not null"`
	Email     string `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Phone     string `json:"phone" gorm:"size:20;not null"`
	AccountID *uint  `json:"account_id,omitempty" gorm:"uniqueIndex"`
}

type Guardian struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"size:255;not null"`
	TaxID     string `json:"tax_id" gorm:"size:14;uniqueIndex;not null"`
	Email     string `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Phone     string `json:"phone" gorm:"size:20;not null"`
	AccountID *uint  `json:"account_id,omitempty" gorm:"uniqueIndex"`
}

type Student struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	NationalID string    `json:"national_id" gorm:"size:20;uniqueIndex;not null"`
	BirthDate  time.Time `json:"birth_date" gorm:"not null"`
	Email      *string   `json:"email,omitempty" gorm:"size:254;uniqueIndex"`
	Phone      string    `json:"phone,omitempty" gorm:"size:20"`
	RegNumber  string    `json:"reg_number" gorm:"size:50;uniqueIndex;not null"`
	AccountID  *uint     `json:"account_id,omitempty" gorm:"uniqueIndex"`

	Guardians   []Guardian `json:"-" gorm:"many2many:student_guardians"`
	GuardianIDs []uint     `json:"guardians" gorm:"-"`
}

type Subject struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description,omitempty"`
}

type ClassGroup struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"size:255;uniqueIndex;not null"`
	AcademicYear int    `json:"academic_year" gorm:"not null"`

	Students   []Student `json:"-" gorm:"many2many:class_group_students"`
	Teachers   []Teacher `json:"-" gorm:"many2many:class_group_teachers"`
	Subjects   []Subject `json:"-" gorm:"many2many:class_group_subjects"`
	StudentIDs []uint    `json:"students" gorm:"-"`
	TeacherIDs []uint    `json:"teachers" gorm:"-"`
	SubjectIDs []uint    `json:"subjects" gorm:"-"`
}

// fillIDs mirrors loaded associations into the serialized ID lists.
func (cg *ClassGroup) fillIDs() {
	cg.StudentIDs = make([]uint, 0, len(cg.Students))
	for _, s := range cg.Students {
		cg.StudentIDs = append(cg.StudentIDs, s.ID)
	}
	cg.TeacherIDs = make([]uint, 0, len(cg.Teachers))
	for _, t := range cg.Teachers {
		cg.TeacherIDs = append(cg.TeacherIDs, t.ID)
	}
	cg.SubjectIDs = make([]uint, 0, len(cg.Subjects))
	for _, s := range cg.Subjects {
		cg.SubjectIDs = append(cg.SubjectIDs, s.ID)
	}
}

type Assessment struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description string   `json:"description,omitempty"`
	TeacherID   *uint    `json:"teacher_id,omitempty" gorm:"index"`
	Teacher     *Teacher `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	SubjectID   *uint    `json:"subject_id,omitempty" gorm:"index"`
	Subject     *Subject `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}

type Grade struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Score        float64    `json:"score" gorm:"type:decimal(5,2);not null"`
	StudentID    uint       `json:"student_id" gorm:"uniqueIndex:uq_grades_student_assessment;not null"`
	Student      Student    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AssessmentID uint       `json:"assessment_id" gorm:"uniqueIndex:uq_grades_student_assessment;not null"`
	Assessment   Assessment `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	TeacherID    *uint      `json:"teacher_id,omitempty" gorm:"index"`
	Teacher      *Teacher   `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// Inputs

// ProfileInput covers the three flat profile entities (staff, teachers, guardians).
type ProfileInput struct {
	Name  string `json:"name" validate:"required"`
	TaxID string `json:"tax_id" validate:"required,max=14"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,max=20"`
}

func (in *ProfileInput) Validate() error {
	in.Name = core.CleanString(in.Name)
	in.TaxID = core.CleanString(in.TaxID)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Phone = core.CleanString(in.Phone)
	return core.Validate.Struct(in)
}

type StudentInput struct {
	Name        string `json:"name" validate:"required"`
	NationalID  string `json:"national_id" validate:"required,max=20"`
	BirthDate   string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	RegNumber   string `json:"reg_number" validate:"required,max=50"`
	GuardianIDs []uint `json:"guardians"`
}

func (in *StudentInput) Validate() error {
	in.Name = core.CleanString(in.Name)
	in.NationalID = core.CleanString(in.NationalID)
	in.BirthDate = core.CleanString(in.BirthDate)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Phone = core.CleanString(in.Phone)
	in.RegNumber = core.CleanString(in.RegNumber)
	return core.Validate.Struct(in)
}

func (in *StudentInput) birthDate() time.Time {
	t, _ := time.Parse("2006-01-02", in.BirthDate) // validated
	return t
}

type SubjectInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

func (in *SubjectInput) Validate() error {
	in.Name = core.CleanString(in.Name)
	in.Description = core.CleanString(in.Description)
	return core.Validate.Struct(in)
}

type ClassGroupInput struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear int    `json:"academic_year" validate:"required,gte=1900,lte=9999"`
	StudentIDs   []uint `json:"students"`
	TeacherIDs   []uint `json:"teachers"`
	SubjectIDs   []uint `json:"subjects"`
}

func (in *ClassGroupInput) Validate() error {
	in.Name = core.CleanString(in.Name)
	return core.Validate.Struct(in)
}

type AssessmentInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	TeacherID   *uint  `json:"teacher_id"`
	SubjectID   *uint  `json:"subject_id"`
}

func (in *AssessmentInput) Validate() error {
	in.Name = core.CleanString(in.Name)
	in.Description = core.CleanString(in.Description)
	return core.Validate.Struct(in)
}

type GradeInput struct {
	Score        *float64 `json:"score" validate:"required,gte=0,lte=999.99"`
	StudentID    uint     `json:"student_id" validate:"required"`
	AssessmentID uint     `json:"assessment_id" validate:"required"`
	TeacherID    *uint    `json:"teacher_id"`
}

func (in *GradeInput) Validate() error { return core.Validate.Struct(in) }
