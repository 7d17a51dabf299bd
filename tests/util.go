package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/storage/database"
)

// OpenDB opens a fresh in-memory database with the full schema applied.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("OpenDB() migrate failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, uname, email, pwd string, isStaff, isActive bool, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		IsStaff:   isStaff,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStaff(t *testing.T, db *gorm.DB, name string, accountID *uint) school.StaffMember {
	t.Helper()
	row := school.StaffMember{Name: name, TaxID: taxID(name), Email: name + "@staff.test", Phone: "0100", AccountID: accountID}
	mustCreate(t, db, &row)
	return row
}

func CreateTeacher(t *testing.T, db *gorm.DB, name string, accountID *uint) school.Teacher {
	t.Helper()
	row := school.Teacher{Name: name, TaxID: taxID(name), Email: name + "@teacher.test", Phone: "0200", AccountID: accountID}
	mustCreate(t, db, &row)
	return row
}

func CreateGuardian(t *testing.T, db *gorm.DB, name string, accountID *uint) school.Guardian {
	t.Helper()
	row := school.Guardian{Name: name, TaxID: taxID(name), Email: name + "@guardian.test", Phone: "0300", AccountID: accountID}
	mustCreate(t, db, &row)
	return row
}

func CreateStudent(t *testing.T, db *gorm.DB, name string, accountID *uint, guardians ...school.Guardian) school.Student {
	t.Helper()
	row := school.Student{
		Name:       name,
		NationalID: "NID-" + name,
		BirthDate:  time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC),
		Phone:      "0400",
		RegNumber:  "REG-" + name,
		AccountID:  accountID,
		Guardians:  guardians,
	}
	mustCreate(t, db, &row)
	return row
}

func CreateSubject(t *testing.T, db *gorm.DB, name string) school.Subject {
	t.Helper()
	row := school.Subject{Name: name}
	mustCreate(t, db, &row)
	return row
}

func CreateClassGroup(t *testing.T, db *gorm.DB, name string, year int, students []school.Student, teachers []school.Teacher, subjects []school.Subject) school.ClassGroup {
	t.Helper()
	row := school.ClassGroup{
		Name:         name,
		AcademicYear: year,
		Students:     students,
		Teachers:     teachers,
		Subjects:     subjects,
	}
	mustCreate(t, db, &row)
	return row
}

func CreateAssessment(t *testing.T, db *gorm.DB, name string, teacherID, subjectID *uint) school.Assessment {
	t.Helper()
	row := school.Assessment{Name: name, TeacherID: teacherID, SubjectID: subjectID}
	mustCreate(t, db, &row)
	return row
}

func CreateGrade(t *testing.T, db *gorm.DB, score float64, studentID, assessmentID uint, teacherID *uint) school.Grade {
	t.Helper()
	row := school.Grade{Score: score, StudentID: studentID, AssessmentID: assessmentID, TeacherID: teacherID}
	mustCreate(t, db, &row)
	return row
}

func mustCreate(t *testing.T, db *gorm.DB, row interface{}) {
	t.Helper()
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("mustCreate(%T) failed: %v", row, err)
	}
}

// taxID derives a unique, column-size-safe tax ID from a fixture name.
func taxID(name string) string {
	id := "TX" + name
	if len(id) > 14 {
		id = id[:14]
	}
	return id
}
