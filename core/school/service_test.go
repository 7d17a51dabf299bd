package school_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/trezcool/shule/core/school"
	testutil "github.com/trezcool/shule/tests"
)

// world is a small school: two classes, each with its own teacher, student,
// subject and assessments; a third student belongs to no class.
type world struct {
	db  *gorm.DB
	svc *school.Service

	teacher1, teacher2     school.Teacher
	student1, student2     school.Student
	loneStudent            school.Student
	guardian1, guardian2   school.Guardian
	math, art              school.Subject
	class1, class2         school.ClassGroup
	byTeacher1, byTeacher2 school.Assessment
	onMath, orphan         school.Assessment
	grade1, grade2         school.Grade

	admin, asTeacher1, asTeacher2, asStudent1, asGuardian1, unknown school.Principal
}

func setupWorld(t *testing.T) *world {
	t.Helper()
	db := testutil.OpenDB(t)
	w := &world{db: db, svc: school.NewService(db)}

	w.teacher1 = testutil.CreateTeacher(t, db, "Tpr One", nil)
	w.teacher2 = testutil.CreateTeacher(t, db, "Tpr Two", nil)
	w.guardian1 = testutil.CreateGuardian(t, db, "Grd One", nil)
	w.guardian2 = testutil.CreateGuardian(t, db, "Grd Two", nil)
	w.student1 = testutil.CreateStudent(t, db, "Std One", nil, w.guardian1)
	w.student2 = testutil.CreateStudent(t, db, "Std Two", nil, w.guardian2)
	w.loneStudent = testutil.CreateStudent(t, db, "Std Lone", nil)
	w.math = testutil.CreateSubject(t, db, "Mathematics")
	w.art = testutil.CreateSubject(t, db, "Art")
	w.class1 = testutil.CreateClassGroup(t, db, "1A", 2026,
		[]school.Student{w.student1}, []school.Teacher{w.teacher1}, []school.Subject{w.math})
	w.class2 = testutil.CreateClassGroup(t, db, "2B", 2026,
		[]school.Student{w.student2}, []school.Teacher{w.teacher2}, []school.Subject{w.art})
	w.byTeacher1 = testutil.CreateAssessment(t, db, "Mid-term", &w.teacher1.ID, nil)
	w.byTeacher2 = testutil.CreateAssessment(t, db, "Sketching", &w.teacher2.ID, nil)
	w.onMath = testutil.CreateAssessment(t, db, "Algebra quiz", nil, &w.math.ID)
	w.orphan = testutil.CreateAssessment(t, db, "Unassigned", nil, nil)
	w.grade1 = testutil.CreateGrade(t, db, 14.5, w.student1.ID, w.byTeacher1.ID, &w.teacher1.ID)
	w.grade2 = testutil.CreateGrade(t, db, 11, w.student2.ID, w.byTeacher2.ID, &w.teacher2.ID)

	w.admin = school.Principal{Role: school.Role{Kind: school.KindAdmin}}
	w.asTeacher1 = school.Principal{Role: school.Role{Kind: school.KindTeacher, ProfileID: w.teacher1.ID}}
	w.asTeacher2 = school.Principal{Role: school.Role{Kind: school.KindTeacher, ProfileID: w.teacher2.ID}}
	w.asStudent1 = school.Principal{Role: school.Role{Kind: school.KindStudent, ProfileID: w.student1.ID}}
	w.asGuardian1 = school.Principal{Role: school.Role{Kind: school.KindGuardian, ProfileID: w.guardian1.ID}}
	w.unknown = school.Principal{Role: school.Role{Kind: school.KindUnknown}}
	return w
}

func studentIDs(rows []school.Student) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func assessmentIDs(rows []school.Assessment) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func gradeIDs(rows []school.Grade) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestStudentVisibility(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    school.Principal
		want []uint
	}{
		{name: "admin sees all", p: w.admin, want: []uint{w.student1.ID, w.student2.ID, w.loneStudent.ID}},
		{name: "teacher sees enrolled students only", p: w.asTeacher1, want: []uint{w.student1.ID}},
		{name: "student sees self only", p: w.asStudent1, want: []uint{w.student1.ID}},
		{name: "guardian sees linked students only", p: w.asGuardian1, want: []uint{w.student1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := w.svc.ListStudents(ctx, tt.p, nil)
			if err != nil {
				t.Fatalf("ListStudents() failed: %v", err)
			}
			assert.ElementsMatch(t, tt.want, studentIDs(rows))
		})
	}

	t.Run("unknown role denied", func(t *testing.T) {
		if _, err := w.svc.ListStudents(ctx, w.unknown, nil); err != school.ErrPermissionDenied {
			t.Errorf("ListStudents() err = %v; want ErrPermissionDenied", err)
		}
	})

	t.Run("out-of-scope student reads as not found", func(t *testing.T) {
		if _, err := w.svc.GetStudent(ctx, w.asTeacher1, w.student2.ID); err != school.ErrNotFound {
			t.Errorf("GetStudent() err = %v; want ErrNotFound", err)
		}
	})

	t.Run("scoped read is idempotent", func(t *testing.T) {
		first, err := w.svc.ListStudents(ctx, w.asGuardian1, nil)
		if err != nil {
			t.Fatalf("ListStudents() failed: %v", err)
		}
		second, err := w.svc.ListStudents(ctx, w.asGuardian1, nil)
		if err != nil {
			t.Fatalf("ListStudents() failed: %v", err)
		}
		assert.Equal(t, studentIDs(first), studentIDs(second))
	})
}

func TestSubjectAndClassVisibility(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()

	t.Run("student sees own class subjects", func(t *testing.T) {
		rows, err := w.svc.ListSubjects(ctx, w.asStudent1, nil)
		if err != nil {
			t.Fatalf("ListSubjects() failed: %v", err)
		}
		if len(rows) != 1 || rows[0].ID != w.math.ID {
			t.Errorf("ListSubjects() = %+v; want only %q", rows, w.math.Name)
		}
	})

	t.Run("guardian sees students class groups", func(t *testing.T) {
		rows, err := w.svc.ListClassGroups(ctx, w.asGuardian1, nil)
		if err != nil {
			t.Fatalf("ListClassGroups() failed: %v", err)
		}
		if len(rows) != 1 || rows[0].ID != w.class1.ID {
			t.Errorf("ListClassGroups() = %+v; want only %q", rows, w.class1.Name)
		}
	})

	t.Run("teacher sees all subjects", func(t *testing.T) {
		rows, err := w.svc.ListSubjects(ctx, w.asTeacher1, nil)
		if err != nil {
			t.Fatalf("ListSubjects() failed: %v", err)
		}
		assert.Len(t, rows, 2)
	})

	t.Run("class group serializes member ids", func(t *testing.T) {
		row, err := w.svc.GetClassGroup(ctx, w.admin, w.class1.ID)
		if err != nil {
			t.Fatalf("GetClassGroup() failed: %v", err)
		}
		assert.ElementsMatch(t, []uint{w.student1.ID}, row.StudentIDs)
		assert.ElementsMatch(t, []uint{w.teacher1.ID}, row.TeacherIDs)
		assert.ElementsMatch(t, []uint{w.math.ID}, row.SubjectIDs)
	})
}

func TestAssessmentVisibility(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()

	t.Run("student sees class teacher and class subject assessments", func(t *testing.T) {
		rows, err := w.svc.ListAssessments(ctx, w.asStudent1, nil)
		if err != nil {
			t.Fatalf("ListAssessments() failed: %v", err)
		}
		assert.ElementsMatch(t, []uint{w.byTeacher1.ID, w.onMath.ID}, assessmentIDs(rows))
	})

	t.Run("guardian mirrors student scope", func(t *testing.T) {
		rows, err := w.svc.ListAssessments(ctx, w.asGuardian1, nil)
		if err != nil {
			t.Fatalf("ListAssessments() failed: %v", err)
		}
		assert.ElementsMatch(t, []uint{w.byTeacher1.ID, w.onMath.ID}, assessmentIDs(rows))
	})

	t.Run("teacher sees all assessments", func(t *testing.T) {
		rows, err := w.svc.ListAssessments(ctx, w.asTeacher2, nil)
		if err != nil {
			t.Fatalf("ListAssessments() failed: %v", err)
		}
		assert.Len(t, rows, 4)
	})
}

func TestGradeVisibility(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()

	// a grade assigned by teacher2 to a student of teacher1's class
	crossGrade := testutil.CreateGrade(t, w.db, 9, w.student1.ID, w.byTeacher2.ID, &w.teacher2.ID)

	tests := []struct {
		name string
		p    school.Principal
		want []uint
	}{
		{name: "admin sees all", p: w.admin, want: []uint{w.grade1.ID, w.grade2.ID, crossGrade.ID}},
		{name: "teacher sees assigned plus taught students", p: w.asTeacher1, want: []uint{w.grade1.ID, crossGrade.ID}},
		{name: "other teacher sees assigned plus taught", p: w.asTeacher2, want: []uint{w.grade2.ID, crossGrade.ID}},
		{name: "student sees own grades", p: w.asStudent1, want: []uint{w.grade1.ID, crossGrade.ID}},
		{name: "guardian sees students grades", p: w.asGuardian1, want: []uint{w.grade1.ID, crossGrade.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := w.svc.ListGrades(ctx, tt.p, nil)
			if err != nil {
				t.Fatalf("ListGrades() failed: %v", err)
			}
			assert.ElementsMatch(t, tt.want, gradeIDs(rows))
		})
	}

	t.Run("student requesting another students grade gets not found", func(t *testing.T) {
		if _, err := w.svc.GetGrade(ctx, w.asStudent1, w.grade2.ID); err != school.ErrNotFound {
			t.Errorf("GetGrade() err = %v; want ErrNotFound", err)
		}
	})
}

func TestWriteRules(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()

	t.Run("teacher cannot create subjects", func(t *testing.T) {
		_, err := w.svc.CreateSubject(ctx, w.asTeacher1, school.SubjectInput{Name: "Chemistry"})
		if err != school.ErrPermissionDenied {
			t.Errorf("CreateSubject() err = %v; want ErrPermissionDenied", err)
		}
	})

	t.Run("student cannot create grades", func(t *testing.T) {
		score := 20.0
		_, err := w.svc.CreateGrade(ctx, w.asStudent1, school.GradeInput{
			Score: &score, StudentID: w.student1.ID, AssessmentID: w.orphan.ID,
		})
		if err != school.ErrPermissionDenied {
			t.Errorf("CreateGrade() err = %v; want ErrPermissionDenied", err)
		}
	})

	t.Run("teacher can create assessments", func(t *testing.T) {
		row, err := w.svc.CreateAssessment(ctx, w.asTeacher1, school.AssessmentInput{Name: "Final exam"})
		if err != nil {
			t.Fatalf("CreateAssessment() failed: %v", err)
		}
		if row.ID == 0 {
			t.Error("CreateAssessment() returned a zero ID")
		}
	})

	t.Run("guardian cannot delete students", func(t *testing.T) {
		if err := w.svc.DeleteStudent(ctx, w.asGuardian1, w.student1.ID); err != school.ErrPermissionDenied {
			t.Errorf("DeleteStudent() err = %v; want ErrPermissionDenied", err)
		}
	})
}

func TestCreateGrade(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()
	score := 16.0

	t.Run("teacher defaults as assigner", func(t *testing.T) {
		row, err := w.svc.CreateGrade(ctx, w.asTeacher1, school.GradeInput{
			Score: &score, StudentID: w.student1.ID, AssessmentID: w.orphan.ID,
		})
		if err != nil {
			t.Fatalf("CreateGrade() failed: %v", err)
		}
		if row.TeacherID == nil || *row.TeacherID != w.teacher1.ID {
			t.Errorf("CreateGrade() teacherID = %v; want %d", row.TeacherID, w.teacher1.ID)
		}
	})

	t.Run("duplicate pair conflicts and keeps original", func(t *testing.T) {
		other := 5.0
		_, err := w.svc.CreateGrade(ctx, w.admin, school.GradeInput{
			Score: &other, StudentID: w.student1.ID, AssessmentID: w.byTeacher1.ID,
		})
		if err != school.ErrGradeExists {
			t.Fatalf("CreateGrade() err = %v; want ErrGradeExists", err)
		}

		kept, err := w.svc.GetGrade(ctx, w.admin, w.grade1.ID)
		if err != nil {
			t.Fatalf("GetGrade() failed: %v", err)
		}
		if kept.Score != w.grade1.Score {
			t.Errorf("original grade score = %v; want %v", kept.Score, w.grade1.Score)
		}
	})

	t.Run("unknown student is a field error", func(t *testing.T) {
		_, err := w.svc.CreateGrade(ctx, w.admin, school.GradeInput{
			Score: &score, StudentID: 999, AssessmentID: w.orphan.ID,
		})
		assert.Error(t, err)
		assert.NotEqual(t, school.ErrGradeExists, err)
	})
}

func TestUniqueFieldErrors(t *testing.T) {
	w := setupWorld(t)
	ctx := context.Background()

	_, err := w.svc.CreateSubject(ctx, w.admin, school.SubjectInput{Name: w.math.Name})
	if err == nil {
		t.Fatal("CreateSubject() expected a duplicate name error")
	}
	if err == school.ErrPermissionDenied || err == school.ErrNotFound {
		t.Fatalf("CreateSubject() err = %v; want a validation error", err)
	}

	_, err = w.svc.CreateTeacher(ctx, w.admin, school.ProfileInput{
		Name: "Dup", TaxID: w.teacher1.TaxID, Email: "dup@teacher.test", Phone: "0999",
	})
	if err == nil {
		t.Fatal("CreateTeacher() expected a duplicate tax_id error")
	}
}
