package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/school"
	testutil "github.com/trezcool/shule/tests"
)

// schoolFixture wires accounts to a two-class school through the HTTP layer.
type schoolFixture struct {
	*testApp

	adminToken, teacherToken, studentToken, guardianToken, unknownToken string

	teacher1, teacher2 school.Teacher
	student1, student2 school.Student
	guardian1          school.Guardian
	math               school.Subject
	class1, class2     school.ClassGroup
	assessment1        school.Assessment
	grade1, grade2     school.Grade
}

func setupSchool(t *testing.T) *schoolFixture {
	t.Helper()
	app := setup(t)
	f := &schoolFixture{testApp: app}

	adminAcct := testutil.CreateUser(t, app.usrRepo, "root", "root@test.cd", "", true, true)
	teacherAcct := testutil.CreateUser(t, app.usrRepo, "teach", "teach@test.cd", "", false, true)
	studentAcct := testutil.CreateUser(t, app.usrRepo, "pupil", "pupil@test.cd", "", false, true)
	guardianAcct := testutil.CreateUser(t, app.usrRepo, "parent", "parent@test.cd", "", false, true)
	unknownAcct := testutil.CreateUser(t, app.usrRepo, "shadow", "shadow@test.cd", "", false, true)

	f.teacher1 = testutil.CreateTeacher(t, app.db, "Tch One", &teacherAcct.ID)
	f.teacher2 = testutil.CreateTeacher(t, app.db, "Tch Two", nil)
	f.guardian1 = testutil.CreateGuardian(t, app.db, "Grd One", &guardianAcct.ID)
	f.student1 = testutil.CreateStudent(t, app.db, "Std One", &studentAcct.ID, f.guardian1)
	f.student2 = testutil.CreateStudent(t, app.db, "Std Two", nil)
	f.math = testutil.CreateSubject(t, app.db, "Mathematics")
	f.class1 = testutil.CreateClassGroup(t, app.db, "1A", 2026,
		[]school.Student{f.student1}, []school.Teacher{f.teacher1}, []school.Subject{f.math})
	f.class2 = testutil.CreateClassGroup(t, app.db, "2B", 2026,
		[]school.Student{f.student2}, []school.Teacher{f.teacher2}, nil)
	f.assessment1 = testutil.CreateAssessment(t, app.db, "Mid-term", &f.teacher1.ID, nil)
	assessment2 := testutil.CreateAssessment(t, app.db, "Sketching", &f.teacher2.ID, nil)
	f.grade1 = testutil.CreateGrade(t, app.db, 14.5, f.student1.ID, f.assessment1.ID, &f.teacher1.ID)
	f.grade2 = testutil.CreateGrade(t, app.db, 11, f.student2.ID, assessment2.ID, &f.teacher2.ID)

	f.adminToken = app.getToken(t, adminAcct)
	f.teacherToken = app.getToken(t, teacherAcct)
	f.studentToken = app.getToken(t, studentAcct)
	f.guardianToken = app.getToken(t, guardianAcct)
	f.unknownToken = app.getToken(t, unknownAcct)
	return f
}

func (f *schoolFixture) listIDs(t *testing.T, path, token string) []uint {
	t.Helper()
	req, rec := newAuthRequest(http.MethodGet, path, token)
	f.server.ServeHTTP(rec, req)
	require.Equalf(t, http.StatusOK, rec.Code, "GET %s body: %s", path, rec.Body.String())

	var rows []struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestCollectionsRequireAuth(t *testing.T) {
	f := setupSchool(t)

	paths := []string{
		"/v1/staff", "/v1/teachers", "/v1/guardians", "/v1/students",
		"/v1/subjects", "/v1/classes", "/v1/assessments", "/v1/grades",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, path)
			f.server.ServeHTTP(rec, req)
			tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestScopedListings(t *testing.T) {
	f := setupSchool(t)

	tests := []struct {
		name  string
		path  string
		token string
		want  []uint
	}{
		{name: "admin lists all students", path: "/v1/students", token: f.adminToken, want: []uint{f.student1.ID, f.student2.ID}},
		{name: "teacher lists own class students", path: "/v1/students", token: f.teacherToken, want: []uint{f.student1.ID}},
		{name: "student lists self", path: "/v1/students", token: f.studentToken, want: []uint{f.student1.ID}},
		{name: "guardian lists own students", path: "/v1/students", token: f.guardianToken, want: []uint{f.student1.ID}},
		{name: "student lists own classes", path: "/v1/classes", token: f.studentToken, want: []uint{f.class1.ID}},
		{name: "guardian grades", path: "/v1/grades", token: f.guardianToken, want: []uint{f.grade1.ID}},
		{name: "student grades", path: "/v1/grades", token: f.studentToken, want: []uint{f.grade1.ID}},
		{name: "teacher lists all teachers is self only", path: "/v1/teachers", token: f.teacherToken, want: []uint{f.teacher1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, f.listIDs(t, tt.path, tt.token))
		})
	}

	t.Run("unlinked account is denied", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/students", f.unknownToken)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestWriteAccessOverHTTP(t *testing.T) {
	f := setupSchool(t)

	t.Run("student cannot create a subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", f.studentToken, []byte(`{"name":"Chemistry"}`))
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher cannot create a subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", f.teacherToken, []byte(`{"name":"Chemistry"}`))
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin creates a subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", f.adminToken, []byte(`{"name":"Chemistry"}`))
		f.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var row school.Subject
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
		assert.Equal(t, "Chemistry", row.Name)
		assert.NotZero(t, row.ID)
	})

	t.Run("duplicate subject name is a field error", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", f.adminToken, []byte(`{"name":"Mathematics"}`))
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name")
	})

	t.Run("teacher creates an assessment", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/assessments", f.teacherToken, []byte(`{"name":"Final exam"}`))
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("invalid payload is a 400", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes", f.adminToken, []byte(`{"name":"","academic_year":1}`))
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGradeEndpoints(t *testing.T) {
	f := setupSchool(t)

	t.Run("student fetching another students grade gets 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/grades/%d", f.grade2.ID), f.studentToken)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("teacher records a grade without naming an assigner", func(t *testing.T) {
		// (student1, assessment1) is already graded; use a fresh assessment
		fresh := testutil.CreateAssessment(t, f.db, "Homework", &f.teacher1.ID, nil)
		body := marchallObj(t, map[string]interface{}{
			"score": 17.25, "student_id": f.student1.ID, "assessment_id": fresh.ID,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", f.teacherToken, body)
		f.server.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

		var row school.Grade
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
		require.NotNil(t, row.TeacherID)
		assert.Equal(t, f.teacher1.ID, *row.TeacherID)
	})

	t.Run("second grade for the same pair conflicts", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"score": 3, "student_id": f.student1.ID, "assessment_id": f.assessment1.ID,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", f.adminToken, body)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)

		// original grade is untouched
		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/grades/%d", f.grade1.ID), f.adminToken)
		f.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var kept school.Grade
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kept))
		assert.Equal(t, f.grade1.Score, kept.Score)
	})

	t.Run("grade out of range is a 400", func(t *testing.T) {
		body := []byte(fmt.Sprintf(`{"score":1234.5,"student_id":%d,"assessment_id":%d}`, f.student2.ID, f.grade2.AssessmentID))
		req, rec := newAuthRequest(http.MethodPost, "/v1/grades", f.adminToken, body)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin updates a grade", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"score": 18.0, "student_id": f.grade1.StudentID, "assessment_id": f.grade1.AssessmentID,
		})
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/v1/grades/%d", f.grade1.ID), f.adminToken, body)
		f.server.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

		var row school.Grade
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
		assert.Equal(t, 18.0, row.Score)
	})

	t.Run("teacher deletes an out-of-scope grade gets 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/v1/grades/%d", f.grade2.ID), f.teacherToken)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStudentEndpoints(t *testing.T) {
	f := setupSchool(t)

	t.Run("admin creates a student with guardians", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "New Kid", "national_id": "NID-NEW", "birth_date": "2011-02-03",
			"reg_number": "REG-NEW", "guardians": []uint{f.guardian1.ID},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", f.adminToken, body)
		f.server.ServeHTTP(rec, req)
		require.Equalf(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

		var row school.Student
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
		assert.Equal(t, []uint{f.guardian1.ID}, row.GuardianIDs)
	})

	t.Run("unknown guardian id is a field error", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "Other Kid", "national_id": "NID-OTHER", "birth_date": "2011-02-03",
			"reg_number": "REG-OTHER", "guardians": []uint{999},
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", f.adminToken, body)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad birth date is a 400", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"name": "Bad Date", "national_id": "NID-BAD", "birth_date": "03/02/2011", "reg_number": "REG-BAD",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/students", f.adminToken, body)
		f.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
