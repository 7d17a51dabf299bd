package school

import "gorm.io/gorm"

// The visibility filter: one query scope per (entity, role), mirroring the
// rules table in one place instead of scattering conditionals per endpoint.
// Every rule selects rows of a single table by id or column conditions, so
// unions de-duplicate by construction.

const (
	// classes a teacher teaches
	teacherClassesQ = "SELECT ct.class_group_id FROM class_group_teachers ct WHERE ct.teacher_id = ?"
	// classes a student is enrolled in
	studentClassesQ = "SELECT cs.class_group_id FROM class_group_students cs WHERE cs.student_id = ?"
	// students linked to a guardian
	guardianStudentsQ = "SELECT sg.student_id FROM student_guardians sg WHERE sg.guardian_id = ?"
	// classes containing any of a guardian's students
	guardianClassesQ = "SELECT cs.class_group_id FROM class_group_students cs WHERE cs.student_id IN (" + guardianStudentsQ + ")"
)

func allRows(db *gorm.DB) *gorm.DB { return db }
func noRows(db *gorm.DB) *gorm.DB  { return db.Where("1 = 0") }

// staffScope: Admin sees all; nobody else sees staff records.
func staffScope(r Role) func(*gorm.DB) *gorm.DB {
	if r.Kind == KindAdmin {
		return allRows
	}
	return noRows
}

// teacherScope: Admin all; a teacher sees only their own record.
func teacherScope(r Role) func(*gorm.DB) *gorm.DB {
	switch r.Kind {
	case KindAdmin:
		return allRows
	case KindTeacher:
		return func(db *gorm.DB) *gorm.DB { return db.Where("teachers.id = ?", r.ProfileID) }
	}
	return noRows
}

// guardianScope: Admin all; a guardian sees only their own record.
func guardianScope(r Role) func(*gorm.DB) *gorm.DB {
	switch r.Kind {
	case KindAdmin:
		return allRows
	case KindGuardian:
		return func(db *gorm.DB) *gorm.DB { return db.Where("guardians.id = ?", r.ProfileID) }
	}
	return noRows
}

// studentScope: Admin all; a teacher sees students enrolled in their classes;
// a student sees themselves; a guardian sees their linked students.
func studentScope(r Role) func(*gorm.DB) *gorm.DB {
	switch r.Kind {
	case KindAdmin:
		return allRows
	case KindTeacher:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("students.id IN (SELECT cs.student_id FROM class_group_students cs WHERE cs.class_group_id IN ("+teacherClassesQ+"))", r.ProfileID)
		}
	case KindStudent:
		return func(db *gorm.DB) *gorm.DB { return db.Where("students.id = ?", r.ProfileID) }
	case KindGuardian:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("students.id IN ("+guardianStudentsQ+")", r.ProfileID)
		}
	}
	return noRows
}

// subjectScope: Admin and teachers see all; a student sees the subjects of
// their classes; a guardian sees the subjects of their students' classes.
func subjectScope(r Role) func(*gorm.DB) *gorm.DB {
	switch r.Kind {
	case KindAdmin, KindTeacher:
		return allRows
	case KindStudent:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("subjects.id IN (SELECT cg.subject_id FROM class_group_subjects cg WHERE cg.class_group_id IN ("+studentClassesQ+"))", r.ProfileID)
		}
	case KindGuardian:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("subjects.id IN (SELECT cg.subject_id FROM class_group_subjects cg WHERE cg.class_group_id IN ("+guardianClassesQ+"))", r.ProfileID)
		}
	}
	return noRows
}

// classGroupScope: Admin and teachers see all; a student sees their own
// classes; a guardian sees the classes containing their students.
func classGroupScope(r Role) func(*gorm.DB) *gorm.DB {
	switch r.Kind {
	case KindAdmin, KindTeacher:
		return allRows
	case KindStudent:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("class_groups.id IN ("+studentClassesQ+")", r.ProfileID)
		}
	case KindGuardian:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("class_groups.id IN ("+guardianClassesQ+")", r.ProfileID)
		}
	}
	return noRows
}

// assessmentScope: Admin and teachers see all; a student sees assessments
// owned by a teacher of their classes or attached to one of their subjects;
// a guardian gets the same rule through their students' classes.
func assessmentScope(r Role) func(*gorm.DB) *gorm.DB {
	byClasses := func(classesQ string) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(
				"assessments.teacher_id IN (SELECT ct.teacher_id FROM class_group_teachers ct WHERE ct.class_group_id IN ("+classesQ+"))"+
					" OR assessments.subject_id IN (SELECT cg.subject_id FROM class_group_subjects cg WHERE cg.class_group_id IN ("+classesQ+"))",
				r.ProfileID, r.ProfileID,
			)
		}
	}

	switch r.Kind {
	case KindAdmin, KindTeacher:
		return allRows
	case KindStudent:
		return byClasses(studentClassesQ)
	case KindGuardian:
		return byClasses(guardianClassesQ)
	}
	return noRows
}

// gradeScope: Admin all; a teacher sees grades they assigned plus grades of
// students in their classes; a student sees their own grades; a guardian sees
// their students' grades.
func gradeScope(r Role) func(*gorm.DB) *gorm.DB {
	switch r.Kind {
	case KindAdmin:
		return allRows
	case KindTeacher:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(
				"grades.teacher_id = ? OR grades.student_id IN (SELECT cs.student_id FROM class_group_students cs WHERE cs.class_group_id IN ("+teacherClassesQ+"))",
				r.ProfileID, r.ProfileID,
			)
		}
	case KindStudent:
		return func(db *gorm.DB) *gorm.DB { return db.Where("grades.student_id = ?", r.ProfileID) }
	case KindGuardian:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("grades.student_id IN ("+guardianStudentsQ+")", r.ProfileID)
		}
	}
	return noRows
}
