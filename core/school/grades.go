package school

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/shule/core"
)

func (svc *Service) ListGrades(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]Grade, error) {
	if !Allowed(EntityGrade, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []Grade
	if err := svc.query(ctx, gradeScope(p.Role), ordering).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return rows, nil
}

func (svc *Service) GetGrade(ctx context.Context, p Principal, id uint) (Grade, error) {
	if !Allowed(EntityGrade, TierRead, p.Role) {
		return Grade{}, ErrPermissionDenied
	}
	var row Grade
	if err := svc.query(ctx, gradeScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Grade{}, trapNotFound(err, "finding grade")
	}
	return row, nil
}

func (svc *Service) CreateGrade(ctx context.Context, p Principal, in GradeInput) (Grade, error) {
	if !Allowed(EntityGrade, TierWrite, p.Role) {
		return Grade{}, ErrPermissionDenied
	}
	if err := svc.checkGradeRefs(ctx, in); err != nil {
		return Grade{}, err
	}
	if err := svc.checkGradePair(ctx, in.StudentID, in.AssessmentID, 0); err != nil {
		return Grade{}, err
	}

	row := Grade{
		Score:        *in.Score,
		StudentID:    in.StudentID,
		AssessmentID: in.AssessmentID,
		TeacherID:    gradeAssigner(in, p),
	}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Grade{}, ErrGradeExists
		}
		return Grade{}, errors.Wrap(err, "creating grade")
	}
	return row, nil
}

func (svc *Service) UpdateGrade(ctx context.Context, p Principal, id uint, in GradeInput) (Grade, error) {
	if !Allowed(EntityGrade, TierWrite, p.Role) {
		return Grade{}, ErrPermissionDenied
	}
	var row Grade
	if err := svc.query(ctx, gradeScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Grade{}, trapNotFound(err, "finding grade")
	}
	if err := svc.checkGradeRefs(ctx, in); err != nil {
		return Grade{}, err
	}
	if err := svc.checkGradePair(ctx, in.StudentID, in.AssessmentID, id); err != nil {
		return Grade{}, err
	}

	row.Score = *in.Score
	row.StudentID = in.StudentID
	row.AssessmentID = in.AssessmentID
	row.TeacherID = gradeAssigner(in, p)
	err := svc.db.WithContext(ctx).Model(&row).
		Select("Score", "StudentID", "AssessmentID", "TeacherID").
		Updates(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Grade{}, ErrGradeExists
		}
		return Grade{}, errors.Wrap(err, "updating grade")
	}
	return row, nil
}

func (svc *Service) DeleteGrade(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityGrade, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, gradeScope(p.Role), nil).Delete(&Grade{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting grade")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) checkGradeRefs(ctx context.Context, in GradeInput) error {
	if err := svc.checkExists(ctx, &Student{}, in.StudentID, "student_id"); err != nil {
		return err
	}
	if err := svc.checkExists(ctx, &Assessment{}, in.AssessmentID, "assessment_id"); err != nil {
		return err
	}
	if in.TeacherID != nil {
		if err := svc.checkExists(ctx, &Teacher{}, *in.TeacherID, "teacher_id"); err != nil {
			return err
		}
	}
	return nil
}

// checkGradePair enforces one grade per (student, assessment); the first
// recorded grade stays untouched when a duplicate write comes in.
func (svc *Service) checkGradePair(ctx context.Context, studentID, assessmentID, excludeID uint) error {
	q := svc.db.WithContext(ctx).Model(&Grade{}).
		Where("student_id = ? AND assessment_id = ?", studentID, assessmentID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "checking grade uniqueness")
	}
	if count > 0 {
		return ErrGradeExists
	}
	return nil
}

// gradeAssigner defaults the assigning teacher to the caller when a teacher
// records a grade without naming one.
func gradeAssigner(in GradeInput, p Principal) *uint {
	if in.TeacherID == nil && p.Role.Kind == KindTeacher {
		id := p.Role.ProfileID
		return &id
	}
	return in.TeacherID
}
