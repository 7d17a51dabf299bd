package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Subjects

func (svc *Service) ListSubjects(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]Subject, error) {
	if !Allowed(EntitySubject, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []Subject
	if err := svc.query(ctx, subjectScope(p.Role), ordering).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return rows, nil
}

func (svc *Service) GetSubject(ctx context.Context, p Principal, id uint) (Subject, error) {
	if !Allowed(EntitySubject, TierRead, p.Role) {
		return Subject{}, ErrPermissionDenied
	}
	var row Subject
	if err := svc.query(ctx, subjectScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Subject{}, trapNotFound(err, "finding subject")
	}
	return row, nil
}

func (svc *Service) CreateSubject(ctx context.Context, p Principal, in SubjectInput) (Subject, error) {
	if !Allowed(EntitySubject, TierWrite, p.Role) {
		return Subject{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &Subject{}, "name", in.Name, 0); err != nil {
		return Subject{}, err
	}

	row := Subject{Name: in.Name, Description: in.Description}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Subject{}, trapDuplicate(err, "creating subject")
	}
	return row, nil
}

func (svc *Service) UpdateSubject(ctx context.Context, p Principal, id uint, in SubjectInput) (Subject, error) {
	if !Allowed(EntitySubject, TierWrite, p.Role) {
		return Subject{}, ErrPermissionDenied
	}
	var row Subject
	if err := svc.query(ctx, subjectScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Subject{}, trapNotFound(err, "finding subject")
	}
	if err := svc.checkUnique(ctx, &Subject{}, "name", in.Name, id); err != nil {
		return Subject{}, err
	}

	row.Name, row.Description = in.Name, in.Description
	if err := svc.db.WithContext(ctx).Save(&row).Error; err != nil {
		return Subject{}, trapDuplicate(err, "updating subject")
	}
	return row, nil
}

func (svc *Service) DeleteSubject(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntitySubject, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, subjectScope(p.Role), nil).Delete(&Subject{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting subject")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Class groups

func (svc *Service) ListClassGroups(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]ClassGroup, error) {
	if !Allowed(EntityClassGroup, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []ClassGroup
	err := svc.query(ctx, classGroupScope(p.Role), ordering).
		Preload("Students").Preload("Teachers").Preload("Subjects").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying class groups")
	}
	for i := range rows {
		rows[i].fillIDs()
	}
	return rows, nil
}

func (svc *Service) GetClassGroup(ctx context.Context, p Principal, id uint) (ClassGroup, error) {
	if !Allowed(EntityClassGroup, TierRead, p.Role) {
		return ClassGroup{}, ErrPermissionDenied
	}
	var row ClassGroup
	err := svc.query(ctx, classGroupScope(p.Role), nil).
		Preload("Students").Preload("Teachers").Preload("Subjects").
		First(&row, id).Error
	if err != nil {
		return ClassGroup{}, trapNotFound(err, "finding class group")
	}
	row.fillIDs()
	return row, nil
}

func (svc *Service) CreateClassGroup(ctx context.Context, p Principal, in ClassGroupInput) (ClassGroup, error) {
	if !Allowed(EntityClassGroup, TierWrite, p.Role) {
		return ClassGroup{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &ClassGroup{}, "name", in.Name, 0); err != nil {
		return ClassGroup{}, err
	}

	row := ClassGroup{Name: in.Name, AcademicYear: in.AcademicYear}
	if err := svc.collectMembers(ctx, in, &row); err != nil {
		return ClassGroup{}, err
	}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return ClassGroup{}, trapDuplicate(err, "creating class group")
	}
	row.fillIDs()
	return row, nil
}

func (svc *Service) UpdateClassGroup(ctx context.Context, p Principal, id uint, in ClassGroupInput) (ClassGroup, error) {
	if !Allowed(EntityClassGroup, TierWrite, p.Role) {
		return ClassGroup{}, ErrPermissionDenied
	}
	var row ClassGroup
	if err := svc.query(ctx, classGroupScope(p.Role), nil).First(&row, id).Error; err != nil {
		return ClassGroup{}, trapNotFound(err, "finding class group")
	}
	if err := svc.checkUnique(ctx, &ClassGroup{}, "name", in.Name, id); err != nil {
		return ClassGroup{}, err
	}

	var members ClassGroup
	if err := svc.collectMembers(ctx, in, &members); err != nil {
		return ClassGroup{}, err
	}

	row.Name, row.AcademicYear = in.Name, in.AcademicYear
	if err := svc.db.WithContext(ctx).Save(&row).Error; err != nil {
		return ClassGroup{}, trapDuplicate(err, "updating class group")
	}
	db := svc.db.WithContext(ctx).Model(&row)
	if err := db.Association("Students").Replace(&members.Students); err != nil {
		return ClassGroup{}, errors.Wrap(err, "setting class students")
	}
	if err := db.Association("Teachers").Replace(&members.Teachers); err != nil {
		return ClassGroup{}, errors.Wrap(err, "setting class teachers")
	}
	if err := db.Association("Subjects").Replace(&members.Subjects); err != nil {
		return ClassGroup{}, errors.Wrap(err, "setting class subjects")
	}
	row.Students, row.Teachers, row.Subjects = members.Students, members.Teachers, members.Subjects
	row.fillIDs()
	return row, nil
}

func (svc *Service) DeleteClassGroup(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityClassGroup, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, classGroupScope(p.Role), nil).
		Select("Students", "Teachers", "Subjects").
		Delete(&ClassGroup{ID: id})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting class group")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) collectMembers(ctx context.Context, in ClassGroupInput, cg *ClassGroup) error {
	if err := svc.collect(ctx, in.StudentIDs, &cg.Students, "students"); err != nil {
		return err
	}
	if err := svc.collect(ctx, in.TeacherIDs, &cg.Teachers, "teachers"); err != nil {
		return err
	}
	return svc.collect(ctx, in.SubjectIDs, &cg.Subjects, "subjects")
}

// Assessments

func (svc *Service) ListAssessments(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]Assessment, error) {
	if !Allowed(EntityAssessment, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []Assessment
	if err := svc.query(ctx, assessmentScope(p.Role), ordering).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}
	return rows, nil
}

func (svc *Service) GetAssessment(ctx context.Context, p Principal, id uint) (Assessment, error) {
	if !Allowed(EntityAssessment, TierRead, p.Role) {
		return Assessment{}, ErrPermissionDenied
	}
	var row Assessment
	if err := svc.query(ctx, assessmentScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Assessment{}, trapNotFound(err, "finding assessment")
	}
	return row, nil
}

func (svc *Service) CreateAssessment(ctx context.Context, p Principal, in AssessmentInput) (Assessment, error) {
	if !Allowed(EntityAssessment, TierWrite, p.Role) {
		return Assessment{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &Assessment{}, "name", in.Name, 0); err != nil {
		return Assessment{}, err
	}
	if err := svc.checkAssessmentRefs(ctx, in); err != nil {
		return Assessment{}, err
	}

	row := Assessment{Name: in.Name, Description: in.Description, TeacherID: in.TeacherID, SubjectID: in.SubjectID}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Assessment{}, trapDuplicate(err, "creating assessment")
	}
	return row, nil
}

func (svc *Service) UpdateAssessment(ctx context.Context, p Principal, id uint, in AssessmentInput) (Assessment, error) {
	if !Allowed(EntityAssessment, TierWrite, p.Role) {
		return Assessment{}, ErrPermissionDenied
	}
	var row Assessment
	if err := svc.query(ctx, assessmentScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Assessment{}, trapNotFound(err, "finding assessment")
	}
	if err := svc.checkUnique(ctx, &Assessment{}, "name", in.Name, id); err != nil {
		return Assessment{}, err
	}
	if err := svc.checkAssessmentRefs(ctx, in); err != nil {
		return Assessment{}, err
	}

	row.Name, row.Description = in.Name, in.Description
	row.TeacherID, row.SubjectID = in.TeacherID, in.SubjectID
	err := svc.db.WithContext(ctx).Model(&row).
		Select("Name", "Description", "TeacherID", "SubjectID").
		Updates(&row).Error
	if err != nil {
		return Assessment{}, trapDuplicate(err, "updating assessment")
	}
	return row, nil
}

func (svc *Service) DeleteAssessment(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityAssessment, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, assessmentScope(p.Role), nil).Delete(&Assessment{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting assessment")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (svc *Service) checkAssessmentRefs(ctx context.Context, in AssessmentInput) error {
	if in.TeacherID != nil {
		if err := svc.checkExists(ctx, &Teacher{}, *in.TeacherID, "teacher_id"); err != nil {
			return err
		}
	}
	if in.SubjectID != nil {
		if err := svc.checkExists(ctx, &Subject{}, *in.SubjectID, "subject_id"); err != nil {
			return err
		}
	}
	return nil
}
