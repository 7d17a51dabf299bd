package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// Staff

func (svc *Service) ListStaff(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]StaffMember, error) {
	if !Allowed(EntityStaff, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []StaffMember
	if err := svc.query(ctx, staffScope(p.Role), ordering).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	return rows, nil
}

func (svc *Service) GetStaff(ctx context.Context, p Principal, id uint) (StaffMember, error) {
	if !Allowed(EntityStaff, TierRead, p.Role) {
		return StaffMember{}, ErrPermissionDenied
	}
	var row StaffMember
	if err := svc.query(ctx, staffScope(p.Role), nil).First(&row, id).Error; err != nil {
		return StaffMember{}, trapNotFound(err, "finding staff member")
	}
	return row, nil
}

func (svc *Service) CreateStaff(ctx context.Context, p Principal, in ProfileInput) (StaffMember, error) {
	if !Allowed(EntityStaff, TierWrite, p.Role) {
		return StaffMember{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &StaffMember{}, "tax_id", in.TaxID, 0); err != nil {
		return StaffMember{}, err
	}
	if err := svc.checkUnique(ctx, &StaffMember{}, "email", in.Email, 0); err != nil {
		return StaffMember{}, err
	}

	row := StaffMember{Name: in.Name, TaxID: in.TaxID, Email: in.Email, Phone: in.Phone}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return StaffMember{}, trapDuplicate(err, "creating staff member")
	}
	return row, nil
}

func (svc *Service) UpdateStaff(ctx context.Context, p Principal, id uint, in ProfileInput) (StaffMember, error) {
	if !Allowed(EntityStaff, TierWrite, p.Role) {
		return StaffMember{}, ErrPermissionDenied
	}
	var row StaffMember
	if err := svc.query(ctx, staffScope(p.Role), nil).First(&row, id).Error; err != nil {
		return StaffMember{}, trapNotFound(err, "finding staff member")
	}
	if err := svc.checkUnique(ctx, &StaffMember{}, "tax_id", in.TaxID, id); err != nil {
		return StaffMember{}, err
	}
	if err := svc.checkUnique(ctx, &StaffMember{}, "email", in.Email, id); err != nil {
		return StaffMember{}, err
	}

	row.Name, row.TaxID, row.Email, row.Phone = in.Name, in.TaxID, in.Email, in.Phone
	if err := svc.db.WithContext(ctx).Save(&row).Error; err != nil {
		return StaffMember{}, trapDuplicate(err, "updating staff member")
	}
	return row, nil
}

func (svc *Service) DeleteStaff(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityStaff, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, staffScope(p.Role), nil).Delete(&StaffMember{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting staff member")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Teachers

func (svc *Service) ListTeachers(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]Teacher, error) {
	if !Allowed(EntityTeacher, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []Teacher
	if err := svc.query(ctx, teacherScope(p.Role), ordering).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return rows, nil
}

func (svc *Service) GetTeacher(ctx context.Context, p Principal, id uint) (Teacher, error) {
	if !Allowed(EntityTeacher, TierRead, p.Role) {
		return Teacher{}, ErrPermissionDenied
	}
	var row Teacher
	if err := svc.query(ctx, teacherScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Teacher{}, trapNotFound(err, "finding teacher")
	}
	return row, nil
}

func (svc *Service) CreateTeacher(ctx context.Context, p Principal, in ProfileInput) (Teacher, error) {
	if !Allowed(EntityTeacher, TierWrite, p.Role) {
		return Teacher{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &Teacher{}, "tax_id", in.TaxID, 0); err != nil {
		return Teacher{}, err
	}
	if err := svc.checkUnique(ctx, &Teacher{}, "email", in.Email, 0); err != nil {
		return Teacher{}, err
	}

	row := Teacher{Name: in.Name, TaxID: in.TaxID, Email: in.Email, Phone: in.Phone}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Teacher{}, trapDuplicate(err, "creating teacher")
	}
	return row, nil
}

func (svc *Service) UpdateTeacher(ctx context.Context, p Principal, id uint, in ProfileInput) (Teacher, error) {
	if !Allowed(EntityTeacher, TierWrite, p.Role) {
		return Teacher{}, ErrPermissionDenied
	}
	var row Teacher
	if err := svc.query(ctx, teacherScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Teacher{}, trapNotFound(err, "finding teacher")
	}
	if err := svc.checkUnique(ctx, &Teacher{}, "tax_id", in.TaxID, id); err != nil {
		return Teacher{}, err
	}
	if err := svc.checkUnique(ctx, &Teacher{}, "email", in.Email, id); err != nil {
		return Teacher{}, err
	}

	row.Name, row.TaxID, row.Email, row.Phone = in.Name, in.TaxID, in.Email, in.Phone
	if err := svc.db.WithContext(ctx).Save(&row).Error; err != nil {
		return Teacher{}, trapDuplicate(err, "updating teacher")
	}
	return row, nil
}

func (svc *Service) DeleteTeacher(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityTeacher, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, teacherScope(p.Role), nil).Delete(&Teacher{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting teacher")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Guardians

func (svc *Service) ListGuardians(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]Guardian, error) {
	if !Allowed(EntityGuardian, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []Guardian
	if err := svc.query(ctx, guardianScope(p.Role), ordering).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying guardians")
	}
	return rows, nil
}

func (svc *Service) GetGuardian(ctx context.Context, p Principal, id uint) (Guardian, error) {
	if !Allowed(EntityGuardian, TierRead, p.Role) {
		return Guardian{}, ErrPermissionDenied
	}
	var row Guardian
	if err := svc.query(ctx, guardianScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Guardian{}, trapNotFound(err, "finding guardian")
	}
	return row, nil
}

func (svc *Service) CreateGuardian(ctx context.Context, p Principal, in ProfileInput) (Guardian, error) {
	if !Allowed(EntityGuardian, TierWrite, p.Role) {
		return Guardian{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &Guardian{}, "tax_id", in.TaxID, 0); err != nil {
		return Guardian{}, err
	}
	if err := svc.checkUnique(ctx, &Guardian{}, "email", in.Email, 0); err != nil {
		return Guardian{}, err
	}

	row := Guardian{Name: in.Name, TaxID: in.TaxID, Email: in.Email, Phone: in.Phone}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Guardian{}, trapDuplicate(err, "creating guardian")
	}
	return row, nil
}

func (svc *Service) UpdateGuardian(ctx context.Context, p Principal, id uint, in ProfileInput) (Guardian, error) {
	if !Allowed(EntityGuardian, TierWrite, p.Role) {
		return Guardian{}, ErrPermissionDenied
	}
	var row Guardian
	if err := svc.query(ctx, guardianScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Guardian{}, trapNotFound(err, "finding guardian")
	}
	if err := svc.checkUnique(ctx, &Guardian{}, "tax_id", in.TaxID, id); err != nil {
		return Guardian{}, err
	}
	if err := svc.checkUnique(ctx, &Guardian{}, "email", in.Email, id); err != nil {
		return Guardian{}, err
	}

	row.Name, row.TaxID, row.Email, row.Phone = in.Name, in.TaxID, in.Email, in.Phone
	if err := svc.db.WithContext(ctx).Save(&row).Error; err != nil {
		return Guardian{}, trapDuplicate(err, "updating guardian")
	}
	return row, nil
}

func (svc *Service) DeleteGuardian(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityGuardian, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, guardianScope(p.Role), nil).Delete(&Guardian{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting guardian")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Students

func (svc *Service) ListStudents(ctx context.Context, p Principal, ordering []core.DBOrdering) ([]Student, error) {
	if !Allowed(EntityStudent, TierRead, p.Role) {
		return nil, ErrPermissionDenied
	}
	var rows []Student
	if err := svc.query(ctx, studentScope(p.Role), ordering).Preload("Guardians").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	for i := range rows {
		rows[i].GuardianIDs = guardianIDs(rows[i].Guardians)
	}
	return rows, nil
}

func (svc *Service) GetStudent(ctx context.Context, p Principal, id uint) (Student, error) {
	if !Allowed(EntityStudent, TierRead, p.Role) {
		return Student{}, ErrPermissionDenied
	}
	var row Student
	if err := svc.query(ctx, studentScope(p.Role), nil).Preload("Guardians").First(&row, id).Error; err != nil {
		return Student{}, trapNotFound(err, "finding student")
	}
	row.GuardianIDs = guardianIDs(row.Guardians)
	return row, nil
}

func (svc *Service) CreateStudent(ctx context.Context, p Principal, in StudentInput) (Student, error) {
	if !Allowed(EntityStudent, TierWrite, p.Role) {
		return Student{}, ErrPermissionDenied
	}
	if err := svc.checkUnique(ctx, &Student{}, "national_id", in.NationalID, 0); err != nil {
		return Student{}, err
	}
	if err := svc.checkUnique(ctx, &Student{}, "email", in.Email, 0); err != nil {
		return Student{}, err
	}
	if err := svc.checkUnique(ctx, &Student{}, "reg_number", in.RegNumber, 0); err != nil {
		return Student{}, err
	}

	var guardians []Guardian
	if err := svc.collect(ctx, in.GuardianIDs, &guardians, "guardians"); err != nil {
		return Student{}, err
	}

	row := Student{
		Name:       in.Name,
		NationalID: in.NationalID,
		BirthDate:  in.birthDate(),
		Phone:      in.Phone,
		RegNumber:  in.RegNumber,
		Guardians:  guardians,
	}
	if in.Email != "" {
		row.Email = &in.Email
	}
	if err := svc.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Student{}, trapDuplicate(err, "creating student")
	}
	row.GuardianIDs = guardianIDs(row.Guardians)
	return row, nil
}

func (svc *Service) UpdateStudent(ctx context.Context, p Principal, id uint, in StudentInput) (Student, error) {
	if !Allowed(EntityStudent, TierWrite, p.Role) {
		return Student{}, ErrPermissionDenied
	}
	var row Student
	if err := svc.query(ctx, studentScope(p.Role), nil).First(&row, id).Error; err != nil {
		return Student{}, trapNotFound(err, "finding student")
	}
	if err := svc.checkUnique(ctx, &Student{}, "national_id", in.NationalID, id); err != nil {
		return Student{}, err
	}
	if err := svc.checkUnique(ctx, &Student{}, "email", in.Email, id); err != nil {
		return Student{}, err
	}
	if err := svc.checkUnique(ctx, &Student{}, "reg_number", in.RegNumber, id); err != nil {
		return Student{}, err
	}

	var guardians []Guardian
	if err := svc.collect(ctx, in.GuardianIDs, &guardians, "guardians"); err != nil {
		return Student{}, err
	}

	row.Name = in.Name
	row.NationalID = in.NationalID
	row.BirthDate = in.birthDate()
	row.Phone = in.Phone
	row.RegNumber = in.RegNumber
	row.Email = nil
	if in.Email != "" {
		row.Email = &in.Email
	}
	if err := svc.db.WithContext(ctx).Save(&row).Error; err != nil {
		return Student{}, trapDuplicate(err, "updating student")
	}
	if err := svc.db.WithContext(ctx).Model(&row).Association("Guardians").Replace(&guardians); err != nil {
		return Student{}, errors.Wrap(err, "setting student guardians")
	}
	row.Guardians = guardians
	row.GuardianIDs = guardianIDs(guardians)
	return row, nil
}

func (svc *Service) DeleteStudent(ctx context.Context, p Principal, id uint) error {
	if !Allowed(EntityStudent, TierWrite, p.Role) {
		return ErrPermissionDenied
	}
	res := svc.query(ctx, studentScope(p.Role), nil).Select("Guardians").Delete(&Student{ID: id})
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting student")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func guardianIDs(gs []Guardian) []uint {
	ids := make([]uint, 0, len(gs))
	for _, g := range gs {
		ids = append(ids, g.ID)
	}
	return ids
}
