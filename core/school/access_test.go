package school_test

import (
	"testing"

	"github.com/trezcool/shule/core/school"
)

func TestAllowed(t *testing.T) {
	allEntities := []school.Entity{
		school.EntityStaff, school.EntityTeacher, school.EntityGuardian, school.EntityStudent,
		school.EntitySubject, school.EntityClassGroup, school.EntityAssessment, school.EntityGrade,
	}

	tests := []struct {
		name     string
		role     school.Role
		tier     school.Tier
		entities []school.Entity
		want     bool
	}{
		{name: "unknown denied read", role: school.Role{Kind: school.KindUnknown}, tier: school.TierRead, entities: allEntities, want: false},
		{name: "unknown denied write", role: school.Role{Kind: school.KindUnknown}, tier: school.TierWrite, entities: allEntities, want: false},
		{name: "known roles can read", role: school.Role{Kind: school.KindGuardian, ProfileID: 1}, tier: school.TierRead, entities: allEntities, want: true},
		{name: "admin can write everything", role: school.Role{Kind: school.KindAdmin}, tier: school.TierWrite, entities: allEntities, want: true},
		{
			name: "teacher can write assessments and grades",
			role: school.Role{Kind: school.KindTeacher, ProfileID: 1}, tier: school.TierWrite,
			entities: []school.Entity{school.EntityAssessment, school.EntityGrade},
			want:     true,
		},
		{
			name: "teacher cannot write the rest",
			role: school.Role{Kind: school.KindTeacher, ProfileID: 1}, tier: school.TierWrite,
			entities: []school.Entity{
				school.EntityStaff, school.EntityTeacher, school.EntityGuardian,
				school.EntityStudent, school.EntitySubject, school.EntityClassGroup,
			},
			want: false,
		},
		{name: "student cannot write", role: school.Role{Kind: school.KindStudent, ProfileID: 1}, tier: school.TierWrite, entities: allEntities, want: false},
		{name: "guardian cannot write", role: school.Role{Kind: school.KindGuardian, ProfileID: 1}, tier: school.TierWrite, entities: allEntities, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, entity := range tt.entities {
				if got := school.Allowed(entity, tt.tier, tt.role); got != tt.want {
					t.Errorf("Allowed(%s) = %v; want %v", entity, got, tt.want)
				}
			}
		})
	}
}
