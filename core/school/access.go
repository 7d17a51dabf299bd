package school

// Entity names the record collections access rules apply to.
type Entity string

const (
	EntityStaff      Entity = "staff"
	EntityTeacher    Entity = "teacher"
	EntityGuardian   Entity = "guardian"
	EntityStudent    Entity = "student"
	EntitySubject    Entity = "subject"
	EntityClassGroup Entity = "class_group"
	EntityAssessment Entity = "assessment"
	EntityGrade      Entity = "grade"
)

// Tier is the permission level a request needs on an entity.
type Tier int

const (
	TierRead  Tier = iota // list/retrieve
	TierWrite             // create/update/delete
)

// writeRules lists the roles allowed to mutate each entity. The read tier is
// open to every known role; Unknown is denied at both tiers.
var writeRules = map[Entity][]Kind{
	EntityStaff:      {KindAdmin},
	EntityTeacher:    {KindAdmin},
	EntityGuardian:   {KindAdmin},
	EntityStudent:    {KindAdmin},
	EntitySubject:    {KindAdmin},
	EntityClassGroup: {KindAdmin},
	EntityAssessment: {KindAdmin, KindTeacher},
	EntityGrade:      {KindAdmin, KindTeacher},
}

// Allowed reports whether a role passes the given tier on an entity.
func Allowed(entity Entity, tier Tier, role Role) bool {
	if !role.Known() {
		return false
	}
	if tier == TierRead {
		return true
	}
	for _, kind := range writeRules[entity] {
		if kind == role.Kind {
			return true
		}
	}
	return false
}
