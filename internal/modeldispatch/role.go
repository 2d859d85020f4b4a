package modeldispatch

// Role is the agent role a chat completion is being dispatched for.
type Role string

const (
	RolePlanning          Role = "planning"
	RoleResearch          Role = "research"
	RoleWriting           Role = "writing"
	RoleSimplifiedWriting Role = "simplified_writing"
	RoleReflection        Role = "reflection"
	RoleMessenger         Role = "messenger"
	RoleNoteAssignment    Role = "note_assignment"
	RoleQueryPreparation  Role = "query_preparation"
	RoleQueryStrategy     Role = "query_strategy"
	RoleVerifier          Role = "verifier"
	RoleDefault           Role = "default"
)

// ModelClass is the tier a role maps to before resolving to a concrete
// model name and provider.
type ModelClass string

const (
	ClassFast        ModelClass = "fast"
	ClassMid         ModelClass = "mid"
	ClassIntelligent ModelClass = "intelligent"
	ClassVerifier    ModelClass = "verifier"
)

// defaultRoleClass is the role->class mapping used absent an override.
// Grounded on the original implementation's model_dispatcher role table.
var defaultRoleClass = map[Role]ModelClass{
	RolePlanning:          ClassIntelligent,
	RoleResearch:          ClassMid,
	RoleWriting:           ClassIntelligent,
	RoleSimplifiedWriting: ClassMid,
	RoleReflection:        ClassMid,
	RoleMessenger:         ClassFast,
	RoleNoteAssignment:    ClassFast,
	RoleQueryPreparation:  ClassFast,
	RoleQueryStrategy:     ClassFast,
	RoleVerifier:          ClassVerifier,
	RoleDefault:           ClassMid,
}

// ClassFor resolves a role to its model class, defaulting to ClassMid for
// an unrecognized role.
func ClassFor(role Role) ModelClass {
	if c, ok := defaultRoleClass[role]; ok {
		return c
	}
	return ClassMid
}
