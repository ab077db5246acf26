package entity

// FieldType names the editor the admin surface renders for a field.
type FieldType string

const (
	FieldTypeUUID      FieldType = "uuid"
	FieldTypeEmail     FieldType = "email"
	FieldTypeText      FieldType = "text"
	FieldTypeEnum      FieldType = "enum"
	FieldTypeTimestamp FieldType = "timestamp"
)

// FieldDescriptor describes one Account field for the admin surface.
type FieldDescriptor struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Editable bool      `json:"editable"`
	Values   []string  `json:"values,omitempty"`
}

// AccountFields is the hand-maintained capability description of Account.
// The credential hash is intentionally absent.
func AccountFields() []FieldDescriptor {
	return []FieldDescriptor{
		{Name: "id", Type: FieldTypeUUID},
		{Name: "email", Type: FieldTypeEmail, Editable: true},
		{Name: "name", Type: FieldTypeText, Editable: true},
		{
			Name:     "status",
			Type:     FieldTypeEnum,
			Editable: true,
			Values:   []string{string(AccountStatusActive), string(AccountStatusDeactivated)},
		},
		{Name: "created_at", Type: FieldTypeTimestamp},
		{Name: "updated_at", Type: FieldTypeTimestamp},
	}
}
