package teams

// Team represents the normalized team shape for use inside fixtures.
// Kept in its own package so providers and the local fixture set share one shape.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}
