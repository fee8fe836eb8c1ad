package types

// InterfaceSchema is one message, service or action definition as read
// from disk. Name excludes the kind extension.
type InterfaceSchema struct {
	Name string
	Kind InterfaceKind
	Body string
}

// DerivedMessage is a message schema synthesized from an action.
type DerivedMessage struct {
	Name string
	Body string
}

// FileName returns the on-disk name of the derived message.
func (m DerivedMessage) FileName() string {
	return m.Name + InterfaceKindMessage.Extension()
}

// MessageRef is a fully qualified reference to a message type, as used
// in field declarations (pkg/Type).
type MessageRef struct {
	Package string
	Name    string
}

func (r MessageRef) String() string {
	return r.Package + "/" + r.Name
}
