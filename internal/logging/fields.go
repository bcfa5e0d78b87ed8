package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldUser is the standardized structured logging key for usernames.
	FieldUser = "user"
	// FieldChatID is the standardized structured logging key for chat addresses.
	FieldChatID = "chat_id"
	// FieldDocumentID is the standardized structured logging key for document identifiers.
	FieldDocumentID = "document_id"
	// FieldClass is the standardized structured logging key for document classifications.
	FieldClass = "class"
	// FieldState is the standardized structured logging key for flow states.
	FieldState = "state"
	// FieldLane is the standardized structured logging key for dispatcher lane indexes.
	FieldLane = "lane"
	// FieldHandler is the standardized structured logging key for update handler names.
	FieldHandler = "handler"
	// FieldEventType is the standardized structured logging key for event classification.
	FieldEventType = "event_type"
	// FieldToken is the standardized structured logging key for callback token identifiers.
	FieldToken = "token"
)
