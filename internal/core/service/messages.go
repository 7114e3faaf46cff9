package service

// Success messages returned in the response envelope.
const (
	MsgUserRegistered = "user registered successfully"
	MsgRoleAssigned   = "role assigned to user"
	MsgRoleRemoved    = "role removed from user"
	MsgProductCreated = "product created"
	MsgProductUpdated = "product updated"
)
