package parsers

// Role strings shared across parsers. These mirror the small, flattened
// role vocabulary every platform accessibility binding normalizes down to
// (AXWebArea/AXGroup/... on macOS, their Windows/UIA equivalents, or
// goquery tags in tests) before a parser ever sees them.
const (
	RoleWebArea    = "web-area"
	RoleGroup      = "group"
	RoleButton     = "button"
	RoleLink       = "link"
	RoleStaticText = "statictext"
	RoleList       = "list"
	RoleTable      = "table"
	RoleTextArea   = "textarea"
	RoleWindow     = "window"
)
