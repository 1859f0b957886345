package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/vrt/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime diagnostics (R001-R099)
	// ============================================

	"R001": {
		Category: CategoryRuntime,
		Message:  "Read of undeclared instance property",
		Detail:   "The render scope has no setup binding, data field or declared prop with this name. The read returns nil.",
		DocURL:   docBase + "R001",
	},
	"R002": {
		Category: CategoryRuntime,
		Message:  "Write to undeclared instance property",
		Detail:   "The render scope has no setup binding, data field or declared prop with this name. The write was refused.",
		DocURL:   docBase + "R002",
	},
	"R003": {
		Category: CategoryRuntime,
		Message:  "Event prop is not a listener",
		Detail:   "Props whose name starts with \"on\" must hold a dom.Listener such as a *vdom.Handler. The value was ignored.",
		DocURL:   docBase + "R003",
	},
	"R004": {
		Category: CategoryRuntime,
		Message:  "Hook registered outside setup",
		Detail:   "Lifecycle hooks attach to the instance whose setup is running. No setup is running, so the hook was dropped.",
		DocURL:   docBase + "R004",
	},

	// ============================================
	// Config Errors (C100-C199)
	// ============================================

	"C100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No vrt.json, vrt.yaml, vrt.yml or vrt.toml was found in the directory.",
		DocURL:   docBase + "C100",
	},
	"C101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file could not be decoded.",
		DocURL:   docBase + "C101",
	},
	"C102": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Config files must end in .json, .yaml, .yml or .toml.",
		DocURL:   docBase + "C102",
	},
	"C103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A config field holds a value outside its allowed set.",
		DocURL:   docBase + "C103",
	},
	"C104": {
		Category: CategoryConfig,
		Message:  "Config write failed",
		Detail:   "The config file could not be written.",
		DocURL:   docBase + "C104",
	},

	// ============================================
	// Scene Errors (S200-S299)
	// ============================================

	"S200": {
		Category: CategoryScene,
		Message:  "Invalid scene document",
		Detail:   "The scene could not be decoded as YAML or JSON.",
		DocURL:   docBase + "S200",
	},
	"S201": {
		Category: CategoryScene,
		Message:  "Node has both text and children",
		Detail:   "A node's children are either a text string or a list of nodes.",
		DocURL:   docBase + "S201",
	},
	"S202": {
		Category: CategoryScene,
		Message:  "Node has no tag",
		Detail:   "Every scene node needs a tag or a component.",
		DocURL:   docBase + "S202",
	},
	"S203": {
		Category: CategoryScene,
		Message:  "Scene has no frames",
		Detail:   "A scene needs at least one frame to render.",
		DocURL:   docBase + "S203",
	},
	"S204": {
		Category: CategoryScene,
		Message:  "Frame index out of range",
		Detail:   "The requested frame does not exist in the scene.",
		DocURL:   docBase + "S204",
	},
	"S205": {
		Category: CategoryScene,
		Message:  "Frame patch failed",
		Detail:   "Patching the next frame into the container returned an error.",
		DocURL:   docBase + "S205",
	},
	"S206": {
		Category: CategoryScene,
		Message:  "Invalid node key",
		Detail:   "Keys are strings, numbers or booleans. Lists and maps cannot identify a node.",
		DocURL:   docBase + "S206",
	},
	"S207": {
		Category: CategoryScene,
		Message:  "Unknown component",
		Detail:   "The node names a component that the scene's components section does not define.",
		DocURL:   docBase + "S207",
	},
	"S208": {
		Category: CategoryScene,
		Message:  "Invalid component node",
		Detail:   "Component nodes take props, key and set. Their content comes from the component's render tree.",
		DocURL:   docBase + "S208",
	},
	"S209": {
		Category: CategoryScene,
		Message:  "Invalid tag or attribute name",
		Detail:   "Tags start with a letter and hold letters, digits or hyphens. Attribute names cannot hold whitespace or the characters \" ' < > / =.",
		DocURL:   docBase + "S209",
	},

	// ============================================
	// Export Errors (X300-X399)
	// ============================================

	"X300": {
		Category: CategoryExport,
		Message:  "Invalid export target",
		Detail:   "Export targets are a directory path or s3://bucket/prefix.",
		DocURL:   docBase + "X300",
	},
	"X301": {
		Category: CategoryExport,
		Message:  "Export write failed",
		Detail:   "The snapshot could not be written to the export target.",
		DocURL:   docBase + "X301",
	},
	"X302": {
		Category: CategoryExport,
		Message:  "Object storage unavailable",
		Detail:   "The S3 client could not be configured from the environment.",
		DocURL:   docBase + "X302",
	},

	// ============================================
	// Inspector Errors (I400-I499)
	// ============================================

	"I400": {
		Category: CategoryInspect,
		Message:  "Inspector failed to start",
		Detail:   "The inspector could not listen on the configured address.",
		DocURL:   docBase + "I400",
	},
	"I401": {
		Category: CategoryInspect,
		Message:  "Frame step failed",
		Detail:   "Patching the next scene frame returned an error.",
		DocURL:   docBase + "I401",
	},
	"I402": {
		Category: CategoryInspect,
		Message:  "Unknown op log format",
		Detail:   "Op logs are served as text, json or msgpack.",
		DocURL:   docBase + "I402",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
