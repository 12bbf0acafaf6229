package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Network Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryNetwork,
		Message:  "Page document fetch failed",
		Detail:   "The HTTP request for the target page's document did not complete. The router escalates to a full document navigation, which retries the fetch.",
	},
	"E102": {
		Category: CategoryNetwork,
		Message:  "Page document returned non-OK status",
		Detail:   "The origin responded, but not with a 2xx status. Treated like a network failure: escalate, no same-navigation retry.",
	},

	// ============================================
	// Data Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryData,
		Message:  "Page data block missing",
		Detail:   "The fetched document does not contain the reserved page data block. Every server-rendered page must embed exactly one.",
	},
	"E202": {
		Category: CategoryData,
		Message:  "Page data block malformed",
		Detail:   "The reserved data block was found but its contents could not be parsed as a page descriptor.",
	},
	"E203": {
		Category: CategoryData,
		Message:  "Page descriptor has no route module identity",
		Detail:   "A descriptor must name the module that renders the page; without it the engine cannot compose anything.",
	},

	// ============================================
	// Module Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryModule,
		Message:  "Module not found",
		Detail:   "No registered module, remote source, or compiled entry exists for the requested module identity.",
	},
	"E302": {
		Category: CategoryModule,
		Message:  "Module export is not invocable",
		Detail:   "The module loaded, but its export is neither a render function nor a component factory.",
	},
	"E303": {
		Category: CategoryModule,
		Message:  "Module source compilation failed",
		Detail:   "Serialized module source (batch prefetch or remote fetch) could not be compiled into an export.",
	},

	// ============================================
	// Layout Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryLayout,
		Message:  "Layout invocation failed",
		Detail:   "A layout component failed to render. Layout failures are absorbed: the layout is skipped and the tree beneath it is used unchanged.",
	},

	// ============================================
	// Render Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryRender,
		Message:  "Paint produced an empty container",
		Detail:   "After painting, the container had no child element and no text. Retried once per navigation before escalating.",
	},
}
