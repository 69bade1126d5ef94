package vanilla

// ChromeClass is a CSS class applied to renderer-owned chrome.
type ChromeClass string

const (
	ClassForm     ChromeClass = "fd-form"
	ClassHeader   ChromeClass = "fd-header"
	ClassField    ChromeClass = "fd-field"
	ClassLabel    ChromeClass = "fd-label"
	ClassRequired ChromeClass = "fd-required"
	ClassNote     ChromeClass = "fd-note"
	ClassErrors   ChromeClass = "fd-errors"
	ClassActions  ChromeClass = "fd-actions"
)
