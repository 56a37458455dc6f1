package beacon

// Canonical event names used by the host application. Callers are free to
// track any name; these cover the standard application lifecycle.
const (
	EventAppOpened    = "app_opened"
	EventAppClosed    = "app_closed"
	EventCtrlLocked   = "ctrl_locked"
	EventCtrlReleased = "ctrl_released"
)
