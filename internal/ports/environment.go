package ports

// Environment integrates devsync with the host UI framework.
//
// An Environment that can also route implements RouteNavigator; that
// capability is detected once, when the bridge is constructed.
type Environment interface {
	// RunIsolated runs fn inside the framework's change-detection context.
	RunIsolated(fn func())
}

// DirectEnvironment runs callbacks inline and has no router.
type DirectEnvironment struct{}

// RunIsolated calls fn.
func (DirectEnvironment) RunIsolated(fn func()) { fn() }
