package ports

// Watcher monitors the configuration file for edits and triggers a reload.
// The adapter (fsnotify) must debounce rapid events — editors often trigger
// multiple writes per save. Only one Watch call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. onChange is called after each settled
	// change. The callback may be invoked from any goroutine. Returns an
	// error if the path's directory doesn't exist or permissions are
	// insufficient.
	Watch(path string, onChange func()) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
