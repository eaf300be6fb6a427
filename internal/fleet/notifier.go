package fleet

// Notifier receives the short human-facing messages the store emits: horn
// sounds, "turn it on first" nudges, storage-full warnings. Implementations
// deliver them to whatever surface the caller has, such as a CLI or a UI toast.
type Notifier interface {
	Notify(message string)
}

type noopNotifier struct{}

func (noopNotifier) Notify(string) {}

// LogNotifier routes notifications to a structured logger.
type LogNotifier struct {
	Logger Logger
}

// Notify writes the message at info level.
func (n LogNotifier) Notify(message string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Info("notification", "message", message)
}
