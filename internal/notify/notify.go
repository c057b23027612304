package notify

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"voicekey/internal/logx"
)

// Notifier shows desktop notifications when enabled.
type Notifier struct {
	enabled bool
	title   string
	log     *zap.SugaredLogger
	send    func(title, message string) error
}

// New returns a notifier; a disabled one does nothing.
func New(enabled bool, title string, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		enabled: enabled,
		title:   title,
		log:     logx.OrNop(log),
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Notify shows message. Failures are logged at debug level only.
func (n *Notifier) Notify(message string) {
	if n == nil || !n.enabled {
		return
	}
	if err := n.send(n.title, message); err != nil {
		n.log.Debugw("notification failed", "error", err)
	}
}
