// Package notifsvc delivers parent notifications. Delivery is manual by
// design: the tutor reviews each message and taps through to WhatsApp, so the
// service's job is to keep a short queue of prepared messages with
// click-to-chat links rather than to push anything itself.
package notifsvc

import (
	"log"
	"sync"
	"time"

	"github.com/mrdaoud/tadrees/core"
)

// queueSize caps the number of retained notifications; older ones drop off.
const queueSize = 5

type consoleService struct {
	mu            sync.Mutex
	recent        []core.Notification
	disableOutput bool
}

var _ core.NotificationService = (*consoleService)(nil)

func NewConsoleService() core.NotificationService {
	return &consoleService{}
}

func (svc *consoleService) Send(notifs ...core.Notification) {
	for _, n := range notifs {
		svc.enqueue(n)
	}
}

// Recent returns the retained notifications, newest first.
func (svc *consoleService) Recent() []core.Notification {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	recent := make([]core.Notification, len(svc.recent))
	copy(recent, svc.recent)
	return recent
}

func (svc *consoleService) enqueue(n core.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Phone != "" {
		n.Link = Link(n.Phone, n.Message)
	}

	svc.mu.Lock()
	svc.recent = append([]core.Notification{n}, svc.recent...)
	if len(svc.recent) > queueSize {
		svc.recent = svc.recent[:queueSize]
	}
	svc.mu.Unlock()

	if !svc.disableOutput {
		log.Printf("notification: %s: %s\n%s", n.Title, n.Message, n.Link)
	}
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock() core.NotificationService {
	return &consoleServiceMock{
		consoleService: consoleService{disableOutput: true},
	}
}
