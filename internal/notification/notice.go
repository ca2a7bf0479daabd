package notification

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// inboxLimit bounds the notices kept for a client that never polls.
const inboxLimit = 50

// Notice is a transient message for the buyer, shown once.
type Notice struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ItemAdded(kg decimal.Decimal, productName string) Notice {
	return Notice{
		Kind:      KindSuccess,
		Title:     "Producto Añadido",
		Message:   fmt.Sprintf("%s kg de %s agregados al carrito.", kg.String(), productName),
		CreatedAt: time.Now(),
	}
}

func PaymentSucceeded(transactionID string) Notice {
	return Notice{
		Kind:      KindSuccess,
		Title:     "¡Pago realizado exitosamente!",
		Message:   "ID de transacción: " + transactionID,
		CreatedAt: time.Now(),
	}
}

func PaymentFailed() Notice {
	return Notice{
		Kind:      KindError,
		Title:     "Error al procesar el pago",
		Message:   "Por favor, intenta nuevamente.",
		CreatedAt: time.Now(),
	}
}

// Inbox queues notices until the client drains them. Delivery is fire and
// forget: when full, the oldest notice is dropped.
type Inbox struct {
	mu      sync.Mutex
	notices []Notice
}

func (in *Inbox) Push(n Notice) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.notices) == inboxLimit {
		in.notices = in.notices[1:]
	}
	in.notices = append(in.notices, n)
}

// Drain returns the pending notices oldest first and empties the inbox.
func (in *Inbox) Drain() []Notice {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := in.notices
	in.notices = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.notices)
}
