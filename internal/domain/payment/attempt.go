package payment

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateType = "Payment"

type Method string

const (
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodCash     Method = "cash"
	MethodWallet   Method = "wallet"
)

// Methods lists every payment method in display order.
var Methods = []Method{MethodCard, MethodTransfer, MethodCash, MethodWallet}

var methodLabels = map[Method]string{
	MethodCard:     "Tarjeta de Crédito/Débito",
	MethodTransfer: "Transferencia Bancaria",
	MethodCash:     "Pago Contra Entrega",
	MethodWallet:   "Billetera Digital",
}

// Label is the name shown to the buyer.
func (m Method) Label() string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return string(m)
}

// BankTransfer holds the account details shown for the transfer method.
type BankTransfer struct {
	Bank    string `json:"bank"`
	Account string `json:"account"`
	Holder  string `json:"holder"`
	Concept string `json:"concept"`
}

var TransferDetails = BankTransfer{
	Bank:    "Banco Agrícola Nacional",
	Account: "1234-5678-90-123456789",
	Holder:  "Marketplace Campo Mesa SA",
	Concept: "Compra productos",
}

type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
	StatusClosed     Status = "closed"
)

var (
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrMethodUnavailable = errors.New("payment method not available for this order")
	ErrNotEditable       = errors.New("payment details can only be changed before submitting")
	ErrNotReady          = errors.New("payment details are incomplete")
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrInvalidEmail      = errors.New("invalid contact email")
)

// validTransitions defines allowed status changes
var validTransitions = map[Status][]Status{
	StatusIdle:       {StatusProcessing, StatusClosed},
	StatusProcessing: {StatusSuccess, StatusError, StatusClosed},
	StatusSuccess:    {StatusClosed},
	StatusError:      {StatusIdle, StatusClosed},
	StatusClosed:     {}, // terminal state
}

func ParseMethod(value string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(value)))
	if !slices.Contains(Methods, m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, value)
	}
	return m, nil
}

// Card holds the card fields as typed, already formatted.
type Card struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Ready reports whether every card field has its complete shape.
func (c Card) Ready() bool {
	number := strings.Join(strings.Fields(c.Number), "")
	return len(number) == cardDigits && isDigits(number) &&
		c.Holder != "" &&
		len(c.Expiry) == expiryLength &&
		len(c.CVV) == cvvDigits && isDigits(c.CVV)
}

// Attempt is one run of the checkout payment dialog.
type Attempt struct {
	ID                string          `json:"id"`
	Method            Method          `json:"method"`
	Card              Card            `json:"card"`
	Status            Status          `json:"status"`
	TransactionID     string          `json:"transaction_id,omitempty"`
	Total             decimal.Decimal `json:"total"`
	TransportIncluded bool            `json:"transport_included"`
	ContactEmail      string          `json:"contact_email,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewAttempt opens a payment for an order of the given total. Card is the
// preselected method.
func NewAttempt(total decimal.Decimal, transportIncluded bool) *Attempt {
	now := time.Now()
	return &Attempt{
		ID:                uuid.New().String(),
		Method:            MethodCard,
		Status:            StatusIdle,
		Total:             total,
		TransportIncluded: transportIncluded,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CanTransitionTo checks if the attempt can move to the target status
func (a *Attempt) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[a.Status]
	if !exists {
		return false
	}
	return slices.Contains(allowed, target)
}

func (a *Attempt) transition(target Status) error {
	if !a.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, a.Status, target)
	}
	a.Status = target
	a.UpdatedAt = time.Now()
	return nil
}

// MethodAvailable reports whether m may be selected. Cash on delivery needs a
// carrier, so it is offered only when some product bundles transport.
func (a *Attempt) MethodAvailable(m Method) bool {
	if m == MethodCash {
		return a.TransportIncluded
	}
	return slices.Contains(Methods, m)
}

func (a *Attempt) AvailableMethods() []Method {
	var result []Method
	for _, m := range Methods {
		if a.MethodAvailable(m) {
			result = append(result, m)
		}
	}
	return result
}

func (a *Attempt) editable() error {
	if a.Status != StatusIdle {
		return ErrNotEditable
	}
	return nil
}

func (a *Attempt) SelectMethod(m Method) error {
	if err := a.editable(); err != nil {
		return err
	}
	if !slices.Contains(Methods, m) {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	if !a.MethodAvailable(m) {
		return ErrMethodUnavailable
	}
	a.Method = m
	a.UpdatedAt = time.Now()
	return nil
}

func (a *Attempt) SetCardNumber(value string) error {
	if err := a.editable(); err != nil {
		return err
	}
	a.Card.Number = FormatCardNumber(value)
	return nil
}

func (a *Attempt) SetCardHolder(value string) error {
	if err := a.editable(); err != nil {
		return err
	}
	a.Card.Holder = FormatHolder(value)
	return nil
}

func (a *Attempt) SetCardExpiry(value string) error {
	if err := a.editable(); err != nil {
		return err
	}
	a.Card.Expiry = FormatExpiry(value)
	return nil
}

func (a *Attempt) SetCardCVV(value string) error {
	if err := a.editable(); err != nil {
		return err
	}
	a.Card.CVV = FormatCVV(value)
	return nil
}

// SetContactEmail stores the address the receipt is sent to. An empty value
// clears it.
func (a *Attempt) SetContactEmail(value string) error {
	if err := a.editable(); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		a.ContactEmail = ""
		return nil
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	a.ContactEmail = addr.Address
	return nil
}

// SetOrder refreshes the order figures the attempt pays for.
func (a *Attempt) SetOrder(total decimal.Decimal, transportIncluded bool) {
	a.Total = total
	a.TransportIncluded = transportIncluded
}

// Ready is the submit predicate of the selected method.
func (a *Attempt) Ready() bool {
	switch a.Method {
	case MethodCard:
		return a.Card.Ready()
	case MethodTransfer, MethodWallet:
		return true
	case MethodCash:
		return a.TransportIncluded
	default:
		return false
	}
}

// Begin moves an idle, ready attempt to processing.
func (a *Attempt) Begin() error {
	if a.Status == StatusIdle && !a.Ready() {
		return ErrNotReady
	}
	return a.transition(StatusProcessing)
}

func (a *Attempt) Succeed(transactionID string) error {
	if err := a.transition(StatusSuccess); err != nil {
		return err
	}
	a.TransactionID = transactionID
	return nil
}

func (a *Attempt) Fail() error {
	return a.transition(StatusError)
}

// Retry returns a failed attempt to idle, keeping the entered fields.
func (a *Attempt) Retry() error {
	return a.transition(StatusIdle)
}

// Close ends the attempt from any state and wipes everything entered.
func (a *Attempt) Close() {
	a.Status = StatusClosed
	a.Method = MethodCard
	a.Card = Card{}
	a.TransactionID = ""
	a.ContactEmail = ""
	a.UpdatedAt = time.Now()
}
