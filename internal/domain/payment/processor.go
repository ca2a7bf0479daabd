package payment

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultDelay       = 2 * time.Second
	DefaultSuccessRate = 0.9

	transactionPrefix = "TX"
	transactionLength = 9
	transactionChars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Decider chooses the outcome of a simulated payment: true means success.
type Decider func() bool

// IDGenerator produces transaction identifiers.
type IDGenerator func() string

func AlwaysSucceed() Decider { return func() bool { return true } }
func AlwaysFail() Decider    { return func() bool { return false } }

// RandomDecider succeeds with probability successRate using rng.
func RandomDecider(successRate float64, rng *rand.Rand) Decider {
	return func() bool {
		return rng.Float64() < successRate
	}
}

// RandomTransactionID returns ids of the form TX followed by nine uppercase
// base-36 characters.
func RandomTransactionID(rng *rand.Rand) IDGenerator {
	return func() string {
		var b strings.Builder
		b.WriteString(transactionPrefix)
		for range transactionLength {
			b.WriteByte(transactionChars[rng.IntN(len(transactionChars))])
		}
		return b.String()
	}
}

type Outcome struct {
	Status        Status `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Processor simulates the payment gateway: after a fixed delay an attempt in
// processing resolves to success or error.
type Processor struct {
	delay  time.Duration
	decide Decider
	newID  IDGenerator
	tracer trace.Tracer

	// rand.Rand is not safe for concurrent use; decide and newID share it.
	mu sync.Mutex
}

type Option func(*Processor)

func WithDecider(d Decider) Option {
	return func(p *Processor) { p.decide = d }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(p *Processor) { p.newID = g }
}

// WithSeed makes both the outcome and the transaction ids reproducible.
func WithSeed(seed uint64, successRate float64) Option {
	return func(p *Processor) {
		rng := rand.New(rand.NewPCG(seed, seed))
		p.decide = RandomDecider(successRate, rng)
		p.newID = RandomTransactionID(rng)
	}
}

func NewProcessor(delay time.Duration, successRate float64, opts ...Option) *Processor {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	p := &Processor{
		delay:  delay,
		decide: RandomDecider(successRate, rng),
		newID:  RandomTransactionID(rng),
		tracer: otel.Tracer("payment"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Delay() time.Duration {
	return p.delay
}

// Schedule runs fn once the simulated delay has elapsed. The timer is never
// cancelled by the storefront.
func (p *Processor) Schedule(fn func()) *time.Timer {
	return time.AfterFunc(p.delay, fn)
}

// Resolve decides the outcome of an attempt in processing and applies it.
func (p *Processor) Resolve(ctx context.Context, a *Attempt) (Outcome, error) {
	_, span := p.tracer.Start(ctx, "payment.Resolve", trace.WithAttributes(
		attribute.String("payment.attempt_id", a.ID),
		attribute.String("payment.method", string(a.Method)),
		attribute.String("payment.total", a.Total.StringFixed(2)),
	))
	defer span.End()

	p.mu.Lock()
	success := p.decide()
	var txID string
	if success {
		txID = p.newID()
	}
	p.mu.Unlock()

	var err error
	if success {
		err = a.Succeed(txID)
	} else {
		err = a.Fail()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	span.SetAttributes(attribute.String("payment.status", string(a.Status)))
	if txID != "" {
		span.SetAttributes(attribute.String("payment.transaction_id", txID))
	}
	return Outcome{Status: a.Status, TransactionID: a.TransactionID}, nil
}

// Process submits a, waits for the simulated delay and resolves it. It blocks
// for the whole delay; ctx only carries tracing.
func (p *Processor) Process(ctx context.Context, a *Attempt) (Outcome, error) {
	if err := a.Begin(); err != nil {
		return Outcome{}, err
	}
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		<-timer.C
	}
	return p.Resolve(ctx, a)
}
