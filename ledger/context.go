package ledger

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semprov/graph"
	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// Dealer describes the firm whose stock books are being modeled.
type Dealer struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	ULAN      string `yaml:"ulan"`
}

// DefaultDealer is M. Knoedler & Co.
func DefaultDealer() Dealer {
	return Dealer{Name: "M. Knoedler & Co.", ShortName: "Knoedler", ULAN: "500304270"}
}

// RunContext carries the services shared by every record of a run. It
// replaces process-wide state: builders receive it explicitly.
type RunContext struct {
	Minter   *identity.Minter
	Resolver *identity.Resolver
	// Graph receives observations and citations. It may be nil.
	Graph  *graph.Builder
	Dealer Dealer
	// Problematic maps sale keys to an editorial warning attached to the
	// object of any record with that key.
	Problematic map[record.SaleRecordKey]string
	Counters    *Counters
	Logger      *slog.Logger
}

// NewRunContext returns a context with an empty resolver, the default dealer
// and counters registered on a fresh registry.
func NewRunContext(minter *identity.Minter, logger *slog.Logger) *RunContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunContext{
		Minter:   minter,
		Resolver: identity.NewResolver(nil, nil),
		Dealer:   DefaultDealer(),
		Counters: NewCounters(prometheus.NewRegistry()),
		Logger:   logger,
	}
}

// DealerRef returns the dealer as a party.
func (rc *RunContext) DealerRef() PartyRef {
	d := rc.Dealer
	return PartyRef{
		URI:   rc.Minter.Shared("ORGANIZATION", "ULAN", d.ULAN),
		Label: d.Name,
		Class: linkedart.ClassGroup,
		ULAN:  d.ULAN,
		Names: []string{d.Name},
	}
}

func (rc *RunContext) logger() *slog.Logger {
	if rc.Logger == nil {
		return slog.Default()
	}
	return rc.Logger
}

// Counters are the run's Prometheus counters.
type Counters struct {
	Records      *prometheus.CounterVec
	Transactions *prometheus.CounterVec
	ShareErrors  prometheus.Counter
	Citations    *prometheus.CounterVec
}

// NewCounters creates the counters and registers them on reg.
func NewCounters(reg prometheus.Registerer) *Counters {
	c := &Counters{
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semprov",
			Name:      "records_total",
			Help:      "Records processed, by outcome.",
		}, []string{"outcome"}),
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semprov",
			Name:      "transactions_total",
			Help:      "Records assembled, by transaction type.",
		}, []string{"type"}),
		ShareErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "semprov",
			Name:      "share_errors_total",
			Help:      "Records whose ownership shares could not be split.",
		}),
		Citations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semprov",
			Name:      "citations_total",
			Help:      "Citations seen, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(c.Records, c.Transactions, c.ShareErrors, c.Citations)
	return c
}

func (c *Counters) record(outcome string) {
	if c != nil {
		c.Records.WithLabelValues(outcome).Inc()
	}
}

func (c *Counters) transaction(kind string) {
	if c != nil {
		c.Transactions.WithLabelValues(kind).Inc()
	}
}

func (c *Counters) shareError() {
	if c != nil {
		c.ShareErrors.Inc()
	}
}

func (c *Counters) citation(result string) {
	if c != nil {
		c.Citations.WithLabelValues(result).Inc()
	}
}
