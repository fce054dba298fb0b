package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Inflow  Kind = "inflow"
	Outflow Kind = "outflow"
)

const (
	MethodPix  PaymentMethod = "pix"
	MethodCash PaymentMethod = "cash"
	MethodCard PaymentMethod = "card"
)

type (
	// Kind distinguishes money coming in from money going out.
	// Every persisted transaction has exactly one kind; there is no default.
	Kind string

	// PaymentMethod is the channel through which an inflow was received.
	PaymentMethod string

	// Transaction is one ledger entry as returned by the record store.
	// CreatedAt is assigned at insertion and never changes; it is the sole
	// ordering key (descending) for display.
	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Kind        Kind
		Method      PaymentMethod
		Unit        string // business unit the entry is attributed to
		Category    string
		CreatedAt   time.Time
		OwnerID     string
	}

	// Draft is user input not yet accepted by the store. The store assigns
	// ID and CreatedAt on insert.
	Draft struct {
		Description string
		Amount      Money
		Kind        Kind
		Method      PaymentMethod
		Unit        string
		Category    string
		OwnerID     string
	}

	// UnitSet is the closed set of configured business units. Drafts must
	// name a member; an empty unit resolves to the default.
	UnitSet struct {
		names []string
		def   string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidMethod    = errors.New("invalid payment method")
	ErrInvalidUnit      = errors.New("invalid business unit")
)

func (k Kind) Validate() error {
	switch k {
	case Inflow, Outflow:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (p PaymentMethod) Validate() error {
	switch p {
	case MethodPix, MethodCash, MethodCard:
		return nil
	default:
		return ErrInvalidMethod
	}
}

// Label returns the display name of the payment method.
func (p PaymentMethod) Label() string {
	switch p {
	case MethodPix:
		return "PIX"
	case MethodCash:
		return "Dinheiro"
	case MethodCard:
		return "Cartão"
	default:
		return string(p)
	}
}

// Label returns the display name of the kind.
func (k Kind) Label() string {
	if k == Outflow {
		return "Saída"
	}
	return "Entrada"
}

// PaymentMethods lists every configured method in a fixed order, used for
// form options and breakdown rendering.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodPix, MethodCash, MethodCard}
}

// NewUnitSet builds the configured business unit set. The default must be a
// member; an empty name list is rejected.
func NewUnitSet(names []string, def string) (UnitSet, error) {
	cleaned := make([]string, 0, len(names))
	seen := map[string]struct{}{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		cleaned = append(cleaned, n)
	}
	if len(cleaned) == 0 {
		return UnitSet{}, ErrInvalidUnit
	}
	def = strings.TrimSpace(def)
	if def == "" {
		def = cleaned[0]
	}
	if _, ok := seen[def]; !ok {
		return UnitSet{}, ErrInvalidUnit
	}
	return UnitSet{names: cleaned, def: def}, nil
}

// Names returns the configured unit names in configuration order.
func (s UnitSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Default returns the fallback business unit.
func (s UnitSet) Default() string {
	return s.def
}

// Contains reports strict membership; option values come from a UI list and
// are never trusted.
func (s UnitSet) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

// Validate checks the draft against the validation rules of the record
// model. An empty unit is filled with the set default; every other failure
// is a user-visible rejection, never a silent coercion.
func (d *Draft) Validate(units UnitSet) error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Kind.Validate(); err != nil {
		return err
	}
	if err := d.Method.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Unit) == "" {
		d.Unit = units.Default()
	} else if !units.Contains(d.Unit) {
		return ErrInvalidUnit
	}
	return nil
}
