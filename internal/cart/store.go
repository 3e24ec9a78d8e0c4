package cart

import (
	"sync"

	"github.com/rs/zerolog"
)

// MaxQuantity is the per-line ceiling.
const MaxQuantity = 2

type Option func(*Store)

// WithMaxQuantity overrides the per-line ceiling. Values below 1 are ignored.
func WithMaxQuantity(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.max = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store owns one cart. Every mutating call is a single read-modify-write under mu.
type Store struct {
	mu    sync.Mutex
	lines []Line
	max   int
	subs  map[*Subscription]struct{}
	log   zerolog.Logger
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		max:  MaxQuantity,
		subs: make(map[*Subscription]struct{}),
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) MaxQuantity() int { return s.max }

// Add steps the matching line by one, or creates it with quantity 1.
// A line already at the ceiling is left untouched and a limited notification is emitted.
func (s *Store) Add(p Product, sel Selection) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := KeyOf(p.ID, sel)
	i := s.find(key)
	if i >= 0 {
		l := s.lines[i]
		if l.Quantity >= s.max {
			return s.commit(false, Notification{Kind: KindLimited, ProductLabel: l.Label()})
		}
		s.lines[i].Quantity++
		return s.commit(true, Notification{
			Kind:         KindUpdated,
			ProductLabel: Label(p.Name, sel.Color, sel.Size),
			Quantity:     s.lines[i].Quantity,
		})
	}

	l := newLine(p, sel, 1)
	s.lines = append(s.lines, l)
	return s.commit(true, Notification{Kind: KindAdded, ProductLabel: l.Label(), Quantity: 1})
}

// SetQuantity sets an absolute quantity. Values above the ceiling are clamped
// (with a limited notification first); values <= 0 remove the line if present.
func (s *Store) SetQuantity(ref ProductRef, sel Selection, qty int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []Notification
	key := KeyOf(ref.ID(), sel)
	i := s.find(key)

	if qty > s.max {
		label := ""
		switch {
		case i >= 0:
			label = s.lines[i].Label()
		case ref.product != nil:
			label = Label(ref.product.Name, sel.Color, sel.Size)
		default:
			label = Label(ref.id, sel.Color, sel.Size)
		}
		notes = append(notes, Notification{Kind: KindLimited, ProductLabel: label})
		qty = s.max
	}

	if qty <= 0 {
		if i < 0 {
			return s.commit(false, notes...)
		}
		notes = append(notes, s.removeAt(i))
		return s.commit(true, notes...)
	}

	if i >= 0 {
		s.lines[i].Quantity = qty
		notes = append(notes, Notification{Kind: KindUpdated, ProductLabel: s.lines[i].Label(), Quantity: qty})
		return s.commit(true, notes...)
	}

	if ref.product == nil {
		s.log.Debug().
			Str("product_id", ref.id).
			Int("quantity", qty).
			Msg("set quantity without product for a new line; ignored")
		return s.commit(false, notes...)
	}

	l := newLine(*ref.product, sel, qty)
	s.lines = append(s.lines, l)
	notes = append(notes, Notification{Kind: KindAdded, ProductLabel: l.Label(), Quantity: qty})
	return s.commit(true, notes...)
}

// Remove deletes the matching line. Missing lines are a silent no-op.
func (s *Store) Remove(productID string, sel Selection) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(KeyOf(productID, sel))
	if i < 0 {
		return s.commit(false)
	}
	return s.commit(true, s.removeAt(i))
}

// Clear empties the cart without notifications.
func (s *Store) Clear() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := len(s.lines) > 0
	s.lines = nil
	return s.commit(changed)
}

// Total is the sum of quantities across lines.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// LineCount is the number of distinct lines.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Lines returns a snapshot in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Restore replaces the cart with persisted lines. Lines with a non-positive
// quantity are dropped, quantities are clamped and duplicate keys are merged
// into the first occurrence.
func (s *Store) Restore(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = s.lines[:0]
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := s.find(l.Key()); i >= 0 {
			s.lines[i].Quantity = min(s.lines[i].Quantity+l.Quantity, s.max)
			continue
		}
		l.Quantity = min(l.Quantity, s.max)
		s.lines = append(s.lines, l)
	}
}

func (s *Store) find(k Key) int {
	for i, l := range s.lines {
		if l.Key() == k {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) Notification {
	n := Notification{Kind: KindRemoved, ProductLabel: s.lines[i].Label()}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return n
}

func (s *Store) snapshot() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// commit builds the result and fans it out. Caller holds mu.
func (s *Store) commit(changed bool, notes ...Notification) Result {
	res := Result{Lines: s.snapshot(), Notifications: notes, Changed: changed}
	if res.Notifications == nil {
		res.Notifications = []Notification{}
	}
	if changed || len(notes) > 0 {
		s.publish(Event{Lines: res.Lines, Notifications: res.Notifications})
	}
	return res
}

func newLine(p Product, sel Selection, qty int) Line {
	return Line{
		ProductID: p.ID,
		VariantID: sel.VariantID,
		Color:     sel.Color,
		Size:      sel.Size,
		Quantity:  qty,
		Product:   p,
	}
}

// ProductRef names the target of SetQuantity: a full product, or just its id
// when the caller does not have the product at hand.
type ProductRef struct {
	id      string
	product *Product
}

func RefProduct(p Product) ProductRef { return ProductRef{id: p.ID, product: &p} }

func RefID(id string) ProductRef { return ProductRef{id: id} }

func (r ProductRef) ID() string { return r.id }
