package core

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the full in-memory ledger state: budget items keyed by month,
// the global transaction list (most recent first) and the settings. It is
// plain data; persistence is the storage package's concern. Mutating
// methods only touch memory, callers decide when to save.
type State struct {
	Items        map[MonthKey][]BudgetItem `json:"items"`
	Transactions []Transaction             `json:"transactions"`
	Settings     Settings                  `json:"settings"`
}

func NewState() *State {
	return &State{
		Items:    make(map[MonthKey][]BudgetItem),
		Settings: DefaultSettings(),
	}
}

// DefaultState is the documented seed for a fresh install: empty ledger,
// cycle starting on the 1st, and the current calendar month pre-filled with
// three sample spending categories.
func DefaultState(now time.Time) *State {
	s := NewState()
	key := MonthKeyOf(now)
	s.Items[key] = []BudgetItem{
		{ID: uuid.NewString(), Top: Spending, Name: "식비", Plan: 300000},
		{ID: uuid.NewString(), Top: Spending, Name: "생활비", Plan: 300000},
		{ID: uuid.NewString(), Top: Spending, Name: "공과금", Plan: 100000},
	}
	return s
}

// Clone returns a deep copy sharing no slices or maps with the receiver.
func (s *State) Clone() *State {
	c := &State{
		Items:    make(map[MonthKey][]BudgetItem, len(s.Items)),
		Settings: s.Settings,
	}
	for key, items := range s.Items {
		c.Items[key] = append([]BudgetItem(nil), items...)
	}
	c.Transactions = append([]Transaction(nil), s.Transactions...)
	return c
}

// EnsureMonth lazily propagates budget item definitions into a month that
// has none yet, copying each item of the nearest preceding month with data
// as a fresh item: same name, top category and plan, but a new identifier.
// Plan amounts are copied as-is, never scaled or rolled over. Returns true
// when the state changed and needs persisting. Idempotent once the month
// has items; a month with no predecessor simply stays empty.
func (s *State) EnsureMonth(key MonthKey) bool {
	if len(s.Items[key]) > 0 {
		return false
	}

	var source MonthKey
	for _, known := range s.MonthKeys() {
		if known >= key {
			break
		}
		if len(s.Items[known]) > 0 {
			source = known
		}
	}
	if source == "" {
		return false
	}

	copied := make([]BudgetItem, 0, len(s.Items[source]))
	for _, it := range s.Items[source] {
		copied = append(copied, BudgetItem{
			ID:   uuid.NewString(),
			Top:  it.Top,
			Name: it.Name,
			Plan: it.Plan,
		})
	}
	s.Items[key] = copied
	return true
}

// ItemsFor returns a copy of the month's items in insertion order. It never
// triggers propagation; call EnsureMonth first.
func (s *State) ItemsFor(key MonthKey) []BudgetItem {
	return append([]BudgetItem(nil), s.Items[key]...)
}

// SpendingItemsFor returns the month's spending items only, in insertion
// order.
func (s *State) SpendingItemsFor(key MonthKey) []BudgetItem {
	var out []BudgetItem
	for _, it := range s.Items[key] {
		if it.Top == Spending {
			out = append(out, it)
		}
	}
	return out
}

// MonthKeys returns the known month keys in chronological order.
func (s *State) MonthKeys() []MonthKey {
	keys := make([]MonthKey, 0, len(s.Items))
	for key := range s.Items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// UpsertItem replaces the mutable fields of an existing item in the month
// when the id matches, or appends a new item with a fresh identifier.
// Omitted fields on new items default to Spending and a placeholder name.
func (s *State) UpsertItem(key MonthKey, item BudgetItem) (BudgetItem, error) {
	if item.Top == "" {
		item.Top = Spending
	}
	if strings.TrimSpace(item.Name) == "" {
		item.Name = PlaceholderItemName
	}
	if err := item.Validate(); err != nil {
		return BudgetItem{}, err
	}

	if item.ID != "" {
		for i, existing := range s.Items[key] {
			if existing.ID == item.ID {
				s.Items[key][i] = item
				return item, nil
			}
		}
	}

	item.ID = uuid.NewString()
	s.Items[key] = append(s.Items[key], item)
	return item, nil
}

// DeleteItem removes the item with the given id from the month. A missing
// id is a no-op, not an error.
func (s *State) DeleteItem(key MonthKey, id string) bool {
	items := s.Items[key]
	for i, it := range items {
		if it.ID == id {
			s.Items[key] = append(items[:i], items[i+1:]...)
			return true
		}
	}
	return false
}

// AppendTransaction validates the record, assigns a fresh identifier and
// prepends it to the ledger (most recent first). An empty top category
// defaults to Spending.
func (s *State) AppendTransaction(t Transaction) (Transaction, error) {
	if t.Top == "" {
		t.Top = Spending
	}
	t.Item = strings.TrimSpace(t.Item)
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	t.ID = uuid.NewString()
	s.Transactions = append([]Transaction{t}, s.Transactions...)
	return t, nil
}

// RemoveTransaction deletes the transaction with the given id. Returns the
// removed record; a missing id is a no-op, not an error.
func (s *State) RemoveTransaction(id string) (Transaction, bool) {
	for i, t := range s.Transactions {
		if t.ID == id {
			s.Transactions = append(s.Transactions[:i], s.Transactions[i+1:]...)
			return t, true
		}
	}
	return Transaction{}, false
}

// QueryTransactions returns the transactions matching pred, preserving the
// ledger's most-recent-first order. No mutation.
func (s *State) QueryTransactions(pred func(Transaction) bool) []Transaction {
	var out []Transaction
	for _, t := range s.Transactions {
		if pred == nil || pred(t) {
			out = append(out, t)
		}
	}
	return out
}
