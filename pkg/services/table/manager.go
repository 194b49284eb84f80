package table

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/internal/types"
	"github.com/fadedpez/blackjack/pkg/entities"
	"github.com/fadedpez/blackjack/pkg/repositories/ledger"
	"github.com/fadedpez/blackjack/pkg/services/blackjack"
)

// DefaultPlayerName prefixes the human seat's name when the player gives none
const DefaultPlayerName = "Player"

// MaxPlayerNameLength caps a chosen player name, in characters
const MaxPlayerNameLength = 32

// Recorder stores settled rounds
type Recorder interface {
	RecordRound(ctx context.Context, result *entities.RoundResult) error
}

// Config describes the tables a Manager opens
type Config struct {
	Rules         blackjack.Rules
	StartingChips int64
	AISeats       int

	// PlayerName prefixes the generated name of an unnamed human seat
	PlayerName string

	// NewShoe builds the shoe for a new table; nil deals from a shuffled
	// shoe of Rules.Decks decks
	NewShoe func(rules blackjack.Rules) *blackjack.Shoe
}

// DefaultConfig returns a single human seat with 1000 chips and default rules
func DefaultConfig() Config {
	return Config{
		Rules:         blackjack.DefaultRules(),
		StartingChips: 1000,
		PlayerName:    DefaultPlayerName,
	}
}

// Validate checks the table settings
func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if c.StartingChips <= 0 {
		return types.Errorf(types.ErrInvalidArgument, "starting chips must be positive, got %d", c.StartingChips)
	}
	if c.AISeats < 0 || c.AISeats > blackjack.MaxPlayers-1 {
		return types.Errorf(types.ErrInvalidArgument, "AI seats must be between 0 and %d, got %d", blackjack.MaxPlayers-1, c.AISeats)
	}
	return nil
}

// playerName picks the human seat's name at a new table. Statistics and the
// ledger are keyed by it, so an unnamed seat gets one unique to its table.
func (c Config) playerName(tableID, chosen string) (string, error) {
	name := strings.TrimSpace(chosen)
	if name == "" {
		prefix := c.PlayerName
		if prefix == "" {
			prefix = DefaultPlayerName
		}
		return prefix + "-" + tableID[:8], nil
	}
	if utf8.RuneCountInString(name) > MaxPlayerNameLength {
		return "", types.Errorf(types.ErrInvalidArgument, "player name must be at most %d characters", MaxPlayerNameLength)
	}
	if strings.HasPrefix(strings.ToUpper(name), "AI ") {
		return "", types.Errorf(types.ErrInvalidArgument, "player name %q is reserved for AI seats", name)
	}
	return name, nil
}

func (c Config) seats(name string) []blackjack.SeatConfig {
	seats := []blackjack.SeatConfig{{Name: name, Chips: c.StartingChips}}
	for i := 1; i <= c.AISeats; i++ {
		seats = append(seats, blackjack.SeatConfig{Name: fmt.Sprintf("AI %d", i), Chips: c.StartingChips, IsAI: true})
	}
	return seats
}

// Option configures a Manager
type Option func(*Manager)

// WithClock sets the clock used for idle tracking and timestamps
func WithClock(clock quartz.Clock) Option {
	return func(m *Manager) { m.clock = clock }
}

// WithRecorder stores every settled round
func WithRecorder(recorder Recorder) Option {
	return func(m *Manager) { m.recorder = recorder }
}

// WithLedger journals every chip movement
func WithLedger(repo ledger.Repository) Option {
	return func(m *Manager) { m.ledger = repo }
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// Manager owns the running tables. Each table has its own lock, so commands
// at different tables run in parallel while commands at one table are applied
// one at a time.
type Manager struct {
	mu     sync.RWMutex // protects tables
	tables map[string]*Table

	config   Config
	clock    quartz.Clock
	recorder Recorder
	ledger   ledger.Repository
	logger   *logging.Logger
}

// NewManager creates a manager with no tables
func NewManager(config Config, opts ...Option) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		tables: make(map[string]*Table),
		config: config,
		clock:  quartz.NewReal(),
		logger: logging.Default,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithPrefix("tables")
	return m, nil
}

// Create opens a new table in the betting state with player seated at the
// human seat. An empty player gets a generated name.
func (m *Manager) Create(ctx context.Context, player string) (blackjack.Snapshot, error) {
	id := uuid.New().String()
	name, err := m.config.playerName(id, player)
	if err != nil {
		return blackjack.Snapshot{}, err
	}

	var shoe *blackjack.Shoe
	if m.config.NewShoe != nil {
		shoe = m.config.NewShoe(m.config.Rules)
	} else {
		shoe = blackjack.NewShoe(m.config.Rules.Decks, nil)
	}

	round, err := blackjack.New(m.config.Rules, shoe, m.config.seats(name))
	if err != nil {
		return blackjack.Snapshot{}, err
	}

	t := newTable(id, round, m.clock.Now())
	m.mu.Lock()
	m.tables[t.ID] = t
	count := len(m.tables)
	m.mu.Unlock()

	m.logger.With("table", t.ID, "player", name).Info("Table created (%d open)", count)
	return round.Snapshot(t.ID), nil
}

// NewGame starts the next round at a table, or opens a table when tableID is
// empty or no longer exists. player only names the seat of a newly opened
// table. A table whose human seats are all broke is re-seated with the
// starting chips.
func (m *Manager) NewGame(ctx context.Context, tableID, player string) (blackjack.Snapshot, error) {
	if tableID == "" || !m.exists(tableID) {
		return m.Create(ctx, player)
	}
	return m.do(ctx, tableID, func(t *Table) error {
		r := t.round
		switch r.State {
		case blackjack.StatePlaying:
			return types.NewGameError(types.ErrInvalidAction, "cannot start a new game while hands are in play")
		case blackjack.StateGameOver:
			if err := r.NewRound(); err != nil {
				return err
			}
		}
		if t.humansBroke() {
			m.logger.With("table", t.ID).Info("All players broke, re-seating with %d chips", m.config.StartingChips)
			return r.Reseat(m.config.StartingChips)
		}
		return nil
	})
}

// Bet places a seat's opening bet
func (m *Manager) Bet(ctx context.Context, tableID string, seat int, amount int64) (blackjack.Snapshot, error) {
	return m.do(ctx, tableID, func(t *Table) error { return t.round.Bet(seat, amount) })
}

// Hit deals a card to the seat's active hand
func (m *Manager) Hit(ctx context.Context, tableID string, seat int) (blackjack.Snapshot, error) {
	return m.do(ctx, tableID, func(t *Table) error { return t.round.Hit(seat) })
}

// Stand ends the seat's active hand
func (m *Manager) Stand(ctx context.Context, tableID string, seat int) (blackjack.Snapshot, error) {
	return m.do(ctx, tableID, func(t *Table) error { return t.round.Stand(seat) })
}

// DoubleDown doubles the seat's bet for exactly one more card
func (m *Manager) DoubleDown(ctx context.Context, tableID string, seat int) (blackjack.Snapshot, error) {
	return m.do(ctx, tableID, func(t *Table) error { return t.round.DoubleDown(seat) })
}

// Split splits the seat's pair into two hands
func (m *Manager) Split(ctx context.Context, tableID string, seat int) (blackjack.Snapshot, error) {
	return m.do(ctx, tableID, func(t *Table) error { return t.round.Split(seat) })
}

// State returns the table's current snapshot
func (m *Manager) State(tableID string) (blackjack.Snapshot, error) {
	t, err := m.get(tableID)
	if err != nil {
		return blackjack.Snapshot{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return blackjack.Snapshot{}, tableNotFound(tableID)
	}
	t.lastUsed = m.clock.Now()
	return t.round.Snapshot(t.ID), nil
}

// Subscribe streams the table's snapshot after every change, starting with
// the current one. The channel is closed when cancel is called or the table
// is reaped.
func (m *Manager) Subscribe(tableID string) (<-chan blackjack.Snapshot, func(), error) {
	t, err := m.get(tableID)
	if err != nil {
		return nil, nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, nil, tableNotFound(tableID)
	}

	id, ch := t.subscribe()
	ch <- t.round.Snapshot(t.ID)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			t.unsubscribe(id)
			t.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// Reap closes tables unused for at least idle and returns how many it closed
func (m *Manager) Reap(idle time.Duration) int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for id, t := range m.tables {
		t.mu.Lock()
		if now.Sub(t.lastUsed) >= idle {
			if t.round.State == blackjack.StatePlaying {
				m.logger.With("table", id).Warn("Reaping table with round %s still in play", t.round.ID)
			}
			t.close()
			delete(m.tables, id)
			reaped++
		}
		t.mu.Unlock()
	}

	if reaped > 0 {
		m.logger.Info("Reaped %d idle tables, %d still open", reaped, len(m.tables))
	}
	return reaped
}

// Count returns the number of open tables
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// TableIDs returns the open tables in sorted order
func (m *Manager) TableIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.tables))
	for id := range m.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every table
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, t := range m.tables {
		t.mu.Lock()
		t.close()
		t.mu.Unlock()
		delete(m.tables, id)
	}
}

func (m *Manager) exists(tableID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[tableID]
	return ok
}

func (m *Manager) get(tableID string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[tableID]
	if !ok {
		return nil, tableNotFound(tableID)
	}
	return t, nil
}

// do applies one command to a table under its lock. A rejected command
// changes nothing; an accepted one is persisted and published.
func (m *Manager) do(ctx context.Context, tableID string, fn func(t *Table) error) (blackjack.Snapshot, error) {
	t, err := m.get(tableID)
	if err != nil {
		return blackjack.Snapshot{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return blackjack.Snapshot{}, tableNotFound(tableID)
	}
	t.lastUsed = m.clock.Now()

	if err := fn(t); err != nil {
		return blackjack.Snapshot{}, err
	}

	m.persist(ctx, t)
	snap := t.round.Snapshot(t.ID)
	t.publish(snap)
	return snap, nil
}

// persist writes the chip movements of the last command and, once a round
// has settled, its result. Storage failures are logged; the table carries on.
func (m *Manager) persist(ctx context.Context, t *Table) {
	now := m.clock.Now()
	logger := m.logger.With("table", t.ID)

	if moves := t.round.TakeJournal(); len(moves) > 0 && m.ledger != nil {
		txs := make([]*entities.Transaction, 0, len(moves))
		for _, mv := range moves {
			txs = append(txs, &entities.Transaction{
				ID:           uuid.New().String(),
				TableID:      t.ID,
				RoundID:      mv.RoundID,
				Player:       mv.Player,
				Seat:         mv.Seat,
				Hand:         mv.Hand,
				Amount:       mv.Amount,
				Type:         mv.Type,
				BalanceAfter: mv.BalanceAfter,
				Timestamp:    now,
			})
		}
		if err := m.ledger.AddTransactions(ctx, txs); err != nil {
			logger.LogError(types.WrapError(types.ErrDatabaseError, "failed to record chip movements", err))
		}
	}

	if t.round.State != blackjack.StateGameOver || t.recorded == t.round.ID {
		return
	}
	t.recorded = t.round.ID
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordRound(ctx, t.round.Result(t.ID, now)); err != nil {
		logger.LogError(types.WrapError(types.ErrDatabaseError, "failed to record round result", err))
		return
	}
	logger.Debug("Recorded round %d (%s)", t.round.Number, t.round.ID)
}

func tableNotFound(tableID string) error {
	return types.Errorf(types.ErrTableNotFound, "table %q not found", tableID)
}
