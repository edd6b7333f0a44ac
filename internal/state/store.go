// Package state owns the single application state of the dashboard: fetched
// slices, operation slots, view preferences and the notification channel.
// All mutation is serialized by one mutex; readers get deep-copied snapshots
// and may subscribe to change events.
package state

import (
	"sync"

	"NiftyDash/internal/domain/models"
	domrepo "NiftyDash/internal/domain/repository"
	"NiftyDash/pkg/logger"
)

type Store struct {
	mu          sync.Mutex
	seq         uint64
	health      models.ServiceHealth
	historical  []models.HistoricalPoint
	links       []models.MarketLink
	modelInfo   *models.ModelInfo
	predictions []models.PredictionPoint
	gens        map[models.Slice]uint64
	slots       map[models.Slot]models.OperationSlot
	view        models.ViewState
	notes       *NotificationChannel

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan ChangeEvent

	metrics domrepo.Metrics
	log     *logger.Logger
}

type Option func(*Store)

func WithMetrics(m domrepo.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithView overrides the initial view state.
func WithView(v models.ViewState) Option {
	return func(s *Store) { s.view = copyView(v) }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		health: models.HealthUnknown,
		gens:   make(map[models.Slice]uint64),
		slots: map[models.Slot]models.OperationSlot{
			models.SlotAction:  {Status: models.StatusIdle},
			models.SlotRefresh: {Status: models.StatusIdle},
		},
		view:  models.DefaultViewState(),
		notes: NewNotificationChannel(),
		subs:  make(map[int]chan ChangeEvent),
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update runs fn with exclusive access to the state. Every slice fn changes
// produces one ChangeEvent after the lock is released.
func (s *Store) Update(fn func(tx *Tx)) {
	s.mu.Lock()
	tx := &Tx{s: s}
	fn(tx)
	events := make([]ChangeEvent, 0, len(tx.changed))
	for _, c := range tx.changed {
		s.seq++
		events = append(events, ChangeEvent{Seq: s.seq, Slice: c.Slice, Kind: c.Kind})
	}
	s.mu.Unlock()

	for _, evt := range events {
		if s.metrics != nil {
			s.metrics.RecordStateChange(string(evt.Slice))
		}
		s.publish(evt)
	}
}

// Begin is the at-most-one-in-flight guard. It moves slot to loading for kind
// and returns true, or returns false and changes nothing when the slot is
// already loading.
func (s *Store) Begin(slot models.Slot, kind models.OperationKind) bool {
	started := false
	s.Update(func(tx *Tx) {
		if tx.Slot(slot).Loading() {
			return
		}
		tx.SetSlot(slot, models.StatusLoading, kind, "")
		started = true
	})
	return started
}

// Issue bumps the generation of slice and returns it. A resolution carrying
// an older generation is discarded by the Apply methods.
func (s *Store) Issue(slice models.Slice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[slice]++
	return s.gens[slice]
}

func (s *Store) Generation(slice models.Slice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[slice]
}

func (s *Store) ApplyHealth(gen uint64, h models.ServiceHealth) bool {
	var ok bool
	s.Update(func(tx *Tx) { ok = tx.ApplyHealth(gen, h) })
	return ok
}

func (s *Store) ApplyHistorical(gen uint64, points []models.HistoricalPoint) bool {
	var ok bool
	s.Update(func(tx *Tx) { ok = tx.ApplyHistorical(gen, points) })
	return ok
}

func (s *Store) ApplyMarketLinks(gen uint64, links []models.MarketLink) bool {
	var ok bool
	s.Update(func(tx *Tx) { ok = tx.ApplyMarketLinks(gen, links) })
	return ok
}

func (s *Store) ApplyModelInfo(gen uint64, info models.ModelInfo) bool {
	var ok bool
	s.Update(func(tx *Tx) { ok = tx.ApplyModelInfo(gen, info) })
	return ok
}

func (s *Store) ApplyPredictions(gen uint64, points []models.PredictionPoint) bool {
	var ok bool
	s.Update(func(tx *Tx) { ok = tx.ApplyPredictions(gen, points) })
	return ok
}

// Notify overwrites the notification channel.
func (s *Store) Notify(sev models.Severity, message string, action models.OperationKind) {
	s.Update(func(tx *Tx) { tx.Notify(sev, message, action) })
}

// UpdateView applies fn to a copy of the view state and stores the result.
func (s *Store) UpdateView(fn func(v *models.ViewState)) {
	s.Update(func(tx *Tx) { tx.UpdateView(fn) })
}

func (s *Store) View() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyView(s.view)
}

func (s *Store) Notification() models.Notification {
	return s.notes.Current()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	gens := make(map[models.Slice]uint64, len(s.gens))
	for k, v := range s.gens {
		gens[k] = v
	}
	return Snapshot{
		Seq:          s.seq,
		Health:       s.health,
		Historical:   copyHistorical(s.historical),
		MarketLinks:  append([]models.MarketLink{}, s.links...),
		ModelInfo:    copyModelInfo(s.modelInfo),
		Predictions:  append([]models.PredictionPoint{}, s.predictions...),
		Action:       s.slots[models.SlotAction],
		Refresh:      s.slots[models.SlotRefresh],
		View:         copyView(s.view),
		Notification: s.notes.Current(),
		Generations:  gens,
	}
}

// Subscribe registers a listener. Sends never block: a subscriber whose
// buffer is full misses events and should re-read the snapshot.
func (s *Store) Subscribe(buf int) (int, <-chan ChangeEvent) {
	if buf <= 0 {
		buf = 1
	}
	ch := make(chan ChangeEvent, buf)
	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	n := len(s.subs)
	s.subsMu.Unlock()

	if s.metrics != nil {
		s.metrics.SetSubscribers(n)
	}
	return id, ch
}

// Unsubscribe removes and closes the subscriber channel.
func (s *Store) Unsubscribe(id int) {
	s.subsMu.Lock()
	ch, ok := s.subs[id]
	if ok {
		delete(s.subs, id)
		close(ch)
	}
	n := len(s.subs)
	s.subsMu.Unlock()

	if ok && s.metrics != nil {
		s.metrics.SetSubscribers(n)
	}
}

// Close drops every subscriber.
func (s *Store) Close() {
	s.subsMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subsMu.Unlock()

	if s.metrics != nil {
		s.metrics.SetSubscribers(0)
	}
}

func (s *Store) publish(evt ChangeEvent) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

type change struct {
	Slice models.Slice
	Kind  models.OperationKind
}

// Tx is the mutation handle passed to Store.Update. It must not escape fn.
type Tx struct {
	s       *Store
	changed []change
}

func (tx *Tx) mark(slice models.Slice, kind models.OperationKind) {
	tx.changed = append(tx.changed, change{Slice: slice, Kind: kind})
}

// Current reports whether gen is still the latest issued generation of slice.
func (tx *Tx) Current(slice models.Slice, gen uint64) bool {
	return tx.s.gens[slice] == gen
}

// Issue bumps the generation of slice inside the transaction.
func (tx *Tx) Issue(slice models.Slice) uint64 {
	tx.s.gens[slice]++
	return tx.s.gens[slice]
}

// LastPrice returns the price of the latest historical point.
func (tx *Tx) LastPrice() (float64, bool) {
	if n := len(tx.s.historical); n > 0 {
		return tx.s.historical[n-1].Price, true
	}
	return 0, false
}

func (tx *Tx) View() models.ViewState {
	return copyView(tx.s.view)
}

func (tx *Tx) Slot(slot models.Slot) models.OperationSlot {
	return tx.s.slots[slot]
}

func (tx *Tx) SetSlot(slot models.Slot, status models.OperationStatus, kind models.OperationKind, message string) {
	tx.s.slots[slot] = models.OperationSlot{Status: status, Kind: kind, Message: message}
	tx.mark(models.SliceOperation, kind)
	if tx.s.metrics != nil {
		tx.s.metrics.RecordSlotTransition(string(slot), string(status))
	}
}

func (tx *Tx) Notify(sev models.Severity, message string, action models.OperationKind) {
	tx.s.notes.Post(sev, message, action)
	tx.mark(models.SliceNotification, action)
}

func (tx *Tx) UpdateView(fn func(v *models.ViewState)) {
	v := copyView(tx.s.view)
	fn(&v)
	tx.s.view = v
	tx.mark(models.SliceView, "")
}

func (tx *Tx) stale(slice models.Slice, gen uint64) bool {
	if tx.Current(slice, gen) {
		return false
	}
	tx.s.log.Debug("discarding stale resolution",
		logger.String("slice", string(slice)),
		logger.Uint64("generation", gen),
		logger.Uint64("current", tx.s.gens[slice]),
	)
	if tx.s.metrics != nil {
		tx.s.metrics.RecordStaleDiscard(string(slice))
	}
	return true
}

func (tx *Tx) ApplyHealth(gen uint64, h models.ServiceHealth) bool {
	if tx.stale(models.SliceHealth, gen) {
		return false
	}
	tx.s.health = h
	tx.mark(models.SliceHealth, models.OpHealth)
	return true
}

// ApplyHistorical replaces the whole series.
func (tx *Tx) ApplyHistorical(gen uint64, points []models.HistoricalPoint) bool {
	if tx.stale(models.SliceHistorical, gen) {
		return false
	}
	tx.s.historical = copyHistorical(points)
	tx.mark(models.SliceHistorical, models.OpHistorical)
	return true
}

func (tx *Tx) ApplyMarketLinks(gen uint64, links []models.MarketLink) bool {
	if tx.stale(models.SliceMarketLinks, gen) {
		return false
	}
	tx.s.links = append([]models.MarketLink{}, links...)
	tx.mark(models.SliceMarketLinks, models.OpMarketLinks)
	return true
}

func (tx *Tx) ApplyModelInfo(gen uint64, info models.ModelInfo) bool {
	if tx.stale(models.SliceModelInfo, gen) {
		return false
	}
	tx.s.modelInfo = copyModelInfo(&info)
	tx.mark(models.SliceModelInfo, models.OpModelInfo)
	return true
}

// ApplyPredictions replaces the forecast wholesale; it is never merged.
func (tx *Tx) ApplyPredictions(gen uint64, points []models.PredictionPoint) bool {
	if tx.stale(models.SlicePredictions, gen) {
		return false
	}
	tx.s.predictions = append([]models.PredictionPoint{}, points...)
	tx.mark(models.SlicePredictions, models.OpPredict)
	return true
}
