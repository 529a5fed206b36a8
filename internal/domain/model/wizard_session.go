package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pawnworks/origination/internal/domain/event"
	"github.com/pawnworks/origination/internal/domain/service"
	"github.com/pawnworks/origination/internal/domain/validation"
	"github.com/pawnworks/origination/internal/domain/valueobject"
	"github.com/pawnworks/origination/internal/platform/events"
)

// ---------------------------------------------------------------------------
// WizardSession aggregate root (pawn loan origination workflow)
// ---------------------------------------------------------------------------

// Form field names shared between the session and its validation engine.
const (
	FieldLoanAmount       = "loanAmount"
	FieldMonthlyInterest  = "monthlyInterestAmount"
	FieldTransactionType  = "transactionType"
	FieldReferenceBarcode = "referenceBarcode"
	FieldStorageLocation  = "storageLocation"
)

const (
	// MinItems and MaxItems bound the collateral list length.
	MinItems = 1
	MaxItems = 8

	// StorageLocationTBD is the sentinel committed when no location was given.
	StorageLocationTBD = "TBD"
)

var barcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// Hooks are the optional callbacks a session owner registers to observe the
// workflow. They are fixed at construction and always invoked outside the
// session lock, so a hook may call back into the session. Nil hooks are
// skipped.
type Hooks struct {
	OnStageChange       func(valueobject.Stage)
	OnEligibilityChange func(EligibilitySnapshot)
	OnSubmitSuccess     func(PawnTransaction)
	OnSubmitError       func(error)
	OnNotice            func(string)
}

// GateError rejects a stage transition and names the missing condition.
type GateError struct {
	Stage  valueobject.Stage
	Reason string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Reason)
}

// WizardSession holds all mutable state of one origination workflow: form
// data, touched-field validation, the stage machine, the interest tracker
// and the live eligibility snapshot. It is created at workflow start and
// discarded on cancel or success.
//
// All state is guarded by an internal mutex, so asynchronous completions
// (eligibility results, degraded-mode notices) may land from other
// goroutines while the owner keeps editing. The eligibility trigger and all
// hooks fire after the lock is released.
type WizardSession struct {
	events.EventCollector

	mu sync.Mutex

	id        string
	stage     valueobject.Stage
	completed map[string]bool

	engine   *validation.Engine
	customer *Customer
	items    []ItemDraft

	policy  valueobject.FinancialPolicy
	tracker *service.InterestTracker

	snapshot *EligibilitySnapshot
	rateErr  *service.RateBoundError

	submitting bool
	committed  *PawnTransaction

	hooks              Hooks
	eligibilityTrigger func(customerID string, loanAmount int64)
}

// NewWizardSession starts a fresh workflow at the Customer stage with a
// single blank collateral entry.
func NewWizardSession(hooks Hooks) *WizardSession {
	return &WizardSession{
		id:        uuid.New().String(),
		stage:     valueobject.StageCustomer,
		completed: map[string]bool{},
		engine:    validation.NewEngine(sessionRules()),
		items:     []ItemDraft{{}},
		tracker:   service.NewInterestTracker(),
		hooks:     hooks,
	}
}

func sessionRules() map[string][]validation.Rule {
	newEntry := func(form validation.Form) bool {
		return form[FieldTransactionType] == valueobject.TransactionTypeNewEntry.String()
	}
	return map[string][]validation.Rule{
		FieldLoanAmount: {
			validation.IntegerAmount(validation.AmountOpts{Min: 1, Max: 50_000, Label: "Loan amount"}),
		},
		FieldMonthlyInterest: {
			validation.IntegerAmount(validation.AmountOpts{Min: 0, Max: 10_000, AllowZero: true, Label: "Monthly interest"}),
		},
		FieldTransactionType: {
			func(value string, _ validation.Form) validation.Result {
				if value == "" {
					return validation.Result{OK: true}
				}
				if _, err := valueobject.NewTransactionType(value); err != nil {
					return validation.Result{Message: "Select a valid transaction type"}
				}
				return validation.Result{OK: true}
			},
		},
		FieldReferenceBarcode: {
			validation.MaxLen(100, "Reference barcode must be at most 100 characters"),
			validation.Pattern(barcodePattern, "Reference barcode may only contain letters, digits, hyphens and underscores"),
			// Cross-field rule: a barcode is only meaningful on imported pawns.
			validation.When(newEntry, func(value string, _ validation.Form) validation.Result {
				if strings.TrimSpace(value) != "" {
					return validation.Result{Message: "Reference barcode only applies to imported transactions"}
				}
				return validation.Result{OK: true}
			}),
		},
		FieldStorageLocation: {
			validation.MaxLen(100, "Storage location must be at most 100 characters"),
		},
	}
}

// ---------------------------------------------------------------------------
// Identity and stage accessors
// ---------------------------------------------------------------------------

// ID is assigned at construction and never changes.
func (s *WizardSession) ID() string { return s.id }

func (s *WizardSession) Stage() valueobject.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Completed reports whether a stage has been passed through a gate.
func (s *WizardSession) Completed(stage valueobject.Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed[stage.String()]
}

// CompletedStages returns the completed stages in wizard order.
func (s *WizardSession) CompletedStages() []valueobject.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []valueobject.Stage
	for _, st := range valueobject.Stages() {
		if s.completed[st.String()] {
			out = append(out, st)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Customer
// ---------------------------------------------------------------------------

// SelectCustomer pins the customer for this session. Re-selecting replaces
// the previous choice and re-triggers eligibility.
func (s *WizardSession) SelectCustomer(c Customer) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("select customer: %w", err)
	}
	s.mu.Lock()
	s.customer = &c
	trigger, customerID, amount := s.recheckLocked()
	s.mu.Unlock()
	if trigger != nil {
		trigger(customerID, amount)
	}
	return nil
}

// Customer returns the selected customer, or nil before selection.
func (s *WizardSession) Customer() *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customer == nil {
		return nil
	}
	c := *s.customer
	return &c
}

// ---------------------------------------------------------------------------
// Collateral items
// ---------------------------------------------------------------------------

// Items returns a copy of the collateral draft list.
func (s *WizardSession) Items() []ItemDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ItemDraft, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem appends a blank entry, up to the maximum of eight.
func (s *WizardSession) AddItem() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= MaxItems {
		return fmt.Errorf("at most %d items per transaction", MaxItems)
	}
	s.items = append(s.items, ItemDraft{})
	return nil
}

// RemoveItem deletes the entry at index. The last remaining entry cannot be
// removed.
func (s *WizardSession) RemoveItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	if len(s.items) <= MinItems {
		return fmt.Errorf("at least %d item is required", MinItems)
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// UpdateItem rewrites the entry at index.
func (s *WizardSession) UpdateItem(index int, description, serialNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	if len([]rune(description)) > 200 {
		return fmt.Errorf("item description must be at most 200 characters")
	}
	if len([]rune(serialNumber)) > 20 {
		return fmt.Errorf("serial number must be at most 20 characters")
	}
	s.items[index] = ItemDraft{Description: description, SerialNumber: serialNumber}
	return nil
}

func (s *WizardSession) describedItems() []ItemDraft {
	var out []ItemDraft
	for _, it := range s.items {
		if it.HasDescription() {
			out = append(out, ItemDraft{
				Description:  strings.TrimSpace(it.Description),
				SerialNumber: strings.TrimSpace(it.SerialNumber),
			})
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Loan terms
// ---------------------------------------------------------------------------

// SetLoanAmount records a loan amount edit. When the interest has not been
// manually overridden, the policy default for the new amount is written into
// the interest field in the same batched update.
func (s *WizardSession) SetLoanAmount(raw string) {
	s.mu.Lock()
	amount, okAmount := parseAmount(raw)
	if !okAmount {
		s.engine.UpdateField(FieldLoanAmount, raw)
		s.tracker.Reset()
		s.recomputeRateBound()
		s.mu.Unlock()
		return
	}

	current, _ := s.monthlyInterestLocked()
	if suggested, write := s.tracker.OnLoanAmountChange(amount, current, s.policy); write {
		s.engine.UpdateFields(map[string]string{
			FieldLoanAmount:      raw,
			FieldMonthlyInterest: strconv.FormatInt(suggested, 10),
		})
	} else {
		s.engine.UpdateField(FieldLoanAmount, raw)
	}

	s.recomputeRateBound()
	trigger, customerID, checkAmount := s.recheckLocked()
	s.mu.Unlock()
	if trigger != nil {
		trigger(customerID, checkAmount)
	}
}

// SetMonthlyInterest records a manual interest edit.
func (s *WizardSession) SetMonthlyInterest(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.UpdateField(FieldMonthlyInterest, raw)
	s.recomputeRateBound()
}

// SetTransactionType selects the transaction type. Switching to NewEntry
// also clears the reference barcode, applied as one batched update so
// cross-field rules never observe a half-applied form.
func (s *WizardSession) SetTransactionType(t valueobject.TransactionType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update := map[string]string{FieldTransactionType: t.String()}
	if t.Equal(valueobject.TransactionTypeNewEntry) {
		update[FieldReferenceBarcode] = ""
	}
	s.engine.UpdateFields(update)
}

// SetReferenceBarcode records the optional barcode of an imported pawn.
func (s *WizardSession) SetReferenceBarcode(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.UpdateField(FieldReferenceBarcode, raw)
}

// SetStorageLocation records where the collateral will be stored.
func (s *WizardSession) SetStorageLocation(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.UpdateField(FieldStorageLocation, raw)
}

// LoanAmount returns the parsed loan amount; ok is false while the field is
// empty or not a whole number.
func (s *WizardSession) LoanAmount() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loanAmountLocked()
}

// MonthlyInterest returns the parsed interest amount.
func (s *WizardSession) MonthlyInterest() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monthlyInterestLocked()
}

// TransactionType returns the selected type, zero before a selection.
func (s *WizardSession) TransactionType() valueobject.TransactionType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactionTypeLocked()
}

func (s *WizardSession) loanAmountLocked() (int64, bool) {
	return parseAmount(s.engine.Value(FieldLoanAmount))
}

func (s *WizardSession) monthlyInterestLocked() (int64, bool) {
	return parseAmount(s.engine.Value(FieldMonthlyInterest))
}

func (s *WizardSession) transactionTypeLocked() valueobject.TransactionType {
	t, err := valueobject.NewTransactionType(s.engine.Value(FieldTransactionType))
	if err != nil {
		return valueobject.TransactionType{}
	}
	return t
}

func parseAmount(raw string) (int64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.ContainsAny(v, ".,") {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ---------------------------------------------------------------------------
// Policy and eligibility
// ---------------------------------------------------------------------------

// ApplyPolicy installs the financial policy, recomputes the suggested
// interest for the current amount (unless manually overridden) and refreshes
// the rate-bound check.
func (s *WizardSession) ApplyPolicy(p valueobject.FinancialPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = p
	if amount, ok := s.loanAmountLocked(); ok {
		current, _ := s.monthlyInterestLocked()
		if suggested, write := s.tracker.OnLoanAmountChange(amount, current, s.policy); write {
			s.engine.UpdateField(FieldMonthlyInterest, strconv.FormatInt(suggested, 10))
		}
	}
	s.recomputeRateBound()
}

// Policy returns the session's financial policy; zero until loaded.
func (s *WizardSession) Policy() valueobject.FinancialPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// ApplyEligibility installs a fresh snapshot, superseding any previous one.
// It is the landing point for evaluator goroutines, so it takes the session
// lock itself; the change hook runs after the lock is released.
func (s *WizardSession) ApplyEligibility(snap EligibilitySnapshot) {
	s.mu.Lock()
	s.snapshot = &snap
	if s.customer != nil {
		amount, _ := s.loanAmountLocked()
		s.EventCollector.Record(event.NewEligibilityEvaluated(s.id, s.customer.PhoneNumber, amount, snap.Eligible, snap.Reasons))
	}
	s.mu.Unlock()
	if s.hooks.OnEligibilityChange != nil {
		s.hooks.OnEligibilityChange(snap)
	}
}

// Eligibility returns the live snapshot, or nil while none has resolved.
func (s *WizardSession) Eligibility() *EligibilitySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil
	}
	snap := *s.snapshot
	return &snap
}

// Notice surfaces a non-blocking degraded-mode message (policy or
// eligibility fetch failure) to the session owner.
func (s *WizardSession) Notice(msg string) {
	if s.hooks.OnNotice != nil {
		s.hooks.OnNotice(msg)
	}
}

// BindEligibilityTrigger registers the callback fired whenever the selected
// customer or the loan amount changes and a re-check is due.
func (s *WizardSession) BindEligibilityTrigger(fn func(customerID string, loanAmount int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligibilityTrigger = fn
}

// recheckLocked captures the re-check trigger and its arguments under the
// lock. The caller invokes the returned trigger only after unlocking, so the
// evaluator never observes the session lock held.
func (s *WizardSession) recheckLocked() (func(string, int64), string, int64) {
	if s.eligibilityTrigger == nil || s.customer == nil {
		return nil, "", 0
	}
	amount, _ := s.loanAmountLocked()
	return s.eligibilityTrigger, s.customer.PhoneNumber, amount
}

// RateBoundError returns the active rate-policy violation, or nil.
func (s *WizardSession) RateBoundError() *service.RateBoundError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rateErr
}

func (s *WizardSession) recomputeRateBound() {
	amount, okAmount := s.loanAmountLocked()
	interest, okInterest := s.monthlyInterestLocked()
	if !okAmount || !okInterest {
		s.rateErr = nil
		return
	}
	s.rateErr = service.CheckRateBounds(amount, interest, s.policy)
}

// ---------------------------------------------------------------------------
// Validation passthrough
// ---------------------------------------------------------------------------

// FieldError returns the surfaced validation error for a field, if any.
// Untouched fields never surface errors.
func (s *WizardSession) FieldError(field string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Error(field)
}

// ValidateAll marks every field touched and returns the aggregate verdict.
func (s *WizardSession) ValidateAll() validation.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ValidateAll()
}

// ---------------------------------------------------------------------------
// Domain events
// ---------------------------------------------------------------------------

// Events returns the collected domain events. It takes the session lock so
// drains coexist with events recorded by asynchronous completions.
func (s *WizardSession) Events() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.EventCollector.Events()
}

// ClearEvents drains the collected domain events.
func (s *WizardSession) ClearEvents() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.EventCollector.ClearEvents()
}

// Record appends a domain event under the session lock.
func (s *WizardSession) Record(evt events.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EventCollector.Record(evt)
}

// ---------------------------------------------------------------------------
// Stage machine
// ---------------------------------------------------------------------------

// Next advances one stage forward through its gate.
func (s *WizardSession) Next() error {
	s.mu.Lock()
	next, err := s.stage.Next()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	notify, err := s.goToLocked(next)
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
	return err
}

// Back moves one stage backward; backward moves are never gated.
func (s *WizardSession) Back() error {
	s.mu.Lock()
	i := s.stage.Index()
	if i <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("already at the first stage")
	}
	notify, err := s.goToLocked(valueobject.Stages()[i-1])
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
	return err
}

// GoTo transitions to target. Forward moves pass the gate of every stage
// being left; entering Review is additionally re-checked regardless of
// direction, because data may have changed since the Loan gate last ran.
// On gate failure the stage is unchanged and a GateError names the missing
// condition.
func (s *WizardSession) GoTo(target valueobject.Stage) error {
	s.mu.Lock()
	notify, err := s.goToLocked(target)
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
	return err
}

// goToLocked performs the transition and returns the stage-change
// notification to run once the lock is released.
func (s *WizardSession) goToLocked(target valueobject.Stage) (func(), error) {
	if target.IsZero() || target.Index() < 0 {
		return nil, valueobject.ErrInvalidStageTransition
	}
	if target.Equal(s.stage) {
		return nil, nil
	}

	if s.stage.Before(target) {
		order := valueobject.Stages()
		for i := s.stage.Index(); i < target.Index(); i++ {
			if gateErr := s.leaveGate(order[i]); gateErr != nil {
				return nil, gateErr
			}
		}
	}
	if target.Equal(valueobject.StageReview) {
		if gateErr := s.reviewGate(); gateErr != nil {
			return nil, gateErr
		}
	}

	if s.stage.Before(target) {
		order := valueobject.Stages()
		for i := s.stage.Index(); i < target.Index(); i++ {
			s.completed[order[i].String()] = true
		}
	}

	from := s.stage
	s.stage = target
	s.EventCollector.Record(event.NewWizardStageChanged(s.id, from.String(), target.String()))
	if s.hooks.OnStageChange == nil {
		return nil, nil
	}
	hook := s.hooks.OnStageChange
	return func() { hook(target) }, nil
}

// leaveGate validates the stage being left on a forward move.
func (s *WizardSession) leaveGate(stage valueobject.Stage) *GateError {
	switch {
	case stage.Equal(valueobject.StageCustomer):
		if s.customer == nil {
			return &GateError{Stage: stage, Reason: "select a customer before continuing"}
		}
	case stage.Equal(valueobject.StageItems):
		if len(s.describedItems()) == 0 {
			return &GateError{Stage: stage, Reason: "describe at least one collateral item"}
		}
	case stage.Equal(valueobject.StageLoan):
		return s.loanGate(stage)
	}
	return nil
}

func (s *WizardSession) loanGate(stage valueobject.Stage) *GateError {
	if _, ok := s.loanAmountLocked(); !ok {
		return &GateError{Stage: stage, Reason: "enter a whole-dollar loan amount"}
	}
	if res := s.engine.ValidateField(FieldLoanAmount, s.engine.Value(FieldLoanAmount)); !res.OK {
		return &GateError{Stage: stage, Reason: res.Message}
	}
	if _, ok := s.monthlyInterestLocked(); !ok {
		return &GateError{Stage: stage, Reason: "enter a whole-dollar monthly interest amount"}
	}
	if res := s.engine.ValidateField(FieldMonthlyInterest, s.engine.Value(FieldMonthlyInterest)); !res.OK {
		return &GateError{Stage: stage, Reason: res.Message}
	}
	if s.transactionTypeLocked().IsZero() {
		return &GateError{Stage: stage, Reason: "select a transaction type"}
	}
	if s.rateErr != nil {
		return &GateError{Stage: stage, Reason: s.rateErr.Error()}
	}
	// An unresolved (nil) snapshot does not block navigation; a resolved
	// denial does. Submission separately requires a resolved approval.
	if s.snapshot != nil && !s.snapshot.Eligible {
		return &GateError{Stage: stage, Reason: "customer is not eligible: " + strings.Join(s.snapshot.Reasons, "; ")}
	}
	return nil
}

// reviewGate re-validates every earlier stage's conditions on entry to
// Review, in either direction.
func (s *WizardSession) reviewGate() *GateError {
	for _, stage := range []valueobject.Stage{
		valueobject.StageCustomer, valueobject.StageItems, valueobject.StageLoan,
	} {
		if gateErr := s.leaveGate(stage); gateErr != nil {
			return gateErr
		}
	}
	return nil
}
