package batches

import "time"

// BatchType distinguishes how a lot entered the warehouse.
type BatchType string

const (
	TypeNewPurchase    BatchType = "New Purchase"
	TypeCustomerReturn BatchType = "Customer Return"
)

// BatchStatus is the intake lifecycle state of a lot.
// The progression is strictly forward; no operation moves it back.
type BatchStatus string

const (
	StatusArrived    BatchStatus = "Arrived"
	StatusProcessing BatchStatus = "Processing"
	StatusInQC       BatchStatus = "In QC"
	StatusCompleted  BatchStatus = "Completed"
)

func statusRank(status BatchStatus) int {
	switch status {
	case StatusArrived:
		return 1
	case StatusProcessing:
		return 2
	case StatusInQC:
		return 3
	case StatusCompleted:
		return 4
	default:
		return 0
	}
}

// Input is the registration form for a new batch.
type Input struct {
	ID          string
	Type        BatchType
	Model       string
	Source      string
	Invoice     string
	Quantity    int
	ArrivalDate time.Time
}

// Batch is the aggregate for a received lot of devices.
// Invariant: every counter stays within 0..quantity after each mutation,
// and qcPass+defects never exceeds quantity.
type Batch struct {
	id          string
	batchType   BatchType
	model       string
	source      string
	invoice     string
	quantity    int
	arrivalDate time.Time

	qcPass    int
	defects   int
	assigned  int
	completed int

	status BatchStatus
}

// NewBatch creates a batch in Arrived state with zeroed counters.
func NewBatch(input Input) (*Batch, error) {
	if input.ID == "" || input.Model == "" {
		return nil, ErrInvalidInput
	}
	if input.Quantity < 0 {
		return nil, ErrInvalidInput
	}
	batchType := input.Type
	if batchType == "" {
		batchType = TypeNewPurchase
	}
	return &Batch{
		id:          input.ID,
		batchType:   batchType,
		model:       input.Model,
		source:      input.Source,
		invoice:     input.Invoice,
		quantity:    input.Quantity,
		arrivalDate: input.ArrivalDate,
		status:      StatusArrived,
	}, nil
}

// RecordQCOutcome adds classified pass/defect units to the counters.
// Fails with ErrCounterOverflow before mutating anything when the sum
// would exceed the batch quantity.
func (b *Batch) RecordQCOutcome(passDelta, defectDelta int) error {
	if passDelta < 0 || defectDelta < 0 {
		return ErrNegativeDelta
	}
	if b.qcPass+passDelta+b.defects+defectDelta > b.quantity {
		return ErrCounterOverflow
	}
	b.qcPass += passDelta
	b.defects += defectDelta
	if b.qcPass+b.defects > 0 {
		b.advance(StatusInQC)
	}
	return nil
}

// UndoQCOutcome compensates a failed cross-registry ingest by removing
// previously recorded deltas. The status advance is deliberately not
// reverted; status is monotonic.
func (b *Batch) UndoQCOutcome(passDelta, defectDelta int) {
	b.qcPass -= passDelta
	if b.qcPass < 0 {
		b.qcPass = 0
	}
	b.defects -= defectDelta
	if b.defects < 0 {
		b.defects = 0
	}
}

// RecordAssignment counts one more device handed to a technician.
// The first assignment moves an Arrived batch into Processing.
func (b *Batch) RecordAssignment() error {
	if b.assigned+1 > b.quantity {
		return ErrCounterOverflow
	}
	b.assigned++
	b.advance(StatusProcessing)
	return nil
}

// UndoAssignment compensates a failed cross-registry pairing.
// The status advance is deliberately not reverted; status is monotonic.
func (b *Batch) UndoAssignment() {
	if b.assigned > 0 {
		b.assigned--
	}
}

// RecordCompletion counts one more finished device and closes the batch
// once every unit is completed.
func (b *Batch) RecordCompletion() error {
	if b.completed+1 > b.quantity {
		return ErrCounterOverflow
	}
	b.completed++
	if b.completed == b.quantity {
		b.advance(StatusCompleted)
	}
	return nil
}

// advance moves the status forward, never backward.
func (b *Batch) advance(target BatchStatus) {
	if statusRank(target) > statusRank(b.status) {
		b.status = target
	}
}

// ID returns the batch key.
func (b *Batch) ID() string { return b.id }

// Type returns how the lot was sourced.
func (b *Batch) Type() BatchType { return b.batchType }

// Model returns the model name shared by the lot.
func (b *Batch) Model() string { return b.model }

// Source returns the supplier or customer the lot came from.
func (b *Batch) Source() string { return b.source }

// Invoice returns the intake invoice reference.
func (b *Batch) Invoice() string { return b.invoice }

// Quantity returns the number of units in the lot.
func (b *Batch) Quantity() int { return b.quantity }

// ArrivalDate returns when the lot arrived.
func (b *Batch) ArrivalDate() time.Time { return b.arrivalDate }

// QCPass returns the count of units that cleared QC.
func (b *Batch) QCPass() int { return b.qcPass }

// Defects returns the count of units flagged defective.
func (b *Batch) Defects() int { return b.defects }

// Assigned returns the count of units handed to technicians.
func (b *Batch) Assigned() int { return b.assigned }

// Completed returns the count of finished units.
func (b *Batch) Completed() int { return b.completed }

// Status returns the current lifecycle status.
func (b *Batch) Status() BatchStatus { return b.status }

// Clone returns a detached copy.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	copy := *b
	return &copy
}
