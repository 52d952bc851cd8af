package batches

import "time"

// Record is the flat persistence shape of a batch.
type Record struct {
	ID          string
	Type        BatchType
	Model       string
	Source      string
	Invoice     string
	Quantity    int
	ArrivalDate time.Time
	QCPass      int
	Defects     int
	Assigned    int
	Completed   int
	Status      BatchStatus
}

// Record returns the flat persistence shape of the batch.
func (b *Batch) Record() Record {
	return Record{
		ID:          b.id,
		Type:        b.batchType,
		Model:       b.model,
		Source:      b.source,
		Invoice:     b.invoice,
		Quantity:    b.quantity,
		ArrivalDate: b.arrivalDate,
		QCPass:      b.qcPass,
		Defects:     b.defects,
		Assigned:    b.assigned,
		Completed:   b.completed,
		Status:      b.status,
	}
}

// Restore rebuilds a batch from its persisted record. Counters outside
// the quantity bound are rejected rather than silently clamped.
func Restore(record Record) (*Batch, error) {
	if record.ID == "" || record.Model == "" || record.Quantity < 0 {
		return nil, ErrInvalidInput
	}
	if record.QCPass < 0 || record.Defects < 0 || record.Assigned < 0 || record.Completed < 0 {
		return nil, ErrInvalidInput
	}
	if record.QCPass+record.Defects > record.Quantity ||
		record.Assigned > record.Quantity || record.Completed > record.Quantity {
		return nil, ErrCounterOverflow
	}
	status := record.Status
	if status == "" {
		status = StatusArrived
	}
	return &Batch{
		id:          record.ID,
		batchType:   record.Type,
		model:       record.Model,
		source:      record.Source,
		invoice:     record.Invoice,
		quantity:    record.Quantity,
		arrivalDate: record.ArrivalDate,
		qcPass:      record.QCPass,
		defects:     record.Defects,
		assigned:    record.Assigned,
		completed:   record.Completed,
		status:      status,
	}, nil
}
