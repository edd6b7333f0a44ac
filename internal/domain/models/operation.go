package models

import "time"

type OperationStatus string

const (
	StatusIdle      OperationStatus = "idle"
	StatusLoading   OperationStatus = "loading"
	StatusSucceeded OperationStatus = "succeeded"
	StatusFailed    OperationStatus = "failed"
)

type OperationKind string

const (
	OpTrain       OperationKind = "train"
	OpPredict     OperationKind = "predict"
	OpRefresh     OperationKind = "refresh"
	OpHealth      OperationKind = "health"
	OpHistorical  OperationKind = "historical"
	OpMarketLinks OperationKind = "market_links"
	OpModelInfo   OperationKind = "model_info"
)

// Slot names a mutually exclusive operation lane.
type Slot string

const (
	// SlotAction is shared by train and predict.
	SlotAction  Slot = "action"
	SlotRefresh Slot = "refresh"
)

// OperationSlot is the status of the most recently invoked operation in a lane.
type OperationSlot struct {
	Status  OperationStatus `json:"status"`
	Kind    OperationKind   `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (s OperationSlot) Loading() bool { return s.Status == StatusLoading }

// Slice names an independently updated part of the application state.
type Slice string

const (
	SliceHealth       Slice = "health"
	SliceHistorical   Slice = "historical"
	SliceMarketLinks  Slice = "market_links"
	SliceModelInfo    Slice = "model_info"
	SlicePredictions  Slice = "predictions"
	SliceView         Slice = "view"
	SliceNotification Slice = "notification"
	SliceOperation    Slice = "operation"
)

type Severity string

const (
	SeverityNone    Severity = "none"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is the single user-facing status message.
type Notification struct {
	ID       string        `json:"id,omitempty"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Action   OperationKind `json:"action,omitempty"`
	At       time.Time     `json:"at"`
}
