package entities

import "time"

// ConfigState is a step of the configuration state machine
type ConfigState string

const (
	StateReceived    ConfigState = "received"
	StateValidated   ConfigState = "validated"
	StateLiveApplied ConfigState = "live_applied"
	StatePersisted   ConfigState = "persisted"
	StateDone        ConfigState = "done"
	StateFailed      ConfigState = "failed"
)

var stateOrder = map[ConfigState]int{
	StateReceived:    0,
	StateValidated:   1,
	StateLiveApplied: 2,
	StatePersisted:   3,
	StateDone:        4,
}

// Reached reports whether s is at or beyond other in the happy path
func (s ConfigState) Reached(other ConfigState) bool {
	a, ok1 := stateOrder[s]
	b, ok2 := stateOrder[other]
	return ok1 && ok2 && a >= b
}

// ConfigureResult is the outcome of one configuration request.
// FurthestState is the last happy-path state reached, also when State is StateFailed.
type ConfigureResult struct {
	OperationID   string                   `json:"operation_id"`
	Interface     string                   `json:"interface"`
	Backend       BackendKind              `json:"backend"`
	Config        InterfaceConfig          `json:"config"`
	State         ConfigState              `json:"state"`
	FurthestState ConfigState              `json:"furthest_state"`
	Artifact      *GeneratedConfigArtifact `json:"artifact,omitempty"`
	Warnings      []string                 `json:"warnings,omitempty"`
	Duration      time.Duration            `json:"duration"`
}

// Advance moves the request forward
func (r *ConfigureResult) Advance(s ConfigState) {
	r.State = s
	r.FurthestState = s
}

// Fail marks the request failed, keeping the furthest state reached
func (r *ConfigureResult) Fail() {
	r.State = StateFailed
}

// LiveChanged reports whether the kernel state was modified
func (r *ConfigureResult) LiveChanged() bool {
	return r.FurthestState.Reached(StateLiveApplied)
}

// Durable reports whether the configuration will survive a reboot
func (r *ConfigureResult) Durable() bool {
	return r.FurthestState.Reached(StatePersisted)
}

// ControlResult is the outcome of restart, enable or disable
type ControlResult struct {
	OperationID    string      `json:"operation_id"`
	Interface      string      `json:"interface"`
	Action         string      `json:"action"`
	Backend        BackendKind `json:"backend"`
	Actions        []string    `json:"actions_performed"`
	ServiceSkipped bool        `json:"service_skipped"`
	Warnings       []string    `json:"warnings,omitempty"`
}

// CleanupResult is the outcome of removing generated artifacts
type CleanupResult struct {
	OperationID  string   `json:"operation_id"`
	Interface    string   `json:"interface"`
	RemovedCount int      `json:"removed_count"`
	Removed      []string `json:"removed,omitempty"`
}

// ValidationReport is the result of validating one persisted artifact
type ValidationReport struct {
	Interface         string       `json:"interface,omitempty"`
	Path              string       `json:"path"`
	Kind              ArtifactKind `json:"kind,omitempty"`
	SystemGenerated   bool         `json:"system_generated"`
	Valid             bool         `json:"valid"`
	Error             string       `json:"error,omitempty"`
	Permissions       string       `json:"permissions,omitempty"`
	PermissionWarning string       `json:"permission_warning,omitempty"`
}

// ApplyResult is the outcome of a backend-wide apply
type ApplyResult struct {
	Backend        BackendKind `json:"backend"`
	Actions        []string    `json:"actions_performed"`
	ServiceSkipped bool        `json:"service_skipped"`
}

// HostnameResult is the outcome of a hostname change
type HostnameResult struct {
	OldHostname string   `json:"old_hostname"`
	NewHostname string   `json:"new_hostname"`
	Changed     bool     `json:"changed"`
	Actions     []string `json:"actions_performed,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Route is one kernel routing table entry
type Route struct {
	Destination string `json:"destination"`
	Gateway     string `json:"gateway,omitempty"`
	Device      string `json:"device,omitempty"`
	Source      string `json:"source,omitempty"`
	Protocol    string `json:"protocol,omitempty"`
	Scope       string `json:"scope,omitempty"`
	Metric      int    `json:"metric"`
}

// HistoryRecord is one audited operation
type HistoryRecord struct {
	ID            int64         `json:"id,omitempty"`
	OperationID   string        `json:"operation_id"`
	Interface     string        `json:"interface"`
	Operation     string        `json:"operation"`
	Backend       BackendKind   `json:"backend"`
	RequestedMode AddressMode   `json:"requested_mode,omitempty"`
	FinalState    ConfigState   `json:"final_state"`
	FurthestState ConfigState   `json:"furthest_state"`
	ErrorType     string        `json:"error_type,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}
