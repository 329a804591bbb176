package ipc

// StartRequest starts the monitoring services.
type StartRequest struct{}

// StartResponse indicates whether the services were started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the monitoring services.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// ModuleStatus describes one module in a status response.
type ModuleStatus struct {
	Name            string `json:"name"`
	Enabled         bool   `json:"enabled"`
	Running         bool   `json:"running"`
	IntervalSeconds int    `json:"interval_seconds"`
	EntryCount      int    `json:"entry_count"`
}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Mountpoint   string         `json:"mountpoint"`
	LockPath     string         `json:"lock_path"`
	HistoryPath  string         `json:"history_path"`
	TriggerCount int            `json:"trigger_count"`
	Modules      []ModuleStatus `json:"modules"`
}

// ModuleListRequest lists registered modules.
type ModuleListRequest struct{}

// ModuleListResponse contains registered module names.
type ModuleListResponse struct {
	Names []string `json:"names"`
}

// ModuleEntriesRequest lists the entries of one module.
type ModuleEntriesRequest struct {
	Module string `json:"module"`
}

// ModuleEntry is one filesystem entry of a module.
type ModuleEntry struct {
	Path      string `json:"path"`
	WriteOnly bool   `json:"write_only"`
	Writable  bool   `json:"writable"`
}

// ModuleEntriesResponse contains a module's entries.
type ModuleEntriesResponse struct {
	Entries []ModuleEntry `json:"entries"`
}

// ModuleReadRequest reads one entry value.
type ModuleReadRequest struct {
	Module string `json:"module"`
	Entry  string `json:"entry"`
}

// ModuleReadResponse carries one rendered entry value.
type ModuleReadResponse struct {
	Value string `json:"value"`
}

// ModuleJSONRequest renders a module's JSON aggregate.
type ModuleJSONRequest struct {
	Module string `json:"module"`
}

// ModuleJSONResponse carries the JSON aggregate.
type ModuleJSONResponse struct {
	JSON string `json:"json"`
}

// ModuleShellRequest renders a module's shell aggregate.
type ModuleShellRequest struct {
	Module string `json:"module"`
}

// ModuleShellResponse carries the shell aggregate.
type ModuleShellResponse struct {
	Shell string `json:"shell"`
}

// TriggerListRequest lists loaded trigger rules.
type TriggerListRequest struct{}

// Trigger is one loaded rule for display purposes.
type Trigger struct {
	Kind     string `json:"kind"`
	Path     string `json:"path"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
	Command  string `json:"command"`
	Source   string `json:"source"`
	Line     int    `json:"line"`
}

// TriggerListResponse contains the loaded rules.
type TriggerListResponse struct {
	Triggers []Trigger `json:"triggers"`
}

// TrashEmptyRequest empties the trash via the trash module.
type TrashEmptyRequest struct{}

// TrashEmptyResponse indicates the empty result.
type TrashEmptyResponse struct {
	Emptied bool `json:"emptied"`
}

// HistoryQueryRequest fetches persisted metric transitions.
type HistoryQueryRequest struct {
	Module string `json:"module"`
	Entry  string `json:"entry"`
	Limit  int    `json:"limit"`
}

// HistoryRecord is one persisted transition.
type HistoryRecord struct {
	ID         int64  `json:"id"`
	RecordedAt string `json:"recorded_at"`
	Module     string `json:"module"`
	Entry      string `json:"entry"`
	Kind       string `json:"kind"`
	Old        string `json:"old"`
	New        string `json:"new"`
}

// HistoryQueryResponse contains matching records, newest first.
type HistoryQueryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
