package engine

import "github.com/casalud/claims-validator/internal/rules"

// Mode selects how a folder's files are interpreted.
type Mode string

const (
	ModeEvent   Mode = "event"
	ModePackage Mode = "package"
)

// PackageType is the monthly-package subtype.
type PackageType string

const (
	PackageBasic     PackageType = "basic"
	PackageTherapies PackageType = "therapies"
)

// Status is the three-state outcome of a service or folder. Errors
// dominate warnings, warnings dominate clean.
type Status string

const (
	StatusClean   Status = "sin-errores"
	StatusWarned  Status = "con-alertas"
	StatusErrored Status = "con-errores"
)

// ServiceRecord accumulates everything observed for one service within
// one folder.
type ServiceRecord struct {
	// AuthCount is the authorized visit count read from the
	// authorization slot; AuthCountSet distinguishes "zero" from
	// "never seen".
	AuthCount    int
	AuthCountSet bool
	// AuthFromIndividual marks a count taken from the service's own
	// document. A consolidated multi-service document never overwrites
	// such a count.
	AuthFromIndividual bool

	// Timestamps are the evolution-record dates from the clinical
	// record slot, in document order, duplicates preserved.
	Timestamps []string

	// Slots is the presence state per document slot.
	Slots map[Slot]SlotStatus

	Errors    []Finding
	Warnings  []Finding
	Successes []Finding
}

func newServiceRecord() *ServiceRecord {
	return &ServiceRecord{Slots: make(map[Slot]SlotStatus)}
}

// SetAuthCount records an authorization count, honoring the precedence
// of individual evidence over consolidated evidence.
func (sr *ServiceRecord) SetAuthCount(n int, individual bool) {
	if sr.AuthCountSet && sr.AuthFromIndividual && !individual {
		return
	}
	sr.AuthCount = n
	sr.AuthCountSet = true
	if individual {
		sr.AuthFromIndividual = true
	}
}

func (sr *ServiceRecord) addError(kind FindingKind, msg string) {
	sr.Errors = append(sr.Errors, finding(kind, msg))
}

func (sr *ServiceRecord) addWarning(kind FindingKind, msg string) {
	sr.Warnings = append(sr.Warnings, finding(kind, msg))
}

func (sr *ServiceRecord) addSuccess(kind FindingKind, msg string) {
	sr.Successes = append(sr.Successes, finding(kind, msg))
}

// Status classifies this service record.
func (sr *ServiceRecord) Status() Status {
	switch {
	case len(sr.Errors) > 0:
		return StatusErrored
	case len(sr.Warnings) > 0:
		return StatusWarned
	default:
		return StatusClean
	}
}

// FolderResult is the complete validation outcome for one folder. Its
// shape is fixed regardless of mode; fields a mode does not use stay
// empty. Once a folder's processing finishes, the result is read-only.
type FolderResult struct {
	Folder         string
	DocumentNumber string
	Mode           Mode
	PackageType    PackageType
	Convention     rules.Convention

	// FolderType is the service type detected from the folder name in
	// event mode; empty when undetected or in package mode.
	FolderType rules.Service

	// Services holds one record per detected service plus, when
	// folder-level findings exist, the General pseudo-service.
	Services map[rules.Service]*ServiceRecord

	// EventFiles tracks the generic numbered documents of event mode.
	EventFiles map[string]SlotStatus

	// AllTimestamps aggregates every visit date seen in the folder.
	AllTimestamps []string

	// FileNames lists the folder's input files as received.
	FileNames []string
}

func newFolderResult(name string, docNumber string, opts Options) *FolderResult {
	r := &FolderResult{
		Folder:         name,
		DocumentNumber: docNumber,
		Mode:           opts.Mode,
		Convention:     opts.Convention,
		Services:       make(map[rules.Service]*ServiceRecord),
		EventFiles:     make(map[string]SlotStatus),
	}
	if opts.Mode == ModePackage {
		r.PackageType = opts.PackageType
	}
	return r
}

// Service returns the record for svc, creating it on first use.
func (r *FolderResult) Service(svc rules.Service) *ServiceRecord {
	sr, ok := r.Services[svc]
	if !ok {
		sr = newServiceRecord()
		r.Services[svc] = sr
	}
	return sr
}

// General returns the pseudo-service record for folder-level findings.
func (r *FolderResult) General() *ServiceRecord {
	return r.Service(rules.General)
}

// Status classifies the whole folder as the worst status across all of
// its service records.
func (r *FolderResult) Status() Status {
	status := StatusClean
	for _, sr := range r.Services {
		switch sr.Status() {
		case StatusErrored:
			return StatusErrored
		case StatusWarned:
			status = StatusWarned
		}
	}
	return status
}

// ServiceStatus classifies one service, treating an absent record as
// clean.
func (r *FolderResult) ServiceStatus(svc rules.Service) Status {
	sr, ok := r.Services[svc]
	if !ok {
		return StatusClean
	}
	return sr.Status()
}
