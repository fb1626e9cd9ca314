package engine

// FindingKind classifies a validation outcome so downstream consumers
// can bucket findings without parsing message strings.
type FindingKind string

const (
	// KindMissingFile marks an expected document that is absent.
	KindMissingFile FindingKind = "missing-file"
	// KindUnexpectedFile marks a file that does not belong in the folder.
	KindUnexpectedFile FindingKind = "unexpected-file"
	// KindContent marks a required phrase or value absent from a document.
	KindContent FindingKind = "content"
	// KindIdentifier marks the patient document-number presence check.
	KindIdentifier FindingKind = "identifier"
	// KindReconciliation marks authorization-vs-evolution count checks.
	KindReconciliation FindingKind = "reconciliation"
	// KindRead marks a document whose bytes could not be parsed.
	KindRead FindingKind = "read"
	// KindAggregate marks folder-level package composition checks.
	KindAggregate FindingKind = "aggregate"
	// KindStructure marks structural document checks (page count, folder
	// naming, signature-sheet shape).
	KindStructure FindingKind = "structure"
)

// Finding is one validation outcome: a category plus a human-readable
// message. The message is final display text; the kind is the machine
// handle.
type Finding struct {
	Kind    FindingKind
	Message string
}

func finding(kind FindingKind, msg string) Finding {
	return Finding{Kind: kind, Message: msg}
}
