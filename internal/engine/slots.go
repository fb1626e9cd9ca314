package engine

// Slot is a document role within one service's paperwork. The string
// value is the leading number the role carries in file names.
type Slot string

const (
	SlotAuthorization  Slot = "2"
	SlotSignature      Slot = "4"
	SlotClinicalRecord Slot = "5"
)

// slotDeps is the processing dependency graph. Reconciliation reads the
// authorization count while processing the clinical record, so the
// clinical record must come after the authorization; the signature sheet
// is checked last.
var slotDeps = map[Slot][]Slot{
	SlotAuthorization:  nil,
	SlotClinicalRecord: {SlotAuthorization},
	SlotSignature:      {SlotClinicalRecord},
}

// slotSeed fixes iteration order so the topological walk is
// deterministic.
var slotSeed = []Slot{SlotAuthorization, SlotClinicalRecord, SlotSignature}

// SlotOrder returns the slots in a processing order that satisfies
// slotDeps.
func SlotOrder() []Slot {
	done := make(map[Slot]bool, len(slotSeed))
	order := make([]Slot, 0, len(slotSeed))

	var visit func(s Slot)
	visit = func(s Slot) {
		if done[s] {
			return
		}
		done[s] = true
		for _, dep := range slotDeps[s] {
			visit(dep)
		}
		order = append(order, s)
	}
	for _, s := range slotSeed {
		visit(s)
	}
	return order
}

// SlotStatus is the presence state of one slot's document.
type SlotStatus string

const (
	SlotUnknown      SlotStatus = ""
	SlotFound        SlotStatus = "found"
	SlotMissing      SlotStatus = "missing"
	SlotContentError SlotStatus = "content-error"
)
