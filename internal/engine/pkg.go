package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casalud/claims-validator/internal/extract"
	"github.com/casalud/claims-validator/internal/folder"
	"github.com/casalud/claims-validator/internal/rules"
	"github.com/casalud/claims-validator/internal/textnorm"
)

// validatePackage handles a monthly-package folder: per-service numbered
// documents for every service line the patient receives, validated
// against the package rule set and closed with aggregate composition
// checks.
func (e *Engine) validatePackage(r *FolderResult, files []folder.File, opts Options) {
	names := r.FileNames
	alternate := opts.Convention == rules.ConventionAlternate

	for _, name := range folder.UnexpectedPackageFiles(names, opts.Convention) {
		r.General().addError(KindUnexpectedFile, "Archivo no permitido: "+name)
	}

	detected := folder.DetectServices(names)
	hasConsolidated := alternate && containsConsolidated(names)

	// needsConsolidated marks services whose authorization lives in the
	// shared document rather than an individual one.
	needsConsolidated := make(map[rules.Service]bool)

	switch opts.PackageType {
	case PackageTherapies:
		e.checkTherapiesComposition(r, detected)
		for _, svc := range detectedInOrder(detected) {
			e.checkPackagePresence(r, svc, names, hasConsolidated, needsConsolidated)
		}
	default:
		e.checkBasicComposition(r, detected)
		for _, svc := range []rules.Service{rules.VM, rules.ENF} {
			e.checkPackagePresence(r, svc, names, hasConsolidated, needsConsolidated)
		}
	}

	if hasConsolidated && len(needsConsolidated) > 0 {
		e.processConsolidatedPackage(r, files, needsConsolidated, opts)
	}

	catalog := rules.PackageRules(opts.Convention)
	for _, svc := range detectedInOrder(detected) {
		sr, ok := r.Services[svc]
		if !ok {
			continue
		}
		for _, slot := range SlotOrder() {
			if sr.Slots[slot] != SlotFound {
				continue
			}
			if slot == SlotAuthorization && needsConsolidated[svc] {
				continue // already covered by the shared document
			}
			f, found := findServiceFile(files, slot, svc)
			if !found {
				continue
			}
			e.validatePackagePDF(r, f, svc, slot, catalog[svc], opts)
		}
	}

	e.checkPackageAggregates(r, opts)
}

func containsConsolidated(names []string) bool {
	for _, n := range names {
		if folder.IsConsolidatedAuthorization(n) {
			return true
		}
	}
	return false
}

// detectedInOrder returns the detected services in catalog order so
// processing and findings are deterministic.
func detectedInOrder(detected map[rules.Service]bool) []rules.Service {
	var out []rules.Service
	for _, svc := range rules.Services() {
		if detected[svc] {
			out = append(out, svc)
		}
	}
	return out
}

// checkBasicComposition enforces the basic package's service mix: VM and
// ENF, nothing else.
func (e *Engine) checkBasicComposition(r *FolderResult, detected map[rules.Service]bool) {
	var extra []string
	for _, svc := range detectedInOrder(detected) {
		if svc != rules.VM && svc != rules.ENF {
			extra = append(extra, string(svc))
		}
	}
	if len(extra) > 0 {
		r.General().addError(KindAggregate,
			"Paquete Crónico solo debe contener VM y ENF. Se encontró: "+strings.Join(extra, ", "))
	}
	if !detected[rules.VM] {
		r.General().addError(KindAggregate, "Paquete Crónico debe incluir servicio VM")
	}
	if !detected[rules.ENF] {
		r.General().addError(KindAggregate, "Paquete Crónico debe incluir servicio ENF")
	}
}

// checkTherapiesComposition enforces the therapies package's service
// mix: VM, ENF, and at least one therapy line.
func (e *Engine) checkTherapiesComposition(r *FolderResult, detected map[rules.Service]bool) {
	if !detected[rules.VM] {
		r.General().addError(KindAggregate, "Paquete debe incluir servicio VM")
	}
	if !detected[rules.ENF] {
		r.General().addError(KindAggregate, "Paquete debe incluir servicio ENF")
	}
	hasTherapy := false
	for _, t := range rules.TherapyServices() {
		if detected[t] {
			hasTherapy = true
			break
		}
	}
	if !hasTherapy {
		r.General().addError(KindAggregate,
			"Paquete debe incluir al menos un servicio de terapia (TF, TR o SUCCION)")
	}
}

// checkPackagePresence resolves each slot of one service to a file,
// recording the found/missing state and the consolidated fallback for the
// authorization slot.
func (e *Engine) checkPackagePresence(r *FolderResult, svc rules.Service, names []string,
	hasConsolidated bool, needsConsolidated map[rules.Service]bool) {

	sr := r.Service(svc)
	lower := strings.ToLower(string(svc))

	for _, slot := range SlotOrder() {
		individual := fmt.Sprintf("%s %s.pdf", slot, lower)
		found := false
		for _, n := range names {
			if strings.ToLower(n) == individual {
				found = true
				break
			}
		}
		if !found && slot == SlotAuthorization && hasConsolidated {
			found = true
			needsConsolidated[svc] = true
		}

		if found {
			sr.Slots[slot] = SlotFound
			sr.addSuccess(KindMissingFile, fmt.Sprintf("%s.pdf encontrado", slot))
		} else {
			sr.Slots[slot] = SlotMissing
			sr.addError(KindMissingFile, fmt.Sprintf("Falta %s.pdf", slot))
		}
	}
}

// processConsolidatedPackage reads the shared authorization once and
// fills counts for every service relying on it. A service's phrase being
// absent from the shared document is a folder-level error; counts from
// individual documents always win.
func (e *Engine) processConsolidatedPackage(r *FolderResult, files []folder.File,
	needs map[rules.Service]bool, opts Options) {

	var file folder.File
	found := false
	for _, f := range files {
		if folder.IsConsolidatedAuthorization(f.Name) && f.IsPDF() {
			file, found = f, true
			break
		}
	}
	if !found {
		return
	}

	doc, ok := e.readDocument(file)
	if !ok {
		r.General().addError(KindRead, "2 paq.pdf: error leyendo PDF")
		return
	}

	services := make([]rules.Service, 0, len(needs))
	for svc := range needs {
		services = append(services, svc)
	}
	sort.Slice(services, func(i, j int) bool { return services[i] < services[j] })

	for _, svc := range services {
		sr := r.Service(svc)
		checkIdentifier(sr, doc, r.DocumentNumber)

		phrase, ok := rules.AlternateAuthorizationPhrase(svc)
		if !ok {
			continue
		}
		if !textnorm.Contains(doc.normalized, phrase) {
			r.General().addError(KindContent, "2 paq.pdf: no contiene texto para "+string(svc))
			continue
		}
		if n, found := extract.TrailingNumber(doc.text, phrase); found {
			sr.SetAuthCount(n, false)
		}
	}
}

// validatePackagePDF runs the per-slot checks on one individual
// per-service document.
func (e *Engine) validatePackagePDF(r *FolderResult, f folder.File, svc rules.Service,
	slot Slot, slotRules rules.SlotRules, opts Options) {

	sr := r.Service(svc)
	alternate := opts.Convention == rules.ConventionAlternate

	doc, ok := e.readDocument(f)
	if !ok {
		sr.addError(KindRead, f.Name+": error leyendo PDF")
		sr.Slots[slot] = SlotContentError
		return
	}

	r.AllTimestamps = append(r.AllTimestamps, doc.dates...)

	if alternate && (slot == SlotAuthorization || slot == SlotClinicalRecord) {
		checkIdentifier(sr, doc, r.DocumentNumber)
	}

	switch slot {
	case SlotClinicalRecord:
		sr.Timestamps = doc.dates
		auditClinicalDates(sr, doc.dates)
	case SlotSignature:
		checkSignatureSheet(sr, doc)
	}

	rule, hasRule := packageRuleFor(slot, slotRules)
	if !hasRule {
		return
	}

	phrase, matched := findPhrase(doc.normalized, rule)
	if matched {
		sr.addSuccess(KindContent, fmt.Sprintf("%s.pdf: se encontró %q", slot, phrase))
	} else {
		sr.addError(KindContent, missingPhrasesMessage(string(slot)+".pdf", rule))
		sr.Slots[slot] = SlotContentError
	}

	if rule.ExtractNumber && matched && slot == SlotAuthorization {
		if n, found := extract.TrailingNumber(doc.text, phrase); found {
			sr.SetAuthCount(n, true)
		} else {
			sr.addError(KindContent,
				f.Name+": no se pudo extraer el número después del texto")
		}
	}

	if rule.Reconcile && slot == SlotClinicalRecord {
		reconcile(sr, len(doc.dates))
	}
}

func packageRuleFor(slot Slot, slotRules rules.SlotRules) (rules.Rule, bool) {
	switch slot {
	case SlotAuthorization:
		return slotRules.Authorization, true
	case SlotClinicalRecord:
		return slotRules.ClinicalRecord, true
	}
	return rules.Rule{}, false
}

// findServiceFile locates the individual document for {slot, service}.
func findServiceFile(files []folder.File, slot Slot, svc rules.Service) (folder.File, bool) {
	want := fmt.Sprintf("%s %s.pdf", slot, strings.ToLower(string(svc)))
	for _, f := range files {
		if strings.ToLower(f.Name) == want && f.IsPDF() {
			return f, true
		}
	}
	return folder.File{}, false
}

// checkPackageAggregates closes a package folder with its composition
// totals: the basic package needs exactly one physician and one nursing
// evolution; the therapies package needs the combined therapy evolutions
// within an inclusive range.
func (e *Engine) checkPackageAggregates(r *FolderResult, opts Options) {
	general := r.General()

	if opts.PackageType == PackageTherapies {
		countable := []rules.Service{rules.TF, rules.TR, rules.FON, rules.TO}
		total := 0
		for _, svc := range countable {
			if sr, ok := r.Services[svc]; ok {
				total += len(sr.Timestamps)
			}
		}
		switch {
		case total < 6:
			general.addError(KindAggregate, fmt.Sprintf(
				"Paquete Crónico con Terapias debe tener mínimo 6 terapias (tiene %d)", total))
		case total > 10:
			general.addError(KindAggregate, fmt.Sprintf(
				"Paquete Crónico con Terapias debe tener máximo 10 terapias (tiene %d)", total))
		default:
			general.addSuccess(KindAggregate, fmt.Sprintf(
				"Terapias (TF+TR+FON+TO): %d (6-10)", total))
		}
		return
	}

	for _, svc := range []rules.Service{rules.VM, rules.ENF} {
		count := 0
		if sr, ok := r.Services[svc]; ok {
			count = len(sr.Timestamps)
		}
		if count != 1 {
			general.addError(KindAggregate, fmt.Sprintf(
				"Paquete Crónico debe tener exactamente 1 evolución de %s (tiene %d)", svc, count))
		} else {
			general.addSuccess(KindAggregate, fmt.Sprintf("%s: 1 evolución", svc))
		}
	}
}
