package engine

import (
	"sort"
	"strings"

	"github.com/casalud/claims-validator/internal/extract"
	"github.com/casalud/claims-validator/internal/folder"
	"github.com/casalud/claims-validator/internal/rules"
	"github.com/casalud/claims-validator/internal/textnorm"
)

// validateEvent handles a single-event folder: one trio of generic
// numbered documents, or, under the alternate convention, per-service
// documents plus an optional consolidated authorization.
func (e *Engine) validateEvent(r *FolderResult, files []folder.File, opts Options) {
	names := r.FileNames

	if t, ok := folder.DetectFolderType(r.Folder); ok {
		r.FolderType = t
	} else if opts.Convention != rules.ConventionAlternate {
		// Alternate-convention folders may be bare patient numbers
		// carrying several services; everywhere else the type is
		// mandatory.
		r.General().addError(KindStructure, folderTypeMessage())
	}

	for _, name := range folder.UnexpectedEventFiles(names, opts.Convention) {
		r.General().addError(KindUnexpectedFile, "Archivo no permitido: "+name)
	}

	e.checkEventPresence(r, names, opts)

	pdfs := make([]folder.File, 0, len(files))
	var consolidated *folder.File
	for _, f := range files {
		if !f.IsPDF() {
			continue
		}
		if opts.Convention == rules.ConventionAlternate && folder.IsConsolidatedAuthorization(f.Name) {
			consolidated = &f
			continue
		}
		pdfs = append(pdfs, f)
	}

	// The consolidated authorization runs before everything else so its
	// counts are available when the per-service clinical records
	// reconcile.
	if consolidated != nil {
		e.processConsolidatedEvent(r, *consolidated, names)
	}

	for _, f := range sortByLeadingNumber(pdfs) {
		e.validateEventPDF(r, f, opts)
	}
}

func folderTypeMessage() string {
	codes := rules.FolderTypes()
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return "Por Evento: la carpeta debe incluir un tipo válido (" +
		strings.Join(parts, ", ") + ")"
}

// checkEventPresence verifies the generic numbered documents exist.
// Under the alternate convention a per-service file ("2 vm.pdf") counts
// for its number and the receipt (3.pdf) is optional.
func (e *Engine) checkEventPresence(r *FolderResult, names []string, opts Options) {
	hasExact := func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}

	if opts.Convention == rules.ConventionAlternate {
		hasNumbered := func(num string) bool {
			for _, n := range names {
				if strings.HasPrefix(strings.ToLower(n), num+" ") {
					return true
				}
			}
			return false
		}
		for _, num := range []string{"2", "4", "5"} {
			key := num + ".pdf"
			if hasExact(key) || hasNumbered(num) {
				r.EventFiles[key] = SlotFound
			} else {
				r.EventFiles[key] = SlotMissing
				r.General().addError(KindMissingFile, "Falta "+key)
			}
		}
		if hasExact("3.pdf") {
			r.EventFiles["3.pdf"] = SlotFound
		}
		return
	}

	for _, key := range []string{"2.pdf", "3.pdf", "4.pdf", "5.pdf"} {
		if hasExact(key) {
			r.EventFiles[key] = SlotFound
		} else {
			r.EventFiles[key] = SlotMissing
			r.General().addError(KindMissingFile, "Falta "+key)
		}
	}
}

// processConsolidatedEvent reads the shared authorization document once
// and fills authorization counts for every service that has a clinical
// record in the folder. Counts already taken from an individual document
// are never replaced.
func (e *Engine) processConsolidatedEvent(r *FolderResult, f folder.File, names []string) {
	services := make([]rules.Service, 0, 4)
	for _, name := range names {
		if slot, svc, ok := folder.ServiceFile(name); ok && Slot(slot) == SlotClinicalRecord {
			services = append(services, svc)
		}
	}
	if len(services) == 0 {
		return
	}
	sort.Slice(services, func(i, j int) bool { return services[i] < services[j] })

	doc, ok := e.readDocument(f)
	if !ok {
		r.General().addError(KindRead, "2 paq.pdf: error leyendo PDF")
		return
	}

	for _, svc := range services {
		phrase, ok := rules.AlternateAuthorizationPhrase(svc)
		if !ok || !textnorm.Contains(doc.normalized, phrase) {
			continue
		}
		if n, found := extract.TrailingNumber(doc.text, phrase); found {
			r.Service(svc).SetAuthCount(n, false)
		}
	}
}

// validateEventPDF runs every applicable check on one event document.
func (e *Engine) validateEventPDF(r *FolderResult, f folder.File, opts Options) {
	alternate := opts.Convention == rules.ConventionAlternate

	var svc rules.Service
	var slot Slot
	isService := false
	if alternate {
		if s, sv, ok := folder.ServiceFile(f.Name); ok {
			slot, svc, isService = Slot(s), sv, true
		}
	}

	doc, ok := e.readDocument(f)
	if !ok {
		if isService {
			sr := r.Service(svc)
			sr.addError(KindRead, f.Name+": error leyendo PDF")
			sr.Slots[slot] = SlotContentError
		} else {
			r.General().addError(KindRead, f.Name+": error leyendo PDF")
			if _, tracked := r.EventFiles[f.Name]; tracked {
				r.EventFiles[f.Name] = SlotContentError
			}
		}
		return
	}

	r.AllTimestamps = append(r.AllTimestamps, doc.dates...)
	if isService && slot == SlotClinicalRecord {
		sr := r.Service(svc)
		sr.Timestamps = append(sr.Timestamps, doc.dates...)
		auditClinicalDates(sr, doc.dates)
	}

	e.checkEventIdentifier(r, doc, f.Name, svc, slot, isService, opts)

	rule, hasRule := eventRuleFor(f.Name, svc, slot, isService, r.FolderType, opts.Convention)
	if hasRule {
		phrase, matched := findPhrase(doc.normalized, rule)
		if !matched {
			msg := missingPhrasesMessage(f.Name, rule)
			if isService {
				sr := r.Service(svc)
				sr.addError(KindContent, msg)
				sr.Slots[slot] = SlotContentError
			} else {
				r.General().addError(KindContent, msg)
				if _, tracked := r.EventFiles[f.Name]; tracked {
					r.EventFiles[f.Name] = SlotContentError
				}
			}
		}

		if rule.ExtractNumber && matched && isService && slot == SlotAuthorization {
			if n, found := extract.TrailingNumber(doc.text, phrase); found {
				r.Service(svc).SetAuthCount(n, true)
			}
		}

		if rule.Reconcile && isService && slot == SlotClinicalRecord {
			reconcile(r.Service(svc), len(doc.dates))
		}
	}

	if isService && slot == SlotSignature {
		checkSignatureSheet(r.Service(svc), doc)
	} else if !isService && f.Name == "4.pdf" {
		sr := r.General()
		if r.FolderType != "" {
			sr = r.Service(r.FolderType)
		}
		checkSignatureSheet(sr, doc)
	}
}

// checkEventIdentifier applies the document-number check to the slots
// the convention requires: authorization and clinical record under the
// alternate convention, those plus the receipt (3.pdf) otherwise.
func (e *Engine) checkEventIdentifier(r *FolderResult, doc *document, name string,
	svc rules.Service, slot Slot, isService bool, opts Options) {

	if isService {
		if slot == SlotAuthorization || slot == SlotClinicalRecord {
			checkIdentifier(r.Service(svc), doc, r.DocumentNumber)
		}
		return
	}
	var applies bool
	if opts.Convention == rules.ConventionAlternate {
		applies = name == "2.pdf" || name == "5.pdf"
	} else {
		applies = name == "2.pdf" || name == "3.pdf" || name == "5.pdf"
	}
	if applies {
		checkIdentifier(r.General(), doc, r.DocumentNumber)
	}
}

// eventRuleFor resolves the catalog rule for one event document:
// per-service files use their own service, generic files use the
// folder's detected type. Only the authorization and clinical-record
// slots carry content rules.
func eventRuleFor(name string, svc rules.Service, slot Slot, isService bool,
	folderType rules.Service, c rules.Convention) (rules.Rule, bool) {

	catalog := rules.EventRules(c)
	if isService {
		sr, ok := catalog[svc]
		if !ok {
			return rules.Rule{}, false
		}
		switch slot {
		case SlotAuthorization:
			return sr.Authorization, true
		case SlotClinicalRecord:
			return sr.ClinicalRecord, true
		}
		return rules.Rule{}, false
	}

	if folderType == "" {
		return rules.Rule{}, false
	}
	sr, ok := catalog[folderType]
	if !ok {
		return rules.Rule{}, false
	}
	switch name {
	case "2.pdf":
		return sr.Authorization, true
	case "5.pdf":
		return sr.ClinicalRecord, true
	}
	return rules.Rule{}, false
}
