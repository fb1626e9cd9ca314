// Package rules holds the compliance catalog: which phrases each care
// service's documents must contain, per billing convention, and whether
// the authorization counter must be reconciled against the evolution
// records. The tables are data; interpretation lives in the engine.
package rules

// Service identifies a home-care service line.
type Service string

const (
	TF      Service = "TF"      // physical therapy
	TR      Service = "TR"      // respiratory therapy
	SUCCION Service = "SUCCION" // suction therapy
	FON     Service = "FON"     // speech therapy
	VM      Service = "VM"      // physician visit
	ENF     Service = "ENF"     // nursing
	PSI     Service = "PSI"     // psychology
	TS      Service = "TS"      // social work
	TO      Service = "TO"      // occupational therapy

	// General is the pseudo-service folder-level findings attach to.
	General Service = "General"
)

// Convention selects the payer-specific rule set.
type Convention string

const (
	ConventionStandard  Convention = "standard"
	ConventionAlternate Convention = "alternate"
)

// allServices is the catalog order; derived views iterate it so callers
// see a stable ordering.
var allServices = []Service{TF, TR, SUCCION, FON, VM, ENF, PSI, TS, TO}

// folderTypes is checked in order against folder names; the first code
// contained in the name wins.
var folderTypes = []Service{TR, SUCCION, TF, VM, ENF, PSI, TS, TO}

// therapyServices are the service lines that satisfy the "at least one
// therapy" requirement of the therapies package.
var therapyServices = []Service{TF, TR, SUCCION}

// serviceSynonyms maps filename spellings to catalog codes.
var serviceSynonyms = map[string]Service{
	"SUC":   SUCCION,
	"ENF12": ENF,
}

// Rule describes what a single slot of a service's paperwork must
// contain and how it participates in reconciliation.
type Rule struct {
	// Phrases the document must contain; any one suffices.
	Phrases []string
	// Reconcile compares the authorization counter with the number of
	// evolution timestamps found in the clinical record.
	Reconcile bool
	// ExtractNumber pulls the integer printed after the phrase as the
	// authorized visit count.
	ExtractNumber bool
}

// SlotRules pairs the two content-bearing slots of a service.
type SlotRules struct {
	Authorization  Rule
	ClinicalRecord Rule
}

// clinicalRecord holds the per-service clinical-record rules. They are
// convention-independent; only the Reconcile flag varies by mode.
var clinicalRecord = map[Service]Rule{
	TF:      {Phrases: []string{"Registro De Terapia Física"}, Reconcile: true},
	TR:      {Phrases: []string{"Registro De: Terapia Respiratoria"}, Reconcile: true},
	SUCCION: {Phrases: []string{"REGISTRO DE TERAPIA SUCCION"}, Reconcile: true},
	FON:     {Phrases: []string{"Registro De Fonoaudiología"}, Reconcile: true},
	VM: {
		Phrases: []string{
			"Registro De Historia Clínica",
			"Registro De Evolución Médica",
		},
		Reconcile: true,
	},
	ENF: {Phrases: []string{"Registro De Enfermería - Actividades"}, Reconcile: true},
	PSI: {Phrases: []string{"Registro De Psicología"}, Reconcile: true},
	TS:  {Phrases: []string{"Registro De Trabajo Social"}, Reconcile: true},
	TO:  {Phrases: []string{"Registro De Terapia Ocupacional"}, Reconcile: true},
}

// authorizationStandard only checks phrase presence; the payer's
// authorization documents carry no usable visit counter.
var authorizationStandard = map[Service]Rule{
	TF:      {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA POR"}},
	TR:      {Phrases: []string{"TERAPIA RESPIRATORIA"}},
	SUCCION: {Phrases: []string{"TERAPIA SUCCION"}},
	FON:     {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR FONIATRIA Y FONOAUDIOLOGIA"}},
	VM:      {Phrases: []string{"VALORACION MEDICA"}},
	ENF:     {Phrases: []string{"ENFERMERIA"}},
	PSI:     {Phrases: []string{"PSICOLOGIA"}},
	TS:      {Phrases: []string{"TRABAJO SOCIAL"}},
	TO:      {Phrases: []string{"TERAPIA OCUPACIONAL"}},
}

// authorizationAlternate both checks the phrase and extracts the visit
// count printed after it, then reconciles against the evolutions.
var authorizationAlternate = map[Service]Rule{
	TF:      {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR FISIOTERAPIA"}, Reconcile: true, ExtractNumber: true},
	TR:      {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR TERAPIA RESPIRATORIA"}, Reconcile: true, ExtractNumber: true},
	SUCCION: {Phrases: []string{"TERAPIA SUCCION"}, Reconcile: true, ExtractNumber: true},
	FON:     {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR FONIATRIA Y FONOAUDIOLOGIA"}, Reconcile: true, ExtractNumber: true},
	VM:      {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR MEDICINA GENERAL"}, Reconcile: true, ExtractNumber: true},
	ENF:     {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR ENFERMERIA"}, Reconcile: true, ExtractNumber: true},
	PSI:     {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR PSICOLOGIA"}, Reconcile: true, ExtractNumber: true},
	TS:      {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR TRABAJO SOCIAL"}, Reconcile: true, ExtractNumber: true},
	TO:      {Phrases: []string{"ATENCION (VISITA) DOMICILIARIA, POR TERAPIA OCUPACIONAL"}, Reconcile: true, ExtractNumber: true},
}

// EventRules returns the per-service slot rules for single-event folders
// under the given convention.
func EventRules(c Convention) map[Service]SlotRules {
	auth := authorizationStandard
	if c == ConventionAlternate {
		auth = authorizationAlternate
	}
	out := make(map[Service]SlotRules, len(allServices))
	for _, svc := range allServices {
		out[svc] = SlotRules{
			Authorization:  auth[svc],
			ClinicalRecord: clinicalRecord[svc],
		}
	}
	return out
}

// PackageRules returns the per-service slot rules for monthly-package
// folders. Unlike event mode, reconciliation on both slots is forced to
// whether the convention is the alternate one: only that payer's package
// paperwork carries counters worth reconciling.
func PackageRules(c Convention) map[Service]SlotRules {
	base := EventRules(c)
	reconcile := c == ConventionAlternate
	out := make(map[Service]SlotRules, len(base))
	for svc, sr := range base {
		sr.Authorization.Reconcile = reconcile
		sr.ClinicalRecord.Reconcile = reconcile
		out[svc] = sr
	}
	return out
}

// AlternateAuthorizationPhrase returns the phrase whose trailing number
// encodes the authorized visit count for svc in a consolidated
// authorization document.
func AlternateAuthorizationPhrase(svc Service) (string, bool) {
	r, ok := authorizationAlternate[svc]
	if !ok || len(r.Phrases) == 0 {
		return "", false
	}
	return r.Phrases[0], true
}

// CanonicalService resolves a filename or folder spelling (already
// upper-cased) to a catalog service, applying synonyms.
func CanonicalService(code string) (Service, bool) {
	if svc, ok := serviceSynonyms[code]; ok {
		return svc, true
	}
	svc := Service(code)
	for _, s := range allServices {
		if svc == s {
			return svc, true
		}
	}
	return "", false
}

// Services returns the catalog services in table order.
func Services() []Service {
	out := make([]Service, len(allServices))
	copy(out, allServices)
	return out
}

// FolderTypes returns the codes probed, in order, when classifying a
// folder by its name.
func FolderTypes() []Service {
	out := make([]Service, len(folderTypes))
	copy(out, folderTypes)
	return out
}

// TherapyServices returns the services counted as therapies in package
// aggregate checks.
func TherapyServices() []Service {
	out := make([]Service, len(therapyServices))
	copy(out, therapyServices)
	return out
}

// IsTherapy reports whether svc counts as a therapy service.
func IsTherapy(svc Service) bool {
	for _, s := range therapyServices {
		if s == svc {
			return true
		}
	}
	return false
}
