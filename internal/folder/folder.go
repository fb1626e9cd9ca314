// Package folder classifies the raw file listing of a claims submission:
// grouping files into patient folders, detecting which service lines a
// folder carries, resolving the folder's document type, and flagging
// files that do not belong in a submission.
package folder

import (
	"regexp"
	"strings"

	"github.com/casalud/claims-validator/internal/rules"
)

// File is one input document. Open loads the raw bytes lazily so a batch
// over thousands of PDFs does not hold them all in memory.
type File struct {
	Name     string
	RelPath  string
	MIMEType string
	Open     func() ([]byte, error)
}

// IsPDF reports whether f should be treated as a PDF document, by MIME
// type when the ingestion source provides one, by extension otherwise.
func (f File) IsPDF() bool {
	if f.MIMEType != "" {
		return f.MIMEType == "application/pdf"
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

// ignoredNames are filesystem litter excluded before grouping.
var ignoredNames = map[string]struct{}{
	"desktop.ini": {},
	".ds_store":   {},
	"thumbs.db":   {},
}

var (
	leadingDigits = regexp.MustCompile(`^\d+`)
	servicePat    = regexp.MustCompile(`\d+ (VM|ENF|TF|TR|SUCCION|SUC|TS|PSI|FON|TO)`)
	// Per-service documents: "2 vm.pdf", "5 succion.pdf", ...
	serviceFilePat = regexp.MustCompile(`^([2-5])\s+(vm|enf12|enf|tf|tr|succion|suc|ts|psi|to|fon)\.pdf$`)
	genericFilePat = regexp.MustCompile(`^[1-5]\.pdf$`)
)

// GroupByFolder buckets files by their patient folder: the second-to-last
// segment of the relative path. Files with fewer than two path segments
// have no folder and are discarded, as are ignored names.
func GroupByFolder(files []File) map[string][]File {
	groups := make(map[string][]File)
	for _, f := range files {
		if _, skip := ignoredNames[strings.ToLower(f.Name)]; skip {
			continue
		}
		parts := strings.Split(f.RelPath, "/")
		if len(parts) < 2 {
			continue
		}
		key := parts[len(parts)-2]
		groups[key] = append(groups[key], f)
	}
	return groups
}

// DocumentNumber returns the patient identifier encoded as the folder
// name's leading digits, or "" when the name does not start with digits.
func DocumentNumber(folderName string) string {
	return leadingDigits.FindString(folderName)
}

// DetectServices scans file names for per-service markers ("2 VM", "5
// tf", ...) and returns the set of service lines the folder carries.
func DetectServices(names []string) map[rules.Service]bool {
	found := make(map[rules.Service]bool)
	for _, name := range names {
		m := servicePat.FindStringSubmatch(strings.ToUpper(name))
		if m == nil {
			continue
		}
		if svc, ok := rules.CanonicalService(m[1]); ok {
			found[svc] = true
		}
	}
	return found
}

// DetectFolderType resolves the folder's service type from its name: the
// first catalog code contained in the upper-cased name wins. ok is false
// when no code appears, which callers treat as an error only under the
// standard convention; alternate-convention folders may be bare patient
// numbers holding several services.
func DetectFolderType(folderName string) (rules.Service, bool) {
	upper := strings.ToUpper(folderName)
	for _, t := range rules.FolderTypes() {
		if strings.Contains(upper, string(t)) {
			return t, true
		}
	}
	return "", false
}

// ServiceFile decomposes a per-service document name ("2 vm.pdf") into
// its slot number and canonical service. Matching is case-insensitive.
func ServiceFile(name string) (slot string, svc rules.Service, ok bool) {
	m := serviceFilePat.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return "", "", false
	}
	svc, ok = rules.CanonicalService(strings.ToUpper(m[2]))
	if !ok {
		return "", "", false
	}
	return m[1], svc, true
}

// IsConsolidatedAuthorization reports whether name is the consolidated
// multi-service authorization document ("2 paq.pdf").
func IsConsolidatedAuthorization(name string) bool {
	return strings.ToLower(name) == "2 paq.pdf"
}

// UnexpectedEventFiles lists files that do not belong in a single-event
// folder: anything but 1.pdf through 5.pdf, plus, under the alternate
// convention only, per-service documents and the consolidated
// authorization.
func UnexpectedEventFiles(names []string, c rules.Convention) []string {
	var out []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if genericFilePat.MatchString(lower) {
			continue
		}
		if c == rules.ConventionAlternate &&
			(serviceFilePat.MatchString(lower) || IsConsolidatedAuthorization(name)) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// UnexpectedPackageFiles lists files that do not belong in a monthly
// package folder: anything but per-service documents, plus the
// consolidated authorization under the alternate convention.
func UnexpectedPackageFiles(names []string, c rules.Convention) []string {
	var out []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if serviceFilePat.MatchString(lower) {
			continue
		}
		if c == rules.ConventionAlternate && IsConsolidatedAuthorization(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
