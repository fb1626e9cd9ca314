// Package engine drives the per-folder validation: it classifies a
// folder's files into services and document slots, extracts text and
// visit dates from each PDF, applies the convention's rule catalog, and
// reconciles authorization counts against evolution records. Results
// accumulate in a FolderResult per folder.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/casalud/claims-validator/internal/extract"
	"github.com/casalud/claims-validator/internal/folder"
	"github.com/casalud/claims-validator/internal/pdftext"
	"github.com/casalud/claims-validator/internal/rules"
	"github.com/casalud/claims-validator/internal/textnorm"
)

// TextExtractor turns PDF bytes into text and a page count. A single
// error covers every failure mode; the engine degrades it to one read
// finding per document.
type TextExtractor interface {
	Extract(data []byte) (*pdftext.Document, error)
}

// Options selects the rule set for a validation run.
type Options struct {
	Convention  rules.Convention
	Mode        Mode
	PackageType PackageType
}

// Engine validates folders of claim documents.
type Engine struct {
	extractor TextExtractor
	logger    *zap.Logger
	workers   int
}

// New creates an Engine. workers bounds the folder-level parallelism of
// ValidateBatch; values below 1 mean sequential.
func New(extractor TextExtractor, logger *zap.Logger, workers int) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{extractor: extractor, logger: logger, workers: workers}
}

// ValidateBatch validates every folder in groups and returns one result
// per folder. Folders are independent, so they run in parallel up to the
// worker limit; all processing inside one folder stays sequential
// because slot order within a service is load-bearing. A batch of N
// folders always yields N results; per-document failures surface as
// findings, never as an error from this method.
func (e *Engine) ValidateBatch(ctx context.Context, groups map[string][]folder.File, opts Options) map[string]*FolderResult {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	// Results are created up front so each goroutine mutates only the
	// record it owns and the map itself is never written concurrently.
	results := make(map[string]*FolderResult, len(names))
	for _, name := range names {
		results[name] = newFolderResult(name, folder.DocumentNumber(name), opts)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.logger.Debug("validating folder",
				zap.String("folder", name),
				zap.String("mode", string(opts.Mode)))
			e.validateFolder(results[name], groups[name], opts)
			return nil
		})
	}
	// The only error an item can return is context cancellation;
	// results for folders already processed remain valid.
	_ = g.Wait()
	return results
}

// ValidateFolder validates a single folder.
func (e *Engine) ValidateFolder(name string, files []folder.File, opts Options) *FolderResult {
	r := newFolderResult(name, folder.DocumentNumber(name), opts)
	e.validateFolder(r, files, opts)
	return r
}

func (e *Engine) validateFolder(r *FolderResult, files []folder.File, opts Options) {
	for _, f := range files {
		r.FileNames = append(r.FileNames, f.Name)
	}
	if opts.Mode == ModePackage {
		e.validatePackage(r, files, opts)
	} else {
		e.validateEvent(r, files, opts)
	}
	e.logger.Debug("folder validated",
		zap.String("folder", r.Folder),
		zap.String("status", string(r.Status())))
}

// document is the extracted view of one file the checks operate on.
type document struct {
	name       string
	text       string
	normalized string
	pages      int
	dates      []string
}

// readDocument loads and extracts one file. A nil document with ok=false
// means the caller must record a read finding and move on.
func (e *Engine) readDocument(f folder.File) (*document, bool) {
	data, err := f.Open()
	if err == nil {
		var doc *pdftext.Document
		doc, err = e.extractor.Extract(data)
		if err == nil {
			return &document{
				name:       f.Name,
				text:       doc.Text,
				normalized: textnorm.Normalize(doc.Text),
				pages:      doc.Pages,
				dates:      extract.Timestamps(doc.Text),
			}, true
		}
	}
	e.logger.Debug("document read failed",
		zap.String("file", f.Name),
		zap.Error(err))
	return nil, false
}

// findPhrase returns the first of the rule's phrases present in the
// normalized text, or ok=false when none match.
func findPhrase(normalized string, rule rules.Rule) (string, bool) {
	for _, phrase := range rule.Phrases {
		if textnorm.Contains(normalized, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func missingPhrasesMessage(name string, rule rules.Rule) string {
	msg := fmt.Sprintf("%s: falta alguno de:", name)
	for i, p := range rule.Phrases {
		if i > 0 {
			msg += " o"
		}
		msg += " " + p
	}
	return msg
}

// checkIdentifier verifies the folder's document number appears in the
// document and records the outcome on sr. Folders without a numeric
// prefix have nothing to check.
func checkIdentifier(sr *ServiceRecord, doc *document, docNumber string) {
	if docNumber == "" {
		return
	}
	if textnorm.Contains(doc.normalized, docNumber) {
		sr.addSuccess(KindIdentifier,
			fmt.Sprintf("%s: contiene número %s", doc.name, docNumber))
	} else {
		sr.addError(KindIdentifier,
			fmt.Sprintf("%s: no contiene número %s", doc.name, docNumber))
	}
}

// reconcile compares the authorized visit count against the evolution
// records of the clinical record just processed. Under-authorization is
// an error, over-authorization a warning, a non-zero match a success. An
// absent count reconciles as zero.
func reconcile(sr *ServiceRecord, evolutions int) {
	auth := 0
	if sr.AuthCountSet {
		auth = sr.AuthCount
	}
	switch {
	case auth < evolutions:
		sr.addError(KindReconciliation,
			fmt.Sprintf("5.pdf: Cant autorizaciones %d < cant evoluciones %d", auth, evolutions))
		sr.Slots[SlotClinicalRecord] = SlotContentError
	case auth > evolutions:
		sr.addWarning(KindReconciliation,
			fmt.Sprintf("5.pdf: Cant autorizaciones %d > cant evoluciones %d", auth, evolutions))
	case auth > 0:
		sr.addSuccess(KindReconciliation,
			fmt.Sprintf("5.pdf: Cant autorizaciones %d = cant evoluciones %d", auth, evolutions))
	}
}

// checkSignatureSheet applies the structural checks of the signature
// slot: a single page and no sign of being an identification page.
func checkSignatureSheet(sr *ServiceRecord, doc *document) {
	if doc.pages > 1 {
		sr.addWarning(KindStructure,
			fmt.Sprintf("4.pdf: Tiene %d páginas (se espera 1 sola página)", doc.pages))
	} else {
		sr.addSuccess(KindStructure, "4.pdf: Tiene 1 página correctamente")
	}
	// "dentificaci" covers identificación/identificacion in any case.
	if textnorm.Contains(doc.normalized, "dentificaci") {
		sr.addWarning(KindStructure,
			`4.pdf: Al parecer no es el archivo de firmas (contiene "identificación")`)
	}
}

// auditClinicalDates warns about duplicate or out-of-order visit dates
// in a clinical record; unremarkable sequences are recorded as
// successes.
func auditClinicalDates(sr *ServiceRecord, dates []string) {
	if len(dates) == 0 {
		return
	}
	duplicates, outOfOrder := extract.AuditOrder(dates)
	if len(duplicates) > 0 {
		msg := "5.pdf: Fechas duplicadas:"
		for i, d := range duplicates {
			if i > 0 {
				msg += ","
			}
			msg += " " + d
		}
		sr.addWarning(KindStructure, msg)
	} else {
		sr.addSuccess(KindStructure, "5.pdf: Sin fechas duplicadas")
	}
	if outOfOrder {
		sr.addWarning(KindStructure, "5.pdf: Fechas no están en orden cronológico")
	} else {
		sr.addSuccess(KindStructure, "5.pdf: Fechas en orden cronológico correcto")
	}
}

// sortByLeadingNumber orders files by the number their name starts
// with, so "2 ..." documents are processed before "5 ..." documents.
// Names without a leading number sort last.
func sortByLeadingNumber(files []folder.File) []folder.File {
	out := make([]folder.File, len(files))
	copy(out, files)
	sort.SliceStable(out, func(i, j int) bool {
		return leadingNumber(out[i].Name) < leadingNumber(out[j].Name)
	})
	return out
}

func leadingNumber(name string) int {
	if s := folder.DocumentNumber(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 99
}
