package analyzer

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/imaging"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

// DocClassifier runs OCR over document scans and classifies the result. OCR
// failures never abort a validation: they surface as the unavailable
// diagnostic and the report weights the check accordingly.
type DocClassifier struct {
	engine  provider.OCREngine
	logger  *slog.Logger
	timeout time.Duration
}

func NewDocClassifier(engine provider.OCREngine, logger *slog.Logger, timeout time.Duration) *DocClassifier {
	return &DocClassifier{engine: engine, logger: logger, timeout: timeout}
}

// docKeywords maps each recognizable document type to the vocabulary that
// identifies it in normalized OCR text. French and English forms both count
// since issuing authorities print either.
var docKeywords = map[domain.DocType][]string{
	domain.DocTypePassport:      {"passeport", "passport"},
	domain.DocTypeVoterCard:     {"electeur", "elector", "voter", "carte d'electeur"},
	domain.DocTypeDriverLicense: {"permis", "conduire", "permis de conduire", "driving licence", "driver license", "driving license"},
	domain.DocTypePoliceCard:    {"police", "surete", "commissariat"},
}

// classificationOrder resolves ties deterministically when text mentions
// several vocabularies; the more specific types come first.
var classificationOrder = []domain.DocType{
	domain.DocTypePassport,
	domain.DocTypeDriverLicense,
	domain.DocTypeVoterCard,
	domain.DocTypePoliceCard,
}

var (
	mrzLinePattern  = regexp.MustCompile(`^[A-Z0-9<]{30,}$`)
	categoryPattern = regexp.MustCompile(`\b(AM|A1|A2|A|B1|BE|B|C1E|C1|CE|C|D1E|D1|DE|D)\b`)
	datePattern     = regexp.MustCompile(`\b(\d{2})[./-](\d{2})[./-](\d{2,4})\b`)
)

// NormalizeText lowercases OCR output, strips the French diacritics the
// engine may or may not resolve, and collapses runs of whitespace so keyword
// matching is stable across scan quality.
func NormalizeText(text string) string {
	replacer := strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"à", "a", "â", "a", "ä", "a",
		"î", "i", "ï", "i",
		"ô", "o", "ö", "o",
		"ù", "u", "û", "u", "ü", "u",
		"ç", "c",
	)
	normalized := replacer.Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(normalized), " ")
}

// recognize runs the engine under its own deadline.
func (c *DocClassifier) recognize(ctx context.Context, raw []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.engine.Recognize(ctx, raw)
}

// ClassifyFront OCRs the front of a document and classifies its type. The
// analysis result fails on engine unavailability or an unrecognized type.
func (c *DocClassifier) ClassifyFront(ctx context.Context, raw []byte) (*domain.OCRDocResult, *domain.AnalysisResult) {
	res := domain.NewAnalysisResult()

	text, err := c.recognize(ctx, raw)
	if err != nil {
		c.logger.Warn("ocr engine unavailable", slog.Any("error", err))
		res.AddFailure(domain.CodeOCRUnavailable, "text recognition is unavailable, document type not verified")
		return nil, res
	}

	doc := classifyText(text)
	res.SetStat("doc_type", string(doc.DocTypeDetected))
	res.SetStat("keyword_count", len(doc.Keywords))
	res.SetStat("mrz_valid", doc.MRZ.Valid)

	if doc.DocTypeDetected == domain.DocTypeUnknown {
		res.AddFailure(domain.CodeUnknownDocType, "document type could not be recognized from the text")
	}

	return doc, res
}

// classifyText turns raw OCR text into a classification: keyword vote first,
// then MRZ (passports carry one even when the title is unreadable), then the
// license-category fallback for backs whose only structure is the grid.
func classifyText(text string) *domain.OCRDocResult {
	normalized := NormalizeText(text)
	doc := &domain.OCRDocResult{
		Text:            text,
		DocTypeDetected: domain.DocTypeUnknown,
		MRZ:             detectMRZ(text),
	}

	for _, docType := range classificationOrder {
		for _, keyword := range docKeywords[docType] {
			if strings.Contains(normalized, keyword) {
				doc.Keywords = append(doc.Keywords, keyword)
				if doc.DocTypeDetected == domain.DocTypeUnknown {
					doc.DocTypeDetected = docType
				}
			}
		}
	}

	if doc.DocTypeDetected == domain.DocTypeUnknown && doc.MRZ.Valid {
		doc.DocTypeDetected = domain.DocTypePassport
	}
	if doc.DocTypeDetected == domain.DocTypeUnknown && looksLikeLicenseBack(text) {
		doc.DocTypeDetected = domain.DocTypeDriverLicense
	}

	return doc
}

// detectMRZ scans for machine-readable-zone lines: long runs over the MRZ
// alphabet. Two such lines, or the filler digraph anywhere, count as valid.
func detectMRZ(text string) domain.MRZInfo {
	var mrzLines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, " ", ""))
		if mrzLinePattern.MatchString(line) {
			mrzLines = append(mrzLines, line)
		}
	}

	raw := strings.Join(mrzLines, "\n")
	valid := len(mrzLines) >= 2 || strings.Contains(raw, "<<")
	if !valid {
		raw = ""
	}
	return domain.MRZInfo{Valid: valid, Raw: raw}
}

// looksLikeLicenseBack recognizes the category grid printed on license
// backs: at least two distinct category codes, or one code next to a pair of
// dates on the same line.
func looksLikeLicenseBack(text string) bool {
	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		for _, m := range lineCategories(line) {
			seen[m] = true
		}
		if len(lineCategories(line)) >= 1 && len(datePattern.FindAllString(line, -1)) >= 2 {
			return true
		}
	}
	return len(seen) >= 2
}

// lineCategories extracts license category codes from one OCR line. Codes
// like B, D or DE collide with ordinary French words, so a line only counts
// when it carries a date (the grid pairs codes with validity dates) or is
// made purely of short code tokens.
func lineCategories(line string) []string {
	upper := strings.ToUpper(NormalizeText(line))
	matches := categoryPattern.FindAllString(upper, -1)
	if len(matches) == 0 {
		return nil
	}
	if datePattern.MatchString(upper) {
		return matches
	}
	for _, tok := range strings.FieldsFunc(upper, isCodeSeparator) {
		if len(tok) > 3 || !categoryPattern.MatchString(tok) {
			return nil
		}
	}
	return matches
}

func isCodeSeparator(r rune) bool {
	switch r {
	case ' ', ',', ';', '|', '\t', '.', '-', '/':
		return true
	}
	return false
}

// ExtractLicenseBack pulls the structured fields a license back carries:
// category codes and labeled dates. Date labels are matched by proximity on
// the same line; when no label matches, the first two dates found are taken
// positionally as issue then expiry.
func ExtractLicenseBack(text string) *domain.LicenseBackExtract {
	extract := &domain.LicenseBackExtract{}

	seen := map[string]bool{}
	for _, line := range strings.Split(text, "\n") {
		for _, m := range lineCategories(line) {
			if !seen[m] {
				seen[m] = true
				extract.Categories = append(extract.Categories, m)
			}
		}
	}

	var unlabeled []time.Time
	for _, line := range strings.Split(text, "\n") {
		lineNorm := NormalizeText(line)
		for _, m := range datePattern.FindAllStringSubmatch(line, -1) {
			parsed, ok := parseScanDate(m[1], m[2], m[3])
			if !ok {
				continue
			}
			switch {
			case containsAny(lineNorm, "delivre", "issue", "obtention"):
				if extract.IssueDate == nil {
					extract.IssueDate = &parsed
				}
			case containsAny(lineNorm, "expire", "valable", "valid", "expiry"):
				if extract.ExpiryDate == nil {
					extract.ExpiryDate = &parsed
				}
			case containsAny(lineNorm, "naissance", "birth", "ne le", "nee le"):
				if extract.BirthDate == nil {
					extract.BirthDate = &parsed
				}
			default:
				unlabeled = append(unlabeled, parsed)
			}
		}
	}

	// Positional fallback for grids without textual labels.
	if extract.IssueDate == nil && len(unlabeled) > 0 {
		extract.IssueDate = &unlabeled[0]
	}
	if extract.ExpiryDate == nil && len(unlabeled) > 1 {
		extract.ExpiryDate = &unlabeled[1]
	}

	return extract
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parseScanDate parses a dd.mm.yy[yy] capture. Two-digit years pivot on the
// current year so expiry dates land in the near future and birth dates in
// the past century.
func parseScanDate(dayStr, monthStr, yearStr string) (time.Time, bool) {
	day, _ := strconv.Atoi(dayStr)
	month, _ := strconv.Atoi(monthStr)
	year, _ := strconv.Atoi(yearStr)

	if len(yearStr) == 2 {
		cutoff := time.Now().Year() % 100
		if year <= cutoff+10 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// backCandidate is one orientation's OCR outcome during the dual pass.
type backCandidate struct {
	doc *domain.OCRDocResult
	err error
}

// RunBackOCR OCRs the back of a document in both orientations and keeps the
// better read. Backs are routinely photographed sideways and engines produce
// garbage on rotated text, so the original only loses when the rotated pass
// scores strictly higher.
func (c *DocClassifier) RunBackOCR(ctx context.Context, raw []byte) (*domain.OCRDocResult, *domain.LicenseBackExtract, *domain.AnalysisResult) {
	res := domain.NewAnalysisResult()

	candidates := make([]backCandidate, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		text, err := c.recognize(ctx, raw)
		if err != nil {
			candidates[0] = backCandidate{err: err}
			return
		}
		candidates[0] = backCandidate{doc: classifyText(text)}
	}()

	if rotated, err := rotateEncoded(raw); err == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := c.recognize(ctx, rotated)
			if err != nil {
				candidates[1] = backCandidate{err: err}
				return
			}
			doc := classifyText(text)
			doc.Rotated = true
			candidates[1] = backCandidate{doc: doc}
		}()
	} else {
		candidates[1] = backCandidate{err: err}
	}
	wg.Wait()

	original, rotated := candidates[0], candidates[1]
	if original.err != nil && rotated.err != nil {
		c.logger.Warn("ocr engine unavailable for back side", slog.Any("error", original.err))
		res.AddFailure(domain.CodeOCRUnavailable, "text recognition is unavailable, back side not verified")
		return nil, nil, res
	}

	best := original.doc
	if best == nil || (rotated.doc != nil && scoreBackRead(rotated.doc) > scoreBackRead(best)) {
		best = rotated.doc
	}

	extract := ExtractLicenseBack(best.Text)
	res.SetStat("doc_type", string(best.DocTypeDetected))
	res.SetStat("rotated", best.Rotated)
	res.SetStat("category_count", len(extract.Categories))
	res.SetStat("read_score", scoreBackRead(best))

	if best.DocTypeDetected == domain.DocTypeUnknown {
		res.AddFailure(domain.CodeUnknownDocType, "back side text did not match any known document type")
	}

	return best, extract, res
}

// scoreBackRead rates one orientation's read so the dual pass can pick a
// winner. Structured signals dominate raw keyword volume.
func scoreBackRead(doc *domain.OCRDocResult) int {
	if doc == nil {
		return -1
	}
	score := 0
	if doc.DocTypeDetected != domain.DocTypeUnknown {
		score += 3
	}
	extract := ExtractLicenseBack(doc.Text)
	if len(extract.Categories) > 0 {
		score += 2
	}
	if extract.IssueDate != nil && extract.ExpiryDate != nil {
		score += 2
	}
	if extract.BirthDate != nil {
		score++
	}
	keywords := len(doc.Keywords)
	if keywords > 3 {
		keywords = 3
	}
	score += keywords
	return score
}

// rotateEncoded decodes, rotates 90 degrees clockwise, and re-encodes as PNG
// for the second OCR pass.
func rotateEncoded(raw []byte) ([]byte, error) {
	img, _, err := imaging.Decode(raw)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.Rotate90(img)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
