package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/analyzer"
	"github.com/saturnino-fabrica-de-software/validoc/internal/audit"
	"github.com/saturnino-fabrica-de-software/validoc/internal/dedup"
	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/imaging"
	"github.com/saturnino-fabrica-de-software/validoc/internal/metrics"
	"github.com/saturnino-fabrica-de-software/validoc/internal/repository"
)

// Input carries the artifacts and metadata of one validation request. Nil
// artifact slices mean "not submitted"; at least one artifact is required.
type Input struct {
	Photo     []byte
	Signature []byte
	Front     []byte
	Back      []byte

	PhotoKind  analyzer.PhotoKind
	CustomerID *int64
	Step       string
}

func (in Input) empty() bool {
	return len(in.Photo) == 0 && len(in.Signature) == 0 && len(in.Front) == 0 && len(in.Back) == 0
}

// EventSink receives pipeline outcome events for asynchronous delivery.
type EventSink interface {
	Dispatch(ctx context.Context, eventType string, data interface{})
}

// Outcome event types handed to the sink.
const (
	EventValidationCompleted = "validation.completed"
	EventValidationFailed    = "validation.failed"
	EventFraudDetected       = "fraud.detected"
)

// Pipeline orchestrates every check for one validation request. Independent
// artifact analyses run concurrently; the report is only assembled after all
// of them return.
type Pipeline struct {
	photos     *analyzer.PhotoAnalyzer
	classifier *analyzer.DocClassifier
	gate       *dedup.Gate
	drafts     repository.KYCDraftRepositoryInterface
	recorder   metrics.Recorder
	logger     *slog.Logger
	maxSize    int64

	events  EventSink
	auditor audit.Logger
}

func NewPipeline(
	photos *analyzer.PhotoAnalyzer,
	classifier *analyzer.DocClassifier,
	gate *dedup.Gate,
	drafts repository.KYCDraftRepositoryInterface,
	recorder metrics.Recorder,
	logger *slog.Logger,
	maxSize int64,
) *Pipeline {
	return &Pipeline{
		photos:     photos,
		classifier: classifier,
		gate:       gate,
		drafts:     drafts,
		recorder:   recorder,
		logger:     logger,
		maxSize:    maxSize,
		auditor:    &audit.NoOpLogger{},
	}
}

// WithEvents attaches an outcome event sink. Dispatch happens after the
// report is finalized and never blocks the response.
func (p *Pipeline) WithEvents(sink EventSink) *Pipeline {
	p.events = sink
	return p
}

// WithAudit attaches an audit trail logger.
func (p *Pipeline) WithAudit(logger audit.Logger) *Pipeline {
	if logger != nil {
		p.auditor = logger
	}
	return p
}

// Validate runs the full pipeline and returns the assembled report. It only
// errors when there is nothing to validate; per-artifact problems are
// reported inside the sub-results.
func (p *Pipeline) Validate(ctx context.Context, in Input) (*domain.ValidationReport, error) {
	if in.empty() {
		return nil, domain.ErrMissingFile
	}
	if in.PhotoKind == "" {
		in.PhotoKind = analyzer.KindProfile
	}

	report := domain.NewValidationReport()
	var mu sync.Mutex
	var wg sync.WaitGroup

	stage := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			fn()
			elapsed := time.Since(start)
			mu.Lock()
			report.Timers[name] = elapsed.Milliseconds()
			mu.Unlock()
			p.recorder.RecordStageDuration(name, elapsed)
		}()
	}

	if len(in.Photo) > 0 {
		stage("photo", func() {
			photo, face := p.runPhoto(ctx, in.Photo, in.PhotoKind, report, &mu)
			mu.Lock()
			report.Photo, report.Face = photo, face
			mu.Unlock()
		})
	}

	if len(in.Signature) > 0 {
		stage("signature", func() {
			res := p.runSignature(ctx, in.Signature)
			mu.Lock()
			report.Signature = res
			mu.Unlock()
		})
	}

	if len(in.Front) > 0 || len(in.Back) > 0 {
		stage("card_sides", func() {
			front, back, sides := p.runCardSides(in.Front, in.Back)
			mu.Lock()
			report.Front, report.Back, report.CardSides = front, back, sides
			mu.Unlock()
		})
	}

	if len(in.Front) > 0 {
		stage("ocr_front", func() {
			doc, res := p.runFrontOCR(ctx, in.Front)
			mu.Lock()
			report.OCR = res
			report.OCRFront = doc
			mu.Unlock()
		})
	}

	if len(in.Back) > 0 {
		stage("ocr_back", func() {
			doc, extract, res := p.runBackOCR(ctx, in.Back)
			mu.Lock()
			report.OCRBack = res
			report.OCRBackDoc = doc
			report.LicenseBack = extract
			mu.Unlock()
		})
	}

	wg.Wait()

	report.DetectedType = detectedType(report)
	p.checkDuplicates(ctx, report, in)

	FinalizeStatus(report)

	p.syncDraft(ctx, report, in)
	p.record(report)
	p.emit(ctx, report, in)

	return report, nil
}

// emit publishes the outcome to the audit trail and the event sink. Both are
// best effort and never influence the report.
func (p *Pipeline) emit(ctx context.Context, r *domain.ValidationReport, in Input) {
	if err := p.auditor.Log(ctx, audit.FromReport(r, in.CustomerID)); err != nil {
		p.logger.Warn("audit log failed", slog.Any("error", err))
	}

	if p.events == nil {
		return
	}

	summary := r.Summarize()
	if r.HasSecurityCritical() {
		p.events.Dispatch(ctx, EventFraudDetected, summary)
	}
	switch r.Status {
	case domain.StatusFailed:
		p.events.Dispatch(ctx, EventValidationFailed, summary)
	default:
		p.events.Dispatch(ctx, EventValidationCompleted, summary)
	}
}

// intake rejects an artifact before analysis: size cap first, then a content
// sniff so non-images never reach the decoders.
func (p *Pipeline) intake(res *domain.AnalysisResult, raw []byte) bool {
	if p.maxSize > 0 && int64(len(raw)) > p.maxSize {
		res.AddFailure(domain.CodeFileTooLarge,
			fmt.Sprintf("file is %d bytes, above the %d byte limit", len(raw), p.maxSize))
		return false
	}
	if !strings.HasPrefix(http.DetectContentType(raw), "image/") {
		res.AddFailure(domain.CodeUnsupportedFormat, "file does not look like an image")
		return false
	}
	return true
}

func (p *Pipeline) runPhoto(ctx context.Context, raw []byte, kind analyzer.PhotoKind, report *domain.ValidationReport, mu *sync.Mutex) (photo, face *domain.AnalysisResult) {
	photo = domain.NewAnalysisResult()
	if !p.intake(photo, raw) {
		return photo, nil
	}

	photo, face, detection := p.photos.Analyze(ctx, raw, kind)
	if detection.State == domain.DetectionUnavailable {
		mu.Lock()
		report.FaceUnavailable = true
		mu.Unlock()
	}
	return photo, face
}

func (p *Pipeline) runSignature(_ context.Context, raw []byte) *domain.AnalysisResult {
	res := domain.NewAnalysisResult()
	if !p.intake(res, raw) {
		return res
	}

	img, _, err := imaging.Decode(raw)
	if err != nil {
		res.AddFailure(domain.CodeUnsupportedFormat, "signature could not be decoded")
		return res
	}
	return analyzer.AnalyzeSignature(img)
}

// runCardSides decodes each provided side into its own result and, when both
// decode, runs the cross-side consistency check.
func (p *Pipeline) runCardSides(frontRaw, backRaw []byte) (front, back, sides *domain.AnalysisResult) {
	decode := func(raw []byte, label string) (*domain.AnalysisResult, image.Image) {
		if len(raw) == 0 {
			return nil, nil
		}
		res := domain.NewAnalysisResult()
		if !p.intake(res, raw) {
			return res, nil
		}
		img, _, err := imaging.Decode(raw)
		if err != nil {
			res.AddFailure(domain.CodeUnsupportedFormat, label+" side could not be decoded")
			return res, nil
		}
		stats := imaging.Analyze(img)
		res.SetStat("width", stats.Width)
		res.SetStat("height", stats.Height)
		return res, img
	}

	front, frontImg := decode(frontRaw, "front")
	back, backImg := decode(backRaw, "back")

	if frontImg != nil && backImg != nil {
		sides = analyzer.AnalyzeCardSides(frontImg, backImg)
	}
	return front, back, sides
}

func (p *Pipeline) runFrontOCR(ctx context.Context, raw []byte) (*domain.OCRDocResult, *domain.AnalysisResult) {
	probe := domain.NewAnalysisResult()
	if !p.intake(probe, raw) {
		return nil, probe
	}
	return p.classifier.ClassifyFront(ctx, raw)
}

func (p *Pipeline) runBackOCR(ctx context.Context, raw []byte) (*domain.OCRDocResult, *domain.LicenseBackExtract, *domain.AnalysisResult) {
	probe := domain.NewAnalysisResult()
	if !p.intake(probe, raw) {
		return nil, nil, probe
	}
	return p.classifier.RunBackOCR(ctx, raw)
}

// detectedType prefers the front classification; the back is a fallback.
func detectedType(r *domain.ValidationReport) domain.DocType {
	if r.OCRFront != nil && r.OCRFront.DocTypeDetected != domain.DocTypeUnknown {
		return r.OCRFront.DocTypeDetected
	}
	if r.OCRBackDoc != nil && r.OCRBackDoc.DocTypeDetected != domain.DocTypeUnknown {
		return r.OCRBackDoc.DocTypeDetected
	}
	if r.OCRFront != nil || r.OCRBackDoc != nil {
		return domain.DocTypeUnknown
	}
	return ""
}

// checkDuplicates runs the dedup gate over every submitted artifact after
// analysis, so duplicate hits land on the right sub-result.
func (p *Pipeline) checkDuplicates(ctx context.Context, r *domain.ValidationReport, in Input) {
	for _, a := range artifacts(r, in) {
		if a.result == nil {
			continue
		}
		p.gate.Check(ctx, a.result, a.raw, a.kind)
	}
}

type artifact struct {
	raw    []byte
	kind   domain.ArtifactKind
	result *domain.AnalysisResult
}

func artifacts(r *domain.ValidationReport, in Input) []artifact {
	var out []artifact
	if len(in.Photo) > 0 {
		out = append(out, artifact{in.Photo, domain.ArtifactPhoto, r.Photo})
	}
	if len(in.Signature) > 0 {
		out = append(out, artifact{in.Signature, domain.ArtifactSignature, r.Signature})
	}
	if len(in.Front) > 0 {
		out = append(out, artifact{in.Front, domain.ArtifactFront, r.Front})
	}
	if len(in.Back) > 0 {
		out = append(out, artifact{in.Back, domain.ArtifactBack, r.Back})
	}
	return out
}

// syncDraft records the accepted artifact digests on the customer's draft
// and stores them for future duplicate checks. Both writes are best effort;
// the outcome is reported in DBSync, never as a pipeline failure.
func (p *Pipeline) syncDraft(ctx context.Context, r *domain.ValidationReport, in Input) {
	if r.Status == domain.StatusFailed {
		r.DBSync = "skipped"
		return
	}

	hashes := make(map[string]string)
	for _, a := range artifacts(r, in) {
		digest := dedup.Digest(a.raw)
		hashes[string(a.kind)] = hex.EncodeToString(digest[:])
		p.gate.Record(ctx, a.raw, a.kind, in.CustomerID)
	}

	if in.CustomerID == nil || p.drafts == nil {
		r.DBSync = "skipped"
		return
	}

	if err := p.drafts.UpsertHashes(ctx, *in.CustomerID, in.Step, hashes); err != nil {
		p.logger.Warn("draft sync failed",
			slog.Int64("customer_id", *in.CustomerID),
			slog.Any("error", err))
		r.DBSync = "failed"
		return
	}
	r.DBSync = "ok"
}

func (p *Pipeline) record(r *domain.ValidationReport) {
	p.recorder.RecordValidation(r.Status, int(r.Score))
	for _, res := range r.Results() {
		for _, code := range res.Codes {
			if domain.IsSecurityCritical(code) {
				p.recorder.RecordSecuritySignal(code)
			}
		}
	}
}
