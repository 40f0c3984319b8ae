package analyzer

import (
	"context"
	"errors"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/imaging"
)

type engineFunc func(ctx context.Context, image []byte) (string, error)

func (f engineFunc) Recognize(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}

func newTestClassifier(engine engineFunc) *DocClassifier {
	return NewDocClassifier(engine, slog.New(slog.NewTextHandler(io.Discard, nil)), 2*time.Second)
}

const licenseBackText = `PERMIS DE CONDUIRE
Délivré le 12/03/2015
Valable jusqu'au 12/03/2030
Né le 01.06.1990
B  CE`

const passportMRZ = `REPUBLIQUE FRANCAISE
P<FRADUPONT<<JEAN<MICHEL<<<<<<<<<<<<<<<<<<<<
1234567890FRA9001015M2501017<<<<<<<<<<<<<<04`

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "passeport francais", NormalizeText("  Passéport\n FRANÇAIS "))
	assert.Equal(t, "permis de conduire", NormalizeText("Permis  de\tconduire"))
}

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.DocType
	}{
		{name: "passport keyword", text: "RÉPUBLIQUE FRANÇAISE PASSEPORT", want: domain.DocTypePassport},
		{name: "voter card", text: "CARTE D'ÉLECTEUR élections", want: domain.DocTypeVoterCard},
		{name: "driver license", text: "PERMIS DE CONDUIRE", want: domain.DocTypeDriverLicense},
		{name: "police card", text: "COMMISSARIAT CENTRAL carte de police", want: domain.DocTypePoliceCard},
		{name: "mrz only passport", text: passportMRZ, want: domain.DocTypePassport},
		{name: "category grid only", text: "B 12/03/2015 12/03/2030\nCE 14/09/2018 14/09/2033", want: domain.DocTypeDriverLicense},
		{name: "gibberish", text: "lorem ipsum dolor", want: domain.DocTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := classifyText(tt.text)
			assert.Equal(t, tt.want, doc.DocTypeDetected)
		})
	}
}

func TestDetectMRZ(t *testing.T) {
	mrz := detectMRZ(passportMRZ)
	assert.True(t, mrz.Valid)
	assert.Contains(t, mrz.Raw, "P<FRADUPONT")

	assert.False(t, detectMRZ("PERMIS DE CONDUIRE").Valid)
}

func TestExtractLicenseBack(t *testing.T) {
	extract := ExtractLicenseBack(licenseBackText)

	assert.ElementsMatch(t, []string{"B", "CE"}, extract.Categories)

	require.NotNil(t, extract.IssueDate)
	assert.Equal(t, time.Date(2015, time.March, 12, 0, 0, 0, 0, time.UTC), *extract.IssueDate)
	require.NotNil(t, extract.ExpiryDate)
	assert.Equal(t, time.Date(2030, time.March, 12, 0, 0, 0, 0, time.UTC), *extract.ExpiryDate)
	require.NotNil(t, extract.BirthDate)
	assert.Equal(t, time.Date(1990, time.June, 1, 0, 0, 0, 0, time.UTC), *extract.BirthDate)
}

func TestExtractLicenseBackPositionalDates(t *testing.T) {
	extract := ExtractLicenseBack("B 01/02/2020 01/02/2035")

	require.NotNil(t, extract.IssueDate)
	assert.Equal(t, 2020, extract.IssueDate.Year())
	require.NotNil(t, extract.ExpiryDate)
	assert.Equal(t, 2035, extract.ExpiryDate.Year())
	assert.Nil(t, extract.BirthDate)
}

func TestExtractLicenseBackIgnoresProseCodes(t *testing.T) {
	// "DE" and "D" appear in ordinary French words and must not be read as
	// license categories outside the grid.
	extract := ExtractLicenseBack("PERMIS DE CONDUIRE\nDocument officiel")

	assert.Empty(t, extract.Categories)
}

func TestClassifyFront(t *testing.T) {
	classifier := newTestClassifier(func(ctx context.Context, image []byte) (string, error) {
		return "RÉPUBLIQUE FRANÇAISE PASSEPORT", nil
	})

	doc, res := classifier.ClassifyFront(context.Background(), []byte("img"))

	require.NotNil(t, doc)
	assert.Equal(t, domain.DocTypePassport, doc.DocTypeDetected)
	assert.True(t, res.OK)
}

func TestClassifyFrontUnknownType(t *testing.T) {
	classifier := newTestClassifier(func(ctx context.Context, image []byte) (string, error) {
		return "lorem ipsum", nil
	})

	doc, res := classifier.ClassifyFront(context.Background(), []byte("img"))

	require.NotNil(t, doc)
	assert.False(t, res.OK)
	assert.True(t, res.HasCode(domain.CodeUnknownDocType))
}

func TestClassifyFrontEngineDown(t *testing.T) {
	classifier := newTestClassifier(func(ctx context.Context, image []byte) (string, error) {
		return "", errors.New("tesseract: not installed")
	})

	doc, res := classifier.ClassifyFront(context.Background(), []byte("img"))

	assert.Nil(t, doc)
	assert.True(t, res.HasCode(domain.CodeOCRUnavailable))
}

func TestRunBackOCRPicksBetterOrientation(t *testing.T) {
	// The scan is portrait; the engine only reads it once rotated to
	// landscape, as a sideways photo of a card back behaves.
	classifier := newTestClassifier(func(ctx context.Context, image []byte) (string, error) {
		img, _, err := imaging.Decode(image)
		if err != nil {
			return "", err
		}
		if img.Bounds().Dx() > img.Bounds().Dy() {
			return licenseBackText, nil
		}
		return "qqqq wwww", nil
	})

	raw := pngBytes(t, uniformImage(300, 400, color.White))
	doc, extract, res := classifier.RunBackOCR(context.Background(), raw)

	require.NotNil(t, doc)
	assert.True(t, doc.Rotated)
	assert.Equal(t, domain.DocTypeDriverLicense, doc.DocTypeDetected)
	require.NotNil(t, extract)
	assert.NotEmpty(t, extract.Categories)
	assert.True(t, res.OK, "messages: %v", res.Messages)
}

func TestRunBackOCRKeepsOriginalOnTie(t *testing.T) {
	classifier := newTestClassifier(func(ctx context.Context, image []byte) (string, error) {
		return licenseBackText, nil
	})

	raw := pngBytes(t, uniformImage(300, 400, color.White))
	doc, _, _ := classifier.RunBackOCR(context.Background(), raw)

	require.NotNil(t, doc)
	assert.False(t, doc.Rotated)
}

func TestRunBackOCREngineDown(t *testing.T) {
	classifier := newTestClassifier(func(ctx context.Context, image []byte) (string, error) {
		return "", errors.New("tesseract: not installed")
	})

	raw := pngBytes(t, uniformImage(300, 400, color.White))
	doc, extract, res := classifier.RunBackOCR(context.Background(), raw)

	assert.Nil(t, doc)
	assert.Nil(t, extract)
	assert.True(t, res.HasCode(domain.CodeOCRUnavailable))
}
