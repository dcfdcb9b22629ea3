package compose

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"github.com/CHAND7/ETE-Robotics-App/internal/config"
	"github.com/CHAND7/ETE-Robotics-App/internal/model"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

// DraftIncompleteError reports a Compose call on a draft that has not
// passed final validation.
type DraftIncompleteError struct{}

func (e *DraftIncompleteError) Error() string {
	return "draft is not ready for submission"
}

// Bundle is the generated document set for one submission.
type Bundle struct {
	RFQRef   string
	PDFName  string
	PDF      []byte
	DeckName string
	Deck     []byte
}

// Composer renders a ready draft into the RFQ summary PDF and the slide
// deck. Output is a pure function of draft, step schema and branding
// assets: the creation date is pinned to the draft date and nothing
// else varies between runs.
type Composer struct {
	steps    []wizard.Step
	logoPath string
	company  string
	policy   *bluemonday.Policy
}

// NewComposer creates a composer over the step schema and branding.
func NewComposer(steps []wizard.Step, branding config.BrandingConfig) *Composer {
	return &Composer{
		steps:    steps,
		logoPath: branding.LogoPath,
		company:  branding.CompanyName,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Compose renders the bundle. The PDF and the deck are rendered
// concurrently; both must succeed.
func (c *Composer) Compose(d *model.Draft) (*Bundle, error) {
	if !d.Ready {
		return nil, &DraftIncompleteError{}
	}

	created := creationDate(d)
	base := c.baseName(d)

	var pdfBytes, deckBytes []byte
	g := new(errgroup.Group)
	g.Go(func() error {
		b, err := c.renderPDF(d, created)
		pdfBytes = b
		return err
	})
	g.Go(func() error {
		b, err := c.renderDeck(d, created)
		deckBytes = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compose documents: %w", err)
	}

	return &Bundle{
		RFQRef:   d.Field(model.FieldRFQReference),
		PDFName:  base + ".pdf",
		PDF:      pdfBytes,
		DeckName: base + "_deck.pdf",
		Deck:     deckBytes,
	}, nil
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// baseName derives the deterministic artifact name from the RFQ
// reference and the draft date.
func (c *Composer) baseName(d *model.Draft) string {
	ref := d.Field(model.FieldRFQReference)
	if ref == "" {
		ref = "RFQ"
	}
	ref = strings.Trim(unsafeNameRe.ReplaceAllString(ref, "_"), "_.")

	date := strings.ReplaceAll(d.Field(model.FieldDate), "-", "")
	if date == "" {
		return ref
	}
	return ref + "_" + date
}

// creationDate pins the document creation date to the draft date so
// composing the same draft twice yields byte-identical files.
func creationDate(d *model.Draft) time.Time {
	if t, err := time.Parse("2006-01-02", d.Field(model.FieldDate)); err == nil {
		return t.UTC()
	}
	return time.Unix(0, 0).UTC()
}

// sanitize strips any markup from user-entered text before it reaches a
// document.
func (c *Composer) sanitize(v string) string {
	return html.UnescapeString(c.policy.Sanitize(v))
}

type row struct {
	label string
	value string
}

// sectionRows collects the non-empty label/value pairs of a step in
// declaration order.
func (c *Composer) sectionRows(d *model.Draft, stepID string) []row {
	var rows []row
	for _, s := range c.steps {
		if s.ID != stepID {
			continue
		}
		for _, f := range s.Fields {
			v := d.Field(f.Name)
			if v == "" {
				continue
			}
			rows = append(rows, row{label: f.Label, value: c.sanitize(v)})
		}
	}
	return rows
}

// stepTitle returns the declared title of a step.
func (c *Composer) stepTitle(stepID string) string {
	for _, s := range c.steps {
		if s.ID == stepID {
			return s.Title
		}
	}
	return stepID
}

// hasLogo reports whether the branding logo exists on disk.
func (c *Composer) hasLogo() bool {
	if c.logoPath == "" {
		return false
	}
	info, err := os.Stat(c.logoPath)
	return err == nil && !info.IsDir()
}
