package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Category key for the model/key-spec options derived from the BOM sheet.
const CategoryModelSpec = "model_spec"

// CategoryNotFoundError reports a lookup against a category the workbook
// does not define. An unknown category is never answered with an empty list.
type CategoryNotFoundError struct {
	Category string
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("option category not found: %s", e.Category)
}

// LoadOptions workbook layout settings
type LoadOptions struct {
	// ListsSheet holds one option category per column, header row first.
	ListsSheet string
	// BOMSheet holds the bill-of-materials rows used for model options
	// and unit-cost lookup.
	BOMSheet string
	// BOMHeaderRow is the 1-based row holding the BOM column headers.
	BOMHeaderRow int
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.ListsSheet == "" {
		o.ListsSheet = "Lists"
	}
	if o.BOMSheet == "" {
		o.BOMSheet = "BOM"
	}
	if o.BOMHeaderRow <= 0 {
		o.BOMHeaderRow = 12
	}
	return o
}

type bomRow struct {
	SNo         string
	Head        string
	Description string
	ModelSpec   string
	UnitCost    float64
}

// Catalog holds the named option lists and BOM rows loaded at startup.
// Read-only after Load; safe for concurrent use.
type Catalog struct {
	options map[string][]string
	order   []string
	bom     []bomRow
}

// Load opens the workbook at path and builds the catalog.
func Load(path string, opts LoadOptions) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()
	return LoadWorkbook(f, opts)
}

// LoadWorkbook builds the catalog from an already-open workbook.
func LoadWorkbook(f *excelize.File, opts LoadOptions) (*Catalog, error) {
	opts = opts.withDefaults()

	c := &Catalog{options: make(map[string][]string)}

	if err := c.loadLists(f, opts.ListsSheet); err != nil {
		return nil, err
	}
	if err := c.loadBOM(f, opts.BOMSheet, opts.BOMHeaderRow); err != nil {
		return nil, err
	}

	return c, nil
}

// loadLists reads the Lists sheet: first row holds category names, each
// column below is the ordered option list for that category.
func (c *Catalog) loadLists(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("sheet %q has no option rows", sheet)
	}

	header := rows[0]
	for col, name := range header {
		key := normalizeKey(name)
		if key == "" {
			continue
		}
		if _, dup := c.options[key]; dup {
			return fmt.Errorf("sheet %q declares category %q twice", sheet, key)
		}

		var values []string
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[col])
			if v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return fmt.Errorf("category %q in sheet %q has no options", key, sheet)
		}

		c.options[key] = values
		c.order = append(c.order, key)
	}

	if len(c.order) == 0 {
		return fmt.Errorf("sheet %q declares no categories", sheet)
	}
	return nil
}

// loadBOM reads the BOM rows and derives the model_spec option set from
// the Model/Key Spec column.
func (c *Catalog) loadBOM(f *excelize.File, sheet string, headerRow int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < headerRow+1 {
		return fmt.Errorf("sheet %q has no rows below header row %d", sheet, headerRow)
	}

	cols, err := mapBOMColumns(rows[headerRow-1])
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}

	seen := make(map[string]bool)
	var models []string
	for _, row := range rows[headerRow:] {
		head := cellAt(row, cols.head)
		spec := cellAt(row, cols.modelSpec)
		if head == "" || spec == "" {
			continue
		}
		r := bomRow{
			SNo:         cellAt(row, cols.sno),
			Head:        head,
			Description: cellAt(row, cols.description),
			ModelSpec:   spec,
			UnitCost:    normalizeCost(cellAt(row, cols.unitCost)),
		}
		c.bom = append(c.bom, r)

		for _, m := range SplitSpecValues(spec) {
			if !seen[m] {
				seen[m] = true
				models = append(models, m)
			}
		}
	}

	if len(c.bom) == 0 {
		return fmt.Errorf("sheet %q has no usable BOM rows", sheet)
	}

	sort.Strings(models)
	c.options[CategoryModelSpec] = models
	c.order = append(c.order, CategoryModelSpec)
	return nil
}

// Options returns the ordered option list for a category.
func (c *Catalog) Options(category string) ([]string, error) {
	values, ok := c.options[category]
	if !ok {
		return nil, &CategoryNotFoundError{Category: category}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

// Has reports whether value is a member of the category. Unknown
// categories report an error, never a silent false-only answer.
func (c *Catalog) Has(category, value string) (bool, error) {
	values, ok := c.options[category]
	if !ok {
		return false, &CategoryNotFoundError{Category: category}
	}
	for _, v := range values {
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

// Categories returns the category keys in workbook order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// UnitCost returns the unit cost of the first BOM row whose Model/Key
// Spec cell contains model (case-insensitive), 0 when absent.
func (c *Catalog) UnitCost(model string) float64 {
	if row, ok := c.findModel(model); ok {
		return row.UnitCost
	}
	return 0
}

// Head returns the Head value of the first BOM row matching model.
func (c *Catalog) Head(model string) string {
	if row, ok := c.findModel(model); ok {
		return row.Head
	}
	return ""
}

func (c *Catalog) findModel(model string) (bomRow, bool) {
	if model == "" {
		return bomRow{}, false
	}
	needle := strings.ToLower(model)
	for _, row := range c.bom {
		if strings.Contains(strings.ToLower(row.ModelSpec), needle) {
			return row, true
		}
	}
	return bomRow{}, false
}

var specSplitRe = regexp.MustCompile(`\s*\|\s*|\s+I\s+|/|;|,`)

// SplitSpecValues splits a Model/Key Spec cell into individual options.
// Cells pack several alternatives separated by "|", "/", ";" or ",".
func SplitSpecValues(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := specSplitRe.Split(cell, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var nonNumericRe = regexp.MustCompile(`[^\d.\-]`)

// normalizeCost parses a cost cell, tolerating currency symbols and
// thousands separators. Unparseable cells count as zero.
func normalizeCost(s string) float64 {
	s = nonNumericRe.ReplaceAllString(s, "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

var keyCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeKey turns a header cell into a category key:
// "Type of Equipment" -> "type_of_equipment".
func normalizeKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = keyCleanRe.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

type bomColumns struct {
	sno         int
	head        int
	description int
	modelSpec   int
	unitCost    int
	qty         int
}

// mapBOMColumns resolves the BOM columns by fuzzy header match; the
// source workbook is hand-maintained and header wording drifts.
func mapBOMColumns(header []string) (bomColumns, error) {
	cols := bomColumns{sno: -1, head: -1, description: -1, modelSpec: -1, unitCost: -1, qty: -1}
	for i, raw := range header {
		low := strings.ToLower(strings.TrimSpace(raw))
		low = strings.ReplaceAll(low, "\n", " ")
		switch {
		case strings.Contains(low, "s.no"):
			cols.sno = i
		case strings.Contains(low, "head"):
			cols.head = i
		case strings.Contains(low, "description"):
			cols.description = i
		case strings.Contains(low, "model") || strings.Contains(low, "key spec"):
			cols.modelSpec = i
		case strings.Contains(low, "unit") && strings.Contains(low, "cost"):
			cols.unitCost = i
		case low == "qty" || strings.Contains(low, "quantity"):
			cols.qty = i
		}
	}
	if cols.head < 0 || cols.modelSpec < 0 {
		return cols, fmt.Errorf("header row missing Head / Model-Key-Spec columns")
	}
	return cols, nil
}
