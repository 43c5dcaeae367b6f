package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Column alias lists, tried in order. Retailer exports name the same
// field a dozen ways; the first alias present in the header wins.
var (
	idAliases       = []string{"product_id", "sku_id", "sku", "asin", "id"}
	titleAliases    = []string{"title", "product_title", "name"}
	bulletAliases   = []string{"bullet_points", "about_this_item", "highlights", "key_features", "features"}
	descAliases     = []string{"description_filled", "description", "product_description", "long_description", "details"}
	brandAliases    = []string{"retailer_brand_name", "brand", "brand_name", "manufacturer"}
	categoryAliases = []string{"retailer_category_node", "universe", "category", "dept", "vertical"}
	imageAliases    = []string{"image_url", "image_urls", "images", "image_links"}
)

// bulletSeparators are tried in order against raw bullet cells.
var bulletSeparators = []string{"||", "|", "\n", "•", ";", "‣", "·", "—"}

// Catalog is an in-memory catalog export: a header and its rows, keyed
// by column name.
type Catalog struct {
	columns []string
	rows    []map[string]string
}

// LoadCSV reads a catalog export from a CSV file.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged exports

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog %q is empty", path)
	}

	columns := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return &Catalog{columns: columns, rows: rows}, nil
}

// Len returns the number of data rows.
func (c *Catalog) Len() int { return len(c.rows) }

// idColumn resolves the identifier column from the alias list.
func (c *Catalog) idColumn() (string, error) {
	for _, alias := range idAliases {
		for _, col := range c.columns {
			if col == alias {
				return col, nil
			}
		}
	}
	return "", fmt.Errorf("no identifier column found, columns: %v", c.columns)
}

// SKUByID returns the first row whose identifier column matches id.
func (c *Catalog) SKUByID(id string) (SKU, error) {
	idCol, err := c.idColumn()
	if err != nil {
		return SKU{}, err
	}
	for _, row := range c.rows {
		if strings.TrimSpace(row[idCol]) == id {
			return rowToSKU(row), nil
		}
	}
	return SKU{}, &NotFoundError{ID: id, Column: idCol}
}

// SelectSKUs resolves the client and competitor listings in one call.
func (c *Catalog) SelectSKUs(clientID, competitorID string) (SKU, SKU, error) {
	client, err := c.SKUByID(clientID)
	if err != nil {
		return SKU{}, SKU{}, err
	}
	competitor, err := c.SKUByID(competitorID)
	if err != nil {
		return SKU{}, SKU{}, err
	}
	return client, competitor, nil
}

// NotFoundError reports a listing id absent from the catalog.
type NotFoundError struct {
	// ID is the identifier that was looked up.
	ID string

	// Column is the identifier column that was searched.
	Column string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("listing id %q not found in column %q", e.ID, e.Column)
}

// rowToSKU maps one export row onto the SKU shape via the alias lists.
func rowToSKU(row map[string]string) SKU {
	return SKU{
		ID:              firstValue(row, idAliases),
		TitleText:       firstValue(row, titleAliases),
		BulletPoints:    bulletsFromRow(row),
		DescriptionText: firstValue(row, descAliases),
		Brand:           firstValue(row, brandAliases),
		Category:        firstValue(row, categoryAliases),
		ImageURLs:       imagesFromRow(row),
	}
}

// firstValue returns the first non-empty cell among the alias columns.
func firstValue(row map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func bulletsFromRow(row map[string]string) []string {
	for _, alias := range bulletAliases {
		if v, ok := row[alias]; ok && strings.TrimSpace(v) != "" {
			return splitBullets(v)
		}
	}
	return nil
}

// splitBullets handles the bullet cell formats found in retailer
// exports: "a||b||c", "a|b", newlines, bullet glyphs, semicolons, and
// JSON-ish arrays. A cell with no recognized separator is one bullet.
func splitBullets(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var arr []any
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				if text := strings.TrimSpace(fmt.Sprint(item)); text != "" {
					out = append(out, text)
				}
			}
			return out
		}
	}

	for _, sep := range bulletSeparators {
		if !strings.Contains(s, sep) {
			continue
		}
		var out []string
		for _, part := range strings.Split(s, sep) {
			if text := strings.Trim(part, " -•\t"); text != "" {
				out = append(out, text)
			}
		}
		return out
	}

	return []string{s}
}

func imagesFromRow(row map[string]string) []string {
	for _, alias := range imageAliases {
		v, ok := row[alias]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		v = strings.TrimSpace(v)
		if !strings.Contains(v, "|") {
			return []string{v}
		}
		var out []string
		for _, part := range strings.Split(v, "|") {
			if url := strings.TrimSpace(part); url != "" {
				out = append(out, url)
			}
		}
		return out
	}
	return nil
}
