package catalog

// SKU is one product listing loaded from a catalog export. It exposes
// the four policy sections (title, bullets, description, images)
// through accessor methods so the rule evaluator can validate it
// without depending on this package.
type SKU struct {
	// ID is the listing identifier (ASIN, SKU code, or similar).
	ID string `json:"sku_id"`

	// TitleText is the listing title.
	TitleText string `json:"title"`

	// BulletPoints are the key product feature bullets.
	BulletPoints []string `json:"bullets"`

	// DescriptionText is the long-form description.
	DescriptionText string `json:"description"`

	// Brand is the brand name, when the export carries one.
	Brand string `json:"brand,omitempty"`

	// Category is the catalog category node, when present.
	Category string `json:"category,omitempty"`

	// ImageURLs are the listing image links, when present.
	ImageURLs []string `json:"images,omitempty"`
}

// Title returns the listing title.
func (s SKU) Title() string { return s.TitleText }

// Bullets returns the key feature bullets.
func (s SKU) Bullets() []string { return s.BulletPoints }

// Description returns the long description.
func (s SKU) Description() string { return s.DescriptionText }

// Images returns the image URLs.
func (s SKU) Images() []string { return s.ImageURLs }
