package product

// Product is a catalog record. The catalog owns every field except State,
// which only the indexing pipeline mutates (Pending -> Done).
type Product struct {
	id         string
	name       string
	category   string
	imageURL   string
	productURL string
	price      float64
	inStock    bool
	updatedAt  string
	state      IndexState
}

// Reconstruct rebuilds a product from stored fields without validation.
func Reconstruct(
	id, name, category, imageURL, productURL string,
	price float64, inStock bool, updatedAt string, state IndexState,
) Product {
	return Product{
		id: id, name: name, category: category,
		imageURL: imageURL, productURL: productURL,
		price: price, inStock: inStock, updatedAt: updatedAt,
		state: state,
	}
}

// New creates a product in the Pending state.
func New(
	id, name, category, imageURL, productURL string,
	price float64, inStock bool, updatedAt string,
) Product {
	return Reconstruct(id, name, category, imageURL, productURL, price, inStock, updatedAt, StatePending)
}

// ID returns the stable product identifier.
func (p *Product) ID() string { return p.id }

// Name returns the display name, which is also the text embedded at index time.
func (p *Product) Name() string { return p.name }

// Category returns the display category.
func (p *Product) Category() string { return p.category }

// ImageURL returns the locator of the product image.
func (p *Product) ImageURL() string { return p.imageURL }

// ProductURL returns the external product page link.
func (p *Product) ProductURL() string { return p.productURL }

// Price returns the display price.
func (p *Product) Price() float64 { return p.price }

// InStock reports stock availability.
func (p *Product) InStock() bool { return p.inStock }

// UpdatedAt returns the catalog's last-update timestamp (opaque string).
func (p *Product) UpdatedAt() string { return p.updatedAt }

// State returns the embedding state.
func (p *Product) State() IndexState { return p.state }
