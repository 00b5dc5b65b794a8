package types

// CatalogGame is a single entry returned by the external game catalog.
type CatalogGame struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Platforms       []CatalogPlatform `json:"platforms"`
	Genres          []CatalogGenre    `json:"genres"`
	Released        string            `json:"released"`
	BackgroundImage string            `json:"background_image"`
	Publishers      []CatalogCompany  `json:"publishers"`
}

type CatalogPlatform struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CatalogGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CatalogCompany struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogSearchResponse is the envelope the catalog returns for a search.
type CatalogSearchResponse struct {
	Count   int           `json:"count"`
	Results []CatalogGame `json:"results"`
}
