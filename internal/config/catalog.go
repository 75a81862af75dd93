package config

type Catalog struct {
	BaseURL string `env:"CATALOG_BASE_URL,notEmpty"`
	Token   string `env:"CATALOG_TOKEN" json:"-"`
}
