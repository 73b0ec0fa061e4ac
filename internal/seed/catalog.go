package seed

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OrganizationData is one organization entry of a catalog file
type OrganizationData struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ProductData is one product entry. An empty Organization makes the product marketplace-wide.
type ProductData struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Price        string `yaml:"price"`
	Quantity     int    `yaml:"quantity"`
	Category     string `yaml:"category"`
	ImageURL     string `yaml:"image_url,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// UserData is one account entry
type UserData struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Role         string `yaml:"role"`
	Organization string `yaml:"organization,omitempty"`
}

// Catalog is the content of one or more seed files
type Catalog struct {
	Organizations []OrganizationData `yaml:"organizations"`
	Products      []ProductData      `yaml:"products"`
	Users         []UserData         `yaml:"users"`
}

func (c *Catalog) merge(other *Catalog) {
	c.Organizations = append(c.Organizations, other.Organizations...)
	c.Products = append(c.Products, other.Products...)
	c.Users = append(c.Users, other.Users...)
}

// ParseCatalog decodes a YAML catalog document
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &catalog, nil
}

// LoadCatalog reads a catalog file, or every .yaml/.yml file below a directory
// merged in lexical path order.
func LoadCatalog(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return loadFile(path)
	}

	all := &Catalog{}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !(strings.HasSuffix(p, ".yaml") || strings.HasSuffix(p, ".yml")) {
			return nil
		}

		catalog, err := loadFile(p)
		if err != nil {
			return err
		}
		all.merge(catalog)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func loadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}
