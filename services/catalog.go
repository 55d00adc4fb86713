package services

import (
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	yaml "gopkg.in/yaml.v2"

	"template-engine-service/models"
)

// placeholderKeyPattern describes valid placeholder keys: the leading @,
// then a letter, then letters, digits, dots or underscores.
var placeholderKeyPattern = regexp.MustCompile(`^@[a-zA-Z][a-zA-Z0-9._]*$`)

// PlaceholderCatalog is an immutable, ordered collection of placeholder
// definitions with fast lookup by key and by category. Catalog order is the
// tie-breaker for ranked suggestions, so it is preserved from the source.
type PlaceholderCatalog struct {
	ordered    []models.PlaceholderDefinition
	byKey      map[string]models.PlaceholderDefinition
	byCategory map[models.ContextType][]models.PlaceholderDefinition
}

// NewPlaceholderCatalog builds a catalog from definitions, validating each
// entry and rejecting duplicate keys.
func NewPlaceholderCatalog(defs []models.PlaceholderDefinition) (*PlaceholderCatalog, error) {
	catalog := &PlaceholderCatalog{
		ordered:    make([]models.PlaceholderDefinition, 0, len(defs)),
		byKey:      make(map[string]models.PlaceholderDefinition, len(defs)),
		byCategory: make(map[models.ContextType][]models.PlaceholderDefinition),
	}

	for i, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("placeholder %d (%q): %w", i, def.Key, err)
		}
		if _, exists := catalog.byKey[def.Key]; exists {
			return nil, fmt.Errorf("placeholder %d: duplicate key %q", i, def.Key)
		}
		catalog.ordered = append(catalog.ordered, def)
		catalog.byKey[def.Key] = def
		catalog.byCategory[def.Category] = append(catalog.byCategory[def.Category], def)
	}

	return catalog, nil
}

// validateDefinition checks a single catalog entry.
func validateDefinition(def models.PlaceholderDefinition) error {
	return validation.ValidateStruct(&def,
		validation.Field(&def.Key, validation.Required, validation.Match(placeholderKeyPattern)),
		validation.Field(&def.Label, validation.Required),
		validation.Field(&def.Category, validation.Required),
	)
}

// Get returns the definition for a key.
func (c *PlaceholderCatalog) Get(key string) (models.PlaceholderDefinition, bool) {
	def, ok := c.byKey[key]
	return def, ok
}

// All returns every definition in catalog order.
func (c *PlaceholderCatalog) All() []models.PlaceholderDefinition {
	out := make([]models.PlaceholderDefinition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByCategory returns the definitions of one category in catalog order.
func (c *PlaceholderCatalog) ByCategory(category models.ContextType) []models.PlaceholderDefinition {
	defs := c.byCategory[category]
	out := make([]models.PlaceholderDefinition, len(defs))
	copy(out, defs)
	return out
}

// Categories returns the distinct categories in order of first appearance.
func (c *PlaceholderCatalog) Categories() []models.ContextType {
	seen := make(map[models.ContextType]bool)
	var out []models.ContextType
	for _, def := range c.ordered {
		if !seen[def.Category] {
			seen[def.Category] = true
			out = append(out, def.Category)
		}
	}
	return out
}

// Len returns the number of definitions.
func (c *PlaceholderCatalog) Len() int {
	return len(c.ordered)
}

// catalogFile is the on-disk YAML shape of a placeholder catalog.
type catalogFile struct {
	Placeholders []models.PlaceholderDefinition `yaml:"placeholders"`
}

// LoadCatalogFile reads a placeholder catalog from a YAML file.
func LoadCatalogFile(path string) (*PlaceholderCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(file.Placeholders) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no placeholders", path)
	}

	return NewPlaceholderCatalog(file.Placeholders)
}

// DefaultCatalog returns the built-in placeholder catalog for rental
// documents. Labels and descriptions are in German because they surface
// directly in the editor UI.
func DefaultCatalog() *PlaceholderCatalog {
	catalog, err := NewPlaceholderCatalog(defaultDefinitions())
	if err != nil {
		// The built-in definitions are fixed at compile time, so a
		// failure here is a programming error.
		panic(fmt.Sprintf("built-in catalog invalid: %v", err))
	}
	return catalog
}

func defaultDefinitions() []models.PlaceholderDefinition {
	return []models.PlaceholderDefinition{
		{
			Key:         "@datum",
			Label:       "Aktuelles Datum",
			Description: "Das Datum, an dem das Dokument erstellt wird",
			Category:    models.ContextDatum,
			Example:     "24.08.2026",
		},
		{
			Key:         "@datum.monat",
			Label:       "Aktueller Monat",
			Description: "Der Monat der Dokumenterstellung",
			Category:    models.ContextDatum,
			Example:     "August 2026",
		},
		{
			Key:         "@datum.jahr",
			Label:       "Aktuelles Jahr",
			Description: "Das Jahr der Dokumenterstellung",
			Category:    models.ContextDatum,
			Example:     "2026",
		},
		{
			Key:             "@mieter.name",
			Label:           "Name des Mieters",
			Description:     "Vollständiger Name des Mieters",
			Category:        models.ContextMieter,
			Example:         "Max Mustermann",
			RequiresContext: []models.ContextType{models.ContextMieter},
		},
		{
			Key:             "@mieter.anrede",
			Label:           "Anrede des Mieters",
			Description:     "Förmliche Anrede, z. B. Sehr geehrter Herr Mustermann",
			Category:        models.ContextMieter,
			Example:         "Sehr geehrter Herr Mustermann",
			RequiresContext: []models.ContextType{models.ContextMieter},
		},
		{
			Key:             "@mieter.email",
			Label:           "E-Mail des Mieters",
			Description:     "E-Mail-Adresse des Mieters",
			Category:        models.ContextMieter,
			Example:         "max@example.com",
			RequiresContext: []models.ContextType{models.ContextMieter},
		},
		{
			Key:             "@mieter.telefon",
			Label:           "Telefonnummer des Mieters",
			Description:     "Telefonnummer des Mieters",
			Category:        models.ContextMieter,
			Example:         "+49 151 23456789",
			RequiresContext: []models.ContextType{models.ContextMieter},
		},
		{
			Key:             "@mieter.einzugsdatum",
			Label:           "Einzugsdatum",
			Description:     "Datum des Mietbeginns laut Mietvertrag",
			Category:        models.ContextMieter,
			Example:         "01.09.2026",
			RequiresContext: []models.ContextType{models.ContextMieter},
		},
		{
			Key:             "@wohnung.adresse",
			Label:           "Adresse der Wohnung",
			Description:     "Vollständige Anschrift der Wohnung",
			Category:        models.ContextWohnung,
			Example:         "Musterstraße 12, 10115 Berlin",
			RequiresContext: []models.ContextType{models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:             "@wohnung.nummer",
			Label:           "Wohnungsnummer",
			Description:     "Interne Nummer der Wohnung im Gebäude",
			Category:        models.ContextWohnung,
			Example:         "WE 04",
			RequiresContext: []models.ContextType{models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:             "@wohnung.miete",
			Label:           "Kaltmiete",
			Description:     "Monatliche Kaltmiete der Wohnung",
			Category:        models.ContextWohnung,
			Example:         "850,00 €",
			RequiresContext: []models.ContextType{models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:             "@wohnung.nebenkosten",
			Label:           "Nebenkostenvorauszahlung",
			Description:     "Monatliche Vorauszahlung für Nebenkosten",
			Category:        models.ContextWohnung,
			Example:         "220,00 €",
			RequiresContext: []models.ContextType{models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:             "@wohnung.flaeche",
			Label:           "Wohnfläche",
			Description:     "Wohnfläche in Quadratmetern",
			Category:        models.ContextWohnung,
			Example:         "72 m²",
			RequiresContext: []models.ContextType{models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:             "@haus.adresse",
			Label:           "Adresse des Hauses",
			Description:     "Anschrift des Gebäudes",
			Category:        models.ContextHaus,
			Example:         "Musterstraße 12, 10115 Berlin",
			RequiresContext: []models.ContextType{models.ContextHaus, models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:             "@haus.bezeichnung",
			Label:           "Bezeichnung des Hauses",
			Description:     "Interner Name des Gebäudes",
			Category:        models.ContextHaus,
			Example:         "Wohnanlage Mitte",
			RequiresContext: []models.ContextType{models.ContextHaus, models.ContextWohnung, models.ContextMieter},
		},
		{
			Key:         "@vermieter.name",
			Label:       "Name des Vermieters",
			Description: "Name des Vermieters oder der Hausverwaltung",
			Category:    models.ContextVermieter,
			Example:     "Hausverwaltung Schmidt GmbH",
		},
		{
			Key:         "@vermieter.adresse",
			Label:       "Adresse des Vermieters",
			Description: "Anschrift des Vermieters oder der Hausverwaltung",
			Category:    models.ContextVermieter,
			Example:     "Verwaltungsweg 3, 10117 Berlin",
		},
		{
			Key:         "@vermieter.telefon",
			Label:       "Telefonnummer des Vermieters",
			Description: "Telefonnummer für Rückfragen",
			Category:    models.ContextVermieter,
			Example:     "+49 30 1234567",
		},
		{
			Key:         "@vermieter.email",
			Label:       "E-Mail des Vermieters",
			Description: "E-Mail-Adresse für Rückfragen",
			Category:    models.ContextVermieter,
			Example:     "info@hv-schmidt.de",
		},
		{
			Key:         "@vermieter.iban",
			Label:       "Bankverbindung (IBAN)",
			Description: "IBAN für Mietzahlungen",
			Category:    models.ContextVermieter,
			Example:     "DE89 3704 0044 0532 0130 00",
		},
	}
}
