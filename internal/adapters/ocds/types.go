package ocds

import "encoding/json"

// Scalar decodes any JSON scalar into its string rendering. Upstream
// publishers are loose about types (ids arrive as numbers, flags as
// booleans), and the extract is tabular anyway, so everything lands as
// the original token text
type Scalar string

// UnmarshalJSON accepts strings, numbers, booleans, and null
func (s *Scalar) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Scalar(v)
		return nil
	}
	*s = Scalar(b)
	return nil
}

// String returns the scalar's text form
func (s Scalar) String() string { return string(s) }

// Package is an OCDS release package as served per notice URI
type Package struct {
	URI               Scalar    `json:"uri"`
	PublishedDate     Scalar    `json:"publishedDate"`
	Publisher         Publisher `json:"publisher"`
	Version           Scalar    `json:"version"`
	Extensions        []Scalar  `json:"extensions"`
	License           Scalar    `json:"license"`
	PublicationPolicy Scalar    `json:"publicationPolicy"`
	Releases          []Release `json:"releases"`
}

// Publisher identifies the publishing system
type Publisher struct {
	Name   Scalar `json:"name"`
	Scheme Scalar `json:"scheme"`
	UID    Scalar `json:"uid"`
	URI    Scalar `json:"uri"`
}

// Release is one OCDS release; Contracts Finder packages carry exactly one
type Release struct {
	OCID           Scalar   `json:"ocid"`
	ID             Scalar   `json:"id"`
	Date           Scalar   `json:"date"`
	Title          Scalar   `json:"title"`
	Language       Scalar   `json:"language"`
	Tag            []Scalar `json:"tag"`
	InitiationType Scalar   `json:"initiationType"`
	Planning       Planning `json:"planning"`
	Tender         Tender   `json:"tender"`
	Buyer          OrgRef   `json:"buyer"`
	Parties        []Party  `json:"parties"`
	Awards         []Award  `json:"awards"`
}

// OrgRef is a shallow organization reference
type OrgRef struct {
	ID   Scalar `json:"id"`
	Name Scalar `json:"name"`
}

// Planning holds the planning section
type Planning struct {
	Milestones []Milestone `json:"milestones"`
	Documents  []Document  `json:"documents"`
}

// Milestone is a planning milestone
type Milestone struct {
	ID      Scalar `json:"id"`
	Title   Scalar `json:"title"`
	Type    Scalar `json:"type"`
	DueDate Scalar `json:"dueDate"`
}

// Document is an attached document reference
type Document struct {
	ID            Scalar `json:"id"`
	DocumentType  Scalar `json:"documentType"`
	Description   Scalar `json:"description"`
	URL           Scalar `json:"url"`
	DatePublished Scalar `json:"datePublished"`
	DateModified  Scalar `json:"dateModified"`
	Format        Scalar `json:"format"`
	Language      Scalar `json:"language"`
}

// Classification is a CPV (or other scheme) classification
type Classification struct {
	Scheme      Scalar `json:"scheme"`
	ID          Scalar `json:"id"`
	Description Scalar `json:"description"`
}

// Value is an amount with currency
type Value struct {
	Amount   Scalar `json:"amount"`
	Currency Scalar `json:"currency"`
}

// Period is a start/end date pair
type Period struct {
	StartDate Scalar `json:"startDate"`
	EndDate   Scalar `json:"endDate"`
}

// Item is a tender line item
type Item struct {
	ID                Scalar    `json:"id"`
	DeliveryAddresses []Address `json:"deliveryAddresses"`
}

// Address is a postal address
type Address struct {
	StreetAddress Scalar `json:"streetAddress"`
	Locality      Scalar `json:"locality"`
	Region        Scalar `json:"region"`
	PostalCode    Scalar `json:"postalCode"`
	CountryName   Scalar `json:"countryName"`
}

// Suitability carries the SME/VCSE suitability flags
type Suitability struct {
	SME  Scalar `json:"sme"`
	VCSE Scalar `json:"vcse"`
}

// Tender is the tender section
type Tender struct {
	ID                        Scalar           `json:"id"`
	Title                     Scalar           `json:"title"`
	Description               Scalar           `json:"description"`
	Status                    Scalar           `json:"status"`
	MainProcurementCategory   Scalar           `json:"mainProcurementCategory"`
	Documents                 []Document       `json:"documents"`
	Classification            Classification   `json:"classification"`
	AdditionalClassifications []Classification `json:"additionalClassifications"`
	Value                     Value            `json:"value"`
	MinValue                  Value            `json:"minValue"`
	Items                     []Item           `json:"items"`
	DatePublished             Scalar           `json:"datePublished"`
	TenderPeriod              Period           `json:"tenderPeriod"`
	ContractPeriod            Period           `json:"contractPeriod"`
	ProcurementMethod         Scalar           `json:"procurementMethod"`
	ProcurementMethodDetails  Scalar           `json:"procurementMethodDetails"`
	Suitability               Suitability      `json:"suitability"`
}

// Identifier is an organization identifier
type Identifier struct {
	LegalName Scalar `json:"legalName"`
	Scheme    Scalar `json:"scheme"`
	ID        Scalar `json:"id"`
}

// ContactPoint is an organization contact
type ContactPoint struct {
	Name      Scalar `json:"name"`
	Email     Scalar `json:"email"`
	Telephone Scalar `json:"telephone"`
}

// Details carries assorted organization detail flags
type Details struct {
	URL   Scalar `json:"url"`
	Scale Scalar `json:"scale"`
	VCSE  Scalar `json:"vcse"`
}

// Party is a full organization entry
type Party struct {
	ID           Scalar       `json:"id"`
	Name         Scalar       `json:"name"`
	Identifier   Identifier   `json:"identifier"`
	Address      Address      `json:"address"`
	ContactPoint ContactPoint `json:"contactPoint"`
	Details      Details      `json:"details"`
	Roles        []Scalar     `json:"roles"`
}

// Award is one award section entry
type Award struct {
	ID             Scalar     `json:"id"`
	Status         Scalar     `json:"status"`
	Date           Scalar     `json:"date"`
	DatePublished  Scalar     `json:"datePublished"`
	Value          Value      `json:"value"`
	ContractPeriod Period     `json:"contractPeriod"`
	Suppliers      []OrgRef   `json:"suppliers"`
	Documents      []Document `json:"documents"`
}
