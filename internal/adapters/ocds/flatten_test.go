package ocds

import (
	"encoding/json"
	"testing"
)

const packageSample = `{
  "uri": "https://www.contractsfinder.service.gov.uk/Published/Notice/OCDS/abc-123",
  "publishedDate": "2016-11-18T12:00:00Z",
  "publisher": {"name": "Contracts Finder", "scheme": "GB-GOV", "uid": 12345, "uri": "https://www.gov.uk"},
  "version": "1.1",
  "extensions": ["ext-a", "ext-b"],
  "license": "http://www.nationalarchives.gov.uk/doc/open-government-licence/version/3/",
  "releases": [
    {
      "ocid": "ocds-b5fd17-abc",
      "id": "rel-1",
      "date": "2016-11-18T11:59:00Z",
      "title": "Stationery supplies",
      "language": "en",
      "tag": ["tender", "planning"],
      "initiationType": "tender",
      "buyer": {"id": "org-buyer", "name": "Example Council"},
      "parties": [
        {
          "id": "org-buyer",
          "name": "Example Council",
          "identifier": {"legalName": "Example Borough Council", "scheme": "GB-LAC", "id": 701},
          "address": {"streetAddress": "1 Town Hall Sq", "locality": "Exampleton", "postalCode": "EX1 2MP", "countryName": "England"},
          "contactPoint": {"name": "Procurement Team", "email": "buy@example.gov.uk", "telephone": "01234 567890"},
          "details": {"url": "https://example.gov.uk"},
          "roles": ["buyer", "procuringEntity"]
        },
        {
          "id": "org-supp-1",
          "name": "Paper Co",
          "identifier": {"legalName": "Paper Co Ltd", "scheme": "GB-COH", "id": "09876543"},
          "address": {"locality": "Leeds", "countryName": "England"},
          "details": {"scale": "sme", "vcse": false},
          "roles": ["supplier"]
        },
        {
          "id": "org-supp-2",
          "name": "Pens R Us",
          "roles": ["supplier", "tenderer"]
        }
      ],
      "tender": {
        "id": "ten-1",
        "title": "Stationery supplies",
        "description": "Annual stationery contract.",
        "status": "complete",
        "mainProcurementCategory": "goods",
        "classification": {"scheme": "CPV", "id": "30192000", "description": "Office supplies"},
        "additionalClassifications": [
          {"scheme": "CPV", "id": "30199000", "description": "Paper stationery"}
        ],
        "value": {"amount": 125000.5, "currency": "GBP"},
        "minValue": {"amount": 100000, "currency": "GBP"},
        "items": [
          {
            "id": "item-1",
            "deliveryAddresses": [
              {"postalCode": "EX1 2MP", "region": "UKK4", "countryName": "England"},
              {"region": "UKE4", "countryName": "England"}
            ]
          }
        ],
        "datePublished": "2016-10-01T09:00:00Z",
        "tenderPeriod": {"endDate": "2016-11-01T17:00:00Z"},
        "contractPeriod": {"startDate": "2017-01-01T00:00:00Z", "endDate": "2017-12-31T23:59:59Z"},
        "procurementMethod": "open",
        "suitability": {"sme": true, "vcse": false},
        "documents": [
          {"id": "doc-1", "documentType": "tenderNotice", "url": "https://example.gov.uk/notice/1", "description": "Tender notice"}
        ]
      },
      "awards": [
        {
          "id": "aw-1",
          "status": "active",
          "date": "2016-12-01T10:00:00Z",
          "value": {"amount": 120000, "currency": "GBP"},
          "contractPeriod": {"startDate": "2017-01-01T00:00:00Z", "endDate": "2017-12-31T23:59:59Z"},
          "suppliers": [{"id": "org-supp-1", "name": "Paper Co"}],
          "documents": [
            {"id": "doc-2", "documentType": "awardNotice", "url": "https://example.gov.uk/award/1", "format": "text/html", "language": "en"}
          ]
        }
      ]
    }
  ]
}`

func samplePackage(t *testing.T) *Package {
	t.Helper()
	var pkg Package
	if err := json.Unmarshal([]byte(packageSample), &pkg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	return &pkg
}

func TestFlatten(t *testing.T) {
	rec := Flatten(samplePackage(t), "Contracts Finder OCDS 2016-11-18.csv", 4, "ignored")

	want := map[string]string{
		"csv_file":           "Contracts Finder OCDS 2016-11-18.csv",
		"row_index":          "4",
		"status":             StatusOK,
		"uri":                "https://www.contractsfinder.service.gov.uk/Published/Notice/OCDS/abc-123",
		"publishedDate":      "2016-11-18T12:00:00Z",
		"publisher_uid":      "12345",
		"extensions":         "ext-a|ext-b",
		"ocid":               "ocds-b5fd17-abc",
		"release_tag":        "tender",
		"release_tags_all":   "tender|planning",
		"tender_status":      "complete",
		"value_amount":       "125000.5",
		"value_currency":     "GBP",
		"minValue_amount":    "100000",
		"cpv_id":             "30192000",
		"additional_cpv_ids": "30199000",
		"suitability_sme":    "true",
		"suitability_vcse":   "false",
	}
	for col, v := range want {
		if rec[col] != v {
			t.Errorf("%s = %q, want %q", col, rec[col], v)
		}
	}
}

func TestFlattenBuyerMatching(t *testing.T) {
	rec := Flatten(samplePackage(t), "day.csv", 0, "")

	if rec["buyer_id"] != "org-buyer" || rec["buyer_name"] != "Example Council" {
		t.Errorf("buyer ref = %q/%q", rec["buyer_id"], rec["buyer_name"])
	}
	if rec["buyer_legalName"] != "Example Borough Council" {
		t.Errorf("buyer_legalName = %q", rec["buyer_legalName"])
	}
	if rec["buyer_identifier_id"] != "701" {
		t.Errorf("buyer_identifier_id = %q (numeric id should render verbatim)", rec["buyer_identifier_id"])
	}
	if rec["buyer_roles"] != "buyer|procuringEntity" {
		t.Errorf("buyer_roles = %q", rec["buyer_roles"])
	}
}

func TestFlattenSuppliers(t *testing.T) {
	rec := Flatten(samplePackage(t), "day.csv", 0, "")

	if rec["supplier_party_ids"] != "org-supp-1|org-supp-2" {
		t.Errorf("supplier_party_ids = %q", rec["supplier_party_ids"])
	}
	if rec["supplier_party_names"] != "Paper Co|Pens R Us" {
		t.Errorf("supplier_party_names = %q", rec["supplier_party_names"])
	}
	// roles flatten uniquely across parties, order of first appearance
	if rec["supplier_roles"] != "supplier|tenderer" {
		t.Errorf("supplier_roles = %q", rec["supplier_roles"])
	}
	if rec["supplier_vcse_flags"] != "false" {
		t.Errorf("supplier_vcse_flags = %q", rec["supplier_vcse_flags"])
	}
}

func TestFlattenGeography(t *testing.T) {
	rec := Flatten(samplePackage(t), "day.csv", 0, "")

	if rec["tender_delivery_regions_all"] != "UKK4|UKE4" {
		t.Errorf("regions_all = %q", rec["tender_delivery_regions_all"])
	}
	if rec["tender_delivery_countryNames_all"] != "England" {
		t.Errorf("countries_all = %q (duplicates should collapse)", rec["tender_delivery_countryNames_all"])
	}
	if rec["delivery_postalCode"] != "EX1 2MP" || rec["delivery_region"] != "UKK4" {
		t.Errorf("first-of delivery = %q/%q", rec["delivery_postalCode"], rec["delivery_region"])
	}
}

func TestFlattenAwardAndNotices(t *testing.T) {
	rec := Flatten(samplePackage(t), "day.csv", 0, "")

	if rec["award_id"] != "aw-1" || rec["award_value_amount"] != "120000" {
		t.Errorf("award = %q/%q", rec["award_id"], rec["award_value_amount"])
	}
	if rec["award_suppliers_names"] != "Paper Co" {
		t.Errorf("award_suppliers_names = %q", rec["award_suppliers_names"])
	}
	if rec["tender_notice_url"] != "https://example.gov.uk/notice/1" {
		t.Errorf("tender_notice_url = %q", rec["tender_notice_url"])
	}
	if rec["award_notice_url"] != "https://example.gov.uk/award/1" || rec["award_notice_format"] != "text/html" {
		t.Errorf("award notice = %q/%q", rec["award_notice_url"], rec["award_notice_format"])
	}
}

func TestFlattenEmptyPackageKeepsURI(t *testing.T) {
	rec := Flatten(&Package{}, "day.csv", 7, "https://example.test/pkg")
	if rec["uri"] != "https://example.test/pkg" {
		t.Errorf("uri = %q, want the fetched uri fallback", rec["uri"])
	}
	if rec["status"] != StatusOK {
		t.Errorf("status = %q", rec["status"])
	}
}

func TestStatusRecordRow(t *testing.T) {
	rec := StatusRecord("day.csv", 3, "https://example.test/pkg", StatusDuplicateURI)
	row := rec.Row()
	if len(row) != len(Columns()) {
		t.Fatalf("row width %d != columns %d", len(row), len(Columns()))
	}
	if rec["status"] != StatusDuplicateURI || rec["row_index"] != "3" {
		t.Errorf("status/row_index = %q/%q", rec["status"], rec["row_index"])
	}
	// everything outside the bookkeeping columns stays empty
	if rec["tender_id"] != "" || rec["publishedDate"] != "" {
		t.Errorf("status record leaked non-bookkeeping cells")
	}
}

func TestScalarUnmarshal(t *testing.T) {
	var v struct {
		S Scalar `json:"s"`
		N Scalar `json:"n"`
		B Scalar `json:"b"`
		Z Scalar `json:"z"`
	}
	if err := json.Unmarshal([]byte(`{"s":"x","n":12.50,"b":true,"z":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.S != "x" || v.N != "12.50" || v.B != "true" || v.Z != "" {
		t.Fatalf("scalars = %q %q %q %q", v.S, v.N, v.B, v.Z)
	}
}
