package ocds

import "strconv"

// Row statuses stamped into the `status` bookkeeping column
const (
	StatusOK           = "ok"
	StatusDuplicateURI = "duplicate_uri_skipped_fetch"
	StatusFetchFailed  = "fetch_failed_or_invalid_json"
)

// Record is one flattened notice keyed by extract column name. Missing
// keys render as empty cells
type Record map[string]string

// Row renders the record in Columns order
func (r Record) Row() []string {
	cols := Columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r[c]
	}
	return out
}

// StatusRecord builds the short row written for URIs that were not
// flattened: per-day duplicates and failed fetches. Everything outside
// the bookkeeping columns stays empty
func StatusRecord(csvFile string, rowIndex int, uri, status string) Record {
	return Record{
		"csv_file":  csvFile,
		"row_index": strconv.Itoa(rowIndex),
		"uri":       uri,
		"status":    status,
	}
}

// Columns returns the contracts_finder extract column order. Stable:
// the merge stage unions headers by first appearance
func Columns() []string {
	return []string{
		// bookkeeping
		"csv_file",
		"row_index",
		"status",

		// identification
		"uri",
		"publishedDate",
		"ocid",
		"release_id",
		"release_title",
		"release_date",
		"release_language",
		"release_tag",
		"release_tags_all",
		"initiationType",

		// planning
		"planning_milestone_ids",
		"planning_milestone_titles",
		"planning_milestone_types",
		"planning_milestone_dueDates",
		"planning_document_ids",
		"planning_document_types",
		"planning_document_descriptions",
		"planning_document_urls",
		"planning_document_datePublished",
		"planning_document_formats",
		"planning_document_languages",

		// publisher / meta
		"publisher_name",
		"publisher_scheme",
		"publisher_uid",
		"publisher_uri",
		"version",
		"extensions",
		"license",
		"publicationPolicy",

		// tender basics
		"tender_id",
		"tender_title",
		"tender_description",
		"tender_status",
		"mainProcurementCategory",

		// value
		"value_amount",
		"value_currency",
		"minValue_amount",
		"minValue_currency",

		// CPV and tender documents
		"cpv_scheme",
		"cpv_id",
		"cpv_description",
		"additional_cpv_ids",
		"additional_cpv_descriptions",
		"tender_document_ids",
		"tender_document_types",
		"tender_document_descriptions",
		"tender_document_urls",
		"tender_document_datePublished",
		"tender_document_dateModified",
		"tender_document_formats",
		"tender_document_languages",

		// geography
		"tender_item_ids",
		"tender_delivery_postalCodes_all",
		"tender_delivery_regions_all",
		"tender_delivery_countryNames_all",
		"delivery_postalCode",
		"delivery_region",
		"delivery_country",

		// timing
		"tender_datePublished",
		"tender_endDate",
		"contract_startDate",
		"contract_endDate",

		// method / SME flags
		"procurementMethod",
		"procurementMethodDetails",
		"suitability_sme",
		"suitability_vcse",

		// buyer
		"buyer_id",
		"buyer_name",
		"buyer_legalName",
		"buyer_identifier_scheme",
		"buyer_identifier_id",
		"buyer_streetAddress",
		"buyer_locality",
		"buyer_postalCode",
		"buyer_countryName",
		"buyer_contact_name",
		"buyer_contact_email",
		"buyer_contact_telephone",
		"buyer_details_url",
		"buyer_roles",

		// supplier parties
		"supplier_party_ids",
		"supplier_party_names",
		"supplier_legalNames",
		"supplier_identifier_schemes",
		"supplier_identifier_ids",
		"supplier_streetAddresses",
		"supplier_localities",
		"supplier_postalCodes",
		"supplier_countryNames",
		"supplier_scales",
		"supplier_vcse_flags",
		"supplier_details_urls",
		"supplier_roles",

		// links
		"tender_notice_url",
		"tender_notice_description",

		// first award
		"award_id",
		"award_status",
		"award_date",
		"award_datePublished",
		"award_value_amount",
		"award_value_currency",
		"award_contract_startDate",
		"award_contract_endDate",
		"award_suppliers_ids",
		"award_suppliers_names",
		"award_notice_url",
		"award_notice_description",
		"award_notice_datePublished",
		"award_notice_format",
		"award_notice_language",
		"award_document_ids",
		"award_document_types",
		"award_document_descriptions",
		"award_document_urls",
		"award_document_datePublished",
		"award_document_dateModified",
		"award_document_formats",
		"award_document_languages",
	}
}
