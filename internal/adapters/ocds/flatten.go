package ocds

import (
	"strconv"
	"strings"
)

// pipeSep separates multi-valued cells
const pipeSep = "|"

// pipeJoin joins the non-empty values with "|", preserving order.
// Values are kept verbatim; only fully empty entries drop out
func pipeJoin(values []string) string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, pipeSep)
}

// scalars renders a Scalar slice as strings
func scalars(in []Scalar) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.String()
	}
	return out
}

// appendUnique appends v when non-empty and not already present,
// preserving first-appearance order
func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

// documentCells flattens a document list into its pipe-joined per-field
// cells, written into rec under prefix
func documentCells(rec Record, prefix string, docs []Document) {
	var ids, types, descrs, urls, pubs, mods, formats, langs []string
	for _, d := range docs {
		ids = append(ids, d.ID.String())
		types = append(types, d.DocumentType.String())
		descrs = append(descrs, d.Description.String())
		urls = append(urls, d.URL.String())
		pubs = append(pubs, d.DatePublished.String())
		mods = append(mods, d.DateModified.String())
		formats = append(formats, d.Format.String())
		langs = append(langs, d.Language.String())
	}
	rec[prefix+"_ids"] = pipeJoin(ids)
	rec[prefix+"_types"] = pipeJoin(types)
	rec[prefix+"_descriptions"] = pipeJoin(descrs)
	rec[prefix+"_urls"] = pipeJoin(urls)
	rec[prefix+"_datePublished"] = pipeJoin(pubs)
	rec[prefix+"_formats"] = pipeJoin(formats)
	rec[prefix+"_languages"] = pipeJoin(langs)
	if prefix != "planning_document" {
		rec[prefix+"_dateModified"] = pipeJoin(mods)
	}
}

// firstDocumentOfType returns the first document with the given type
func firstDocumentOfType(docs []Document, docType string) (Document, bool) {
	for _, d := range docs {
		if d.DocumentType.String() == docType {
			return d, true
		}
	}
	return Document{}, false
}

// buyerParty returns the party whose id matches the buyer reference
func buyerParty(rel Release) (Party, bool) {
	id := rel.Buyer.ID.String()
	if id == "" {
		return Party{}, false
	}
	for _, p := range rel.Parties {
		if p.ID.String() == id {
			return p, true
		}
	}
	return Party{}, false
}

// supplierParties returns every party carrying the supplier role
func supplierParties(rel Release) []Party {
	var out []Party
	for _, p := range rel.Parties {
		for _, r := range p.Roles {
			if r.String() == "supplier" {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Flatten turns one release package into a full extract record. The
// first release carries everything Contracts Finder publishes; packages
// with no releases still produce a row with the top-level fields
func Flatten(pkg *Package, csvFile string, rowIndex int, fetchedURI string) Record {
	rec := Record{
		"csv_file":  csvFile,
		"row_index": strconv.Itoa(rowIndex),
		"status":    StatusOK,
	}

	uri := pkg.URI.String()
	if uri == "" {
		uri = fetchedURI
	}
	rec["uri"] = uri
	rec["publishedDate"] = pkg.PublishedDate.String()
	rec["publisher_name"] = pkg.Publisher.Name.String()
	rec["publisher_scheme"] = pkg.Publisher.Scheme.String()
	rec["publisher_uid"] = pkg.Publisher.UID.String()
	rec["publisher_uri"] = pkg.Publisher.URI.String()
	rec["version"] = pkg.Version.String()
	rec["extensions"] = pipeJoin(scalars(pkg.Extensions))
	rec["license"] = pkg.License.String()
	rec["publicationPolicy"] = pkg.PublicationPolicy.String()

	var rel Release
	if len(pkg.Releases) > 0 {
		rel = pkg.Releases[0]
	}

	rec["ocid"] = rel.OCID.String()
	rec["release_id"] = rel.ID.String()
	rec["release_title"] = rel.Title.String()
	rec["release_date"] = rel.Date.String()
	rec["release_language"] = rel.Language.String()
	if len(rel.Tag) > 0 {
		rec["release_tag"] = rel.Tag[0].String()
	}
	rec["release_tags_all"] = pipeJoin(scalars(rel.Tag))
	rec["initiationType"] = rel.InitiationType.String()

	flattenPlanning(rec, rel.Planning)
	flattenTender(rec, rel.Tender)
	flattenBuyer(rec, rel)
	flattenSuppliers(rec, rel)
	flattenAward(rec, rel)

	return rec
}

func flattenPlanning(rec Record, pl Planning) {
	var ids, titles, types, dues []string
	for _, m := range pl.Milestones {
		ids = append(ids, m.ID.String())
		titles = append(titles, m.Title.String())
		types = append(types, m.Type.String())
		dues = append(dues, m.DueDate.String())
	}
	rec["planning_milestone_ids"] = pipeJoin(ids)
	rec["planning_milestone_titles"] = pipeJoin(titles)
	rec["planning_milestone_types"] = pipeJoin(types)
	rec["planning_milestone_dueDates"] = pipeJoin(dues)

	documentCells(rec, "planning_document", pl.Documents)
}

func flattenTender(rec Record, t Tender) {
	rec["tender_id"] = t.ID.String()
	rec["tender_title"] = t.Title.String()
	rec["tender_description"] = t.Description.String()
	rec["tender_status"] = t.Status.String()
	rec["mainProcurementCategory"] = t.MainProcurementCategory.String()

	documentCells(rec, "tender_document", t.Documents)

	rec["cpv_scheme"] = t.Classification.Scheme.String()
	rec["cpv_id"] = t.Classification.ID.String()
	rec["cpv_description"] = t.Classification.Description.String()

	var addIDs, addDescrs []string
	for _, c := range t.AdditionalClassifications {
		addIDs = append(addIDs, c.ID.String())
		addDescrs = append(addDescrs, c.Description.String())
	}
	rec["additional_cpv_ids"] = pipeJoin(addIDs)
	rec["additional_cpv_descriptions"] = pipeJoin(addDescrs)

	rec["value_amount"] = t.Value.Amount.String()
	rec["value_currency"] = t.Value.Currency.String()
	rec["minValue_amount"] = t.MinValue.Amount.String()
	rec["minValue_currency"] = t.MinValue.Currency.String()

	// Items and delivery geography: the _all columns aggregate every
	// address uniquely; the singular columns take the first non-empty
	// value from the first item, matching the notice-level summary
	var itemIDs, postals, regions, countries []string
	for _, item := range t.Items {
		itemIDs = append(itemIDs, item.ID.String())
		for _, a := range item.DeliveryAddresses {
			postals = appendUnique(postals, a.PostalCode.String())
			regions = appendUnique(regions, a.Region.String())
			countries = appendUnique(countries, a.CountryName.String())
		}
	}
	rec["tender_item_ids"] = pipeJoin(itemIDs)
	rec["tender_delivery_postalCodes_all"] = pipeJoin(postals)
	rec["tender_delivery_regions_all"] = pipeJoin(regions)
	rec["tender_delivery_countryNames_all"] = pipeJoin(countries)

	if len(t.Items) > 0 {
		for _, a := range t.Items[0].DeliveryAddresses {
			if rec["delivery_postalCode"] == "" {
				rec["delivery_postalCode"] = a.PostalCode.String()
			}
			if rec["delivery_region"] == "" {
				rec["delivery_region"] = a.Region.String()
			}
			if rec["delivery_country"] == "" {
				rec["delivery_country"] = a.CountryName.String()
			}
		}
	}

	rec["tender_datePublished"] = t.DatePublished.String()
	rec["tender_endDate"] = t.TenderPeriod.EndDate.String()
	rec["contract_startDate"] = t.ContractPeriod.StartDate.String()
	rec["contract_endDate"] = t.ContractPeriod.EndDate.String()

	rec["procurementMethod"] = t.ProcurementMethod.String()
	rec["procurementMethodDetails"] = t.ProcurementMethodDetails.String()
	rec["suitability_sme"] = t.Suitability.SME.String()
	rec["suitability_vcse"] = t.Suitability.VCSE.String()

	if doc, ok := firstDocumentOfType(t.Documents, "tenderNotice"); ok {
		rec["tender_notice_url"] = doc.URL.String()
		rec["tender_notice_description"] = doc.Description.String()
	}
}

func flattenBuyer(rec Record, rel Release) {
	rec["buyer_id"] = rel.Buyer.ID.String()
	rec["buyer_name"] = rel.Buyer.Name.String()

	p, ok := buyerParty(rel)
	if !ok {
		return
	}
	rec["buyer_legalName"] = p.Identifier.LegalName.String()
	rec["buyer_identifier_scheme"] = p.Identifier.Scheme.String()
	rec["buyer_identifier_id"] = p.Identifier.ID.String()
	rec["buyer_streetAddress"] = p.Address.StreetAddress.String()
	rec["buyer_locality"] = p.Address.Locality.String()
	rec["buyer_postalCode"] = p.Address.PostalCode.String()
	rec["buyer_countryName"] = p.Address.CountryName.String()
	rec["buyer_contact_name"] = p.ContactPoint.Name.String()
	rec["buyer_contact_email"] = p.ContactPoint.Email.String()
	rec["buyer_contact_telephone"] = p.ContactPoint.Telephone.String()
	rec["buyer_details_url"] = p.Details.URL.String()
	rec["buyer_roles"] = pipeJoin(scalars(p.Roles))
}

func flattenSuppliers(rec Record, rel Release) {
	parties := supplierParties(rel)

	var ids, names, legals, schemes, identIDs []string
	var streets, localities, postals, countries []string
	var scales, vcse, urls []string
	var roles []string

	for _, p := range parties {
		ids = append(ids, p.ID.String())
		names = append(names, p.Name.String())
		legals = append(legals, p.Identifier.LegalName.String())
		schemes = append(schemes, p.Identifier.Scheme.String())
		identIDs = append(identIDs, p.Identifier.ID.String())
		streets = append(streets, p.Address.StreetAddress.String())
		localities = append(localities, p.Address.Locality.String())
		postals = append(postals, p.Address.PostalCode.String())
		countries = append(countries, p.Address.CountryName.String())
		scales = append(scales, p.Details.Scale.String())
		vcse = append(vcse, p.Details.VCSE.String())
		urls = append(urls, p.Details.URL.String())
		for _, r := range p.Roles {
			roles = appendUnique(roles, r.String())
		}
	}

	rec["supplier_party_ids"] = pipeJoin(ids)
	rec["supplier_party_names"] = pipeJoin(names)
	rec["supplier_legalNames"] = pipeJoin(legals)
	rec["supplier_identifier_schemes"] = pipeJoin(schemes)
	rec["supplier_identifier_ids"] = pipeJoin(identIDs)
	rec["supplier_streetAddresses"] = pipeJoin(streets)
	rec["supplier_localities"] = pipeJoin(localities)
	rec["supplier_postalCodes"] = pipeJoin(postals)
	rec["supplier_countryNames"] = pipeJoin(countries)
	rec["supplier_scales"] = pipeJoin(scales)
	rec["supplier_vcse_flags"] = pipeJoin(vcse)
	rec["supplier_details_urls"] = pipeJoin(urls)
	rec["supplier_roles"] = pipeJoin(roles)
}

func flattenAward(rec Record, rel Release) {
	if len(rel.Awards) == 0 {
		return
	}
	aw := rel.Awards[0]

	rec["award_id"] = aw.ID.String()
	rec["award_status"] = aw.Status.String()
	rec["award_date"] = aw.Date.String()
	rec["award_datePublished"] = aw.DatePublished.String()
	rec["award_value_amount"] = aw.Value.Amount.String()
	rec["award_value_currency"] = aw.Value.Currency.String()
	rec["award_contract_startDate"] = aw.ContractPeriod.StartDate.String()
	rec["award_contract_endDate"] = aw.ContractPeriod.EndDate.String()

	var sIDs, sNames []string
	for _, s := range aw.Suppliers {
		sIDs = append(sIDs, s.ID.String())
		sNames = append(sNames, s.Name.String())
	}
	rec["award_suppliers_ids"] = pipeJoin(sIDs)
	rec["award_suppliers_names"] = pipeJoin(sNames)

	if doc, ok := firstDocumentOfType(aw.Documents, "awardNotice"); ok {
		rec["award_notice_url"] = doc.URL.String()
		rec["award_notice_description"] = doc.Description.String()
		rec["award_notice_datePublished"] = doc.DatePublished.String()
		rec["award_notice_format"] = doc.Format.String()
		rec["award_notice_language"] = doc.Language.String()
	}

	documentCells(rec, "award_document", aw.Documents)
}
