package tedxml

import (
	"strings"

	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/core/catalog"
	pstr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/strings"
)

// joinSep separates multi-valued cells (CPV codes, NUTS codes, names)
const joinSep = ";"

// Parse flattens one notice document into a Notice. The source's form
// tags are probed in catalog order; the first tag found anywhere in the
// document selects the UKx parser, otherwise the document is treated as
// a classic TED R2.0.9 form
func Parse(raw []byte, src *catalog.Source) (Notice, error) {
	doc, err := decodeNotice(raw)
	if err != nil {
		return Notice{}, err
	}
	root, err := parseTree(doc)
	if err != nil {
		return Notice{}, err
	}

	for _, tag := range src.FormTags {
		if root.find(tag) != nil {
			return parseUKx(root, tag), nil
		}
	}
	return parseTED(root, src), nil
}

// parseTED flattens a namespaced TED R2.0.9 notice (forms F01-F21)
func parseTED(root *node, src *catalog.Source) Notice {
	n := Notice{
		SchemaType: "TED_R2.0.9",
		DocID:      root.attr("DOC_ID"),
		Edition:    root.attr("EDITION"),
	}

	n.DatePub = root.find("REF_OJS", "DATE_PUB").trimmed()
	n.DSDateDispatch = root.find("CODIF_DATA", "DS_DATE_DISPATCH").trimmed()
	n.ISOCountry = root.find("NOTICE_DATA", "ISO_COUNTRY").attr("VALUE")
	n.NoDocOJS = root.find("NOTICE_DATA", "NO_DOC_OJS").trimmed()

	for _, u := range root.findAll("NOTICE_DATA", "URI_LIST", "URI_DOC") {
		if u.attr("LG") == "EN" {
			n.NoticeURL = u.trimmed()
			break
		}
	}

	// CPV
	n.OriginalCPVCode = root.find("NOTICE_DATA", "ORIGINAL_CPV").attr("CODE")
	n.CPVMainCode = root.find("OBJECT_CONTRACT", "CPV_MAIN", "CPV_CODE").attr("CODE")
	var addCPV []string
	for _, c := range root.findAll("OBJECT_DESCR", "CPV_ADDITIONAL", "CPV_CODE") {
		if code := c.attr("CODE"); code != "" {
			addCPV = append(addCPV, code)
		}
	}
	n.AdditionalCPVCodes = pstr.JoinUniqueSorted(joinSep, addCPV)

	// NUTS (2016 and 2021 editions share local names)
	var perf []string
	for _, el := range root.findAll("NOTICE_DATA", "PERFORMANCE_NUTS") {
		if code := el.attr("CODE"); code != "" {
			perf = append(perf, code)
		}
	}
	n.PerfNUTSCode = pstr.JoinUniqueSorted(joinSep, perf)
	n.CACENUTSCode = root.find("NOTICE_DATA", "CA_CE_NUTS").attr("CODE")

	// English translation block
	for _, ti := range root.findAll("TRANSLATION_SECTION", "ML_TITLES", "ML_TI_DOC") {
		if ti.attr("LG") != "EN" {
			continue
		}
		n.TICountry = ti.child("TI_CY").trimmed()
		n.TITown = ti.child("TI_TOWN").trimmed()
		if txt := ti.child("TI_TEXT"); txt != nil {
			n.TIText = txt.child("P").trimmed()
		}
		break
	}

	// Contracting authority
	if ca := root.find("CONTRACTING_BODY", "ADDRESS_CONTRACTING_BODY"); ca != nil {
		n.CAName = ca.child("OFFICIALNAME").trimmed()
		n.CATown = ca.child("TOWN").trimmed()
		n.CAPostcode = ca.child("POSTAL_CODE").trimmed()
		n.CAEmail = ca.child("E_MAIL").trimmed()
		n.CAURL = ca.child("URL_GENERAL").trimmed()
		n.CACountryCode = ca.child("COUNTRY").attr("VALUE")
		n.CANUTSCode = ca.child("NUTS").attr("CODE")
	}

	// Object / description
	n.ObjTitle = root.find("OBJECT_CONTRACT", "TITLE", "P").trimmed()
	if sd := root.find("OBJECT_CONTRACT", "SHORT_DESCR", "P"); sd != nil {
		n.ShortDescr = sd.trimmed()
	} else {
		n.ShortDescr = root.find("OBJECT_DESCR", "SHORT_DESCR", "P").trimmed()
	}
	n.TypeContractCType = root.find("OBJECT_CONTRACT", "TYPE_CONTRACT").attr("CTYPE")

	// Notice-level values
	if vt := root.find("OBJECT_CONTRACT", "VAL_TOTAL"); vt != nil {
		n.ValTotal = vt.trimmed()
		n.ValTotalCurrency = vt.attr("CURRENCY")
	}
	for _, v := range root.findAll("NOTICE_DATA", "VALUES", "VALUE") {
		switch v.attr("TYPE") {
		case "ESTIMATED_TOTAL":
			if n.EstTotalVal == "" {
				n.EstTotalVal = v.trimmed()
				n.EstTotalValCurrency = v.attr("CURRENCY")
			}
		case "PROCUREMENT_TOTAL":
			if n.ProcTotalVal == "" {
				n.ProcTotalVal = v.trimmed()
				n.ProcTotalValCurrency = v.attr("CURRENCY")
			}
		}
	}

	// Award section
	n.AwardDate = root.find("AWARD_CONTRACT", "AWARDED_CONTRACT", "DATE_CONCLUSION_CONTRACT").trimmed()
	if av := root.find("AWARD_CONTRACT", "AWARDED_CONTRACT", "VALUES", "VAL_TOTAL"); av != nil {
		n.AwValTotal = av.trimmed()
		n.AwValCurrency = av.attr("CURRENCY")
	}
	n.NbTenders = root.find("AWARD_CONTRACT", "AWARDED_CONTRACT", "TENDERS", "NB_TENDERS_RECEIVED").trimmed()

	var contractors []string
	for _, c := range root.findAll("AWARD_CONTRACT", "AWARDED_CONTRACT", "CONTRACTORS", "CONTRACTOR") {
		if addr := c.child("ADDRESS_CONTRACTOR"); addr != nil {
			if name := addr.child("OFFICIALNAME").trimmed(); name != "" {
				contractors = append(contractors, name)
			}
		}
	}
	n.ContractorNames = pstr.JoinUniqueSorted(joinSep, contractors)

	// CODIF codes
	n.TDDocumentType = root.find("CODIF_DATA", "TD_DOCUMENT_TYPE").attr("CODE")
	n.NCContractNatureCode = root.find("CODIF_DATA", "NC_CONTRACT_NATURE").attr("CODE")
	n.PRProcCode = root.find("CODIF_DATA", "PR_PROC").attr("CODE")
	n.ACAwardCritCode = root.find("CODIF_DATA", "AC_AWARD_CRIT").attr("CODE")
	n.MAMainActivitiesCode = root.find("CODIF_DATA", "MA_MAIN_ACTIVITIES").attr("CODE")
	n.RPRegulationCode = root.find("CODIF_DATA", "RP_REGULATION").attr("CODE")

	// Form type: the first FORM_SECTION child carrying a FORM attribute
	if fs := root.find("FORM_SECTION"); fs != nil {
		for _, child := range fs.children {
			if f := child.attr("FORM"); f != "" {
				n.FormType = f
				break
			}
		}
	}

	n.NoticeTypeGroup = src.NoticeGroup(n.TDDocumentType)
	return n
}

// parseUKx flattens an OCDS-style UKx form. These carry far fewer fields
// than the TED forms; the shared columns are mapped onto the closest TED
// equivalents and the rest stay empty
func parseUKx(root *node, formTag string) Notice {
	form := strings.TrimSuffix(formTag, "_2023")
	n := Notice{
		SchemaType:      formTag,
		FormType:        form,
		TDDocumentType:  form,
		NoticeTypeGroup: catalog.GroupOther,
	}

	nd := root.child("NOTICE_DATA")
	n.NoDocOJS = nd.child("NO_DOC_EXT").trimmed()
	n.DocID = nd.child("DOC_ID").trimmed()
	n.NoticeURL = nd.child("URI_DOC").trimmed()
	n.DatePub = nd.child("PUBLISHED").trimmed()

	ukx := root.find(formTag)
	if ukx == nil {
		return n
	}

	if n.DocID == "" {
		n.DocID = ukx.child("id").trimmed()
	}
	if n.DatePub == "" {
		n.DatePub = ukx.child("date").trimmed()
	}

	// Parties: first buyer becomes the contracting authority block,
	// suppliers collect into the contractor columns
	var supplierNames []string
	for _, p := range ukx.childAll("parties") {
		roles := make(map[string]bool)
		for _, r := range p.childAll("roles") {
			roles[r.trimmed()] = true
		}
		name := p.child("name").trimmed()
		addr := p.child("address")

		if roles["buyer"] && n.CAName == "" {
			n.CAName = name
			n.CACountryCode = addr.child("country").trimmed()
			n.ISOCountry = n.CACountryCode
			n.CATown = addr.child("locality").trimmed()
			n.TITown = n.CATown
			n.CAPostcode = addr.child("postalCode").trimmed()
			n.CANUTSCode = addr.child("region").trimmed()
			if det := p.child("details"); det != nil {
				n.CAURL = det.child("url").trimmed()
			}
		}
		if roles["supplier"] && name != "" {
			supplierNames = append(supplierNames, name)
		}
	}
	if n.CAName == "" {
		if buyer := ukx.child("buyer"); buyer != nil {
			n.CAName = buyer.child("name").trimmed()
		}
	}
	n.ContractorNames = pstr.JoinUniqueSorted(joinSep, supplierNames)

	// CPV codes and delivery regions live under awards/items
	var cpvs, perf []string
	for _, aw := range ukx.childAll("awards") {
		for _, item := range aw.childAll("items") {
			for _, ac := range item.childAll("additionalClassifications") {
				if ac.child("scheme").trimmed() == "CPV" {
					if id := ac.child("id").trimmed(); id != "" {
						cpvs = append(cpvs, id)
					}
				}
			}
			for _, da := range item.childAll("deliveryAddresses") {
				if r := da.child("region").trimmed(); r != "" {
					perf = append(perf, r)
				}
			}
		}
	}
	if len(cpvs) > 0 {
		n.CPVMainCode = cpvs[0]
		n.OriginalCPVCode = cpvs[0]
	}
	if len(cpvs) > 1 {
		n.AdditionalCPVCodes = pstr.JoinUniqueSorted(joinSep, cpvs[1:])
	}
	n.PerfNUTSCode = pstr.JoinUniqueSorted(joinSep, perf)

	if tender := ukx.child("tender"); tender != nil {
		n.ObjTitle = tender.child("title").trimmed()
		n.TIText = n.ObjTitle
		n.ShortDescr = tender.child("description").trimmed()
	}

	for _, aw := range ukx.childAll("awards") {
		if mpc := aw.child("mainProcurementCategory").trimmed(); mpc != "" {
			n.TypeContractCType = contractTypeFromCategory(mpc)
			break
		}
	}

	// Form tags decide the coarse group for the UKx family
	tags := make(map[string]bool)
	for _, t := range ukx.childAll("tag") {
		tags[t.trimmed()] = true
	}
	switch {
	case (formTag == "UK6_2023" || formTag == "UK7_2023") && tags["award"]:
		n.NoticeTypeGroup = "UK7_AWARD"
	case tags["planning"]:
		n.NoticeTypeGroup = "PLANNING"
	}

	return n
}

// contractTypeFromCategory maps an OCDS mainProcurementCategory onto the
// TED CTYPE vocabulary
func contractTypeFromCategory(cat string) string {
	l := strings.ToLower(cat)
	switch {
	case strings.Contains(l, "work"):
		return "WORKS"
	case strings.Contains(l, "service"):
		return "SERVICES"
	case strings.Contains(l, "supply"), strings.Contains(l, "good"):
		return "SUPPLIES"
	}
	return ""
}
