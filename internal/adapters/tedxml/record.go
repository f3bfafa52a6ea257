package tedxml

// Notice is the flattened form of one Find a Tender XML member. Every
// field is a string because the daily extracts are tabular; absent
// values stay ""
type Notice struct {
	SchemaType      string
	FormType        string
	TDDocumentType  string
	NoticeTypeGroup string

	DocID     string
	Edition   string
	NoDocOJS  string
	NoticeURL string

	DatePub        string
	DSDateDispatch string
	AwardDate      string

	ISOCountry    string
	TICountry     string
	TITown        string
	CACountryCode string
	CATown        string
	CAPostcode    string
	CANUTSCode    string
	PerfNUTSCode  string
	CACENUTSCode  string

	CAName  string
	CAEmail string
	CAURL   string

	OriginalCPVCode    string
	CPVMainCode        string
	AdditionalCPVCodes string

	TIText            string
	ObjTitle          string
	ShortDescr        string
	TypeContractCType string

	ValTotal             string
	ValTotalCurrency     string
	EstTotalVal          string
	EstTotalValCurrency  string
	ProcTotalVal         string
	ProcTotalValCurrency string
	AwValTotal           string
	AwValCurrency        string
	NbTenders            string

	NCContractNatureCode string
	PRProcCode           string
	ACAwardCritCode      string
	MAMainActivitiesCode string
	RPRegulationCode     string

	ContractorNames string

	// ParseError is set by the caller when Parse fails; the member still
	// gets a row so broken notices stay visible downstream
	ParseError string

	// Provenance, stamped by the extract stage
	SourceXMLFile string
	SourceZip     string
}

// Columns returns the extract column order for find_a_tender days. The
// order is stable; the merge stage unions headers by first appearance,
// so reordering here would reorder the consolidated output
func Columns() []string {
	return []string{
		"schema_type",
		"form_type",
		"td_document_type_code",
		"notice_type_group",
		"doc_id",
		"edition",
		"no_doc_ojs",
		"notice_url",
		"date_pub",
		"ds_date_dispatch",
		"award_date",
		"iso_country",
		"ti_country",
		"ti_town",
		"ca_country_code",
		"ca_town",
		"ca_postcode",
		"ca_nuts_code",
		"perf_nuts_code",
		"ca_ce_nuts_code",
		"ca_name",
		"ca_email",
		"ca_url",
		"original_cpv_code",
		"cpv_main_code",
		"additional_cpv_codes",
		"ti_text",
		"obj_title",
		"short_descr",
		"type_contract_ctype",
		"val_total",
		"val_total_currency",
		"est_total_val",
		"est_total_val_currency",
		"proc_total_val",
		"proc_total_val_currency",
		"aw_val_total",
		"aw_val_currency",
		"nb_tenders",
		"nc_contract_nature_code",
		"pr_proc_code",
		"ac_award_crit_code",
		"ma_main_activities_code",
		"rp_regulation_code",
		"contractor_names",
		"parse_error",
		"source_xml_file",
		"source_zip",
	}
}

// Row renders the notice in Columns order
func (n Notice) Row() []string {
	return []string{
		n.SchemaType,
		n.FormType,
		n.TDDocumentType,
		n.NoticeTypeGroup,
		n.DocID,
		n.Edition,
		n.NoDocOJS,
		n.NoticeURL,
		n.DatePub,
		n.DSDateDispatch,
		n.AwardDate,
		n.ISOCountry,
		n.TICountry,
		n.TITown,
		n.CACountryCode,
		n.CATown,
		n.CAPostcode,
		n.CANUTSCode,
		n.PerfNUTSCode,
		n.CACENUTSCode,
		n.CAName,
		n.CAEmail,
		n.CAURL,
		n.OriginalCPVCode,
		n.CPVMainCode,
		n.AdditionalCPVCodes,
		n.TIText,
		n.ObjTitle,
		n.ShortDescr,
		n.TypeContractCType,
		n.ValTotal,
		n.ValTotalCurrency,
		n.EstTotalVal,
		n.EstTotalValCurrency,
		n.ProcTotalVal,
		n.ProcTotalValCurrency,
		n.AwValTotal,
		n.AwValCurrency,
		n.NbTenders,
		n.NCContractNatureCode,
		n.PRProcCode,
		n.ACAwardCritCode,
		n.MAMainActivitiesCode,
		n.RPRegulationCode,
		n.ContractorNames,
		n.ParseError,
		n.SourceXMLFile,
		n.SourceZip,
	}
}
