package rates

// System constants.
const (
	KeyIRSMileage = "IRS_MILEAGE"
	KeyTaxPercent = "TAX_PERCENT"
	KeyLeadPay    = "LEAD_PAY"
	KeyPerDiem    = "per_diem"
	KeyExtraPD    = "extra_pd"
)

// Surcharge override keys and the legacy billing codes they fall back to.
const (
	KeySpanPrice    = "span_price"
	KeyConduitPerFt = "conduit_per_ft"
	KeyJackFirstAdd = "jack_1st_add"
	KeyJackNextAdd  = "jack_next_add"
	KeyCopperRemove = "copper_remove"

	CodeSpan         = "F006"
	CodeConduit      = "F014-10"
	CodeJackFirstAdd = "1-F014-5"
	CodeJackNextAdd  = "2-F014-5"
	CodeCopperRemove = "F014-7"
	CodeLegacyPD     = "Legacy-PD"
)

