package imports

const headerSearchRows = 10

const (
	colTicket   = "ticket"
	colDate     = "date"
	colType     = "type"
	colSpans    = "spans"
	colConduit  = "conduit"
	colJacks    = "jacks"
	colCopper   = "copper"
	colExtraPD  = "extra_pd"
	colCustomer = "customer"
	colAddress  = "address"
	colNotes    = "notes"
)

// headerAliases lists accepted spellings per column, compared after
// lower-casing and trimming. Order matters only for readability.
var headerAliases = map[string][]string{
	colTicket:   {"ticket", "ticket #", "ticket number", "ticket no", "work order", "work order #", "order", "order #", "order number"},
	colDate:     {"date", "install date", "installed", "job date", "work date"},
	colType:     {"type", "install type", "code", "billing code", "job code"},
	colSpans:    {"spans", "aerial spans", "span", "aerial"},
	colConduit:  {"conduit", "conduit ft", "conduit feet", "conduit (ft)"},
	colJacks:    {"jacks", "jacks installed", "jack", "jack count"},
	colCopper:   {"copper", "copper removed", "copper removal"},
	colExtraPD:  {"extra pd", "extra per diem", "extra_pd", "pd"},
	colCustomer: {"customer", "customer name", "name"},
	colAddress:  {"address", "service address"},
	colNotes:    {"notes", "note", "comments"},
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}
