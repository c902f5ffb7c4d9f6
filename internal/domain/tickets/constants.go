package tickets

const (
	SourceManual = "manual"
	SourceImport = "import"
)
