package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixRoot      CachePrefix = "gazetteer:"
	CachePrefixCountries CachePrefix = "gazetteer:countries:"
	CachePrefixCountry   CachePrefix = "gazetteer:country:"
	CachePrefixState     CachePrefix = "gazetteer:state:"
	CachePrefixCity      CachePrefix = "gazetteer:city:"
	CachePrefixLocation  CachePrefix = "gazetteer:location:"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000

	// ImportBatchSize is the number of rows per INSERT during a bulk import.
	ImportBatchSize = 10000
)
