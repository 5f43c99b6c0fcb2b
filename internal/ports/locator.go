package ports

// SourceLocator resolves an ISO number to the path of its source document on
// the server store. A document that cannot be found yields a LookupError.
type SourceLocator interface {
	Locate(isoNo string) (string, error)
}

// MasterIndex maps ISO keys to the master-document pages referencing them.
// Implementations own the raw index parsing; the core only consumes pages.
type MasterIndex interface {
	PagesFor(isoKey string) []int
}
