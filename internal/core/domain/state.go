package domain

// AtomicCacheRecord states that an exact file-set state was last validated and committed.
type AtomicCacheRecord struct {
	Hash      string  `json:"hash"`
	Timestamp float64 `json:"timestamp"`
	Subject   string  `json:"subject"`
	FileCount int     `json:"file_count"`
}

// StateSnapshot is the file-set state a writer observed before building.
// It is committed later, so a slow writer commits what it actually built from.
type StateSnapshot struct {
	Hash      string
	FileCount int
}
