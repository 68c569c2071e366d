package domain

// UnityChunk is one aggregate translation unit of a unity build.
type UnityChunk struct {
	Index         int
	Members       []string
	AggregatePath string
	ObjectPath    string
}
