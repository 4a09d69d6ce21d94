package params

import "time"

const (
	ServerBodyLimit    = 1048576
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second
)

const (
	// TokenStoreKeyPrefix namespaces character token records in the KV backend.
	TokenStoreKeyPrefix = "token:"

	// SeedBatchSize is the number of rows per bulk insert when seeding static data.
	SeedBatchSize = 25
)
