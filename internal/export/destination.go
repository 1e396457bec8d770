package export

import "context"

// Destination is a mirror target for snapshot files (S3, git, etc.).
type Destination interface {
	// Write stores data under name, a bare file name such as
	// records_export_20240301_093000.csv.
	Write(ctx context.Context, name string, data []byte) error
	// Location describes where name ends up, for logs and warnings.
	Location(name string) string
}
