package store

import (
	"testing"

	"userdesk/testutil"
)

// TestOnlyStorePackageImportsBackends ensures that only the store facade wraps
// the document backends. Other packages must depend on the Store interface.
func TestOnlyStorePackageImportsBackends(t *testing.T) {
	testutil.AssertImportBoundary(t, "userdesk/...", "userdesk/internal/infra/document", "userdesk/internal/store")
}
