package domain_test

import (
	"testing"

	"dwellingcore/testutil"
)

func TestDomainHasNoInternalImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "pkg/domain is the public contract")
}
