package repositories

import (
	"fmt"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
)

// namespaceFor picks the production or test partition. Anything other than EnvTest is production.
func namespaceFor(env pkg.Env, production, test store.Namespace) store.Namespace {
	if env == pkg.EnvTest {
		return test
	}
	return production
}

func malformed(field string, err error) error {
	return fmt.Errorf("%w: field %q: %v", store.ErrMalformedItem, field, err)
}
