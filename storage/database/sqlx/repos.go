// Package sqlxrepos implements the domain repositories on Postgres via sqlx.
// All owner-scoped lookups filter by record id AND user id in one query so
// "exists but not yours" and "does not exist" are indistinguishable.
package sqlxrepos

import (
	"github.com/lib/pq"
)

func int64Array(ids []int64) interface{} {
	return pq.Array(ids)
}
