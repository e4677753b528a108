//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"context"

	"github.com/relloyd/hpingest/watermark"
)

// Lister returns every object found below a prefix.
type Lister interface {
	List(ctx context.Context, prefix string) (objects []watermark.Object, err error)
}
