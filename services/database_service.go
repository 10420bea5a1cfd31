package services

import (
	"context"

	"kgpay/entity"
)

// Database persists audit records and log messages. All writes are
// append-only; no handler depends on a read.
type Database interface {
	WriteLogMessage(data Data) error

	SaveTrade(ctx context.Context, trade *entity.TradeRecord) error
	SaveResult(ctx context.Context, record *entity.ResultRecord) error
}

type Data interface {
	DataType() string
}
