package requestdata

import (
	"context"

	"github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the server-resolved identity and request metadata for one
// request. The acting principal on every write path comes from here, never
// from request parameters.
type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
	IsAdmin      bool
	ClientIP     string
	UserAgent    string
}
