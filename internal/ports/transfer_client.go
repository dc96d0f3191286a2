package ports

import (
	"context"
	"io"
)

// TransferReceipt is the endpoint's reply to one transfer.
type TransferReceipt struct {
	// StatusCode is the HTTP status returned by the endpoint.
	StatusCode int

	// Body is the raw response body.
	Body string

	// Info is the acknowledgement text, when the body carried one.
	Info string
}

// TransferClient submits files to a transfer endpoint.
type TransferClient interface {
	Upload(ctx context.Context, url, fileName string, content io.Reader) (TransferReceipt, error)
}
