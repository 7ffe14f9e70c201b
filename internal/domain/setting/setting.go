// Package setting holds the shared key/value settings table.
package setting

import "context"

// LastReceiptNumber is the receipt counter carried over from local storage.
const LastReceiptNumber = "lastReceiptNumber"

type Repository interface {
	// Get reports found=false for a missing key.
	Get(ctx context.Context, name string) (value string, found bool, err error)
	Set(ctx context.Context, name, value string) error
}
