package contextx

import (
	"context"
	"fmt"
)

type CustomerID string

type contextKeyCustomerID struct{}

func (c CustomerID) String() string {
	return string(c)
}

func WithCustomerID(ctx context.Context, customerID CustomerID) context.Context {
	return context.WithValue(ctx, contextKeyCustomerID{}, customerID)
}

func CustomerIDFromContext(ctx context.Context) (CustomerID, error) {
	customerID, ok := ctx.Value(contextKeyCustomerID{}).(CustomerID)
	if !ok {
		return "", fmt.Errorf("customer id: %w", ErrNoValue)
	}

	return customerID, nil
}
