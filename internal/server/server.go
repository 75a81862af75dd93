package server

import "promo-engine/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Server combines the entity specific HTTP servers into one routable unit.
type Server struct {
	DealServer
	CheckoutServer
	StorefrontServer
}

func NewServer(
	dealServer DealServer,
	checkoutServer CheckoutServer,
	storefrontServer StorefrontServer,
) Server {
	return Server{
		DealServer:       dealServer,
		CheckoutServer:   checkoutServer,
		StorefrontServer: storefrontServer,
	}
}
