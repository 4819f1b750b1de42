package http

import (
	"github.com/dealradar/api/internal/infrastructure/alert"
	"github.com/dealradar/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/dealradar/api/internal/infrastructure/jwt"
	s3infra "github.com/dealradar/api/internal/infrastructure/s3"
	snsinfra "github.com/dealradar/api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router. Optional pieces
// (PushSender, Archive, Alerter, JWTProvider) may be nil; the corresponding
// behavior degrades instead of failing.
type Deps struct {
	OfferRepo        *dynamo.OfferRepo
	NotificationRepo *dynamo.NotificationRepo
	ReceiptRepo      *dynamo.ReceiptRepo
	FavoriteRepo     *dynamo.FavoriteRepo
	DeviceRepo       *dynamo.DeviceRepo
	UserRepo         *dynamo.UserRepo

	PushSender  snsinfra.PushSender
	Archive     *s3infra.Archive
	Alerter     alert.Alerter
	JWTProvider *jwtinfra.Provider
}
