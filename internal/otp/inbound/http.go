package inbound

import (
	"github.com/shandysiswandi/gobite-otp/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/otp/issue", end.Issue)
	r.POST("/api/v1/otp/verify", end.Verify)

	r.GET("/api/v1/otp/policy", end.GetPolicy)
	r.PUT("/api/v1/otp/policy", end.UpdatePolicy)

	r.GET("/api/v1/otp/owners/:id/records", end.ListByOwner)
	r.DELETE("/api/v1/otp/owners/:id", end.DeleteByOwner)
}
