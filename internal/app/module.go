package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gobite-otp/internal/otp"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.otp.enabled") {
		slog.Warn("module otp disabled, only health endpoints are served")
		return
	}

	mod, err := otp.New(otp.Dependency{
		Ctx:         a.ctx,
		DBConn:      a.dbConn,
		CacheConn:   a.cacheConn,
		Messaging:   a.messaging,
		Idempotency: a.idemp,
		Enforcer:    a.casbin,
		Router:      a.router,
		Goroutine:   a.goroutine,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		UUID:        a.uuid,
		HMAC:        a.hmac,
		Generator:   a.generator,
		Clock:       a.clock,
		Validator:   a.validator,
		Mail:        a.mail,
		Storage:     a.storage,
	})
	if err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}

	a.otp = mod
}
