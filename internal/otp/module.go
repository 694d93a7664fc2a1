package otp

import (
	"context"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
	"github.com/shandysiswandi/gobite-otp/internal/otp/inbound"
	"github.com/shandysiswandi/gobite-otp/internal/otp/outbound/cache"
	"github.com/shandysiswandi/gobite-otp/internal/otp/outbound/channel"
	"github.com/shandysiswandi/gobite-otp/internal/otp/outbound/db"
	"github.com/shandysiswandi/gobite-otp/internal/otp/outbound/mq"
	"github.com/shandysiswandi/gobite-otp/internal/otp/usecase"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/clock"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/config"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/hash"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/instrument"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/mail"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/messaging"
	otpgen "github.com/shandysiswandi/gobite-otp/internal/pkg/otp"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/router"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/scheduler"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/storage"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/uid"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/validator"
)

const (
	fileModeLocal  = "local"
	fileModeObject = "object"
)

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Dependency struct {
	Ctx         context.Context            `validate:"required"`
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   redis.UniversalClient      `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Enforcer    enforcer                   `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	HMAC        *hash.HMACSHA256           `validate:"required"`
	Generator   otpgen.Generator           `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	// Mail and Storage are optional; their channels stay disabled without them.
	Mail    mail.Mail
	Storage storage.Storage
}

// Module owns the background jobs started by New.
type Module struct {
	sweeper *scheduler.Job
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbOTP := db.NewDB(dep.DBConn, dep.Instrument, dep.UID, dep.HMAC)
	if err := dbOTP.EnsureSchema(dep.Ctx); err != nil {
		return nil, err
	}
	if err := dbOTP.EnsureDefaultPolicy(dep.Ctx, entity.DefaultPolicy()); err != nil {
		return nil, err
	}

	uc := usecase.NewOTP(usecase.Dependency{
		RepoDB:      dbOTP,
		RepoChannel: newDispatcher(dep),
		RepoLimiter: cache.NewLimiter(dep.CacheConn, dep.Instrument,
			dep.Config.GetInt("modules.otp.verify.max_failed_attempts"),
			dep.Config.GetSecond("modules.otp.verify.window_seconds"),
		),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Idempotency:   dep.Idempotency,
		Enforcer:      dep.Enforcer,
		Generator:     dep.Generator,
		Config:        dep.Config,
		Clock:         dep.Clock,
		Validator:     dep.Validator,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return &Module{
		sweeper: inbound.RegisterSweeper(dep.Ctx, dep.Config, dep.Goroutine, uc),
	}, nil
}

// Stop stops the expiry sweeper, letting an in-flight tick finish.
func (m *Module) Stop(ctx context.Context) error {
	if m == nil || m.sweeper == nil {
		return nil
	}
	return m.sweeper.Stop(ctx)
}

func newDispatcher(dep Dependency) *channel.Dispatcher {
	cfg := dep.Config
	client := &http.Client{Timeout: cfg.GetSecond("modules.otp.channel.timeout_seconds")}

	d := channel.NewDispatcher(dep.Instrument)

	if dep.Mail != nil {
		d.Register(entity.ChannelEmail, channel.NewEmail(dep.Mail))
	}
	if endpoint := cfg.GetString("modules.otp.channel.sms.endpoint"); endpoint != "" {
		d.Register(entity.ChannelSMS, channel.NewSMS(channel.SMSConfig{
			Endpoint: endpoint,
			APIKey:   cfg.GetString("modules.otp.channel.sms.api_key"),
			SenderID: cfg.GetString("modules.otp.channel.sms.sender_id"),
		}, client))
	}
	if token := cfg.GetString("modules.otp.channel.telegram.bot_token"); token != "" {
		d.Register(entity.ChannelTelegram, channel.NewTelegram(channel.TelegramConfig{
			BaseURL:  cfg.GetString("modules.otp.channel.telegram.base_url"),
			BotToken: token,
		}, client))
	}

	switch strings.ToLower(cfg.GetString("modules.otp.channel.file.mode")) {
	case fileModeObject:
		if dep.Storage != nil {
			d.Register(entity.ChannelFile, channel.NewObjectFile(dep.Storage,
				cfg.GetString("modules.otp.channel.file.bucket"),
				cfg.GetString("modules.otp.channel.file.prefix"),
				dep.Clock, dep.UUID,
			))
		}
	case fileModeLocal, "":
		d.Register(entity.ChannelFile, channel.NewLocalFile(cfg.GetString("modules.otp.channel.file.path"), dep.Clock))
	}

	return d
}
